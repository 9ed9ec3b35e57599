package core

import "testing"

type recordingIRQ struct {
	raised   map[IRQKind]bool
	released map[IRQKind]bool
}

func newRecordingIRQ() *recordingIRQ {
	return &recordingIRQ{raised: map[IRQKind]bool{}, released: map[IRQKind]bool{}}
}

func (r *recordingIRQ) RaiseIRQ(k IRQKind)   { r.raised[k] = true; delete(r.released, k) }
func (r *recordingIRQ) ReleaseIRQ(k IRQKind) { r.released[k] = true; delete(r.raised, k) }

// TestTimerAOneShotUnderflowStopsAndSetsICR walks the delay/feed pipeline
// through a two-tick countdown and checks that a one-shot timer sets ICR
// and stops itself on underflow.
func TestTimerAOneShotUnderflowStopsAndSetsICR(t *testing.T) {
	c := newCIA(newRecordingIRQ(), IRQPorts, false)
	c.latchA = 2
	c.counterA = 2
	c.cra = 1 << 3 // one-shot, not yet started
	c.imr = icrTimerA
	c.startTimerA()

	for i := 0; i < 8; i++ {
		c.tick()
	}

	if c.cra&1 != 0 {
		t.Fatal("one-shot timer A did not stop itself after underflow")
	}
	if c.icr&icrTimerA == 0 {
		t.Fatal("ICR did not record the timer A underflow")
	}
}

// TestTimerBCascadeFromTimerAUnderflow checks that a timer A underflow, with
// CRB's cascade bit set, injects timer B's first count stage (CountB0) into
// the delay pipeline, so counterB is decremented once that bit has shifted
// through to CountB3.
func TestTimerBCascadeFromTimerAUnderflow(t *testing.T) {
	c := newCIA(newRecordingIRQ(), IRQPorts, false)
	c.crb = 1 << 6 // cascade mode

	c.timerAUnderflow()

	if c.delay&ciaCountB0 == 0 {
		t.Fatal("timer A underflow in cascade mode did not arm timer B's count pulse")
	}
}

func TestTODAlarmFiresAndReconcilesICR(t *testing.T) {
	irq := newRecordingIRQ()
	c := newCIA(irq, IRQExter, false)
	c.imr = icrTOD
	c.tod.counter = 0xFFFFFE
	c.tod.alarm = 0xFFFFFF

	c.tickTOD()
	if c.icr&icrTOD == 0 {
		t.Fatal("TOD counter reaching the alarm value did not set ICR")
	}
	if !irq.raised[IRQExter] {
		t.Fatal("CIA-B IRQ line was not raised once an unmasked ICR source fired")
	}
}

func TestTODBugSuppressesOneCompare(t *testing.T) {
	c := newCIA(newRecordingIRQ(), IRQPorts, true)
	c.tod.counter = 0xFFFFFE
	c.tod.alarm = 0xFFFFFF
	c.tod.todBugArmed = true

	if fired := c.tod.tick(true); fired {
		t.Fatal("armed TOD bug window did not suppress the compare")
	}
	// Next tick is a normal compare again; counter has already rolled past
	// the alarm so re-arm a fresh hit to confirm the bug only fires once.
	c.tod.counter = 0xFFFFFE
	c.tod.alarm = 0xFFFFFF
	if fired := c.tod.tick(true); !fired {
		t.Fatal("TOD compare stayed suppressed after the bug window passed")
	}
}

func TestPeekICRReadToAcknowledgeClearsAndReleasesIRQ(t *testing.T) {
	irq := newRecordingIRQ()
	c := newCIA(irq, IRQPorts, false)
	c.imr = icrTimerA
	c.icr = icrTimerA
	c.reconcileICR()

	if !irq.raised[IRQPorts] {
		t.Fatal("expected IRQ raised before the read")
	}
	got := c.peekICR()
	if got&icrTimerA == 0 {
		t.Fatal("peekICR did not report the pending timer A source")
	}
	if c.icr != 0 {
		t.Fatal("peekICR did not clear the latched ICR")
	}
	if !irq.released[IRQPorts] {
		t.Fatal("peekICR did not release the IRQ line")
	}
}

func TestWakeupCycleComputesEarliestCounterUnderflow(t *testing.T) {
	c := newCIA(newRecordingIRQ(), IRQPorts, false)
	c.counterA = 5
	c.delay |= ciaCountA3

	got := c.wakeupCycle(100)
	want := Cycle(100) + Cycle(4)*CIACyclesPerTick
	if got != want {
		t.Fatalf("wakeupCycle = %d, want %d", got, want)
	}
}

func TestWakeupCycleIsNeverWhenNoTimerCounting(t *testing.T) {
	c := newCIA(newRecordingIRQ(), IRQPorts, false)
	if got := c.wakeupCycle(0); got != NeverCycle {
		t.Fatalf("wakeupCycle with no counting timer = %d, want NeverCycle", got)
	}
}

func TestSleepWakeSubtractsElapsedTicksFromCounter(t *testing.T) {
	c := newCIA(newRecordingIRQ(), IRQPorts, false)
	c.counterA = 10
	c.delay |= ciaCountA3

	c.sleep(0)
	c.wake(CIACyclesPerTick * 4)

	if c.counterA != 6 {
		t.Fatalf("counterA after sleep/wake = %d, want 6", c.counterA)
	}
	if c.idleCycles != int64(CIACyclesPerTick*4) {
		t.Fatalf("idleCycles = %d, want %d", c.idleCycles, CIACyclesPerTick*4)
	}
	if c.sleeping {
		t.Fatal("wake did not clear the sleeping flag")
	}
}

func TestSleepWakeClampsCounterAtZero(t *testing.T) {
	c := newCIA(newRecordingIRQ(), IRQPorts, false)
	c.counterA = 2
	c.delay |= ciaCountA3

	c.sleep(0)
	c.wake(CIACyclesPerTick * 10)

	if c.counterA != 0 {
		t.Fatalf("counterA = %d, want 0 (clamped, not wrapped)", c.counterA)
	}
}
