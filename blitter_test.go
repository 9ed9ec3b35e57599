package core

import "testing"

func newTestBlitter(mem ChipMemory, accuracy BlitterAccuracy) (*blitter, *Scheduler) {
	clock := newClockState(RegionPAL)
	sched := newScheduler(clock)
	notices := newNoticeBoard()
	bus := newBusArbiter(notices)
	b := newBlitter(mem, sched, noopIRQSink{}, notices, bus, accuracy)
	sched.bindHandler(SlotBLT, func(id EventID, data int64) {
		if id == 1 {
			b.endBlit()
		} else {
			b.step()
		}
	})
	return b, sched
}

func TestBlitterAreaCopyFastAccuracy(t *testing.T) {
	mem := newFakeMemory()
	mem.Write16(0x2000, 0xAAAA)

	b, sched := newTestBlitter(mem, BlitterFast)
	b.pokeRegister(RegBLTAPTH, 0)
	b.pokeRegister(RegBLTAPTL, 0x2000)
	b.pokeRegister(RegBLTDPTH, 0)
	b.pokeRegister(RegBLTDPTL, 0x3000)
	b.pokeRegister(RegBLTAFWM, 0xFFFF)
	b.pokeRegister(RegBLTALWM, 0xFFFF)
	const lfCopyA = 0xF0
	b.pokeRegister(RegBLTCON0, lfCopyA|bltcon0UseA|bltcon0UseD)
	b.pokeRegister(RegBLTCON1, 0)
	b.pokeRegister(RegBLTSIZE, 1<<6|1) // H=1, W=1

	if !b.running {
		t.Fatal("blitter did not start")
	}
	sched.ExecuteUntil(4 * MasterClocksPerDMACycle)

	if mem.Read16(0x3000) != 0xAAAA {
		t.Fatalf("D = %#04x, want 0xaaaa copied from A", mem.Read16(0x3000))
	}
	if b.running {
		t.Fatal("blitter still running after fast-accuracy completion")
	}
}

func TestBlitterZeroFlagTracksOutput(t *testing.T) {
	mem := newFakeMemory()
	mem.Write16(0x2000, 0x0000)

	b, sched := newTestBlitter(mem, BlitterFast)
	b.pokeRegister(RegBLTAPTL, 0x2000)
	b.pokeRegister(RegBLTDPTL, 0x3000)
	b.pokeRegister(RegBLTAFWM, 0xFFFF)
	b.pokeRegister(RegBLTALWM, 0xFFFF)
	const lfCopyA = 0xF0
	b.pokeRegister(RegBLTCON0, lfCopyA|bltcon0UseA|bltcon0UseD)
	b.pokeRegister(RegBLTCON1, 0)
	b.pokeRegister(RegBLTSIZE, 1<<6|1)
	sched.ExecuteUntil(4 * MasterClocksPerDMACycle)

	if !b.BZero() {
		t.Fatal("BZero() = false, want true after an all-zero operation")
	}
}

func TestBlitterRegisterWriteDroppedWhileRunning(t *testing.T) {
	mem := newFakeMemory()
	b, sched := newTestBlitter(mem, BlitterSlow)
	b.pokeRegister(RegBLTAPTL, 0x2000)
	b.pokeRegister(RegBLTDPTL, 0x3000)
	b.pokeRegister(RegBLTAFWM, 0xFFFF)
	b.pokeRegister(RegBLTALWM, 0xFFFF)
	b.pokeRegister(RegBLTCON0, bltcon0UseA|bltcon0UseD)
	b.pokeRegister(RegBLTSIZE, 1<<6|2) // W=2, H=1, slow accuracy keeps it running a few cycles

	before := b.a.ptr
	b.pokeRegister(RegBLTAPTL, 0x9999)
	if b.a.ptr != before {
		t.Fatal("blitter register write took effect while running")
	}

	select {
	case n := <-b.notices.Notices():
		if n.Kind != NoticeBlitterRegisterDropped {
			t.Fatalf("unexpected notice kind %v", n.Kind)
		}
	default:
		t.Fatal("expected a dropped-write notice")
	}

	sched.ExecuteUntil(32 * MasterClocksPerDMACycle)
	if b.running {
		t.Fatal("blitter never finished")
	}
}

// TestBlitterFirstWordMaskAppliesToFirstWordNotLast checks BLTAFWM masks
// the first word of a row (x==0) and BLTALWM masks the last (x==width-1),
// rather than the reverse.
func TestBlitterFirstWordMaskAppliesToFirstWordNotLast(t *testing.T) {
	mem := newFakeMemory()
	mem.Write16(0x2000, 0xFFFF)
	mem.Write16(0x2002, 0xFFFF)

	b, sched := newTestBlitter(mem, BlitterFast)
	b.pokeRegister(RegBLTAPTL, 0x2000)
	b.pokeRegister(RegBLTDPTL, 0x3000)
	b.pokeRegister(RegBLTAFWM, 0x00FF)
	b.pokeRegister(RegBLTALWM, 0xFF00)
	const lfCopyA = 0xF0
	b.pokeRegister(RegBLTCON0, lfCopyA|bltcon0UseA|bltcon0UseD)
	b.pokeRegister(RegBLTCON1, 0)
	b.pokeRegister(RegBLTSIZE, 1<<6|2) // W=2, H=1
	sched.ExecuteUntil(4 * MasterClocksPerDMACycle)

	if got := mem.Read16(0x3000); got != 0x00FF {
		t.Fatalf("first word = %#04x, want 0x00ff (masked by BLTAFWM)", got)
	}
	if got := mem.Read16(0x3002); got != 0xFF00 {
		t.Fatalf("last word = %#04x, want 0xff00 (masked by BLTALWM)", got)
	}
}

func TestMintermLUTIsPureFunctionOfThreeInputs(t *testing.T) {
	// LF=0xFF: always-1 function.
	for _, a := range []uint8{0, 1} {
		for _, bb := range []uint8{0, 1} {
			for _, c := range []uint8{0, 1} {
				if evalMinterm(0xFF, a, bb, c) != 1 {
					t.Fatalf("evalMinterm(0xff, %d,%d,%d) = 0, want 1", a, bb, c)
				}
			}
		}
	}
}
