// scheduler.go - per-slot next-event queue and the execute_until dispatch loop

package core

// EventSlot names one logical event channel. Each chip functional block owns
// exactly one slot (plus one per audio channel); the scheduler never
// allocates slots dynamically.
type EventSlot int

const (
	SlotCIAA EventSlot = iota
	SlotCIAB
	SlotBPL
	SlotDAS // disk/audio/sprite shared fetch slot
	SlotCOP
	SlotBLT
	SlotAUD0
	SlotAUD1
	SlotAUD2
	SlotAUD3
	SlotSEC // secondary/deferred wakeups
	SlotSYNC
	numSlots
)

// dispatchOrder is the fixed tie-break order from spec §4.1: when two or
// more slots share the same trigger cycle, they fire in this order within
// the same scheduler iteration. A handler that reschedules its own slot for
// the same cycle is serviced again on the *next* iteration, never
// recursively within the same one.
var dispatchOrder = [...]EventSlot{
	SlotCIAA, SlotCIAB, SlotBPL, SlotDAS, SlotCOP, SlotBLT,
	SlotAUD0, SlotAUD1, SlotAUD2, SlotAUD3, SlotSEC, SlotSYNC,
}

// EventID tags what a slot's handler should do when it fires. The meaning
// of an EventID is scoped to the slot that carries it.
type EventID int

type eventRecord struct {
	trigger Cycle
	id      EventID
	data    int64
}

// SlotHandler is called when its slot's trigger cycle has been reached. It
// receives the event id/data that were scheduled and may reschedule its own
// slot before returning; it must never block.
type SlotHandler func(id EventID, data int64)

// Scheduler is Agnus's event dispatch core: one trigger-cycle slot per
// channel, serviced in a fixed priority order on ties.
type Scheduler struct {
	clock    *clockState
	slots    [numSlots]eventRecord
	handlers [numSlots]SlotHandler
	onHSYNC  func()
}

func newScheduler(clock *clockState) *Scheduler {
	s := &Scheduler{clock: clock}
	for i := range s.slots {
		s.slots[i].trigger = NeverCycle
	}
	return s
}

// bindHandler wires the dispatch-table entry for slot. Called once at
// System construction; never reassigned afterwards.
func (s *Scheduler) bindHandler(slot EventSlot, h SlotHandler) {
	s.handlers[slot] = h
}

// ScheduleAbs places an event at an absolute cycle. Per spec §4.1 this is a
// caller invariant, not a checked error: scheduling into the past is a
// logged no-op in release builds and a debug assertion otherwise.
func (s *Scheduler) ScheduleAbs(slot EventSlot, cycle Cycle, id EventID) {
	s.ScheduleAbsWithData(slot, cycle, id, 0)
}

// ScheduleAbsWithData is ScheduleAbs plus a payload word, used when the
// handler needs more than the event id.
func (s *Scheduler) ScheduleAbsWithData(slot EventSlot, cycle Cycle, id EventID, data int64) {
	if cycle < s.clock.clock {
		assertf(false, "schedule_abs: slot %d scheduled at %d before clock %d", slot, cycle, s.clock.clock)
		return
	}
	s.slots[slot] = eventRecord{trigger: cycle, id: id, data: data}
}

// ScheduleRel schedules relative to the current clock.
func (s *Scheduler) ScheduleRel(slot EventSlot, delta Cycle, id EventID) {
	s.ScheduleAbs(slot, s.clock.clock+delta, id)
}

// ScheduleRelWithData is ScheduleRel plus a payload word.
func (s *Scheduler) ScheduleRelWithData(slot EventSlot, delta Cycle, id EventID, data int64) {
	s.ScheduleAbsWithData(slot, s.clock.clock+delta, id, data)
}

// ScheduleInc reschedules relative to the slot's own existing trigger,
// preserving periodic cadence instead of drifting from "now".
func (s *Scheduler) ScheduleInc(slot EventSlot, delta Cycle, id EventID) {
	base := s.slots[slot].trigger
	if base == NeverCycle {
		base = s.clock.clock
	}
	s.ScheduleAbs(slot, base+delta, id)
}

// Cancel disarms a slot.
func (s *Scheduler) Cancel(slot EventSlot) {
	s.slots[slot].trigger = NeverCycle
}

// TriggerCycle reports a slot's current trigger, for tests and inspection.
func (s *Scheduler) TriggerCycle(slot EventSlot) Cycle {
	return s.slots[slot].trigger
}

// Clock returns the current master-clock value.
func (s *Scheduler) Clock() Cycle {
	return s.clock.clock
}

// ExecuteUntil advances the clock one DMA cycle at a time up to (and
// including) target, dispatching every slot whose trigger has been reached
// in the fixed priority order, and invoking the HSYNC handler whenever the
// beam wraps past HPOSMax back to 0. Handlers never block; a handler that needs to wait
// reschedules its own slot and returns.
func (s *Scheduler) ExecuteUntil(target Cycle) {
	for s.clock.clock < target {
		s.clock.clock += MasterClocksPerDMACycle
		s.serviceSlots()
		s.clock.beam.H++
		if s.clock.beam.H > HPOSMax {
			s.clock.beam.H = 0
			if s.onHSYNC != nil {
				s.onHSYNC()
			}
		}
	}
}

// serviceSlots dispatches every slot whose trigger_cycle <= clock, in
// dispatchOrder. A slot rearmed to the same cycle by its own handler is not
// re-serviced this pass.
func (s *Scheduler) serviceSlots() {
	now := s.clock.clock
	var due [numSlots]eventRecord
	var isDue [numSlots]bool
	for _, slot := range dispatchOrder {
		if s.slots[slot].trigger <= now {
			due[slot] = s.slots[slot]
			isDue[slot] = true
		}
	}
	for _, slot := range dispatchOrder {
		if !isDue[slot] {
			continue
		}
		if h := s.handlers[slot]; h != nil {
			h(due[slot].id, due[slot].data)
		}
	}
}
