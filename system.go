// system.go - the top-level arena wiring Agnus, Copper, Blitter and both CIAs

package core

// System is the whole timing/DMA core: construct one with NewSystem, drive
// it with ExecuteUntil, and read its state back with Inspect. There is no
// background goroutine; every exported method must be called from the
// same goroutine that drives ExecuteUntil, except Notices which is safe
// to drain from anywhere.
type System struct {
	cfg   Config
	agnus *agnus
}

// NewSystem constructs a System ready to run from power-on defaults. Any
// of ChipMemory/IRQSink/PixelSink may be nil; a headless no-op stand-in is
// used so the core runs without a host attached (handy for tests).
func NewSystem(cfg Config, mem ChipMemory, pixels PixelSink, irq IRQSink) *System {
	notices := newNoticeBoard()
	return &System{
		cfg:   cfg,
		agnus: newAgnus(cfg, mem, pixels, irq, notices),
	}
}

// Reset restores every subsystem to its power-on state without
// reconstructing the System (and without losing the host's ChipMemory/
// IRQSink/PixelSink wiring).
func (s *System) Reset() {
	s.agnus.reset()
}

// ExecuteUntil advances the core's master clock up to and including
// target, the sole suspension point per spec §5.
func (s *System) ExecuteUntil(target Cycle) {
	s.agnus.sched.ExecuteUntil(target)
}

// PokeCustom applies a tagged register write; source distinguishes CPU
// from copper-issued writes for the registers that restrict copper access.
func (s *System) PokeCustom(addr uint32, value uint16, source WriteSource) {
	s.agnus.PokeCustom(addr, value, source)
}

// PeekCustom reads a live register value, including read-side effects.
func (s *System) PeekCustom(addr uint32) uint16 {
	return s.agnus.PeekCustom(addr)
}

// CyclesInCurrentFrame reports the length of the current frame in master
// clocks.
func (s *System) CyclesInCurrentFrame() int64 { return s.agnus.CyclesInCurrentFrame() }

// StartOfCurrentFrame reports the clock value at the current frame's
// first cycle.
func (s *System) StartOfCurrentFrame() Cycle { return s.agnus.StartOfCurrentFrame() }

// BeamToCycle converts a raster beam position to an absolute clock value.
func (s *System) BeamToCycle(b Beam) Cycle { return s.agnus.BeamToCycle(b) }

// CycleToBeam converts an absolute clock value to its raster beam
// position.
func (s *System) CycleToBeam(cy Cycle) Beam { return s.agnus.CycleToBeam(cy) }

// LastLineBusOwner reports which owner (if any) claimed each DMA slot on
// the line before the one in progress, for a DMA/debugger visualizer.
func (s *System) LastLineBusOwner() [HPOSCount]BusOwner { return s.agnus.LastLineBusOwner() }

// Notices exposes the host-facing anomaly channel; safe to read from any
// goroutine, never blocks the core.
func (s *System) Notices() <-chan Notice { return s.agnus.notices.Notices() }

// Clock reports the current master-clock value (8 per DMA cycle).
func (s *System) Clock() Cycle { return s.agnus.sched.Clock() }

// Beam reports the current raster beam position.
func (s *System) Beam() Beam { return s.agnus.clock.beam }

// Inspect returns a plain, immutable snapshot of the core's externally
// interesting state, safe to read after the guard spec §5 describes has
// been acquired by the host (acquiring that guard is a host concern; this
// method only ever reads, never mutates).
func (s *System) Inspect() Snapshot {
	return s.agnus.snapshot()
}
