// snapshot.go - plain immutable debug-inspection structs (spec §5, §6)

package core

// CIASnapshot is one CIA's externally-visible state at the moment Inspect
// was called.
type CIASnapshot struct {
	CounterA, CounterB uint16
	LatchA, LatchB     uint16
	TODCounter         uint32
	TODAlarm           uint32
	ICR, IMR           uint16
	Sleeping           bool
	IdleCycles         int64
}

// BlitterSnapshot is the blitter's externally-visible state.
type BlitterSnapshot struct {
	Running bool
	BZero   bool
	Width   int
	Height  int
	X, Y    int
}

// CopperSnapshot is the copper's externally-visible state.
type CopperSnapshot struct {
	PC     uint32
	Cop1LC uint32
	Cop2LC uint32
	CDANG  bool
	Skip   bool
}

// Snapshot is the whole-core debug view returned by System.Inspect. No
// field aliases live core state; every value is copied out.
type Snapshot struct {
	Clock Cycle
	Beam  Beam

	DMACON  uint16
	BPLCON0 uint16

	Hires bool
	BPU   int

	DDFStrt, DDFStop int16
	DIWVstrt, DIWVstop int16
	DIWHstrt, DIWHstop int16
	DIWVFlop, DIWHFlop bool

	Copper  CopperSnapshot
	Blitter BlitterSnapshot
	CIAA    CIASnapshot
	CIAB    CIASnapshot
}

func (a *agnus) snapshot() Snapshot {
	return Snapshot{
		Clock:   a.sched.Clock(),
		Beam:    a.clock.beam,
		DMACON:  a.dmacon,
		BPLCON0: a.bplcon0,
		Hires:   a.hires,
		BPU:     a.bpu,
		DDFStrt: a.ddfstrt,
		DDFStop: a.ddfstop,
		DIWVstrt: a.diwVstrt,
		DIWVstop: a.diwVstop,
		DIWHstrt: a.diwHstrt,
		DIWHstop: a.diwHstop,
		DIWVFlop: a.diwVFlop,
		DIWHFlop: a.diwHFlop,
		Copper: CopperSnapshot{
			PC: a.copper.pc, Cop1LC: a.copper.cop1lc, Cop2LC: a.copper.cop2lc,
			CDANG: a.copper.cdang, Skip: a.copper.skip,
		},
		Blitter: BlitterSnapshot{
			Running: a.blitter.running, BZero: a.blitter.bzero,
			Width: a.blitter.width, Height: a.blitter.height,
			X: a.blitter.x, Y: a.blitter.y,
		},
		CIAA: ciaSnapshot(a.ciaa),
		CIAB: ciaSnapshot(a.ciab),
	}
}

func ciaSnapshot(c *cia) CIASnapshot {
	return CIASnapshot{
		CounterA: c.counterA, CounterB: c.counterB,
		LatchA: c.latchA, LatchB: c.latchB,
		TODCounter: c.tod.counter, TODAlarm: c.tod.alarm,
		ICR: c.icr, IMR: c.imr,
		Sleeping: c.sleeping, IdleCycles: c.idleCycles,
	}
}
