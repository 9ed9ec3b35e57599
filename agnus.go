// agnus.go - DIW/DDF flipflops, HSYNC/VSYNC handlers, register poke/peek

/*
Agnus is the arena that owns the DMA event table, the register pipeline
and the display-window/data-fetch-window flipflops, and wires the
scheduler's BPL/DAS/COP/BLT/CIA slots to their handlers. It constructs the
copper, blitter and both CIAs and hands the copper and blitter the shared
ChipMemory and scheduler, which they use directly.
*/
package core

// hsync action bits, deferred from a register write to the next HSYNC
// boundary (spec §4.5 "DDF window recomputation" / "hsync_actions").
const (
	hsyncComputeDDFWindow uint8 = 1 << 0
	hsyncUpdateEventTable uint8 = 1 << 1
)

type agnus struct {
	clock *clockState
	sched *Scheduler
	table *dmaEventTable

	pipeline *RegisterPipeline
	mem      ChipMemory
	pixels   PixelSink

	copper  *copper
	blitter *blitter
	ciaa    *cia
	ciab    *cia
	irq     *paulaIRQ
	notices *noticeBoard
	bus     *busArbiter

	customRegs map[RegID]uint16

	dmacon  uint16
	bplcon0 uint16

	hires bool
	bpu   int

	ddfstrt, ddfstop int16
	dmaStrtLores, dmaStopLores int16
	dmaStrtHires, dmaStopHires int16

	diwVstrt, diwVstop int16
	diwHstrt, diwHstop int16
	diwVFlop, diwHFlop bool

	hsyncActions uint8

	cop1lc, cop2lc uint32

	lineBuffer [HPOSCount]uint16
}

func newAgnus(cfg Config, mem ChipMemory, pixels PixelSink, irq IRQSink, notices *noticeBoard) *agnus {
	if mem == nil {
		mem = noopChipMemory{}
	}
	if pixels == nil {
		pixels = noopPixelSink{}
	}
	if irq == nil {
		irq = noopIRQSink{}
	}

	region := cfg.Region
	clock := newClockState(region)
	sched := newScheduler(clock)
	table := newDMAEventTable()
	pipeline := newRegisterPipeline()
	paula := newPaulaIRQ(irq)

	bus := newBusArbiter(notices)

	a := &agnus{
		clock: clock, sched: sched, table: table,
		pipeline: pipeline, mem: mem, pixels: pixels,
		irq: paula, notices: notices, bus: bus,
		customRegs: map[RegID]uint16{},
		diwHFlop:   true,
	}

	a.blitter = newBlitter(mem, sched, paula, notices, bus, cfg.BlitterAccuracy)
	a.copper = newCopper(mem, pipeline, a.blitter, sched, clock, bus, notices)
	a.ciaa = newCIA(paula, IRQPorts, cfg.EmulateTODBug)
	a.ciab = newCIA(paula, IRQExter, cfg.EmulateTODBug)
	a.blitter.onDone = func() {
		// Wake a copper parked in WAIT_BLIT; run() re-checks b.running.
		if a.copper.state == copWaitBlit {
			a.copper.run(sched.Clock(), table, clock.beam)
		}
	}

	sched.onHSYNC = a.hsync
	sched.bindHandler(SlotCOP, func(id EventID, data int64) {
		a.copper.run(sched.Clock(), table, clock.beam)
	})
	sched.bindHandler(SlotBLT, func(id EventID, data int64) {
		if id == 1 {
			a.blitter.endBlit()
		} else {
			a.blitter.step()
			a.bus.claim(sched.Clock(), clock.beam.H, BusBlitter, a.blitter.lastValue)
		}
	})
	sched.bindHandler(SlotCIAA, func(id EventID, data int64) {
		a.ciaa.tick()
		sched.ScheduleInc(SlotCIAA, CIACyclesPerTick, 0)
	})
	sched.bindHandler(SlotCIAB, func(id EventID, data int64) {
		a.ciab.tick()
		sched.ScheduleInc(SlotCIAB, CIACyclesPerTick, 0)
	})
	sched.bindHandler(SlotBPL, func(id EventID, data int64) {
		a.serviceBPLSlot()
	})
	sched.bindHandler(SlotDAS, func(id EventID, data int64) {
		// Disk/audio/sprite DMA transfer itself is out of core scope; the
		// slot exists so bus ownership is correctly reserved for it.
	})

	sched.ScheduleRel(SlotCIAA, CIACyclesPerTick, 0)
	sched.ScheduleRel(SlotCIAB, CIACyclesPerTick, 0)
	sched.ScheduleRel(SlotCOP, 0, 0)

	return a
}

func (a *agnus) reset() {
	a.pipeline.Reset()
	a.dmacon = 0
	a.table.clear()
	a.ciaa.reset()
	a.ciab.reset()
	a.irq.reset()
	a.copper.reset()
	a.blitter.reset()
}

// serviceBPLSlot is invoked when the BPL slot fires; bitplane fetch/DMA
// data movement itself (the actual memory read feeding Denise) is the
// pixel-synthesis side's concern, out of core scope. It still resolves
// bus ownership for the slot it was invoked at - this one handler walks
// every table-owned slot in the line (bitplane and DAS alike), since the
// jump chain threads through both - before advancing the jump-table-driven
// rescheduling.
func (a *agnus) serviceBPLSlot() {
	h := a.clock.beam.H
	a.bus.claim(a.sched.Clock(), h, busOwnerForSlot(a.table.event[h]), 0)

	next := a.table.next[h]
	if next >= 0 && next != h {
		a.sched.ScheduleRel(SlotBPL, Cycle(int(next)-int(h))*MasterClocksPerDMACycle, 0)
	}
}

// PokeCustom applies a CPU or copper write to a $DFF0xx register, routing
// it through the appropriate delay pipeline per spec §4.7.
func (a *agnus) PokeCustom(addr uint32, value uint16, source WriteSource) {
	reg := RegID(addr)
	switch reg {
	case RegDMACON:
		a.pokeDMACON(value)
	case RegBPLCON0:
		a.pipeline.PostSlow(a.sched.Clock(), reg, value, source)
	case RegDDFSTRT, RegDDFSTOP, RegDIWSTRT, RegDIWSTOP:
		a.pipeline.PostSlowDelta(a.sched.Clock(), 2, reg, value, source)
	case RegCOP1LCH, RegCOP1LCL, RegCOP2LCH, RegCOP2LCL:
		a.applyCopperListWrite(reg, value)
	case RegCOPJMP1:
		a.copper.pc = a.cop1lc
		a.copper.state = copFetch
		a.sched.ScheduleRel(SlotCOP, 0, 0)
	case RegCOPJMP2:
		a.copper.pc = a.cop2lc
		a.copper.state = copFetch
		a.sched.ScheduleRel(SlotCOP, 0, 0)
	case RegINTENA:
		a.irq.pokeINTENA(value)
	case RegINTREQ:
		a.irq.pokeINTREQ(value)
	case RegBLTCON0, RegBLTCON1, RegBLTAFWM, RegBLTALWM,
		RegBLTAPTH, RegBLTAPTL, RegBLTBPTH, RegBLTBPTL,
		RegBLTCPTH, RegBLTCPTL, RegBLTDPTH, RegBLTDPTL,
		RegBLTAMOD, RegBLTBMOD, RegBLTCMOD, RegBLTDMOD,
		RegBLTSIZE, RegBLTADAT, RegBLTBDAT, RegBLTCDAT:
		if source == SourceCopper && !a.copper.cdang && addr < 0x80 {
			a.notices.post(Notice{Kind: NoticeIllegalCopperWrite, Message: "copper blitter-register write needs cdang"})
			return
		}
		a.blitter.pokeRegister(reg, value)
	default:
		a.pipeline.PostSlow(a.sched.Clock(), reg, value, source)
	}
}

func (a *agnus) applyCopperListWrite(reg RegID, value uint16) {
	switch reg {
	case RegCOP1LCH:
		a.cop1lc = setHigh(a.cop1lc, value)
		a.copper.cop1lc = a.cop1lc
	case RegCOP1LCL:
		a.cop1lc = setLow(a.cop1lc, value)
		a.copper.cop1lc = a.cop1lc
	case RegCOP2LCH:
		a.cop2lc = setHigh(a.cop2lc, value)
		a.copper.cop2lc = a.cop2lc
	case RegCOP2LCL:
		a.cop2lc = setLow(a.cop2lc, value)
		a.copper.cop2lc = a.cop2lc
	}
}

// applyRegisterWrite is the RegisterSetter the pipeline drains into; it
// performs the actual state mutation for registers that need derived
// recomputation (BPLCON0's into hires/bpu, DDF/DIW's into the flipflop
// windows; DMACON never reaches the pipeline, PokeCustom applies it at
// once). Anything else (color
// registers, BPLCON2, sprite/audio registers) has no core-side derived
// state, so the applied value is just latched for read-back.
func (a *agnus) applyRegisterWrite(reg RegID, value uint16, source WriteSource) {
	switch reg {
	case RegBPLCON0:
		a.setBPLCON0(value)
	case RegDDFSTRT:
		a.setDDFSTRT(value)
	case RegDDFSTOP:
		a.setDDFSTOP(value)
	case RegDIWSTRT:
		a.setDIWSTRT(value)
	case RegDIWSTOP:
		a.setDIWSTOP(value)
	default:
		a.customRegs[reg] = value
	}
}

// pokeDMACON applies the set/clear-selector bit 15 convention and re-lays
// the event table's fixed disk/audio/sprite/refresh slots. BPLEN/DMAEN
// changes reach the bitplane slots at the next rebuildBitplaneWindow;
// COPEN and BLTEN are stored but do not gate the copper or blitter.
func (a *agnus) pokeDMACON(value uint16) {
	a.dmacon = applySetClear(a.dmacon, value)
	a.table.rebuildDAS(a.dmacon)
}

// peekDMACONR reflects the live bbusy/bzero flags alongside the enable
// bits, per spec §6.
func (a *agnus) peekDMACONR() uint16 {
	v := a.dmacon & dmaconWriteMask
	if a.blitter.BBusy() {
		v |= DMACONBitBBUSY
	}
	if a.blitter.BZero() {
		v |= DMACONBitBZERO
	}
	return v
}

// setBPLCON0 decodes HIRES/BPU and schedules an event-table rebuild;
// spec §6's "validated: hires max 4, lores max 6; else active_bitplanes=0".
func (a *agnus) setBPLCON0(value uint16) {
	a.bplcon0 = value
	a.hires = value&0x8000 != 0
	bpu := int((value >> 12) & 0x7)
	if a.hires && bpu > 4 {
		bpu = 0
	}
	if !a.hires && bpu > 6 {
		bpu = 0
	}
	a.bpu = bpu
	a.hsyncActions |= hsyncUpdateEventTable
	a.rebuildBitplaneWindow()
}

func (a *agnus) setDDFSTRT(value uint16) {
	a.ddfstrt = int16(value & 0xFC)
	a.computeDDFStrt()
	a.hsyncActions |= hsyncComputeDDFWindow
	a.rebuildBitplaneWindow()
}

func (a *agnus) setDDFSTOP(value uint16) {
	a.ddfstop = int16(value & 0xFC)
	a.computeDDFStop()
	a.hsyncActions |= hsyncComputeDDFWindow
	a.rebuildBitplaneWindow()
}

// computeDDFStrt derives the lores/hires start positions; lores is offset
// by strt&0b100 as spec §4.2 step 1 describes.
func (a *agnus) computeDDFStrt() {
	a.dmaStrtHires = a.ddfstrt
	shift := a.ddfstrt & 0b100
	a.dmaStrtLores = a.ddfstrt + shift
}

// computeDDFStop clamps the fetch window to 0xD8, with the span above the
// start position rounded down to a multiple of the fetch-unit size
// (8 lores / 4 hires).
func (a *agnus) computeDDFStop() {
	stop := a.ddfstop
	if stop > 0xD8 {
		stop = 0xD8
	}
	loresSpan := stop - a.dmaStrtLores
	loresSpan -= loresSpan % 8
	if loresSpan < 0 {
		loresSpan = 0
	}
	a.dmaStopLores = a.dmaStrtLores + loresSpan

	hiresSpan := stop - a.dmaStrtHires
	hiresSpan -= hiresSpan % 4
	if hiresSpan < 0 {
		hiresSpan = 0
	}
	a.dmaStopHires = a.dmaStrtHires + hiresSpan
}

// rebuildBitplaneWindow recomputes the event table's bitplane slots from
// the current DDF window and BPLCON0 state; spec §4.2's allocation
// algorithm, steps 1-4.
func (a *agnus) rebuildBitplaneWindow() {
	if !a.inBplDmaArea() {
		a.table.allocateBitplaneSlots(a.hires, 0, 0, 0)
		return
	}
	if a.hires {
		a.table.allocateBitplaneSlots(true, a.bpu, a.dmaStrtHires, a.dmaStopHires)
	} else {
		a.table.allocateBitplaneSlots(false, a.bpu, a.dmaStrtLores, a.dmaStopLores)
	}
	first := a.table.firstBitplaneSlot(0, HPOSTableSize)
	if first >= 0 {
		a.sched.ScheduleAbs(SlotBPL, a.clock.beamToCycle(Beam{V: a.clock.beam.V, H: first}), 0)
	}
}

func (a *agnus) inBplDmaArea() bool {
	return a.dmacon&DMACONBitBPLEN != 0 && a.dmacon&DMACONBitDMAEN != 0 && a.bpu > 0 && a.diwVFlop
}

// setDIWSTRT decodes the vertical start and horizontal start, applying
// the "< 2 invalidated" rule from spec §6.
func (a *agnus) setDIWSTRT(value uint16) {
	a.diwVstrt = int16(value >> 8)
	h := int16(value & 0xFF)
	if h < 2 {
		h = -1
	}
	a.diwHstrt = h
}

// setDIWSTOP applies the V8/H8 implicit high-bit rules from spec §6.
func (a *agnus) setDIWSTOP(value uint16) {
	vstop := int16(value >> 8)
	if value&0x8000 == 0 {
		vstop |= 0x100
	}
	a.diwVstop = vstop

	hstop := int16(value&0xFF) | 0x100
	if hstop > 0x1C7 {
		hstop = -1
	}
	a.diwHstop = hstop
}

// hsync is bound as the scheduler's onHSYNC callback; spec §4.5's
// seven-step sequence.
func (a *agnus) hsync() {
	a.drainLine()
	a.pixels.EndOfLine(a.clock.beam.V, a.lineBuffer[:])

	a.clock.beam.V++
	if a.clock.beam.V >= a.clock.numLines {
		a.vsync()
	}

	a.updateDIWVFlop()

	a.bus.endOfLine()

	if a.hsyncActions != 0 {
		if a.hsyncActions&hsyncComputeDDFWindow != 0 {
			a.computeDDFStrt()
			a.computeDDFStop()
		}
		a.rebuildBitplaneWindow()
		a.hsyncActions = 0
	}

	a.pixels.BeginOfLine(a.clock.beam.V)

	a.ciab.tickTOD()

	a.sched.ScheduleAbs(SlotSYNC, a.sched.Clock()+Cycle(HPOSCount)*MasterClocksPerDMACycle, 0)
}

func (a *agnus) updateDIWVFlop() {
	v := a.clock.beam.V
	if !a.diwVFlop && v == a.diwVstrt {
		a.diwVFlop = true
		a.rebuildBitplaneWindow()
	} else if a.diwVFlop && v == a.diwVstop {
		a.diwVFlop = false
		a.rebuildBitplaneWindow()
	}
}

// drainLine applies every slow-pipeline write due by now and every pending
// pixel-exact register write for the line that's about to be flushed, in
// FIFO/trigger order. The beam has already wrapped to H=0 when HSYNC runs,
// so the pixel queue is drained up to the end of the whole line.
func (a *agnus) drainLine() {
	a.pipeline.DrainSlow(a.sched.Clock(), a.applyRegisterWrite)
	pixelNow := int64(4) * int64(HPOSCount)
	a.pipeline.DrainPixel(pixelNow, a.applyRegisterWrite)
}

// vsync is invoked from hsync once beam.V rolls past the frame's line
// count; spec §4.5's six-step sequence (host-clock sync excluded, out of
// core scope).
func (a *agnus) vsync() {
	a.clock.longFrame = !a.clock.longFrame
	if a.clock.longFrame {
		a.clock.numLines = a.clock.longFrameLines()
	} else {
		a.clock.numLines = a.clock.shortFrameLines()
	}
	a.clock.frameNum++
	a.clock.frameBase = a.sched.Clock()

	a.clock.beam.V = 0
	a.diwVFlop = false
	a.diwHFlop = true

	a.ciaa.tickTOD()

	a.irq.RaiseIRQ(IRQVertB)

	a.copper.pc = a.cop1lc
	a.copper.state = copFetch
	a.sched.ScheduleRel(SlotCOP, 0, 0)
}

// PeekCustom returns the live value of a readable $DFF0xx register,
// applying any read-side effects spec §6 calls out (DMACONR reflecting
// bbusy/bzero).
func (a *agnus) PeekCustom(addr uint32) uint16 {
	switch RegID(addr) {
	case RegDMACONR:
		return a.peekDMACONR()
	case RegVPOSR:
		return uint16(a.clock.beam.V >> 8)
	case RegVHPOSR:
		return uint16(a.clock.beam.V<<8) | uint16(a.clock.beam.H)
	case RegINTENA:
		return a.irq.peekINTENAR()
	case RegINTREQ:
		return a.irq.peekINTREQR()
	default:
		return a.customRegs[RegID(addr)]
	}
}

// CyclesInCurrentFrame reports the length, in master clocks, of the frame
// the scheduler's clock currently sits in.
func (a *agnus) CyclesInCurrentFrame() int64 { return a.clock.cyclesInCurrentFrame() }

// StartOfCurrentFrame reports the clock value at the start of this frame.
func (a *agnus) StartOfCurrentFrame() Cycle { return a.clock.startOfCurrentFrame() }

// BeamToCycle converts a beam position to an absolute clock value.
func (a *agnus) BeamToCycle(b Beam) Cycle { return a.clock.beamToCycle(b) }

// CycleToBeam converts a clock value to the beam position it corresponds
// to.
func (a *agnus) CycleToBeam(cy Cycle) Beam { return a.clock.cycleToBeam(cy) }

// LastLineBusOwner returns the bus ownership record for the most recently
// completed line, for a debugger's DMA visualizer.
func (a *agnus) LastLineBusOwner() [HPOSCount]BusOwner { return a.bus.last }
