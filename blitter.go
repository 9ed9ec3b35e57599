// blitter.go - area and line mode micro-program, fill/minterm (spec §4.4)

/*
The blitter moves and combines up to three source channels (A, B, C) into
a destination (D) through a 256-function minterm unit and an optional
fill pass, one word at a time. Area mode walks a W x H rectangle;
line mode drives Bresenham's algorithm through a 16-step micro-program.
Accuracy level controls how much of this the emulator actually simulates
cycle by cycle versus computing in one shot.
*/
package core

// bltcon1 LINE bit and descending-mode bits, spec §4.4.
const (
	bltcon1Line uint16 = 1 << 0
	bltcon1Desc uint16 = 1 << 1
	bltcon1EFE  uint16 = 1 << 4
	bltcon1IFE  uint16 = 1 << 3

	bltcon0UseA uint16 = 1 << 11
	bltcon0UseB uint16 = 1 << 10
	bltcon0UseC uint16 = 1 << 9
	bltcon0UseD uint16 = 1 << 8
)

// blitterChannel is one of A/B/C/D's pointer + modulo state.
type blitterChannel struct {
	ptr    uint32
	modulo int16
}

type blitter struct {
	bltcon0 uint16
	bltcon1 uint16

	afwm uint16
	alwm uint16

	a, b, c, d blitterChannel

	ash, bsh uint16 // barrel shifter amounts, from BLTCON0/1's high nibbles

	width  int // W, in words
	height int // H, in rows

	x, y int // current position within the rectangle

	aold, bold uint16
	fill       fillUnit

	bzero   bool
	running bool
	accuracy BlitterAccuracy

	lastValue uint16 // last word this blit produced, for bus_value[] bookkeeping

	mem     ChipMemory
	sched   *Scheduler
	irq     IRQSink
	notices *noticeBoard
	bus     *busArbiter

	onDone func()
}

func newBlitter(mem ChipMemory, sched *Scheduler, irq IRQSink, notices *noticeBoard, bus *busArbiter, accuracy BlitterAccuracy) *blitter {
	return &blitter{mem: mem, sched: sched, irq: irq, notices: notices, bus: bus, accuracy: accuracy}
}

func (b *blitter) reset() {
	*b = blitter{mem: b.mem, sched: b.sched, irq: b.irq, notices: b.notices, bus: b.bus, accuracy: b.accuracy}
}

// pokeRegister applies a CPU/copper write to one blitter register; writes
// that arrive while the blitter is running are dropped per spec §4.4.
func (b *blitter) pokeRegister(reg RegID, value uint16) {
	if b.running {
		b.notices.post(Notice{Kind: NoticeBlitterRegisterDropped, Message: "blitter register write dropped while running"})
		return
	}
	switch reg {
	case RegBLTCON0:
		b.bltcon0 = value
		b.ash = value >> 12
	case RegBLTCON1:
		b.bltcon1 = value
		b.bsh = value >> 12
	case RegBLTAFWM:
		b.afwm = value
	case RegBLTALWM:
		b.alwm = value
	case RegBLTAMOD:
		b.a.modulo = int16(value)
	case RegBLTBMOD:
		b.b.modulo = int16(value)
	case RegBLTCMOD:
		b.c.modulo = int16(value)
	case RegBLTDMOD:
		b.d.modulo = int16(value)
	case RegBLTAPTH:
		b.a.ptr = setHigh(b.a.ptr, value)
	case RegBLTAPTL:
		b.a.ptr = setLow(b.a.ptr, value)
	case RegBLTBPTH:
		b.b.ptr = setHigh(b.b.ptr, value)
	case RegBLTBPTL:
		b.b.ptr = setLow(b.b.ptr, value)
	case RegBLTCPTH:
		b.c.ptr = setHigh(b.c.ptr, value)
	case RegBLTCPTL:
		b.c.ptr = setLow(b.c.ptr, value)
	case RegBLTDPTH:
		b.d.ptr = setHigh(b.d.ptr, value)
	case RegBLTDPTL:
		b.d.ptr = setLow(b.d.ptr, value)
	case RegBLTSIZE:
		b.start(value)
	}
}

func setHigh(ptr uint32, hi uint16) uint32 {
	return (uint32(hi) << 16) | (ptr & 0xFFFF)
}

func setLow(ptr uint32, lo uint16) uint32 {
	return (ptr & 0xFFFF0000) | uint32(lo)
}

// start decodes BLTSIZE and launches the operation at the chosen accuracy
// level; spec §6's "W = value & 0x3F, H = value >> 6, both zero means max".
func (b *blitter) start(bltsize uint16) {
	w := int(bltsize & 0x3F)
	h := int(bltsize >> 6)
	if w == 0 {
		w = 64
	}
	if h == 0 {
		h = 1024
	}
	b.width = w
	b.height = h
	b.x = 0
	b.y = 0
	b.bzero = true
	b.running = true
	b.fill.reset()

	switch b.accuracy {
	case BlitterFast:
		if b.bltcon1&bltcon1Line != 0 {
			b.runLineFull()
		} else {
			b.runAreaFull()
		}
		b.scheduleEnd(1)
	case BlitterFakeTimed:
		if b.bltcon1&bltcon1Line != 0 {
			b.runLineFull()
		} else {
			b.runAreaFull()
		}
		b.scheduleEnd(Cycle(w*h) * MasterClocksPerDMACycle)
	case BlitterSlow:
		b.sched.ScheduleRel(SlotBLT, MasterClocksPerDMACycle, 0)
	}
}

// runAreaFull executes every word of an area-mode blit instantly, used by
// the fast and fake-timed accuracy levels.
func (b *blitter) runAreaFull() {
	for row := 0; row < b.height; row++ {
		for col := 0; col < b.width; col++ {
			b.x = col
			b.areaStep()
		}
		b.endOfRow()
	}
}

// step services one word of an area-mode blit, or one line-mode step, at
// the slow accuracy level; it is what the SlotBLT handler runs while
// b.running.
func (b *blitter) step() {
	if !b.running {
		return
	}
	if b.bltcon1&bltcon1Line != 0 {
		b.lineStep()
	} else {
		b.areaStep()
	}
	b.x++
	if b.x >= b.width {
		b.endOfRow()
		b.x = 0
		b.y++
		if b.y >= b.height {
			b.finish()
			return
		}
	}
	b.sched.ScheduleRel(SlotBLT, MasterClocksPerDMACycle, 0)
}

// areaStep runs one word through the A/B/C channels, the minterm unit and
// the fill unit, and writes D if enabled; spec §4.4 steps 1-6.
func (b *blitter) areaStep() {
	var aHold, bHold, cHold uint16

	if b.bltcon0&bltcon0UseA != 0 {
		word := b.mem.Read16(b.a.ptr)
		if b.x == 0 {
			word &= b.afwm
		}
		if b.x == b.width-1 {
			word &= b.alwm
		}
		aHold = barrelShift(word, b.aold, b.ash, b.bltcon1&bltcon1Desc != 0)
		b.aold = word
		b.a.ptr += 2
	}
	if b.bltcon0&bltcon0UseB != 0 {
		word := b.mem.Read16(b.b.ptr)
		bHold = barrelShift(word, b.bold, b.bsh, b.bltcon1&bltcon1Desc != 0)
		b.bold = word
		b.b.ptr += 2
	}
	if b.bltcon0&bltcon0UseC != 0 {
		cHold = b.mem.Read16(b.c.ptr)
		b.c.ptr += 2
	}

	lf := uint8(b.bltcon0 & 0xFF)
	dHold := applyMinterm(lf, aHold, bHold, cHold)

	if b.bltcon1&(bltcon1EFE|bltcon1IFE) != 0 {
		dHold = b.fillWord(dHold)
	}

	if dHold != 0 {
		b.bzero = false
	}
	b.lastValue = dHold
	if b.bltcon0&bltcon0UseD != 0 {
		b.mem.Write16(b.d.ptr, dHold)
		b.d.ptr += 2
	}
}

// fillWord runs the fill unit over one word, per spec §4.4 step 5.
func (b *blitter) fillWord(word uint16) uint16 {
	inclusive := b.bltcon1&bltcon1IFE != 0
	exclusive := b.bltcon1&bltcon1EFE != 0
	return b.fill.apply(word, inclusive, exclusive)
}

// barrelShift combines the new word with the previous one's trailing bits
// shifted in from the adjacent word, matching the hardware's ash/bsh
// nibble shifter; DESC mode shifts the other direction.
func barrelShift(word, prev uint16, shift uint16, desc bool) uint16 {
	s := shift & 0xF
	if s == 0 {
		return word
	}
	if desc {
		return (word << s) | (prev >> (16 - s))
	}
	return (word >> s) | (prev << (16 - s))
}

func (b *blitter) endOfRow() {
	if b.bltcon0&bltcon0UseA != 0 {
		b.a.ptr = addModulo(b.a.ptr, b.a.modulo)
	}
	if b.bltcon0&bltcon0UseB != 0 {
		b.b.ptr = addModulo(b.b.ptr, b.b.modulo)
	}
	if b.bltcon0&bltcon0UseC != 0 {
		b.c.ptr = addModulo(b.c.ptr, b.c.modulo)
	}
	if b.bltcon0&bltcon0UseD != 0 {
		b.d.ptr = addModulo(b.d.ptr, b.d.modulo)
	}
}

func addModulo(ptr uint32, modulo int16) uint32 {
	return uint32(int64(ptr) + int64(modulo))
}

// lineStep runs one step of the 16-step Bresenham micro-program; a pixel
// is drawn on every step unless SING is set, in which case only every
// other (odd) step draws.
func (b *blitter) lineStep() {
	// A holds the error accumulator, B the rotated texture pattern, C the
	// bitmap row being read, D the write-back.
	sign := b.bltcon1&(1<<6) != 0
	single := b.bltcon1&(1<<1) != 0 // SING: draw only on odd half-steps

	var cWord uint16
	if b.bltcon0&bltcon0UseC != 0 {
		cWord = b.mem.Read16(b.c.ptr)
	}

	texBit := b.bold & 1
	b.bold = rotateRight1(b.bold)

	draw := !single || b.x%2 == 1
	var dWord uint16
	if draw {
		dWord = cWord ^ (texBit << (b.a.ptr & 0xF))
	} else {
		dWord = cWord
	}
	if dWord != 0 {
		b.bzero = false
	}
	b.lastValue = dWord
	if b.bltcon0&bltcon0UseD != 0 {
		b.mem.Write16(b.d.ptr, dWord)
	}

	errSign := int16(b.a.ptr)
	if sign {
		errSign -= b.a.modulo
	} else {
		errSign += b.b.modulo
	}
	if errSign < 0 {
		errSign += b.a.modulo
		b.c.ptr = addModulo(b.c.ptr, b.c.modulo)
	} else {
		b.c.ptr = addModulo(b.c.ptr, b.d.modulo)
	}
	b.a.ptr = uint32(uint16(errSign))
}

// runLineFull executes the whole Bresenham run instantly for the fast and
// fake-timed accuracy levels.
func (b *blitter) runLineFull() {
	for i := 0; i < b.height; i++ {
		b.x = i
		b.lineStep()
	}
}

func rotateRight1(v uint16) uint16 {
	return (v >> 1) | (v << 15)
}

// finish schedules END_BLIT one DMA cycle after the last write, per spec
// §4.4's termination sequence.
func (b *blitter) finish() {
	b.scheduleEnd(1 * MasterClocksPerDMACycle)
}

func (b *blitter) scheduleEnd(delta Cycle) {
	b.sched.ScheduleRel(SlotBLT, delta, 1)
}

// endBlit is the SlotBLT handler invoked for the scheduled END_BLIT event
// (id == 1): it clears running, raises INT_BLIT and notifies anyone
// parked on blitter completion (e.g. the copper's WAIT_BLIT state).
func (b *blitter) endBlit() {
	b.running = false
	b.irq.RaiseIRQ(IRQBlit)
	if b.onDone != nil {
		b.onDone()
	}
}

// BZero reports the blitter's zero flag for DMACONR/BLTCON read-back.
func (b *blitter) BZero() bool { return b.bzero }

// BBusy reports whether a blit is in progress.
func (b *blitter) BBusy() bool { return b.running }
