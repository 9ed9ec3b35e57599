// dma_table.go - per-line DMA event table, bus arbiter and bitplane
// fetch-unit allocation (spec §4.2)

/*
The event table precomputes, for every horizontal slot on a line, which
fixed-priority client owns it, so the scheduler's BPL/DAS handlers don't
have to re-derive ownership on every cycle. Disk/audio/sprite slot
positions are fixed by the hardware (grounded on the original refresh/
disk/audio/sprite slot table) and only gated on/off by DMACON; bitplane
slots are rebuilt whenever DDFSTRT/DDFSTOP/BPLCON0 change, from a pair of
lookup tables built once at init describing the fetch-unit pattern.
*/
package core

// SlotOwner names what (if anything) a DMA slot is pre-allocated to.
type SlotOwner uint8

const (
	EventNone SlotOwner = iota

	EventRefresh
	EventDisk0
	EventDisk1
	EventDisk2
	EventAudio0
	EventAudio1
	EventAudio2
	EventAudio3
	EventSprite0_1
	EventSprite0_2
	EventSprite1_1
	EventSprite1_2
	EventSprite2_1
	EventSprite2_2
	EventSprite3_1
	EventSprite3_2
	EventSprite4_1
	EventSprite4_2
	EventSprite5_1
	EventSprite5_2
	EventSprite6_1
	EventSprite6_2
	EventSprite7_1
	EventSprite7_2

	EventBplL1
	EventBplL2
	EventBplL3
	EventBplL4
	EventBplL5
	EventBplL6

	EventBplH1
	EventBplH2
	EventBplH3
	EventBplH4
)

// HPOSTableSize is one past the highest addressable horizontal slot; it
// covers the full 0x00..0xE2-ish line, generously sized like HPOSCount.
const HPOSTableSize = HPOSCount

// bitplaneDMA[hires][bpu][h] is the fetch-unit lookup table: which plane
// (if any) is due at absolute horizontal position h, for a given bitplane
// count and lores/hires mode. Built once at init, addressed globally (not
// relative to the DDF window), exactly as the fetch unit hardware repeats
// its pattern every 8 (lores) or 4 (hires) cycles regardless of where the
// data-fetch window happens to start.
var bitplaneDMA [2][7][HPOSTableSize]SlotOwner

func init() {
	initLoresBplEventTable()
	initHiresBplEventTable()
}

// initLoresBplEventTable mirrors the fetch unit's plane ordering within an
// 8-cycle block: plane 1 is fetched last in the block (offset 7), plane 2
// fifth-to-last (offset 3), and so on. The fallthrough means enabling more
// planes never moves where an already-enabled plane is fetched.
func initLoresBplEventTable() {
	for bpu := 0; bpu < 7; bpu++ {
		for i := 0; i+8 <= HPOSTableSize; i += 8 {
			p := bitplaneDMA[0][bpu][i : i+8]
			switch {
			case bpu >= 6:
				p[2] = EventBplL6
				fallthrough
			case bpu >= 5:
				p[6] = EventBplL5
				fallthrough
			case bpu >= 4:
				p[1] = EventBplL4
				fallthrough
			case bpu >= 3:
				p[5] = EventBplL3
				fallthrough
			case bpu >= 2:
				p[3] = EventBplL2
				fallthrough
			case bpu >= 1:
				p[7] = EventBplL1
			}
		}
	}
}

// initHiresBplEventTable is the 4-cycle hires analog: each fetch unit is
// split into two 4-cycle halves, each carrying the same set of up to four
// planes.
func initHiresBplEventTable() {
	for bpu := 0; bpu < 7; bpu++ {
		for i := 0; i+8 <= HPOSTableSize; i += 8 {
			p := bitplaneDMA[1][bpu][i : i+8]
			switch {
			case bpu >= 4:
				p[0], p[4] = EventBplH4, EventBplH4
				fallthrough
			case bpu >= 3:
				p[2], p[6] = EventBplH3, EventBplH3
				fallthrough
			case bpu >= 2:
				p[1], p[5] = EventBplH2, EventBplH2
				fallthrough
			case bpu >= 1:
				p[3], p[7] = EventBplH1, EventBplH1
			}
		}
	}
}

// dasSlot is one fixed disk/audio/sprite slot position, gated by a DMACON
// enable predicate. Positions are the hardware's fixed slot assignments;
// refresh always runs regardless of DMACON.
type dasSlot struct {
	h      int16
	id     SlotOwner
	gateBy func(dmacon uint16) bool
}

func gateAlways(uint16) bool    { return true }
func gateDSKEN(c uint16) bool   { return c&DMACONBitDSKEN != 0 }
func gateAUD(bit uint16) func(uint16) bool {
	return func(c uint16) bool { return c&bit != 0 }
}
func gateSPREN(c uint16) bool { return c&DMACONBitSPREN != 0 }

var dasSlots = []dasSlot{
	{0x01, EventRefresh, gateAlways},
	{0x07, EventDisk0, gateDSKEN},
	{0x09, EventDisk1, gateDSKEN},
	{0x0B, EventDisk2, gateDSKEN},
	{0x0D, EventAudio0, gateAUD(DMACONBitAUD0EN)},
	{0x0F, EventAudio1, gateAUD(DMACONBitAUD1EN)},
	{0x11, EventAudio2, gateAUD(DMACONBitAUD2EN)},
	{0x13, EventAudio3, gateAUD(DMACONBitAUD3EN)},
	{0x15, EventSprite0_1, gateSPREN}, {0x17, EventSprite0_2, gateSPREN},
	{0x19, EventSprite1_1, gateSPREN}, {0x1B, EventSprite1_2, gateSPREN},
	{0x1D, EventSprite2_1, gateSPREN}, {0x1F, EventSprite2_2, gateSPREN},
	{0x21, EventSprite3_1, gateSPREN}, {0x23, EventSprite3_2, gateSPREN},
	{0x25, EventSprite4_1, gateSPREN}, {0x27, EventSprite4_2, gateSPREN},
	{0x29, EventSprite5_1, gateSPREN}, {0x2B, EventSprite5_2, gateSPREN},
	{0x2D, EventSprite6_1, gateSPREN}, {0x2F, EventSprite6_2, gateSPREN},
	{0x31, EventSprite7_1, gateSPREN}, {0x33, EventSprite7_2, gateSPREN},
}

// dmaEventTable is the per-line slot ownership array plus its jump table,
// owned by Agnus and rebuilt on DMACON/DDF/BPLCON0 changes.
type dmaEventTable struct {
	event [HPOSTableSize]SlotOwner
	next  [HPOSTableSize]int16
}

func newDMAEventTable() *dmaEventTable {
	t := &dmaEventTable{}
	for i := range t.next {
		t.next[i] = -1
	}
	return t
}

// clear resets the whole table to EventNone / no-next.
func (t *dmaEventTable) clear() {
	for i := range t.event {
		t.event[i] = EventNone
	}
	for i := range t.next {
		t.next[i] = -1
	}
}

// rebuildDAS re-lays the fixed disk/audio/sprite/refresh slots according
// to the current DMACON enable bits, leaving bitplane slots untouched.
func (t *dmaEventTable) rebuildDAS(dmacon uint16) {
	for _, s := range dasSlots {
		if s.gateBy(dmacon) {
			t.event[s.h] = s.id
		} else if t.event[s.h] == s.id {
			t.event[s.h] = EventNone
		}
	}
}

// allocateBitplaneSlots copies the lookup table for the given plane count
// and resolution into [start,stop), clearing everything else; stop is
// exclusive, matching the hardware's own allocator.
func (t *dmaEventTable) allocateBitplaneSlots(hires bool, bpu int, start, stop int16) {
	for i := int16(0); i < HPOSTableSize; i++ {
		if i < start || i >= stop {
			if isBplEvent(t.event[i]) {
				t.event[i] = EventNone
			}
			continue
		}
		mode := 0
		if hires {
			mode = 1
		}
		t.event[i] = bitplaneDMA[mode][bpu][i]
	}
	t.rebuildJumpTable()
}

func isBplEvent(id SlotOwner) bool {
	return id >= EventBplL1 && id <= EventBplH4
}

// rebuildJumpTable reconstructs next[] by the reverse scan spec §4.2 step
// 3 describes: next[h] is the lowest h' > h with event[h'] != NONE, or -1
// if there is none.
func (t *dmaEventTable) rebuildJumpTable() {
	next := int16(-1)
	for h := HPOSTableSize - 1; h >= 0; h-- {
		t.next[h] = next
		if t.event[h] != EventNone {
			next = int16(h)
		}
	}
}

// firstBitplaneSlot returns the lowest h in [start,stop) carrying a
// bitplane event, or -1 if DMA is off or the window is empty.
func (t *dmaEventTable) firstBitplaneSlot(start, stop int16) int16 {
	for h := start; h < stop; h++ {
		if isBplEvent(t.event[h]) {
			return h
		}
	}
	return -1
}

// busIsFree reports whether cycle h has no fixed-priority client slotted,
// so the copper or blitter may use it; spec §4.3/§4.4's "busIsFree(h)".
func (t *dmaEventTable) busIsFree(h int16) bool {
	if h < 0 || h >= HPOSTableSize {
		return true
	}
	return t.event[h] == EventNone
}

// BusOwner names who actually used a DMA slot during the line in
// progress, the coarse category spec §3's bus_owner[] records - as
// opposed to SlotOwner, which names the precomputed table's finer-grained
// allocation (which bitplane, which sprite).
type BusOwner uint8

const (
	BusNone BusOwner = iota
	BusRefresh
	BusDisk
	BusAudio
	BusSprite
	BusBitplane
	BusCopper
	BusBlitter
)

// busOwnerForSlot maps a precomputed table entry to the coarse category
// bus_owner[] tracks.
func busOwnerForSlot(s SlotOwner) BusOwner {
	switch {
	case s == EventRefresh:
		return BusRefresh
	case s == EventDisk0 || s == EventDisk1 || s == EventDisk2:
		return BusDisk
	case s == EventAudio0 || s == EventAudio1 || s == EventAudio2 || s == EventAudio3:
		return BusAudio
	case s >= EventSprite0_1 && s <= EventSprite7_2:
		return BusSprite
	case isBplEvent(s):
		return BusBitplane
	default:
		return BusNone
	}
}

// busArbiter is the per-line record of who actually claimed each DMA
// slot (spec §3's bus_owner[]/bus_value[]) plus the previous line's
// record, kept around for the debugger's DMA visualizer (SPEC_FULL
// LastLineBusOwner). It is reset at every HSYNC.
type busArbiter struct {
	owner [HPOSCount]BusOwner
	value [HPOSCount]uint16
	last  [HPOSCount]BusOwner

	notices *noticeBoard
}

func newBusArbiter(notices *noticeBoard) *busArbiter {
	return &busArbiter{notices: notices}
}

// claim records that owner used slot h this line, transferring value.
// Spec §3's invariant is that at most one owner claims a given h per
// line; a second claim is a bug, asserted out and reported to the host
// rather than silently overwriting the first.
func (b *busArbiter) claim(now Cycle, h int16, owner BusOwner, value uint16) {
	if h < 0 || h >= HPOSCount || owner == BusNone {
		return
	}
	if b.owner[h] != BusNone {
		b.notices.post(Notice{Kind: NoticeDMADoubleAllocation, Message: "bus slot claimed twice in one line", At: now})
		assertf(false, "bus_owner[%d] double-allocated: had %v, wanted %v", h, b.owner[h], owner)
		return
	}
	b.owner[h] = owner
	b.value[h] = value
}

// endOfLine snapshots the completed line into last and clears owner/value
// for the line about to start; spec §4.5 HSYNC step 4.
func (b *busArbiter) endOfLine() {
	b.last = b.owner
	for i := range b.owner {
		b.owner[i] = BusNone
		b.value[i] = 0
	}
}
