// clock.go - master clock, raster beam position and frame timing constants

package core

import "math"

// Cycle is a signed count of master (CPU) clocks. One DMA cycle is 8 master
// clocks; one chip-bus time slot is one DMA cycle.
type Cycle int64

// NeverCycle is the sentinel value for a slot that has nothing scheduled.
const NeverCycle Cycle = math.MaxInt64

// MasterClocksPerDMACycle is the fixed Amiga bus-slot width.
const MasterClocksPerDMACycle Cycle = 8

const (
	// HPOSCount is the number of horizontal DMA-cycle slots per scanline.
	HPOSCount = 228
	// HPOSMax is the last valid horizontal slot index (0xE3).
	HPOSMax = HPOSCount - 1

	// LinesPerFrameShort is the PAL short-frame line count.
	LinesPerFrameShort = 312
	// LinesPerFrameLong is the PAL long-frame line count (interlace).
	LinesPerFrameLong = 313

	// LinesPerFrameNTSCShort / Long mirror the NTSC timing variant.
	LinesPerFrameNTSCShort = 262
	LinesPerFrameNTSCLong  = 263
)

// Beam is a raster coordinate in (vertical line, horizontal DMA cycle) units.
type Beam struct {
	V int16
	H int16
}

// Region selects the line-count/timing variant the beam wraps against.
type Region int

const (
	RegionPAL Region = iota
	RegionNTSC
)

// clockState tracks the master cycle counter and derived beam position for
// a single frame. It knows nothing about DMA, copper or CIAs - Agnus owns
// those and calls back into it on HSYNC/VSYNC.
type clockState struct {
	region    Region
	clock     Cycle
	beam      Beam
	numLines  int16
	longFrame bool
	frameNum  int64
	frameBase Cycle // clock value at the start of beam==(0,0)
}

func newClockState(region Region) *clockState {
	c := &clockState{region: region}
	c.numLines = c.shortFrameLines()
	return c
}

func (c *clockState) shortFrameLines() int16 {
	if c.region == RegionNTSC {
		return LinesPerFrameNTSCShort
	}
	return LinesPerFrameShort
}

func (c *clockState) longFrameLines() int16 {
	if c.region == RegionNTSC {
		return LinesPerFrameNTSCLong
	}
	return LinesPerFrameLong
}

// cyclesPerLine is constant across the whole chipset: HPOSCount DMA cycles.
func (c *clockState) cyclesPerLine() Cycle {
	return Cycle(HPOSCount) * MasterClocksPerDMACycle
}

// cyclesInCurrentFrame returns the total length, in master clocks, of the
// frame in progress, accounting for the long/short interlace toggle.
func (c *clockState) cyclesInCurrentFrame() int64 {
	lines := c.numLines
	if c.longFrame {
		lines = c.longFrameLines()
	} else {
		lines = c.shortFrameLines()
	}
	return int64(lines) * int64(c.cyclesPerLine())
}

func (c *clockState) startOfCurrentFrame() Cycle {
	return c.frameBase
}

// beamToCycle converts a beam position into an absolute clock value relative
// to the start of the current frame.
func (c *clockState) beamToCycle(b Beam) Cycle {
	return c.frameBase + Cycle(b.V)*c.cyclesPerLine() + Cycle(b.H)*MasterClocksPerDMACycle
}

// cycleToBeam is the inverse of beamToCycle.
func (c *clockState) cycleToBeam(cy Cycle) Beam {
	rel := cy - c.frameBase
	perLine := c.cyclesPerLine()
	v := rel / perLine
	h := (rel % perLine) / MasterClocksPerDMACycle
	return Beam{V: int16(v), H: int16(h)}
}
