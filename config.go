// config.go - construction-time configuration for a System

package core

// BlitterAccuracy selects how precisely the blitter models bus timing.
// Level 2 is the default and the only level that preserves intermediate bus
// ownership for programs racing the blitter (spec §4.4).
type BlitterAccuracy int

const (
	// BlitterFast executes the whole operation instantly, charging no cycles.
	BlitterFast BlitterAccuracy = iota
	// BlitterFakeTimed produces the fast result at once and signals
	// completion one DMA cycle per word later; it does not claim the bus
	// for those cycles.
	BlitterFakeTimed
	// BlitterSlow executes the micro-program word by word.
	BlitterSlow
)

// Config is the plain value passed to NewSystem. The core never reads env
// vars, flags or files; configuration persistence is host/CLI surface and
// explicitly out of scope.
type Config struct {
	Region          Region
	BlitterAccuracy BlitterAccuracy
	// EmulateTODBug enables the hardware quirk where a TOD alarm compare can
	// be missed on the tick it would fire on; spec §4.6 and §8 scenario 6.
	EmulateTODBug bool
}

// DefaultConfig matches a stock PAL Amiga with the accurate (level 2)
// blitter and the TOD-bug emulation enabled.
func DefaultConfig() Config {
	return Config{
		Region:          RegionPAL,
		BlitterAccuracy: BlitterSlow,
		EmulateTODBug:   true,
	}
}
