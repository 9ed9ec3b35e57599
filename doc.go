// doc.go - package overview for the Amiga timing and DMA core

/*
Package core implements the cycle-accurate timing and DMA core of an Amiga
chipset emulator: the event scheduler and DMA time-slot arbiter (Agnus), the
copper coprocessor, the blitter, the bitplane DMA allocation tables, and the
two CIA I/O timers.

The core is single-threaded and cooperative. A host drives it by calling
ExecuteUntil on a *System repeatedly; between calls the host may read an
Inspect() snapshot but must not otherwise touch core state. Pixel synthesis,
audio sample generation, floppy MFM encoding, CPU execution and chip-RAM
access are deliberately outside this package - callers wire them in through
the ChipMemory, IRQSink and PixelSink interfaces in interfaces.go.
*/
package core
