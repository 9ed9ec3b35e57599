package core

import "testing"

func TestDrainSlowAppliesAfterTwoDMACycles(t *testing.T) {
	p := newRegisterPipeline()
	var got []uint16
	apply := func(reg RegID, value uint16, source WriteSource) { got = append(got, value) }

	p.PostSlow(0, RegBPLCON0, 0x1200, SourceCPU)

	p.DrainSlow(8, apply)
	if len(got) != 0 {
		t.Fatalf("drained early: %v", got)
	}
	p.DrainSlow(16, apply)
	if len(got) != 1 || got[0] != 0x1200 {
		t.Fatalf("got %v, want [0x1200] once the 2-DMA-cycle delay has elapsed", got)
	}
}

func TestDrainPreservesFIFOOrderOnTies(t *testing.T) {
	p := newRegisterPipeline()
	var got []uint16
	apply := func(reg RegID, value uint16, source WriteSource) { got = append(got, value) }

	p.PostSlowDelta(0, 2, RegDMACON, 1, SourceCPU)
	p.PostSlowDelta(0, 2, RegDMACON, 2, SourceCPU)
	p.PostSlowDelta(0, 2, RegDMACON, 3, SourceCPU)

	p.DrainSlow(16, apply)
	want := []uint16{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v (FIFO order on same-trigger ties)", got, want)
		}
	}
}

func TestPixelExactTriggerIsFourHPlusDelta(t *testing.T) {
	p := newRegisterPipeline()
	var applied bool
	apply := func(reg RegID, value uint16, source WriteSource) { applied = true }

	p.PostPixelExact(10, 3, RegBPLCON2, 0x05, SourceCPU)

	p.DrainPixel(4*10+2, apply)
	if applied {
		t.Fatal("drained one pixel early")
	}
	p.DrainPixel(4*10+3, apply)
	if !applied {
		t.Fatal("did not drain at the exact pixel trigger")
	}
}

func TestResetClearsBothQueues(t *testing.T) {
	p := newRegisterPipeline()
	p.PostSlow(0, RegDMACON, 1, SourceCPU)
	p.PostPixelExact(0, 0, RegBPLCON2, 1, SourceCPU)
	p.Reset()

	applied := false
	apply := func(reg RegID, value uint16, source WriteSource) { applied = true }
	p.DrainSlow(NeverCycle, apply)
	p.DrainPixel(1<<30, apply)
	if applied {
		t.Fatal("Reset left pending writes in the queues")
	}
}
