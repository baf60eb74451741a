package meter

import (
	"testing"

	"github.com/cwbudde/algo-synth/engine"
)

var _ engine.Observer = (*Peak)(nil)

func TestPeakReportsEveryWindow(t *testing.T) {
	var got []PeakLevels

	p := NewPeak(3, func(l PeakLevels) { got = append(got, l) })

	p.ObserveBlock([]float32{0.1, -0.2, -0.5, 0.25, 0.3, 0, 0.05, -0.75}, 48000)

	if len(got) != 1 {
		t.Fatalf("callbacks = %d, want 1", len(got))
	}

	if got[0].Left != 0.5 || got[0].Right != float64(float32(0.25)) {
		t.Fatalf("levels = %+v, want L=0.5 R=0.25", got[0])
	}

	if p.Levels() != got[0] {
		t.Fatalf("Levels() = %+v, want %+v", p.Levels(), got[0])
	}

	p.ObserveBlock([]float32{0, 0, 0, 0}, 48000)

	if len(got) != 2 || got[1].Right != 0.75 || got[1].Left != float64(float32(0.05)) {
		t.Fatalf("second window = %+v", got)
	}

	if got[1].Max() != 0.75 {
		t.Fatalf("Max() = %v, want 0.75", got[1].Max())
	}
}

func TestPeakDefaultsAndReset(t *testing.T) {
	p := NewPeak(0, nil)
	if p.Window() != DefaultPeakWindow {
		t.Fatalf("Window() = %d, want %d", p.Window(), DefaultPeakWindow)
	}

	p.ObserveBlock([]float32{1, 1}, 48000)
	p.Reset()

	buf := make([]float32, 2*DefaultPeakWindow)
	p.ObserveBlock(buf, 48000)

	if lv := p.Levels(); lv.Left != 0 || lv.Right != 0 {
		t.Fatalf("Levels() = %+v, want silence after Reset", lv)
	}
}

func TestPeakDoesNotAllocate(t *testing.T) {
	p := NewPeak(64, func(PeakLevels) {})
	buf := make([]float32, 2*256)

	allocs := testing.AllocsPerRun(100, func() {
		p.ObserveBlock(buf, 48000)
	})

	if allocs != 0 {
		t.Fatalf("ObserveBlock allocs = %v, want 0", allocs)
	}
}
