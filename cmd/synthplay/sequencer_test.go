package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/engine"
)

// fakePlayer mimics the engine's release countdown.
type fakePlayer struct {
	tick  int
	log   []string
	stops map[float64]int
}

func (f *fakePlayer) NoteOnFor(note, amp float64, ticks int) error {
	f.log = append(f.log, fmt.Sprintf("%d on %g", f.tick, note))
	f.stops[note] = ticks

	return nil
}

func (f *fakePlayer) Housekeep() {
	f.tick++

	for _, n := range slices.Sorted(maps.Keys(f.stops)) {
		f.stops[n]--
		if f.stops[n] < 0 {
			f.log = append(f.log, fmt.Sprintf("%d off %g", f.tick, n))
			delete(f.stops, n)
		}
	}
}

func TestSequencerGates(t *testing.T) {
	steps := []Step{
		{Notes: []float64{60}, Amp: 1, Gate: 2},
		{Notes: []float64{64}, Amp: 1, Gate: 1},
		{},
	}

	seq := NewSequencer(steps, false)
	p := &fakePlayer{stops: map[float64]int{}}

	for !seq.Done() {
		if err := seq.Tick(p); err != nil {
			t.Fatal(err)
		}
	}

	if err := seq.Tick(p); err != nil {
		t.Fatal(err)
	}

	// The first Housekeep runs before step 0, so step k starts on tick k+1.
	want := []string{"1 on 60", "2 on 64", "3 off 60", "3 off 64"}
	if !slices.Equal(p.log, want) {
		t.Fatalf("log = %q, want %q", p.log, want)
	}
}

func TestSequencerLoops(t *testing.T) {
	seq := NewSequencer([]Step{{Notes: []float64{1}, Amp: 1, Gate: 1}, {}}, true)
	p := &fakePlayer{stops: map[float64]int{}}

	for i := 0; i < 5; i++ {
		if err := seq.Tick(p); err != nil {
			t.Fatal(err)
		}
	}

	if seq.Done() {
		t.Fatal("looping sequencer reported done")
	}

	if seq.Position() != 1 {
		t.Fatalf("Position() = %d, want 1", seq.Position())
	}

	ons := 0
	for _, l := range p.log {
		if strings.HasSuffix(l, "on 1") {
			ons++
		}
	}

	if ons != 3 {
		t.Fatalf("note starts = %d, want 3 (log %q)", ons, p.log)
	}
}

func TestSequencerEmpty(t *testing.T) {
	seq := NewSequencer(nil, true)
	p := &fakePlayer{stops: map[float64]int{}}

	if err := seq.Tick(p); err != nil {
		t.Fatal(err)
	}

	if p.tick != 1 || len(p.log) != 0 {
		t.Fatalf("tick = %d, log = %q", p.tick, p.log)
	}
}

func TestClockedSourceTicksOnStepBoundaries(t *testing.T) {
	p := DefaultPatch()
	p.SampleRate = 100
	p.BlockSize = 8

	g, err := Build(p)
	if err != nil {
		t.Fatal(err)
	}

	eng, err := engine.New(g.Channel, engine.WithConfig(core.ProcessorConfig{SampleRate: 100, BlockSize: 8}))
	if err != nil {
		t.Fatal(err)
	}

	seq := NewSequencer(p.Sequence, true)
	src := newClockedSource(eng, seq, 0.1, func(err error) { t.Error(err) })

	if src.stepFrames != 10 {
		t.Fatalf("stepFrames = %d, want 10", src.stepFrames)
	}

	buf := make([]float32, 2*25)

	if n := src.FillBuffer(buf, 25); n != 25 {
		t.Fatalf("FillBuffer() = %d, want 25", n)
	}

	// Ticks at frames 0, 10 and 20.
	if seq.Position() != 3 {
		t.Fatalf("Position() = %d, want 3", seq.Position())
	}

	// Finishes the third step without starting the fourth.
	if n := src.FillBuffer(buf, 5); n != 5 {
		t.Fatalf("FillBuffer() = %d, want 5", n)
	}

	if seq.Position() != 3 {
		t.Fatalf("Position() = %d, want 3", seq.Position())
	}

	src.FillBuffer(buf, 1)

	if seq.Position() != 4 {
		t.Fatalf("Position() = %d, want 4", seq.Position())
	}

	if eng.Frames() != 31 {
		t.Fatalf("Frames() = %d, want 31", eng.Frames())
	}
}

func TestClockedSourceEndsWithEngine(t *testing.T) {
	g, err := Build(DefaultPatch())
	if err != nil {
		t.Fatal(err)
	}

	eng, err := engine.New(g.Channel)
	if err != nil {
		t.Fatal(err)
	}

	src := newClockedSource(eng, NewSequencer(nil, false), 0.01, nil)
	eng.Stop()

	if n := src.FillBuffer(make([]float32, 64), 32); n != 0 {
		t.Fatalf("FillBuffer() after Stop = %d, want 0", n)
	}
}
