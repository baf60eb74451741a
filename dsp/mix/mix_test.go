package mix

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/ugen"
)

type constGen struct {
	ugen.Base
	v      float64
	notes  []float64
	resets int
	ids    []string
}

func newConst(v float64) *constGen { return &constGen{Base: ugen.NewBase(1), v: v} }

func (c *constGen) Next() float64 { return c.v }

func (c *constGen) Reset() { c.resets++ }

func (c *constGen) NoteOn(note, _ float64) { c.notes = append(c.notes, note) }

func (c *constGen) NoteOff(note float64) { c.notes = append(c.notes, -note) }

func (c *constGen) ControlChange(id string, _ any) { c.ids = append(c.ids, id) }

type keyedGain struct {
	ugen.Base
	side float64
}

func (k *keyedGain) Process(in float64) float64 { return in * k.side }

func (k *keyedGain) Reset() { k.side = 0 }

func (k *keyedGain) SetSideInput(v float64) error {
	k.side = v
	return nil
}

type scale struct {
	ugen.Base
	by float64
}

func (s *scale) Process(in float64) float64 { return in * s.by }

func (s *scale) Reset() {}

func TestMixerMix(t *testing.T) {
	m := NewMixer()
	m.SetGain(0.5)

	if got := m.Mix(0.25, 0.5, 0.25); got != 0.5 {
		t.Fatalf("Mix() = %v, want 0.5", got)
	}

	if got := m.Mix(); got != 0 {
		t.Fatalf("Mix() with no inputs = %v, want 0", got)
	}
}

func TestMixerNextPullsInputs(t *testing.T) {
	a, b := newConst(0.25), newConst(-0.75)
	m := NewMixer(a, b)

	if m.Inputs() != 2 {
		t.Fatalf("Inputs() = %d, want 2", m.Inputs())
	}

	if got := m.Next(); got != -0.5 {
		t.Fatalf("Next() = %v, want -0.5", got)
	}

	m.ControlChange("mix.gain", 0.5)
	if got := m.Next(); got != -0.25 {
		t.Fatalf("Next() after gain = %v, want -0.25", got)
	}

	m.Reset()
	if a.resets != 1 || b.resets != 1 {
		t.Fatal("Reset() should reach every input")
	}

	if len(a.ids) != 1 || a.ids[0] != "mix.gain" {
		t.Fatalf("inputs saw control ids %v", a.ids)
	}
}

func TestPannerLaw(t *testing.T) {
	tests := []struct {
		location    float64
		left, right float64
	}{
		{-1, 1, 0},
		{0, 0.5, 0.5},
		{1, 0, 1},
		{0.5, 0.25, 0.75},
		{-3, 1, 0},
	}

	for _, tt := range tests {
		p := NewPanner()
		if err := p.SetLocation(tt.location); err != nil {
			t.Fatal(err)
		}

		s := p.ProcessStereo(1)
		if s.Left != tt.left || s.Right != tt.right {
			t.Fatalf("location %v: got %+v, want L=%v R=%v", tt.location, s, tt.left, tt.right)
		}
	}
}

func TestPannerGainAndControl(t *testing.T) {
	p := NewPanner()
	p.ControlChange("pan.gain", 0.5)
	p.ControlChange("pan.location", 1)

	s := p.ProcessStereo(2)
	if s.Left != 0 || s.Right != 1 {
		t.Fatalf("got %+v, want L=0 R=1", s)
	}

	if err := p.SetLocation(math.NaN()); err == nil {
		t.Fatal("SetLocation(NaN) expected error")
	}
}

func TestChannelChain(t *testing.T) {
	src := newConst(1)
	c, err := NewChannel(src,
		WithInserts(&scale{Base: ugen.NewBase(1), by: 0.5}, &scale{Base: ugen.NewBase(1), by: 0.5}),
		WithLocation(-1),
	)
	if err != nil {
		t.Fatal(err)
	}

	s := c.NextStereo()
	if s.Left != 0.25 || s.Right != 0 {
		t.Fatalf("NextStereo() = %+v, want L=0.25 R=0", s)
	}

	c.SetGain(0.5)
	if s := c.NextStereo(); s.Left != 0.125 {
		t.Fatalf("NextStereo() after gain = %+v", s)
	}
}

func TestChannelKeyFeedsSidechainInsert(t *testing.T) {
	src := newConst(1)
	key := newConst(-0.5)
	ins := &keyedGain{Base: ugen.NewBase(1)}

	c, err := NewChannel(src, WithInserts(ins), WithKey(key))
	if err != nil {
		t.Fatal(err)
	}

	s := c.NextStereo()
	if ins.side != 0.5 {
		t.Fatalf("side input = %v, want |key| = 0.5", ins.side)
	}

	if s.Left != 0.25 || s.Right != 0.25 {
		t.Fatalf("NextStereo() = %+v, want 0.25 each side", s)
	}

	c.NoteOn(60, 1)
	if len(key.notes) != 0 {
		t.Fatal("key generator must not receive notes")
	}
}

func TestChannelForwardsNotesAndControl(t *testing.T) {
	src := newConst(1)

	c, err := NewChannel(src)
	if err != nil {
		t.Fatal(err)
	}

	c.NoteOn(60, 1)
	c.NoteOff(60)
	c.ControlChange("pan.location", 1)
	c.ControlChange("osc.freq", 440)

	if len(src.notes) != 2 || src.notes[0] != 60 || src.notes[1] != -60 {
		t.Fatalf("source notes = %v", src.notes)
	}

	if c.Panner().Location() != 1 {
		t.Fatalf("pan location = %v, want 1", c.Panner().Location())
	}

	if len(src.ids) != 2 {
		t.Fatalf("source saw ids %v", src.ids)
	}

	c.Reset()
	if src.resets != 1 {
		t.Fatal("Reset() should reach the source")
	}
}

func TestNewChannelErrors(t *testing.T) {
	if _, err := NewChannel(nil); err == nil {
		t.Fatal("nil source expected error")
	}

	_, err := NewChannel(newConst(1), WithKey(newConst(1)))
	if !errors.Is(err, ugen.ErrUnsupported) {
		t.Fatalf("key without sidechain insert: err = %v, want ErrUnsupported", err)
	}

	if _, err := NewChannel(newConst(1), WithLocation(math.Inf(1))); err == nil {
		t.Fatal("infinite location expected error")
	}

	if _, err := NewChannel(newConst(1), WithInserts(nil)); err == nil {
		t.Fatal("nil insert expected error")
	}
}
