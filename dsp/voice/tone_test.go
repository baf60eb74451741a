package voice

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/envelope"
	"github.com/cwbudde/algo-synth/dsp/osc"
)

func TestToneFollowsEnvelope(t *testing.T) {
	tone, err := NewTone(osc.ShapePulse, 8)
	if err != nil {
		t.Fatal(err)
	}

	if err := tone.Envelope().SetADSR(0.5, 0.25, 0.5, 0.25); err != nil {
		t.Fatal(err)
	}

	if tone.Next() != 0 || tone.Sounding() {
		t.Fatal("idle tone should be silent")
	}

	tone.NoteOn(57, 1)

	// Pulse at 220 Hz on sr 8 stays high for the first sample.
	if got := tone.Next(); got != 0.25 {
		t.Fatalf("first sample = %v, want 0.25", got)
	}

	tone.NoteOff(57)

	if tone.Envelope().State() != envelope.StateRelease {
		t.Fatalf("envelope state = %v, want release", tone.Envelope().State())
	}

	if tone.Oscillator().Frequency() == 0 {
		t.Fatal("oscillator must keep running through the release")
	}

	for range 4 {
		tone.Next()
	}

	if tone.Sounding() || tone.Next() != 0 {
		t.Fatal("tone should be silent after release")
	}
}

func TestToneFactoryAndControl(t *testing.T) {
	factory := ToneFactory(osc.ShapeSine, 44100, func(tn *Tone) error {
		return tn.Envelope().SetAttack(0)
	})

	v, err := New(factory, 2)
	if err != nil {
		t.Fatal(err)
	}

	v.ControlChange("env.sustain", 0.25)
	v.ControlChange("osc.width", 0.1)
	v.ControlChange("tone.gain", 0.5)

	tn := v.Node(1).(*Tone)
	if tn.Envelope().Attack() != 0 || tn.Envelope().Sustain() != 0.25 {
		t.Fatalf("attack=%v sustain=%v", tn.Envelope().Attack(), tn.Envelope().Sustain())
	}

	if tn.Oscillator().Width() != 0.1 || tn.Gain() != 0.5 {
		t.Fatalf("width=%v gain=%v", tn.Oscillator().Width(), tn.Gain())
	}

	v.NoteOn(69, 1)
	v.Next()

	if got := v.Next(); math.Abs(got) == 0 {
		t.Fatal("sounding voicer produced silence")
	}

	tn.Reset()
	if tn.Sounding() || tn.Oscillator().Frequency() != 0 {
		t.Fatal("Reset should silence the tone")
	}
}
