package voice

import (
	"github.com/cwbudde/algo-synth/dsp/envelope"
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/dsp/ugen"
)

// Tone is an oscillator shaped by an ADSR envelope.
//
// NoteOn sets pitch and level on the oscillator and triggers the envelope.
// NoteOff only releases the envelope, so the oscillator keeps running
// through the release stage.
type Tone struct {
	ugen.Base

	osc *osc.Oscillator
	env *envelope.ADSR
}

// NewTone creates a tone with the given oscillator shape.
func NewTone(shape osc.Shape, sampleRate float64) (*Tone, error) {
	o, err := osc.New(shape, sampleRate)
	if err != nil {
		return nil, err
	}

	e, err := envelope.New(sampleRate)
	if err != nil {
		return nil, err
	}

	return &Tone{Base: ugen.NewBase(1), osc: o, env: e}, nil
}

// ToneFactory returns a Factory building tones. setup, if non-nil, runs on
// every new tone.
func ToneFactory(shape osc.Shape, sampleRate float64, setup func(*Tone) error) Factory {
	return func() (ugen.Node, error) {
		t, err := NewTone(shape, sampleRate)
		if err != nil {
			return nil, err
		}

		if setup != nil {
			if err := setup(t); err != nil {
				return nil, err
			}
		}

		return t, nil
	}
}

// Oscillator returns the tone's oscillator.
func (t *Tone) Oscillator() *osc.Oscillator { return t.osc }

// Envelope returns the tone's envelope.
func (t *Tone) Envelope() *envelope.ADSR { return t.env }

// Sounding reports whether the envelope is not idle.
func (t *Tone) Sounding() bool { return t.env.Active() }

// NoteOn starts note.
func (t *Tone) NoteOn(note, amplitude float64) {
	t.osc.NoteOn(note, amplitude)
	t.env.KeyDown()
}

// NoteOff releases the envelope.
func (t *Tone) NoteOff(float64) {
	t.env.KeyUp()
}

// Next returns the next sample; zero once the envelope is idle.
func (t *Tone) Next() float64 {
	if !t.env.Active() {
		return 0
	}

	return t.env.Process(t.osc.Next()) * t.Gain()
}

// Reset silences the oscillator and the envelope.
func (t *Tone) Reset() {
	t.osc.Reset()
	t.env.Reset()
}

// ControlChange handles tone.gain and forwards to the oscillator and the
// envelope.
func (t *Tone) ControlChange(id string, value any) {
	if id == "tone.gain" {
		if f, ok := ugen.Float(value); ok {
			t.SetGain(f)
		}

		return
	}

	t.osc.ControlChange(id, value)
	t.env.ControlChange(id, value)
}
