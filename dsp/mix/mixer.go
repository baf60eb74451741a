package mix

import "github.com/cwbudde/algo-synth/dsp/ugen"

// Mixer sums mono signals and scales the sum by its gain.
//
// Inputs given at construction are pulled by Next. Mix sums values the
// caller already has.
type Mixer struct {
	ugen.Base

	inputs []ugen.Generator
}

// NewMixer creates a mixer with gain 1 over the given inputs.
func NewMixer(inputs ...ugen.Generator) *Mixer {
	return &Mixer{
		Base:   ugen.NewBase(1),
		inputs: append([]ugen.Generator(nil), inputs...),
	}
}

// Inputs returns the number of owned inputs.
func (m *Mixer) Inputs() int { return len(m.inputs) }

// Mix returns the sum of in scaled by the gain.
func (m *Mixer) Mix(in ...float64) float64 {
	var sum float64
	for _, v := range in {
		sum += v
	}

	return sum * m.Gain()
}

// Next pulls one sample from every input and returns the scaled sum.
func (m *Mixer) Next() float64 {
	var sum float64
	for _, g := range m.inputs {
		sum += g.Next()
	}

	return sum * m.Gain()
}

// Reset resets every input.
func (m *Mixer) Reset() {
	for _, g := range m.inputs {
		g.Reset()
	}
}

// ControlChange handles mix.gain and forwards everything to the inputs.
func (m *Mixer) ControlChange(id string, value any) {
	if id == "mix.gain" {
		if f, ok := ugen.Float(value); ok {
			m.SetGain(f)
		}
	}

	for _, g := range m.inputs {
		if c, ok := g.(ugen.Controller); ok {
			c.ControlChange(id, value)
		}
	}
}
