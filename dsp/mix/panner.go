package mix

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/ugen"
)

// Panner maps a mono signal to stereo with the linear pan law:
//
//	left  = in * gain * (1 - location) / 2
//	right = in * gain * (1 + location) / 2
//
// Location runs from -1 (full left) to +1 (full right). There is no
// equal-power compensation, so the centre position is 6 dB down per side.
type Panner struct {
	ugen.Base

	location float64
}

// NewPanner creates a centred panner with gain 1.
func NewPanner() *Panner {
	return &Panner{Base: ugen.NewBase(1)}
}

// Location returns the pan position in [-1, 1].
func (p *Panner) Location() float64 { return p.location }

// SetLocation sets the pan position, clamped to [-1, 1].
func (p *Panner) SetLocation(location float64) error {
	if !core.IsFinite(location) {
		return fmt.Errorf("pan location must be finite: %f", location)
	}

	p.location = core.Clamp(location, -1, 1)

	return nil
}

// ProcessStereo places in at the current location.
func (p *Panner) ProcessStereo(in float64) ugen.Sample {
	v := in * p.Gain() * 0.5

	return ugen.Sample{
		Left:  v * (1 - p.location),
		Right: v * (1 + p.location),
	}
}

// Reset is a no-op; the panner has no signal state.
func (p *Panner) Reset() {}

// ControlChange handles pan.location and pan.gain.
func (p *Panner) ControlChange(id string, value any) {
	f, ok := ugen.Float(value)
	if !ok {
		return
	}

	switch id {
	case "pan.location":
		_ = p.SetLocation(f)
	case "pan.gain":
		p.SetGain(f)
	}
}
