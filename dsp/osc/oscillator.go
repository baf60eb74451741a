package osc

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/ugen"
)

const defaultWidth = 0.5

// Sync selects how the phase advances.
type Sync int

const (
	// SyncFreq advances by frequency / sample rate.
	SyncFreq Sync = iota
	// SyncPhase does not advance; the phase is set externally.
	SyncPhase
	// SyncFM advances by (frequency + modulation) / sample rate.
	SyncFM
)

func (s Sync) String() string {
	switch s {
	case SyncFreq:
		return "freq"
	case SyncPhase:
		return "phase"
	case SyncFM:
		return "fm"
	default:
		return fmt.Sprintf("Sync(%d)", int(s))
	}
}

// ParseSync maps "freq", "phase" or "fm" to a Sync.
func ParseSync(name string) (Sync, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "freq", "frequency":
		return SyncFreq, nil
	case "phase":
		return SyncPhase, nil
	case "fm":
		return SyncFM, nil
	default:
		return 0, fmt.Errorf("unknown oscillator sync: %q", name)
	}
}

// Oscillator is a phase-accumulating periodic generator.
//
// It implements ugen.Generator, ugen.Player and ugen.Controller.
//
// This implementation is single-threaded. Parameter setters may be called
// from a control goroutine; a change landing mid-buffer is picked up on the
// next sample.
type Oscillator struct {
	ugen.Base

	shape      Shape
	sync       Sync
	sampleRate float64

	freq      float64 // 0 means not playing
	phase     float64 // [0, 1)
	phaseIncr float64
	mod       float64
	width     float64
}

// New creates an oscillator of the given shape with gain 1, width 0.5,
// frequency 0 (silent) and SyncFreq.
func New(shape Shape, sampleRate float64) (*Oscillator, error) {
	if err := core.ValidateSampleRate("oscillator", sampleRate); err != nil {
		return nil, err
	}

	if !shape.valid() {
		return nil, fmt.Errorf("oscillator shape is invalid: %d", int(shape))
	}

	return &Oscillator{
		Base:       ugen.NewBase(1),
		shape:      shape,
		sampleRate: sampleRate,
		width:      defaultWidth,
	}, nil
}

// NewSine creates a sine oscillator.
func NewSine(sampleRate float64) (*Oscillator, error) { return New(ShapeSine, sampleRate) }

// NewPhasor creates a ramp oscillator.
func NewPhasor(sampleRate float64) (*Oscillator, error) { return New(ShapePhasor, sampleRate) }

// NewTriangle creates a symmetric triangle oscillator.
func NewTriangle(sampleRate float64) (*Oscillator, error) { return New(ShapeTriangle, sampleRate) }

// NewPulse creates a pulse oscillator with 50% duty cycle.
func NewPulse(sampleRate float64) (*Oscillator, error) { return New(ShapePulse, sampleRate) }

// NewSaw creates a rising sawtooth: a triangle with width 1.
func NewSaw(sampleRate float64) (*Oscillator, error) {
	o, err := New(ShapeTriangle, sampleRate)
	if err != nil {
		return nil, err
	}

	o.width = 1

	return o, nil
}

// NewSquare creates a square wave: a pulse with width 0.5.
func NewSquare(sampleRate float64) (*Oscillator, error) { return New(ShapePulse, sampleRate) }

// Shape returns the waveform shape.
func (o *Oscillator) Shape() Shape { return o.shape }

// Sync returns the sync mode.
func (o *Oscillator) Sync() Sync { return o.sync }

// SampleRate returns the sample rate in Hz.
func (o *Oscillator) SampleRate() float64 { return o.sampleRate }

// Frequency returns the frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.freq }

// Phase returns the current phase in [0, 1).
func (o *Oscillator) Phase() float64 { return o.phase }

// PhaseIncrement returns the per-sample phase increment last used.
func (o *Oscillator) PhaseIncrement() float64 { return o.phaseIncr }

// Mod returns the modulation input in Hz.
func (o *Oscillator) Mod() float64 { return o.mod }

// Width returns the triangle/pulse width in [0, 1].
func (o *Oscillator) Width() float64 { return o.width }

// SetFrequency sets the frequency in Hz. Zero or negative is silent.
func (o *Oscillator) SetFrequency(hz float64) error {
	if !core.IsFinite(hz) {
		return fmt.Errorf("oscillator frequency must be finite: %f", hz)
	}

	o.freq = hz
	o.phaseIncr = hz / o.sampleRate

	return nil
}

// SetPhase sets the phase, wrapped into [0, 1).
func (o *Oscillator) SetPhase(phase float64) error {
	if !core.IsFinite(phase) {
		return fmt.Errorf("oscillator phase must be finite: %f", phase)
	}

	o.phase = core.Wrap(phase)

	return nil
}

// SetMod sets the modulation input in Hz used by SyncFM.
func (o *Oscillator) SetMod(hz float64) error {
	if !core.IsFinite(hz) {
		return fmt.Errorf("oscillator modulation must be finite: %f", hz)
	}

	o.mod = hz

	return nil
}

// SetWidth sets the triangle/pulse width, clamped to [0, 1].
func (o *Oscillator) SetWidth(width float64) error {
	if !core.IsFinite(width) {
		return fmt.Errorf("oscillator width must be finite: %f", width)
	}

	o.width = core.Clamp(width, 0, 1)

	return nil
}

// SetSync sets the sync mode.
func (o *Oscillator) SetSync(s Sync) error {
	if s != SyncFreq && s != SyncPhase && s != SyncFM {
		return fmt.Errorf("oscillator sync is invalid: %d", int(s))
	}

	o.sync = s

	return nil
}

// NoteOn starts note at the equal-tempered frequency with gain amplitude
// and restarts the phase. A note whose frequency is not finite is silent.
func (o *Oscillator) NoteOn(note, amplitude float64) {
	if err := o.SetFrequency(core.NoteToFreq(note)); err != nil {
		o.freq = 0
		o.phaseIncr = 0
	}

	o.SetGain(amplitude)
	o.phase = 0
}

// NoteOff silences the oscillator immediately.
func (o *Oscillator) NoteOff(float64) {
	// TODO: defer the cut to the next zero crossing to avoid the click.
	o.freq = 0
	o.phaseIncr = 0
	o.SetGain(0)
}

// Next returns the next sample.
func (o *Oscillator) Next() float64 {
	if o.freq <= 0 {
		return 0
	}

	advance := true

	switch o.sync {
	case SyncFreq:
		o.phaseIncr = o.freq / o.sampleRate
	case SyncPhase:
		advance = false
	case SyncFM:
		o.phaseIncr = (o.freq + o.mod) / o.sampleRate
	}

	out := o.shape.eval(o.phase, o.width)

	if advance {
		o.phase = core.Wrap(o.phase + o.phaseIncr)
	}

	return out * o.Gain()
}

// Reset silences the oscillator and rewinds its phase.
func (o *Oscillator) Reset() {
	o.freq = 0
	o.phaseIncr = 0
	o.phase = 0
	o.mod = 0
}

// ControlChange handles osc.freq, osc.phase, osc.mod, osc.width, osc.sync
// and osc.gain. osc.sync accepts a Sync, its number or its name.
func (o *Oscillator) ControlChange(id string, value any) {
	if id == "osc.sync" {
		switch v := value.(type) {
		case Sync:
			_ = o.SetSync(v)
		case string:
			if s, err := ParseSync(v); err == nil {
				o.sync = s
			}
		default:
			if f, ok := ugen.Float(value); ok && f == math.Trunc(f) {
				_ = o.SetSync(Sync(int(f)))
			}
		}

		return
	}

	f, ok := ugen.Float(value)
	if !ok {
		return
	}

	switch id {
	case "osc.freq":
		_ = o.SetFrequency(f)
	case "osc.phase":
		_ = o.SetPhase(f)
	case "osc.mod":
		_ = o.SetMod(f)
	case "osc.width":
		_ = o.SetWidth(f)
	case "osc.gain":
		o.SetGain(f)
	}
}
