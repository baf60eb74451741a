package envelope

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/ugen"
)

const (
	defaultAttack    = 0.1
	defaultDecay     = 0.25
	defaultSustain   = 0.5
	defaultRelease   = 0.25
	defaultAmplitude = 1.0

	maxStageSamples = math.MaxInt32
)

// State is the current envelope stage.
type State int

const (
	StateIdle State = iota
	StateAttack
	StateDecay
	StateSustain
	StateRelease
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttack:
		return "attack"
	case StateDecay:
		return "decay"
	case StateSustain:
		return "sustain"
	case StateRelease:
		return "release"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ADSR is a linear attack/decay/sustain/release envelope.
//
// Times are in seconds, Sustain is a level in [0, Amplitude]. Each ramp
// lasts round(time*sampleRate) samples, at least one, and lands exactly on
// its target. Parameter changes take effect at the next stage transition.
type ADSR struct {
	ugen.Base

	sampleRate float64

	attack    float64
	decay     float64
	sustain   float64
	release   float64
	amplitude float64

	state     State
	level     float64
	step      float64
	target    float64
	remaining int
}

// New creates an idle envelope with attack 0.1 s, decay 0.25 s, sustain
// 0.5, release 0.25 s and amplitude 1.
func New(sampleRate float64) (*ADSR, error) {
	if err := core.ValidateSampleRate("envelope", sampleRate); err != nil {
		return nil, err
	}

	return &ADSR{
		Base:       ugen.NewBase(1),
		sampleRate: sampleRate,
		attack:     defaultAttack,
		decay:      defaultDecay,
		sustain:    defaultSustain,
		release:    defaultRelease,
		amplitude:  defaultAmplitude,
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (e *ADSR) SampleRate() float64 { return e.sampleRate }

// Attack returns the attack time in seconds.
func (e *ADSR) Attack() float64 { return e.attack }

// Decay returns the decay time in seconds.
func (e *ADSR) Decay() float64 { return e.decay }

// Sustain returns the sustain level.
func (e *ADSR) Sustain() float64 { return e.sustain }

// Release returns the release time in seconds.
func (e *ADSR) Release() float64 { return e.release }

// Amplitude returns the peak level.
func (e *ADSR) Amplitude() float64 { return e.amplitude }

// State returns the current stage.
func (e *ADSR) State() State { return e.state }

// Level returns the current level.
func (e *ADSR) Level() float64 { return e.level }

// Active reports whether the envelope is not idle.
func (e *ADSR) Active() bool { return e.state != StateIdle }

// SetAttack sets the attack time in seconds. Zero jumps to the peak.
func (e *ADSR) SetAttack(seconds float64) error {
	if err := validateTime("attack", seconds); err != nil {
		return err
	}

	e.attack = seconds

	return nil
}

// SetDecay sets the decay time in seconds. Zero jumps to the sustain level.
func (e *ADSR) SetDecay(seconds float64) error {
	if err := validateTime("decay", seconds); err != nil {
		return err
	}

	e.decay = seconds

	return nil
}

// SetRelease sets the release time in seconds. Zero cuts to silence.
func (e *ADSR) SetRelease(seconds float64) error {
	if err := validateTime("release", seconds); err != nil {
		return err
	}

	e.release = seconds

	return nil
}

// SetSustain sets the sustain level, clamped to [0, Amplitude].
func (e *ADSR) SetSustain(level float64) error {
	if !core.IsFinite(level) {
		return fmt.Errorf("envelope sustain must be finite: %f", level)
	}

	e.sustain = core.Clamp(level, 0, e.amplitude)

	return nil
}

// SetAmplitude sets the peak level. The sustain level is re-clamped.
func (e *ADSR) SetAmplitude(amplitude float64) error {
	if !core.IsFinite(amplitude) || amplitude < 0 {
		return fmt.Errorf("envelope amplitude must be finite and >= 0: %f", amplitude)
	}

	e.amplitude = amplitude
	e.sustain = core.Clamp(e.sustain, 0, amplitude)
	e.level = core.Clamp(e.level, 0, amplitude)
	e.target = core.Clamp(e.target, 0, amplitude)

	if e.remaining > 0 {
		e.step = (e.target - e.level) / float64(e.remaining)
	}

	return nil
}

// SetADSR sets all four stage parameters. On error nothing is changed.
func (e *ADSR) SetADSR(attack, decay, sustain, release float64) error {
	for _, t := range []struct {
		name string
		v    float64
	}{{"attack", attack}, {"decay", decay}, {"release", release}} {
		if err := validateTime(t.name, t.v); err != nil {
			return err
		}
	}

	if !core.IsFinite(sustain) {
		return fmt.Errorf("envelope sustain must be finite: %f", sustain)
	}

	e.attack = attack
	e.decay = decay
	e.release = release
	e.sustain = core.Clamp(sustain, 0, e.amplitude)

	return nil
}

// KeyDown restarts the envelope from zero in the attack stage.
func (e *ADSR) KeyDown() {
	e.level = 0
	e.enter(StateAttack, e.amplitude, e.attack)
}

// KeyUp enters the release stage from any non-idle stage. The release
// always lasts the release time, whatever the current level.
func (e *ADSR) KeyUp() {
	if e.state == StateIdle {
		return
	}

	e.enter(StateRelease, 0, e.release)
}

// NoteOn triggers the envelope. The note and amplitude are ignored; the
// oscillator carries pitch and velocity.
func (e *ADSR) NoteOn(float64, float64) { e.KeyDown() }

// NoteOff releases the envelope.
func (e *ADSR) NoteOff(float64) { e.KeyUp() }

// Next advances one sample and returns level * gain.
func (e *ADSR) Next() float64 {
	return e.Process(1)
}

// Process advances one sample and returns level * in * gain.
func (e *ADSR) Process(in float64) float64 {
	e.tick()

	return e.level * in * e.Gain()
}

// ProcessInPlace multiplies buf by the envelope, one sample per element.
func (e *ADSR) ProcessInPlace(buf []float64) {
	g := e.Gain()
	for i := range buf {
		e.tick()
		buf[i] *= e.level * g
	}
}

// Reset returns to idle at level zero.
func (e *ADSR) Reset() {
	e.state = StateIdle
	e.level = 0
	e.step = 0
	e.target = 0
	e.remaining = 0
}

// ControlChange handles env.attack, env.decay, env.sustain, env.release,
// env.amplitude and env.gain.
func (e *ADSR) ControlChange(id string, value any) {
	f, ok := ugen.Float(value)
	if !ok {
		return
	}

	switch id {
	case "env.attack":
		_ = e.SetAttack(f)
	case "env.decay":
		_ = e.SetDecay(f)
	case "env.sustain":
		_ = e.SetSustain(f)
	case "env.release":
		_ = e.SetRelease(f)
	case "env.amplitude":
		_ = e.SetAmplitude(f)
	case "env.gain":
		e.SetGain(f)
	}
}

func (e *ADSR) tick() {
	switch e.state {
	case StateAttack, StateDecay, StateRelease:
	default:
		return
	}

	e.remaining--
	if e.remaining > 0 {
		e.level += e.step
		return
	}

	e.level = e.target
	e.step = 0

	switch e.state {
	case StateAttack:
		// The decay target is fixed here; a later SetSustain applies to the
		// next note.
		e.enter(StateDecay, e.sustain, e.decay)
	case StateDecay:
		e.state = StateSustain
	case StateRelease:
		e.state = StateIdle
	}
}

// enter starts a linear ramp from the current level to target.
func (e *ADSR) enter(state State, target, seconds float64) {
	n := e.stageSamples(seconds)

	e.state = state
	e.target = target
	e.remaining = n
	e.step = (target - e.level) / float64(n)
}

// stageSamples returns the ramp length in samples. A duration shorter than
// half a sample covers the whole distance at once.
func (e *ADSR) stageSamples(seconds float64) int {
	n := math.Round(seconds * e.sampleRate)
	if n < 1 {
		return 1
	}

	return int(math.Min(n, maxStageSamples))
}

func validateTime(name string, seconds float64) error {
	if !core.IsFinite(seconds) || seconds < 0 {
		return fmt.Errorf("envelope %s time must be finite and >= 0: %f", name, seconds)
	}

	return nil
}
