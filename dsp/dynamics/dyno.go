package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/ugen"
)

// chargeConstant is the number of time constants an exponential step needs
// to reach about 90% of its target.
const chargeConstant = 2.2

// DynoMetrics holds metering information for visualization and analysis.
type DynoMetrics struct {
	InputPeak     float64 // Maximum input level since last reset
	OutputPeak    float64 // Maximum output level since last reset
	GainReduction float64 // Minimum gain (maximum attenuation) since last reset
}

// GainReductionDB returns GainReduction in dB, 0 when no attenuation was applied.
func (m DynoMetrics) GainReductionDB() float64 {
	return core.LinearToDB(m.GainReduction)
}

// Dyno applies a slope-law gain driven by an envelope follower.
//
// Per sample:
//
//	control  = |in|, or the side input when external
//	envelope = envelope*(1-release) + attack*max(0, control-envelope)
//	slope    = envelope > threshold ? slopeAbove : slopeBelow
//	gain     = slope == 1 ? 1 : (envelope/threshold)^(slope-1)
//	out      = gain * in
//
// The follower can only be pushed up by the attack term; the release term
// alone pulls it down. A zero envelope with slope < 1 yields unity gain.
//
// This implementation is single-threaded and not thread-safe. Parameter
// changes should occur outside audio processing callbacks.
type Dyno struct {
	ugen.Base

	threshold  float64
	slopeAbove float64
	slopeBelow float64
	attack     float64 // seconds
	release    float64 // seconds
	external   bool

	sampleRate float64

	// Computed coefficients
	attackCoeff  float64
	releaseCoeff float64

	side     float64
	envelope float64

	metrics DynoMetrics
}

// NewDyno creates a Dyno in the limit preset.
func NewDyno(sampleRate float64) (*Dyno, error) {
	if err := core.ValidateSampleRate("dyno", sampleRate); err != nil {
		return nil, err
	}

	d := &Dyno{
		Base:       ugen.NewBase(1),
		sampleRate: sampleRate,
		metrics:    DynoMetrics{GainReduction: 1.0},
	}

	d.ApplyPreset(PresetLimit)

	return d, nil
}

// ApplyPreset loads a stock configuration. Unknown presets are ignored.
// The follower state is kept.
func (d *Dyno) ApplyPreset(p Preset) {
	if !p.valid() {
		return
	}

	pp := presets[p]
	d.slopeAbove = pp.slopeAbove
	d.slopeBelow = pp.slopeBelow
	d.threshold = pp.threshold
	d.attack = pp.attack
	d.release = pp.release
	d.external = pp.external
	d.updateTimeConstants()
}

// SetThreshold sets the level the envelope is compared against.
// It must be positive and finite.
func (d *Dyno) SetThreshold(threshold float64) error {
	if threshold <= 0 || !core.IsFinite(threshold) {
		return fmt.Errorf("dyno threshold must be positive and finite: %f", threshold)
	}

	d.threshold = threshold

	return nil
}

// SetThresholdDB sets the threshold in dB relative to full scale.
func (d *Dyno) SetThresholdDB(db float64) error {
	if !core.IsFinite(db) {
		return fmt.Errorf("dyno threshold must be finite: %f dB", db)
	}

	return d.SetThreshold(core.DBToLinear(db))
}

// SetSlopeAbove sets the gain-law exponent used above threshold.
// 1 is unity, below 1 compresses, above 1 expands.
func (d *Dyno) SetSlopeAbove(slope float64) error {
	if err := validateSlope(slope); err != nil {
		return err
	}

	d.slopeAbove = slope

	return nil
}

// SetSlopeBelow sets the gain-law exponent used at or below threshold.
func (d *Dyno) SetSlopeBelow(slope float64) error {
	if err := validateSlope(slope); err != nil {
		return err
	}

	d.slopeBelow = slope

	return nil
}

// SetRatio sets a compression ratio: slopeAbove = 1/ratio, slopeBelow = 1.
func (d *Dyno) SetRatio(ratio float64) error {
	if ratio <= 0 || !core.IsFinite(ratio) {
		return fmt.Errorf("dyno ratio must be positive and finite: %f", ratio)
	}

	d.slopeAbove = 1 / ratio
	d.slopeBelow = 1

	return nil
}

// SetAttack sets the attack time constant in seconds.
func (d *Dyno) SetAttack(seconds float64) error {
	if seconds <= 0 || !core.IsFinite(seconds) {
		return fmt.Errorf("dyno attack must be positive and finite: %f", seconds)
	}

	d.attack = seconds
	d.updateTimeConstants()

	return nil
}

// SetRelease sets the release time constant in seconds.
func (d *Dyno) SetRelease(seconds float64) error {
	if seconds <= 0 || !core.IsFinite(seconds) {
		return fmt.Errorf("dyno release must be positive and finite: %f", seconds)
	}

	d.release = seconds
	d.updateTimeConstants()

	return nil
}

// SetExternalSideInput selects the side input (true) or the program input
// (false) as the control signal.
func (d *Dyno) SetExternalSideInput(external bool) {
	d.external = external
}

// SetSideInput sets the control value used when the side input is external.
// The value is used as given; pass a magnitude.
func (d *Dyno) SetSideInput(v float64) error {
	if !core.IsFinite(v) {
		return fmt.Errorf("dyno side input must be finite: %f", v)
	}

	d.side = v

	return nil
}

// SetSampleRate updates sample rate and recalculates time constants.
func (d *Dyno) SetSampleRate(sampleRate float64) error {
	if err := core.ValidateSampleRate("dyno", sampleRate); err != nil {
		return err
	}

	d.sampleRate = sampleRate
	d.updateTimeConstants()

	return nil
}

// Threshold returns the threshold level.
func (d *Dyno) Threshold() float64 { return d.threshold }

// SlopeAbove returns the exponent used above threshold.
func (d *Dyno) SlopeAbove() float64 { return d.slopeAbove }

// SlopeBelow returns the exponent used at or below threshold.
func (d *Dyno) SlopeBelow() float64 { return d.slopeBelow }

// Ratio returns slopeBelow / slopeAbove.
func (d *Dyno) Ratio() float64 { return d.slopeBelow / d.slopeAbove }

// Attack returns the attack time in seconds, recovered from the coefficient.
func (d *Dyno) Attack() float64 { return timeFromCoeff(d.attackCoeff, d.sampleRate) }

// Release returns the release time in seconds, recovered from the
// coefficient.
func (d *Dyno) Release() float64 { return timeFromCoeff(d.releaseCoeff, d.sampleRate) }

// AttackCoeff returns the per-sample attack coefficient.
func (d *Dyno) AttackCoeff() float64 { return d.attackCoeff }

// ReleaseCoeff returns the per-sample release coefficient.
func (d *Dyno) ReleaseCoeff() float64 { return d.releaseCoeff }

// ExternalSideInput reports whether the side input drives the follower.
func (d *Dyno) ExternalSideInput() bool { return d.external }

// SideInput returns the last side input value.
func (d *Dyno) SideInput() float64 { return d.side }

// Envelope returns the follower state.
func (d *Dyno) Envelope() float64 { return d.envelope }

// SampleRate returns the current sample rate in Hz.
func (d *Dyno) SampleRate() float64 { return d.sampleRate }

// Process processes one sample.
func (d *Dyno) Process(in float64) float64 {
	inputLevel := math.Abs(in)

	control := inputLevel
	if d.external {
		control = d.side
	}

	delta := control - d.envelope
	if delta < 0 {
		delta = 0
	}

	d.envelope = core.FlushDenormals(d.envelope*(1-d.releaseCoeff) + d.attackCoeff*delta)

	gain := d.calculateGain(d.envelope)
	out := in * gain * d.Gain()

	d.updateMetrics(inputLevel, math.Abs(out), gain)

	return out
}

// ProcessSidechain sets the side input to key and processes in.
func (d *Dyno) ProcessSidechain(in, key float64) float64 {
	_ = d.SetSideInput(key)
	return d.Process(in)
}

// ProcessInPlace applies the processor to buf in place.
func (d *Dyno) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.Process(buf[i])
	}
}

// CalculateGain returns the static gain for an envelope level.
func (d *Dyno) CalculateGain(envelope float64) float64 {
	return d.calculateGain(math.Abs(envelope))
}

// Reset clears the follower, the side input and metrics.
func (d *Dyno) Reset() {
	d.envelope = 0
	d.side = 0
	d.ResetMetrics()
}

// GetMetrics returns current metering values.
func (d *Dyno) GetMetrics() DynoMetrics {
	return d.metrics
}

// ResetMetrics clears metering state.
func (d *Dyno) ResetMetrics() {
	d.metrics = DynoMetrics{GainReduction: 1.0}
}

// ControlChange handles dyn.threshold, dyn.thresholdDB, dyn.slopeAbove, dyn.slopeBelow,
// dyn.ratio, dyn.attack, dyn.release (seconds), dyn.sideInput,
// dyn.external, dyn.preset (name or Preset) and dyn.gain.
func (d *Dyno) ControlChange(id string, value any) {
	switch id {
	case "dyn.preset":
		switch v := value.(type) {
		case Preset:
			d.ApplyPreset(v)
		case string:
			if p, err := ParsePreset(v); err == nil {
				d.ApplyPreset(p)
			}
		}

		return
	case "dyn.external":
		if b, ok := ugen.Bool(value); ok {
			d.SetExternalSideInput(b)
		}

		return
	}

	f, ok := ugen.Float(value)
	if !ok {
		return
	}

	switch id {
	case "dyn.threshold":
		_ = d.SetThreshold(f)
	case "dyn.thresholdDB":
		_ = d.SetThresholdDB(f)
	case "dyn.slopeAbove":
		_ = d.SetSlopeAbove(f)
	case "dyn.slopeBelow":
		_ = d.SetSlopeBelow(f)
	case "dyn.ratio":
		_ = d.SetRatio(f)
	case "dyn.attack":
		_ = d.SetAttack(f)
	case "dyn.release":
		_ = d.SetRelease(f)
	case "dyn.sideInput":
		_ = d.SetSideInput(f)
	case "dyn.gain":
		d.SetGain(f)
	}
}

func (d *Dyno) calculateGain(envelope float64) float64 {
	slope := d.slopeBelow
	if envelope > d.threshold {
		slope = d.slopeAbove
	}

	if slope == 1 {
		return 1
	}

	if envelope <= 0 {
		if slope < 1 {
			return 1
		}

		return 0
	}

	return math.Pow(envelope/d.threshold, slope-1)
}

// updateTimeConstants recalculates attack and release coefficients.
func (d *Dyno) updateTimeConstants() {
	d.attackCoeff = coeffFromTime(d.attack, d.sampleRate)
	d.releaseCoeff = coeffFromTime(d.release, d.sampleRate)
}

// updateMetrics tracks peak levels and gain reduction.
func (d *Dyno) updateMetrics(inputLevel, outputLevel, gain float64) {
	if inputLevel > d.metrics.InputPeak {
		d.metrics.InputPeak = inputLevel
	}

	if outputLevel > d.metrics.OutputPeak {
		d.metrics.OutputPeak = outputLevel
	}

	if gain < d.metrics.GainReduction {
		d.metrics.GainReduction = gain
	}
}

// coeffFromTime returns 1 - exp(-2.2 / (seconds * sampleRate)).
func coeffFromTime(seconds, sampleRate float64) float64 {
	return 1 - math.Exp(-chargeConstant/(seconds*sampleRate))
}

// timeFromCoeff inverts coeffFromTime.
func timeFromCoeff(coeff, sampleRate float64) float64 {
	return -chargeConstant / (sampleRate * math.Log(1-coeff))
}

func validateSlope(slope float64) error {
	if slope < 0 || !core.IsFinite(slope) {
		return fmt.Errorf("dyno slope must be finite and >= 0: %f", slope)
	}

	return nil
}
