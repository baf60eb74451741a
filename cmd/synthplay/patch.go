package main

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-synth/dsp/dynamics"
	"github.com/cwbudde/algo-synth/dsp/mix"
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/dsp/ugen"
	"github.com/cwbudde/algo-synth/dsp/voice"
)

// Patch is the YAML description of a synth and the pattern it plays.
type Patch struct {
	SampleRate float64 `yaml:"sample_rate"`
	BlockSize  int     `yaml:"block_size"`
	Voices     int     `yaml:"voices"`
	Shape      string  `yaml:"shape"`
	Width      float64 `yaml:"width"`
	Gain       float64 `yaml:"gain"`
	Pan        float64 `yaml:"pan"`

	Envelope EnvelopePatch `yaml:"envelope"`
	Dynamics DynamicsPatch `yaml:"dynamics"`
	Key      *KeyPatch     `yaml:"key,omitempty"`

	Tempo        float64 `yaml:"tempo"`
	StepsPerBeat int     `yaml:"steps_per_beat"`
	Loop         bool    `yaml:"loop"`
	Sequence     []Step  `yaml:"sequence"`
}

// EnvelopePatch holds ADSR times in seconds and the sustain level.
type EnvelopePatch struct {
	Attack  float64 `yaml:"attack"`
	Decay   float64 `yaml:"decay"`
	Sustain float64 `yaml:"sustain"`
	Release float64 `yaml:"release"`
}

// DynamicsPatch selects a preset and optionally overrides parts of it.
type DynamicsPatch struct {
	Preset    string  `yaml:"preset"`
	Threshold   float64 `yaml:"threshold,omitempty"`
	ThresholdDB float64 `yaml:"threshold_db,omitempty"` // wins over threshold when set
	Ratio       float64 `yaml:"ratio,omitempty"`
}

// KeyPatch describes a free-running oscillator keying the dynamics stage.
type KeyPatch struct {
	Shape     string  `yaml:"shape"`
	Frequency float64 `yaml:"frequency"`
}

// Step is one sequencer step. A step without notes is a rest.
type Step struct {
	Notes []float64 `yaml:"notes"`
	Amp   float64   `yaml:"amp"`
	Gate  int       `yaml:"gate"`
}

func (s Step) equal(o Step) bool {
	return s.Amp == o.Amp && s.Gate == o.Gate && slices.Equal(s.Notes, o.Notes)
}

// DefaultPatch returns the patch used when no file is given.
func DefaultPatch() Patch {
	return Patch{
		SampleRate: 44100,
		BlockSize:  256,
		Voices:     8,
		Shape:      "triangle",
		Width:      0.5,
		Gain:       0.8,
		Pan:        0,
		Envelope: EnvelopePatch{
			Attack:  0.01,
			Decay:   0.15,
			Sustain: 0.6,
			Release: 0.3,
		},
		Dynamics:     DynamicsPatch{Preset: "limit"},
		Tempo:        120,
		StepsPerBeat: 4,
		Loop:         true,
		Sequence: []Step{
			{Notes: []float64{57, 64}, Amp: 0.8, Gate: 2},
			{Notes: []float64{60}, Amp: 0.6, Gate: 1},
			{Notes: []float64{64}, Amp: 0.6, Gate: 1},
			{},
			{Notes: []float64{55, 62}, Amp: 0.8, Gate: 2},
			{Notes: []float64{59}, Amp: 0.6, Gate: 1},
			{Notes: []float64{62}, Amp: 0.6, Gate: 1},
			{},
		},
	}
}

// LoadPatch reads a patch file. Fields missing from the file keep their
// DefaultPatch values.
func LoadPatch(path string) (Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Patch{}, err
	}

	return ParsePatch(data)
}

// ParsePatch decodes and validates YAML patch data.
func ParsePatch(data []byte) (Patch, error) {
	p := DefaultPatch()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Patch{}, fmt.Errorf("patch: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Patch{}, err
	}

	return p, nil
}

// Validate checks ranges that the graph constructors do not.
func (p *Patch) Validate() error {
	var errs []error

	if p.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate must be positive: %g", p.SampleRate))
	}

	if p.BlockSize < 1 {
		errs = append(errs, fmt.Errorf("block_size must be >= 1: %d", p.BlockSize))
	}

	if p.Voices < 1 {
		errs = append(errs, fmt.Errorf("voices must be >= 1: %d", p.Voices))
	}

	if _, err := osc.ParseShape(p.Shape); err != nil {
		errs = append(errs, err)
	}

	if _, err := dynamics.ParsePreset(p.Dynamics.Preset); err != nil {
		errs = append(errs, err)
	}

	if p.Pan < -1 || p.Pan > 1 {
		errs = append(errs, fmt.Errorf("pan must be in [-1, 1]: %g", p.Pan))
	}

	if p.Tempo <= 0 || p.StepsPerBeat < 1 {
		errs = append(errs, fmt.Errorf("tempo %g with %d steps per beat is not playable", p.Tempo, p.StepsPerBeat))
	}

	if p.Key != nil {
		if _, err := osc.ParseShape(p.Key.Shape); err != nil {
			errs = append(errs, fmt.Errorf("key: %w", err))
		}
	}

	for i, s := range p.Sequence {
		if len(s.Notes) > 0 && s.Gate < 1 {
			errs = append(errs, fmt.Errorf("sequence step %d: gate must be >= 1", i))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("patch: %w", err)
	}

	return nil
}

// StepSeconds returns the duration of one sequencer step.
func (p *Patch) StepSeconds() float64 {
	return 60 / (p.Tempo * float64(p.StepsPerBeat))
}

// Graph is the node graph a patch builds.
type Graph struct {
	Voicer  *voice.Voicer
	Dyno    *dynamics.Dyno
	Channel *mix.Channel
}

// Build constructs voices, the dynamics insert and the output channel.
func Build(p Patch) (*Graph, error) {
	shape, err := osc.ParseShape(p.Shape)
	if err != nil {
		return nil, err
	}

	factory := voice.ToneFactory(shape, p.SampleRate, func(t *voice.Tone) error {
		if err := t.Oscillator().SetWidth(p.Width); err != nil {
			return err
		}

		e := p.Envelope

		return t.Envelope().SetADSR(e.Attack, e.Decay, e.Sustain, e.Release)
	})

	v, err := voice.New(factory, p.Voices)
	if err != nil {
		return nil, err
	}

	d, err := dynamics.NewDyno(p.SampleRate)
	if err != nil {
		return nil, err
	}

	if err := applyDynamics(d, p.Dynamics); err != nil {
		return nil, err
	}

	opts := []mix.ChannelOption{
		mix.WithInserts(d),
		mix.WithLocation(p.Pan),
	}

	if p.Key != nil {
		key, err := buildKey(*p.Key, p.SampleRate)
		if err != nil {
			return nil, err
		}

		d.SetExternalSideInput(true)
		opts = append(opts, mix.WithKey(key))
	}

	ch, err := mix.NewChannel(v, opts...)
	if err != nil {
		return nil, err
	}

	return &Graph{Voicer: v, Dyno: d, Channel: ch}, nil
}

func applyDynamics(d *dynamics.Dyno, dp DynamicsPatch) error {
	preset, err := dynamics.ParsePreset(dp.Preset)
	if err != nil {
		return err
	}

	d.ApplyPreset(preset)

	switch {
	case dp.ThresholdDB != 0:
		if err := d.SetThresholdDB(dp.ThresholdDB); err != nil {
			return err
		}
	case dp.Threshold != 0:
		if err := d.SetThreshold(dp.Threshold); err != nil {
			return err
		}
	}

	if dp.Ratio != 0 {
		if err := d.SetRatio(dp.Ratio); err != nil {
			return err
		}
	}

	return nil
}

func buildKey(k KeyPatch, sampleRate float64) (ugen.Generator, error) {
	shape, err := osc.ParseShape(k.Shape)
	if err != nil {
		return nil, err
	}

	o, err := osc.New(shape, sampleRate)
	if err != nil {
		return nil, err
	}

	if err := o.SetFrequency(k.Frequency); err != nil {
		return nil, err
	}

	return o, nil
}

// control is one live parameter change.
type control struct {
	id    string
	value any
}

// Controls lists the parameter changes that bring a running graph in line
// with p. Parameters that change the graph's structure are not included.
func (p *Patch) Controls() []control {
	cs := []control{
		{"osc.width", p.Width},
		{"env.attack", p.Envelope.Attack},
		{"env.decay", p.Envelope.Decay},
		{"env.sustain", p.Envelope.Sustain},
		{"env.release", p.Envelope.Release},
		{"dyn.preset", p.Dynamics.Preset},
	}

	switch {
	case p.Dynamics.ThresholdDB != 0:
		cs = append(cs, control{"dyn.thresholdDB", p.Dynamics.ThresholdDB})
	case p.Dynamics.Threshold != 0:
		cs = append(cs, control{"dyn.threshold", p.Dynamics.Threshold})
	}

	if p.Dynamics.Ratio != 0 {
		cs = append(cs, control{"dyn.ratio", p.Dynamics.Ratio})
	}

	if p.Key != nil {
		cs = append(cs, control{"dyn.external", true})
	}

	return append(cs,
		control{"pan.location", p.Pan},
		control{"engine.gain", p.Gain},
	)
}

// Structural reports which fields differ between p and q in a way that
// needs a restart to take effect.
func (p *Patch) Structural(q *Patch) []string {
	var fields []string

	if p.SampleRate != q.SampleRate {
		fields = append(fields, "sample_rate")
	}

	if p.BlockSize != q.BlockSize {
		fields = append(fields, "block_size")
	}

	if p.Voices != q.Voices {
		fields = append(fields, "voices")
	}

	if p.Shape != q.Shape {
		fields = append(fields, "shape")
	}

	if (p.Key == nil) != (q.Key == nil) || (p.Key != nil && *p.Key != *q.Key) {
		fields = append(fields, "key")
	}

	if p.Tempo != q.Tempo || p.StepsPerBeat != q.StepsPerBeat {
		fields = append(fields, "tempo")
	}

	if p.Loop != q.Loop || !slices.EqualFunc(p.Sequence, q.Sequence, Step.equal) {
		fields = append(fields, "sequence")
	}

	return fields
}
