package mix

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/ugen"
)

// Sidechainer is an insert whose gain computer can follow an external key.
type Sidechainer interface {
	SetSideInput(v float64) error
}

// ChannelOption configures a Channel.
type ChannelOption func(*channelConfig)

type channelConfig struct {
	inserts  []ugen.Processor
	key      ugen.Generator
	location float64
}

// WithInserts appends processors to the insert chain, applied in order.
func WithInserts(p ...ugen.Processor) ChannelOption {
	return func(cfg *channelConfig) {
		cfg.inserts = append(cfg.inserts, p...)
	}
}

// WithKey sets a generator whose magnitude feeds every Sidechainer insert
// once per sample, before the inserts run.
func WithKey(key ugen.Generator) ChannelOption {
	return func(cfg *channelConfig) {
		cfg.key = key
	}
}

// WithLocation sets the initial pan position.
func WithLocation(location float64) ChannelOption {
	return func(cfg *channelConfig) {
		cfg.location = location
	}
}

// Channel is a stereo strip: source -> inserts -> panner.
//
// Notes reach the source and every insert that is a ugen.Player, so an
// envelope insert is triggered together with its oscillator. Control
// changes reach the source, the inserts and the panner. The key generator
// runs free and is configured directly.
type Channel struct {
	source  ugen.Generator
	inserts []ugen.Processor
	key     ugen.Generator
	keyed   []Sidechainer
	players []ugen.Player
	ctrls   []ugen.Controller
	pan     *Panner
}

// NewChannel builds a strip around source.
func NewChannel(source ugen.Generator, opts ...ChannelOption) (*Channel, error) {
	if source == nil {
		return nil, errors.New("mix: channel source is nil")
	}

	var cfg channelConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Channel{
		source:  source,
		inserts: cfg.inserts,
		key:     cfg.key,
		pan:     NewPanner(),
	}

	if err := c.pan.SetLocation(cfg.location); err != nil {
		return nil, fmt.Errorf("mix: %w", err)
	}

	c.addPart(source, true)

	for i, p := range c.inserts {
		if p == nil {
			return nil, fmt.Errorf("mix: channel insert %d is nil", i)
		}

		c.addPart(p, true)

		if s, ok := p.(Sidechainer); ok {
			c.keyed = append(c.keyed, s)
		}
	}

	if c.key != nil {
		if len(c.keyed) == 0 {
			return nil, fmt.Errorf("mix: channel key needs a sidechain insert: %w", ugen.ErrUnsupported)
		}
	}

	c.addPart(c.pan, false)

	return c, nil
}

func (c *Channel) addPart(n ugen.Node, play bool) {
	if p, ok := n.(ugen.Player); ok && play {
		c.players = append(c.players, p)
	}

	if ctl, ok := n.(ugen.Controller); ok {
		c.ctrls = append(c.ctrls, ctl)
	}
}

// Panner returns the output panner.
func (c *Channel) Panner() *Panner { return c.pan }

// Gain returns the output gain.
func (c *Channel) Gain() float64 { return c.pan.Gain() }

// SetGain sets the output gain.
func (c *Channel) SetGain(gain float64) { c.pan.SetGain(gain) }

// NextStereo renders one frame.
func (c *Channel) NextStereo() ugen.Sample {
	x := c.source.Next()

	if c.key != nil {
		k := math.Abs(c.key.Next())
		for _, s := range c.keyed {
			_ = s.SetSideInput(k)
		}
	}

	for _, p := range c.inserts {
		x = p.Process(x)
	}

	return c.pan.ProcessStereo(x)
}

// NoteOn forwards to the source and player inserts.
func (c *Channel) NoteOn(note, amplitude float64) {
	for _, p := range c.players {
		p.NoteOn(note, amplitude)
	}
}

// NoteOff forwards to the source and player inserts.
func (c *Channel) NoteOff(note float64) {
	for _, p := range c.players {
		p.NoteOff(note)
	}
}

// ControlChange forwards to every part that accepts control changes.
func (c *Channel) ControlChange(id string, value any) {
	for _, ctl := range c.ctrls {
		ctl.ControlChange(id, value)
	}
}

// Reset resets the source and the inserts. The key keeps running.
func (c *Channel) Reset() {
	c.source.Reset()

	for _, p := range c.inserts {
		p.Reset()
	}
}
