package engine

import "github.com/cwbudde/algo-synth/dsp/core"

const (
	defaultEventCapacity = 256
	defaultStopCapacity  = 64
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	proc      core.ProcessorConfig
	events    int
	stops     int
	observers []Observer
}

func defaultConfig() config {
	return config{
		proc:   core.DefaultProcessorConfig(),
		events: defaultEventCapacity,
		stops:  defaultStopCapacity,
	}
}

// WithConfig sets sample rate and render block size.
func WithConfig(cfg core.ProcessorConfig) Option {
	return func(c *config) {
		c.proc = cfg
	}
}

// WithEventCapacity sets how many control events may be pending between
// two buffers. Non-positive values are ignored.
func WithEventCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.events = n
		}
	}
}

// WithStopCapacity sets how many timed notes may be pending. Non-positive
// values are ignored.
func WithStopCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.stops = n
		}
	}
}

// WithObserver registers an observer called after every rendered buffer.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}
