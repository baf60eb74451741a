package osc

import (
	"fmt"
	"math"
	"strings"
)

// Shape selects the waveform an Oscillator evaluates.
type Shape int

const (
	// ShapePhasor is a 0 to 1 ramp equal to the phase.
	ShapePhasor Shape = iota
	// ShapeSine is sin(2*pi*phase).
	ShapeSine
	// ShapeTriangle is a width-skewed triangle in [-1, 1].
	ShapeTriangle
	// ShapePulse is +1 while phase < width, else -1.
	ShapePulse
)

func (s Shape) String() string {
	switch s {
	case ShapePhasor:
		return "phasor"
	case ShapeSine:
		return "sine"
	case ShapeTriangle:
		return "triangle"
	case ShapePulse:
		return "pulse"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape maps a shape name to a Shape. "saw" and "square" are accepted
// as aliases of triangle and pulse; callers set the width themselves.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "phasor", "ramp":
		return ShapePhasor, nil
	case "sine", "sin":
		return ShapeSine, nil
	case "triangle", "tri", "saw":
		return ShapeTriangle, nil
	case "pulse", "square", "sqr":
		return ShapePulse, nil
	default:
		return 0, fmt.Errorf("unknown oscillator shape: %q", name)
	}
}

func (s Shape) valid() bool {
	return s >= ShapePhasor && s <= ShapePulse
}

// Phasor returns the phase itself.
func Phasor(phase float64) float64 {
	return phase
}

// Sine returns sin(2*pi*phase).
func Sine(phase float64) float64 {
	return math.Sin(phase * 2 * math.Pi)
}

// Triangle returns an asymmetric triangle: it rises from -1 to +1 over
// width of a cycle and falls back over the remaining 1-width. The shape is
// evaluated a quarter cycle ahead so that width 0.5 starts at 0 like Sine.
// Width 0 and 1 degenerate into falling and rising ramps with a vertical
// edge.
func Triangle(phase, width float64) float64 {
	p := phase + 0.25
	if p >= 1 {
		p--
	}

	// p >= 0, so p < width implies width > 0.
	if p < width {
		return -1 + 2*p/width
	}

	if width >= 1 {
		return -1
	}

	return 1 - 2*(p-width)/(1-width)
}

// Pulse returns +1 while phase < width, else -1.
func Pulse(phase, width float64) float64 {
	if phase < width {
		return 1
	}

	return -1
}

func (s Shape) eval(phase, width float64) float64 {
	switch s {
	case ShapePhasor:
		return Phasor(phase)
	case ShapeSine:
		return Sine(phase)
	case ShapeTriangle:
		return Triangle(phase, width)
	case ShapePulse:
		return Pulse(phase, width)
	default:
		return 0
	}
}
