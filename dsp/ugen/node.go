package ugen

import "math"

// Sample is one stereo frame.
type Sample struct {
	Left  float64
	Right float64
}

// Add returns the frame-wise sum of s and o.
func (s Sample) Add(o Sample) Sample {
	return Sample{Left: s.Left + o.Left, Right: s.Right + o.Right}
}

// Scale returns s multiplied by g on both channels.
func (s Sample) Scale(g float64) Sample {
	return Sample{Left: s.Left * g, Right: s.Right * g}
}

// Mono returns a frame with v on both channels.
func Mono(v float64) Sample {
	return Sample{Left: v, Right: v}
}

// Node is the capability set every unit generator has.
type Node interface {
	// Gain returns the output scale in [0, 1].
	Gain() float64
	// SetGain sets the output scale, clamped to [0, 1].
	SetGain(gain float64)
	// Reset returns the node to its idle state.
	Reset()
}

// Generator produces one mono sample per call.
type Generator interface {
	Node
	Next() float64
}

// Processor transforms one mono input sample per call.
type Processor interface {
	Node
	Process(in float64) float64
}

// StereoGenerator produces one stereo frame per call.
type StereoGenerator interface {
	Node
	NextStereo() Sample
}

// Player receives note events. Note numbers are fractional; amplitude is
// normalized to [0, 1].
type Player interface {
	NoteOn(note, amplitude float64)
	NoteOff(note float64)
}

// Controller receives control changes. Implementations ignore ids they do
// not recognize and values they cannot interpret.
type Controller interface {
	ControlChange(id string, value any)
}

// Voice is what a polyphonic allocator needs from each pooled node.
type Voice interface {
	Generator
	Player
}

// Base carries the gain every node has. Embed it to satisfy the gain half
// of Node.
type Base struct {
	gain float64
}

// NewBase returns a Base with the given gain, clamped to [0, 1].
func NewBase(gain float64) Base {
	var b Base
	b.SetGain(gain)
	return b
}

// Gain returns the output scale.
func (b *Base) Gain() float64 { return b.gain }

// SetGain sets the output scale, clamped to [0, 1]. NaN is ignored.
func (b *Base) SetGain(gain float64) {
	switch {
	case math.IsNaN(gain):
		return
	case gain < 0:
		b.gain = 0
	case gain > 1:
		b.gain = 1
	default:
		b.gain = gain
	}
}
