package testutil

import "math"

// DeterministicSine generates a sine starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Render pulls n samples from a generator.
func Render(g interface{ Next() float64 }, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}

// Deinterleave splits an interleaved stereo float32 buffer into left and
// right float64 channels.
func Deinterleave(buf []float32) (left, right []float64) {
	n := len(buf) / 2
	left = make([]float64, n)
	right = make([]float64, n)
	for i := 0; i < n; i++ {
		left[i] = float64(buf[2*i])
		right[i] = float64(buf[2*i+1])
	}
	return left, right
}
