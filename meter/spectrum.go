package meter

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const minSpectrumSize = 16

// Spectrum takes Hann-windowed FFT magnitude snapshots of the mono sum.
//
// Every hop frames, once size frames have been seen, the last size frames
// are windowed and transformed, and onSnapshot receives size/2+1 bin
// magnitudes normalized so a full-scale sine on a bin centre reads about 1.
// The slice is reused; copy it to keep it.
type Spectrum struct {
	size int
	hop  int

	plan       *algofft.Plan[complex128]
	onSnapshot func(mags []float64)

	ring     []float64
	pos      int
	filled   int
	sinceHop int

	window []float64
	frame  []float64
	bins   []complex128
	re, im []float64
	mags   []float64
	scale  float64
}

// NewSpectrum creates an analyzer. size must be a power of two >= 16 and
// hop in [1, size].
func NewSpectrum(size, hop int, onSnapshot func(mags []float64)) (*Spectrum, error) {
	if size < minSpectrumSize || size&(size-1) != 0 {
		return nil, fmt.Errorf("spectrum size must be power-of-two and >= %d: %d", minSpectrumSize, size)
	}

	if hop < 1 || hop > size {
		return nil, fmt.Errorf("spectrum hop must be in [1, %d]: %d", size, hop)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}

	nb := size/2 + 1

	s := &Spectrum{
		size:       size,
		hop:        hop,
		plan:       plan,
		onSnapshot: onSnapshot,
		ring:       make([]float64, size),
		window:     hann(size),
		frame:      make([]float64, size),
		bins:       make([]complex128, size),
		re:         make([]float64, nb),
		im:         make([]float64, nb),
		mags:       make([]float64, nb),
	}

	var sum float64
	for _, w := range s.window {
		sum += w
	}

	s.scale = 2 / sum

	return s, nil
}

// Size returns the FFT size.
func (s *Spectrum) Size() int { return s.size }

// Bins returns the number of magnitudes per snapshot.
func (s *Spectrum) Bins() int { return len(s.mags) }

// BinFrequency returns the centre frequency of bin k in Hz.
func (s *Spectrum) BinFrequency(k int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(s.size)
}

// ObserveBlock consumes interleaved stereo frames.
func (s *Spectrum) ObserveBlock(frames []float32, _ float64) {
	for i := 0; i+1 < len(frames); i += 2 {
		s.ring[s.pos] = 0.5 * (float64(frames[i]) + float64(frames[i+1]))

		s.pos++
		if s.pos == s.size {
			s.pos = 0
		}

		if s.filled < s.size {
			s.filled++
		}

		s.sinceHop++
		if s.filled == s.size && s.sinceHop >= s.hop {
			s.sinceHop = 0
			s.analyze()
		}
	}
}

// Reset clears the history.
func (s *Spectrum) Reset() {
	clear(s.ring)
	s.pos = 0
	s.filled = 0
	s.sinceHop = 0
}

func (s *Spectrum) analyze() {
	// Oldest frame first.
	n := copy(s.frame, s.ring[s.pos:])
	copy(s.frame[n:], s.ring[:s.pos])

	vecmath.MulBlockInPlace(s.frame, s.window)

	for i, v := range s.frame {
		s.bins[i] = complex(v, 0)
	}

	if err := s.plan.Forward(s.bins, s.bins); err != nil {
		return
	}

	for k := range s.mags {
		s.re[k] = real(s.bins[k])
		s.im[k] = imag(s.bins[k])
	}

	vecmath.Magnitude(s.mags, s.re, s.im)
	vecmath.ScaleBlock(s.mags, s.mags, s.scale)

	if s.onSnapshot != nil {
		s.onSnapshot(s.mags)
	}
}

// hann returns periodic Hann coefficients, the same values as
// window.Hann(size, window.WithPeriodic()) in algo-dsp.
func hann(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}

	return w
}
