// Package audio connects a pull-based synthesis source to output sinks.
//
// Sinks live in sub-packages: otoplayer for live output through oto,
// wavfile for offline rendering, and pa for PortAudio (build tag
// "portaudio").
package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// Channels is the interleaved channel count every sink expects.
const Channels = 2

// Source renders interleaved stereo float32 frames on demand.
// *engine.Engine satisfies it.
type Source interface {
	// FillBuffer writes frames frames into buf and returns how many were
	// written. 0 means end of stream.
	FillBuffer(buf []float32, frames int) int
	SampleRate() float64
}

// bytesPerFrame is Channels float32 samples.
const bytesPerFrame = Channels * 4

// Reader streams a Source as little-endian float32 interleaved PCM.
//
// Read is called from the sink's audio goroutine. The scratch buffer only
// grows when a sink asks for more frames than it has seen before.
type Reader struct {
	src Source
	buf []float32
}

// NewReader creates a Reader with room for frames frames per Read.
func NewReader(src Source, frames int) (*Reader, error) {
	if src == nil {
		return nil, errors.New("audio: source is nil")
	}

	if frames < 1 {
		frames = 1024
	}

	return &Reader{src: src, buf: make([]float32, Channels*frames)}, nil
}

// Read implements io.Reader. It returns io.EOF once the source ends.
func (r *Reader) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	r.buf = core.EnsureLen(r.buf, Channels*frames)

	n := r.src.FillBuffer(r.buf, frames)
	if n == 0 {
		return 0, io.EOF
	}

	for i, v := range r.buf[:Channels*n] {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}

	return n * bytesPerFrame, nil
}
