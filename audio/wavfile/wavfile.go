// Package wavfile renders an audio.Source into a 16-bit PCM WAV file.
package wavfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-synth/audio"
)

const (
	bitDepth    = 16
	blockFrames = 4096
	fullScale   = 32767
)

// Write renders up to frames frames from src into w and returns how many
// were written. Rendering stops early when the source ends the stream.
func Write(w io.WriteSeeker, src audio.Source, frames int) (int, error) {
	if src == nil {
		return 0, errors.New("wavfile: source is nil")
	}

	if frames < 0 {
		return 0, fmt.Errorf("wavfile: frame count must be >= 0: %d", frames)
	}

	sr := int(src.SampleRate())
	enc := wav.NewEncoder(w, sr, bitDepth, audio.Channels, 1)

	fbuf := make([]float32, audio.Channels*blockFrames)
	ibuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: audio.Channels,
			SampleRate:  sr,
		},
		Data:           make([]int, audio.Channels*blockFrames),
		SourceBitDepth: bitDepth,
	}

	written := 0
	for written < frames {
		want := min(blockFrames, frames-written)

		n := src.FillBuffer(fbuf[:audio.Channels*want], want)
		if n == 0 {
			break
		}

		ibuf.Data = ibuf.Data[:audio.Channels*n]
		for i, v := range fbuf[:audio.Channels*n] {
			ibuf.Data[i] = toInt16(v)
		}

		if err := enc.Write(ibuf); err != nil {
			return written, fmt.Errorf("wavfile: %w", err)
		}

		written += n
	}

	if err := enc.Close(); err != nil {
		return written, fmt.Errorf("wavfile: %w", err)
	}

	return written, nil
}

// WriteFile renders frames frames from src into a new file at path.
func WriteFile(path string, src audio.Source, frames int) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return Write(f, src, frames)
}

func toInt16(v float32) int {
	switch {
	case v >= 1:
		return fullScale
	case v <= -1:
		return -fullScale
	case math.IsNaN(float64(v)):
		return 0
	default:
		return int(v * fullScale)
	}
}
