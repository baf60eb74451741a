//go:build portaudio

// Package pa plays an audio.Source through PortAudio's blocking stream API.
//
// It needs the PortAudio C library and is only built with the "portaudio"
// build tag.
package pa

import (
	"context"
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/cwbudde/algo-synth/audio"
	"github.com/cwbudde/algo-synth/dsp/core"
)

// DefaultFramesPerBuffer is the stream buffer length when none is given.
const DefaultFramesPerBuffer = 512

// Run opens the default output device and writes src to it until the
// source ends the stream or ctx is done.
func Run(ctx context.Context, src audio.Source, framesPerBuffer int) (err error) {
	if src == nil {
		return errors.New("pa: source is nil")
	}

	if framesPerBuffer <= 0 {
		framesPerBuffer = DefaultFramesPerBuffer
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("pa: unable to set up portaudio: %w", err)
	}

	defer func() {
		if terr := portaudio.Terminate(); err == nil && terr != nil {
			err = fmt.Errorf("pa: termination error: %w", terr)
		}
	}()

	out := make([]float32, audio.Channels*framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(0, audio.Channels, src.SampleRate(), framesPerBuffer, &out)
	if err != nil {
		return fmt.Errorf("pa: unable to open default stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("pa: %w", err)
	}
	defer stream.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n := src.FillBuffer(out, framesPerBuffer)
		if n == 0 {
			return nil
		}

		core.Zero(out[audio.Channels*n:])

		if err := stream.Write(); err != nil {
			return fmt.Errorf("pa: %w", err)
		}
	}
}
