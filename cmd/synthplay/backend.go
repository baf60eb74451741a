package main

import (
	"context"
	"slices"
	"time"

	"github.com/cwbudde/algo-synth/audio"
	"github.com/cwbudde/algo-synth/audio/otoplayer"
)

// backend plays src until it ends or ctx is done.
type backend func(ctx context.Context, src audio.Source, bufferFrames int) error

var backends = map[string]backend{
	"oto": playOto,
}

func backendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func playOto(ctx context.Context, src audio.Source, bufferFrames int) error {
	p, err := otoplayer.New(src, bufferFrames)
	if err != nil {
		return err
	}
	defer p.Close()

	p.Play()

	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if !p.IsPlaying() {
				return nil
			}
		}
	}
}
