// Package otoplayer plays an audio.Source through ebitengine/oto.
package otoplayer

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-synth/audio"
)

// DefaultBufferFrames is the device buffer length when none is given.
const DefaultBufferFrames = 1024

// Player owns an oto context and a player pulling from a Source.
//
// oto allows one context per process, so create at most one Player.
type Player struct {
	ctx    *oto.Context
	player *oto.Player

	mu     sync.Mutex // only for setup/control operations
	closed bool
}

// New opens the default output device at the source's sample rate.
// bufferFrames <= 0 selects DefaultBufferFrames.
func New(src audio.Source, bufferFrames int) (*Player, error) {
	if bufferFrames <= 0 {
		bufferFrames = DefaultBufferFrames
	}

	r, err := audio.NewReader(src, bufferFrames)
	if err != nil {
		return nil, err
	}

	sr := int(src.SampleRate())
	if sr <= 0 {
		return nil, fmt.Errorf("otoplayer: sample rate must be positive: %d", sr)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sr,
		ChannelCount: audio.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(bufferFrames) * time.Second / time.Duration(sr),
	})
	if err != nil {
		return nil, fmt.Errorf("otoplayer: %w", err)
	}

	<-ready

	return &Player{ctx: ctx, player: ctx.NewPlayer(r)}, nil
}

// Play starts pulling from the source.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.player.Play()
	}
}

// Pause stops pulling without closing.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.player.Pause()
	}
}

// IsPlaying reports whether the player is running. It turns false once the
// source ends the stream.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return !p.closed && p.player.IsPlaying()
}

// Close releases the player.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	return p.player.Close()
}
