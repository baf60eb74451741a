package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/ugen"
	"github.com/cwbudde/algo-vecmath"
)

var (
	// ErrQueueFull is returned when a control event cannot be queued until
	// the next buffer is rendered.
	ErrQueueFull = errors.New("engine: queue full")
	// ErrNoRoot is returned for note events while no root node is set.
	ErrNoRoot = errors.New("engine: no root node")
)

type eventKind uint8

const (
	eventNoteOn eventKind = iota
	eventNoteOff
	eventControl
	eventReset
)

type event struct {
	kind  eventKind
	note  float64
	amp   float64
	id    string
	value any
}

type stop struct {
	note   float64
	expiry int
}

// Engine owns a stereo root node and renders it into interleaved float32
// buffers.
type Engine struct {
	cfg core.ProcessorConfig

	mu      sync.Mutex
	root    ugen.StereoGenerator
	player  ugen.Player
	pending []event
	stops   []stop
	stopped bool

	// Render side only.
	local     []event
	block     []float64
	gain      float64
	observers []Observer

	frames atomic.Uint64
}

// New creates an engine rendering root. root may be nil; FillBuffer then
// returns 0 until SetRoot is called.
func New(root ugen.StereoGenerator, opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := core.ValidateSampleRate("engine", cfg.proc.SampleRate); err != nil {
		return nil, err
	}

	if cfg.proc.BlockSize <= 0 {
		return nil, fmt.Errorf("engine block size must be positive: %d", cfg.proc.BlockSize)
	}

	e := &Engine{
		cfg:       cfg.proc,
		pending:   make([]event, 0, cfg.events),
		local:     make([]event, 0, cfg.events),
		stops:     make([]stop, 0, cfg.stops),
		block:     make([]float64, 2*cfg.proc.BlockSize),
		gain:      1,
		observers: cfg.observers,
	}

	e.setRoot(root)

	return e, nil
}

// SampleRate returns the render sample rate in Hz.
func (e *Engine) SampleRate() float64 { return e.cfg.SampleRate }

// BlockSize returns the internal render block size in frames.
func (e *Engine) BlockSize() int { return e.cfg.BlockSize }

// Frames returns the number of frames rendered so far.
func (e *Engine) Frames() uint64 { return e.frames.Load() }

// SetRoot replaces the root node. It takes effect at the next buffer.
func (e *Engine) SetRoot(root ugen.StereoGenerator) {
	e.mu.Lock()
	e.setRoot(root)
	e.mu.Unlock()
}

func (e *Engine) setRoot(root ugen.StereoGenerator) {
	e.root = root
	e.player = nil

	if root == nil {
		return
	}

	if p, ok := root.(ugen.Player); ok {
		e.player = p
	}
}

// Stop ends the stream: FillBuffer returns 0 from now on.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
}

// NoteOn queues a note start. amplitude is clamped to [0, 1].
func (e *Engine) NoteOn(note, amplitude float64) error {
	if err := validateNote(note, amplitude); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.canPlay(); err != nil {
		return err
	}

	return e.push(event{kind: eventNoteOn, note: note, amp: core.Clamp(amplitude, 0, 1)})
}

// NoteOff queues a note release.
func (e *Engine) NoteOff(note float64) error {
	if !core.IsFinite(note) {
		return fmt.Errorf("engine: note must be finite: %f", note)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.canPlay(); err != nil {
		return err
	}

	return e.push(event{kind: eventNoteOff, note: note})
}

// NoteOnFor queues a note start and schedules its release after ticks
// Housekeep passes. Pending releases for the same note are dropped.
func (e *Engine) NoteOnFor(note, amplitude float64, ticks int) error {
	if err := validateNote(note, amplitude); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.canPlay(); err != nil {
		return err
	}

	// The stop list is only edited once the NoteOn is queued, so a full
	// queue leaves the earlier release of a sounding note in place.
	same := 0
	for _, s := range e.stops {
		if s.note == note {
			same++
		}
	}

	if len(e.stops)-same == cap(e.stops) {
		return fmt.Errorf("engine: stop list: %w", ErrQueueFull)
	}

	if err := e.push(event{kind: eventNoteOn, note: note, amp: core.Clamp(amplitude, 0, 1)}); err != nil {
		return err
	}

	kept := e.stops[:0]
	for _, s := range e.stops {
		if s.note != note {
			kept = append(kept, s)
		}
	}

	e.stops = append(kept, stop{note: note, expiry: ticks})

	return nil
}

// Housekeep counts down every scheduled release and queues a NoteOff for
// each one that has expired. Call it periodically from the control side.
// Releases that do not fit in the queue stay scheduled for the next pass.
func (e *Engine) Housekeep() {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.stops[:0]
	for _, s := range e.stops {
		s.expiry--
		if s.expiry < 0 && e.player != nil {
			if err := e.push(event{kind: eventNoteOff, note: s.note}); err == nil {
				continue
			}
		}

		kept = append(kept, s)
	}

	e.stops = kept
}

// Pending returns the number of scheduled releases.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.stops)
}

// ControlChange queues a parameter change for the root node. The id
// "engine.gain" sets the master gain instead.
func (e *Engine) ControlChange(id string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.push(event{kind: eventControl, id: id, value: value})
}

// Reset queues a reset of the root node and drops scheduled releases.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stops = e.stops[:0]

	return e.push(event{kind: eventReset})
}

// FillBuffer renders frames interleaved stereo frames into buf and returns
// the number of frames written. It returns 0, meaning end of stream, when
// no root is set or the engine was stopped. frames is limited to len(buf)/2.
func (e *Engine) FillBuffer(buf []float32, frames int) int {
	if frames > len(buf)/2 {
		frames = len(buf) / 2
	}

	if frames <= 0 {
		return 0
	}

	e.mu.Lock()
	root := e.root
	stopped := e.stopped
	e.pending, e.local = e.local[:0], e.pending
	e.mu.Unlock()

	if root == nil || stopped {
		e.drop()
		return 0
	}

	e.apply(root)

	bs := e.cfg.BlockSize
	for done := 0; done < frames; done += bs {
		n := min(bs, frames-done)
		blk := e.block[:2*n]

		for i := 0; i < n; i++ {
			s := root.NextStereo()
			blk[2*i] = s.Left
			blk[2*i+1] = s.Right
		}

		if e.gain != 1 {
			vecmath.ScaleBlock(blk, blk, e.gain)
		}

		out := buf[2*done : 2*(done+n)]
		for i, v := range blk {
			out[i] = float32(v)
		}
	}

	e.frames.Add(uint64(frames))

	for _, o := range e.observers {
		o.ObserveBlock(buf[:2*frames], e.cfg.SampleRate)
	}

	return frames
}

func (e *Engine) apply(root ugen.StereoGenerator) {
	player, _ := root.(ugen.Player)
	ctrl, _ := root.(ugen.Controller)

	for i := range e.local {
		ev := &e.local[i]

		switch ev.kind {
		case eventNoteOn:
			if player != nil {
				player.NoteOn(ev.note, ev.amp)
			}
		case eventNoteOff:
			if player != nil {
				player.NoteOff(ev.note)
			}
		case eventControl:
			if ev.id == "engine.gain" {
				if g, ok := ugen.Float(ev.value); ok {
					e.gain = core.Clamp(g, 0, 1)
				}
			} else if ctrl != nil {
				ctrl.ControlChange(ev.id, ev.value)
			}
		case eventReset:
			root.Reset()
		}

		ev.value = nil
	}

	e.local = e.local[:0]
}

func (e *Engine) drop() {
	for i := range e.local {
		e.local[i].value = nil
	}

	e.local = e.local[:0]
}

// push appends ev to the pending queue. The caller holds mu.
func (e *Engine) push(ev event) error {
	if len(e.pending) == cap(e.pending) {
		return ErrQueueFull
	}

	e.pending = append(e.pending, ev)

	return nil
}

// canPlay reports whether note events can reach the root. The caller
// holds mu.
func (e *Engine) canPlay() error {
	if e.root == nil {
		return ErrNoRoot
	}

	if e.player == nil {
		return fmt.Errorf("engine: root %T does not take notes: %w", e.root, ugen.ErrUnsupported)
	}

	return nil
}

func validateNote(note, amplitude float64) error {
	if !core.IsFinite(note) {
		return fmt.Errorf("engine: note must be finite: %f", note)
	}

	if math.IsNaN(amplitude) {
		return fmt.Errorf("engine: amplitude must not be NaN: %f", amplitude)
	}

	return nil
}
