package voice

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/ugen"
)

const (
	// FreeNote is the note a free slot reports. Use Held to tell it from a
	// voice actually playing note -1.
	FreeNote = -1.0

	noteTolerance = 1e-6
)

// Factory builds one pooled voice. The node must implement ugen.Voice.
type Factory func() (ugen.Node, error)

type slot struct {
	voice ugen.Voice
	note  float64
	birth uint64
	held  bool
}

// Voicer multiplexes note events over a fixed pool of voices.
//
// This implementation is single-threaded; the engine serializes note
// events onto the render goroutine.
type Voicer struct {
	ugen.Base

	slots  []slot
	births uint64
}

// New builds a pool of n voices from factory.
func New(factory Factory, n int) (*Voicer, error) {
	if factory == nil {
		return nil, errors.New("voice: factory is nil")
	}

	if n < 1 {
		return nil, fmt.Errorf("voice: voice count must be >= 1: %d", n)
	}

	slots := make([]slot, n)
	for i := range slots {
		node, err := factory()
		if err != nil {
			return nil, fmt.Errorf("voice: building voice %d: %w", i, err)
		}

		if node == nil {
			return nil, fmt.Errorf("voice: factory returned nil for voice %d", i)
		}

		v, err := ugen.AsVoice(node)
		if err != nil {
			return nil, fmt.Errorf("voice: %w", err)
		}

		slots[i] = slot{voice: v, note: FreeNote}
	}

	return &Voicer{
		Base:  ugen.NewBase(1),
		slots: slots,
	}, nil
}

// Len returns the pool size.
func (v *Voicer) Len() int { return len(v.slots) }

// Held reports whether slot i is assigned to a note.
func (v *Voicer) Held(i int) bool { return v.slots[i].held }

// Voice returns the note and birth id of slot i. A free slot reports
// FreeNote.
func (v *Voicer) Voice(i int) (note float64, birth uint64) {
	s := v.slots[i]
	return s.note, s.birth
}

// Node returns the pooled voice in slot i.
func (v *Voicer) Node(i int) ugen.Voice { return v.slots[i].voice }

// Active returns how many slots hold a note.
func (v *Voicer) Active() int {
	n := 0
	for i := range v.slots {
		if v.slots[i].held {
			n++
		}
	}

	return n
}

// NoteOn assigns note to the voice with the smallest birth id and gives it
// a fresh one.
func (v *Voicer) NoteOn(note, amplitude float64) {
	if len(v.slots) == 0 {
		return
	}

	oldest := 0
	for i := 1; i < len(v.slots); i++ {
		if v.slots[i].birth < v.slots[oldest].birth {
			oldest = i
		}
	}

	v.births++

	s := &v.slots[oldest]
	s.birth = v.births
	s.note = note
	s.held = true
	s.voice.NoteOn(note, amplitude)
}

// NoteOff releases every voice playing |note| and frees its slot.
func (v *Voicer) NoteOff(note float64) {
	target := math.Abs(note)

	for i := range v.slots {
		s := &v.slots[i]
		if !s.held || math.Abs(s.note-target) > noteTolerance {
			continue
		}

		s.voice.NoteOff(s.note)
		s.note = FreeNote
		s.held = false
	}
}

// Next sums one sample from every voice and scales by the gain.
func (v *Voicer) Next() float64 {
	var sum float64
	for i := range v.slots {
		sum += v.slots[i].voice.Next()
	}

	return sum * v.Gain()
}

// Reset resets every voice and frees all slots. Birth ids keep counting.
func (v *Voicer) Reset() {
	for i := range v.slots {
		v.slots[i].voice.Reset()
		v.slots[i].note = FreeNote
		v.slots[i].held = false
	}
}

// Clear resets and drops the pool. Only for teardown: a cleared Voicer is
// silent and ignores notes.
func (v *Voicer) Clear() {
	v.Reset()
	v.slots = nil
}

// ControlChange handles voicer.gain and forwards every id to the voices.
func (v *Voicer) ControlChange(id string, value any) {
	if id == "voicer.gain" {
		if f, ok := ugen.Float(value); ok {
			v.SetGain(f)
		}
	}

	for i := range v.slots {
		if c, ok := v.slots[i].voice.(ugen.Controller); ok {
			c.ControlChange(id, value)
		}
	}
}
