package main

import (
	"errors"

	"github.com/cwbudde/algo-synth/engine"
)

// player is the part of *engine.Engine the sequencer drives.
type player interface {
	NoteOnFor(note, amplitude float64, ticks int) error
	Housekeep()
}

// Sequencer steps through a pattern, one Tick per step. Every note is
// started with NoteOnFor and released by the engine's Housekeep countdown.
type Sequencer struct {
	steps []Step
	loop  bool
	pos   int
}

// NewSequencer creates a sequencer over steps.
func NewSequencer(steps []Step, loop bool) *Sequencer {
	return &Sequencer{steps: steps, loop: loop}
}

// Done reports whether a non-looping pattern has played every step.
func (s *Sequencer) Done() bool {
	return !s.loop && s.pos >= len(s.steps)
}

// Tick releases expired notes and starts the notes of the next step.
// A note held for gate steps is released on the Tick gate steps later.
func (s *Sequencer) Tick(p player) error {
	p.Housekeep()

	if len(s.steps) == 0 || s.Done() {
		return nil
	}

	step := s.steps[s.pos%len(s.steps)]
	s.pos++

	if s.loop && s.pos == len(s.steps) {
		s.pos = 0
	}

	var errs []error
	for _, n := range step.Notes {
		if err := p.NoteOnFor(n, step.Amp, step.Gate-1); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Position returns the index of the next step.
func (s *Sequencer) Position() int { return s.pos }

// clockedSource runs a Sequencer off the rendered sample count, so the
// pattern timing is the same live and offline. Housekeep and NoteOnFor run
// on the goroutine that reads audio, each under the engine's event mutex.
type clockedSource struct {
	eng        *engine.Engine
	seq        *Sequencer
	stepFrames int
	untilStep  int
	onError    func(error)
}

func newClockedSource(eng *engine.Engine, seq *Sequencer, stepSeconds float64, onError func(error)) *clockedSource {
	return &clockedSource{
		eng:        eng,
		seq:        seq,
		stepFrames: max(1, int(stepSeconds*eng.SampleRate()+0.5)),
		onError:    onError,
	}
}

func (c *clockedSource) SampleRate() float64 { return c.eng.SampleRate() }

// FillBuffer renders up to the next step boundary at a time so that each
// step's events land on the first frame of the step.
func (c *clockedSource) FillBuffer(buf []float32, frames int) int {
	frames = min(frames, len(buf)/2)

	done := 0
	for done < frames {
		if c.untilStep == 0 {
			if err := c.seq.Tick(c.eng); err != nil && c.onError != nil {
				c.onError(err)
			}

			c.untilStep = c.stepFrames
		}

		n := min(frames-done, c.untilStep)

		got := c.eng.FillBuffer(buf[2*done:], n)
		if got == 0 {
			break
		}

		done += got
		c.untilStep -= got
	}

	return done
}
