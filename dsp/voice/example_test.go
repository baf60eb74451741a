package voice_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/dsp/ugen"
	"github.com/cwbudde/algo-synth/dsp/voice"
)

func ExampleVoicer() {
	v, err := voice.New(func() (ugen.Node, error) { return osc.NewSine(44100) }, 2)
	if err != nil {
		panic(err)
	}

	v.NoteOn(60, 1)
	v.NoteOn(64, 1)
	v.NoteOn(67, 1) // steals the voice playing 60

	for i := range v.Len() {
		note, birth := v.Voice(i)
		fmt.Printf("voice %d: note %.0f birth %d\n", i, note, birth)
	}

	// Output:
	// voice 0: note 67 birth 3
	// voice 1: note 64 birth 2
}
