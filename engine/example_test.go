package engine_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/mix"
	"github.com/cwbudde/algo-synth/dsp/osc"
	"github.com/cwbudde/algo-synth/dsp/voice"
	"github.com/cwbudde/algo-synth/engine"
)

func ExampleEngine() {
	const sampleRate = 48000

	v, err := voice.New(voice.ToneFactory(osc.ShapeSine, sampleRate, nil), 4)
	if err != nil {
		panic(err)
	}

	ch, err := mix.NewChannel(v)
	if err != nil {
		panic(err)
	}

	e, err := engine.New(ch)
	if err != nil {
		panic(err)
	}

	_ = e.NoteOn(57, 0.8)

	buf := make([]float32, 2*256)
	n := e.FillBuffer(buf, 256)

	fmt.Println(n, e.Frames())
	// Output:
	// 256 256
}
