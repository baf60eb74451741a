//go:build portaudio

package main

import "github.com/cwbudde/algo-synth/audio/pa"

func init() {
	backends["pa"] = pa.Run
}
