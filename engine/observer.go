package engine

// Observer receives every rendered buffer on the render goroutine.
//
// frames is interleaved stereo and only valid during the call. ObserveBlock
// must not block or allocate.
type Observer interface {
	ObserveBlock(frames []float32, sampleRate float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(frames []float32, sampleRate float64)

// ObserveBlock calls f.
func (f ObserverFunc) ObserveBlock(frames []float32, sampleRate float64) {
	f(frames, sampleRate)
}
