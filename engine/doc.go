// Package engine drives a synthesis graph from a host audio callback.
//
// The render side calls FillBuffer once per device buffer. The control side
// calls NoteOn, NoteOff, ControlChange and NoteOnFor from any goroutine.
// Control calls take a short mutex and append to a fixed-size queue; the
// render side swaps the queue out under the same mutex and applies the
// events to the graph before synthesizing, so the graph itself is only ever
// touched from the render goroutine.
//
// After construction FillBuffer does not allocate.
package engine
