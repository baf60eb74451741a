// Package ugen defines the contract shared by every unit generator.
//
// A node advertises what it can do through small capability interfaces
// rather than a single base type with stubbed-out methods:
//   - Generator: produces one mono sample per call (Next).
//   - Processor: transforms one mono input sample (Process).
//   - StereoGenerator: produces one stereo frame per call (NextStereo).
//   - Player: receives note on/off events.
//   - Controller: receives control changes by string id.
//
// Operations a node does not support cannot be called on it. Code that
// only holds a Node (for example a voice factory result) converts it with
// AsGenerator, AsPlayer or AsProcessor, which fail with ErrUnsupported, or
// with the Must variants, which panic.
//
// All methods are intended for the audio render path: they must not block,
// allocate, or take time proportional to history.
package ugen
