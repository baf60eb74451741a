// Package envelope provides a linear ADSR envelope generator.
//
// The envelope is a state machine (Idle, Attack, Decay, Sustain, Release)
// with a per-sample step recomputed at every transition. Used as a
// ugen.Processor it multiplies its input by the current level; used as a
// ugen.Generator it yields the raw curve.
package envelope
