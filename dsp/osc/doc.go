// Package osc provides phase-accumulating oscillators.
//
// An Oscillator keeps a phase in [0, 1) and evaluates one of the pure shape
// functions (Phasor, Sine, Triangle, Pulse) at that phase every call. How the
// phase moves is selected by the sync mode:
//   - SyncFreq: the increment is frequency / sample rate, recomputed every
//     sample so frequency sweeps take effect immediately.
//   - SyncPhase: the phase does not advance; an external driver sets it.
//   - SyncFM: the increment is (frequency + modulation) / sample rate.
//
// A frequency of zero or less is silent and freezes the phase.
package osc
