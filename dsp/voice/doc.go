// Package voice provides polyphony over a fixed pool of voices.
//
// Voicer allocates note events across N voices built once by a Factory.
// Allocation always steals the voice with the oldest birth id, whether or
// not it is still sounding. Tone is the stock voice: an oscillator shaped by
// an ADSR envelope.
package voice
