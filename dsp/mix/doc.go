// Package mix provides summing and stereo placement nodes.
//
// Mixer sums mono inputs, Panner places a mono signal with the linear pan
// law, and Channel chains a source through insert processors into a Panner
// to form a complete stereo strip.
package mix
