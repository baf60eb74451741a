// Package dynamics provides Dyno, a slope-law dynamics processor.
//
// Dyno follows a control signal with an asymmetric one-pole envelope and
// applies gain = (envelope/threshold)^(slope-1), where slope is SlopeAbove
// when the envelope exceeds the threshold and SlopeBelow otherwise. The
// control signal is either the input itself or an external sidechain key.
// Five presets cover the common uses:
//   - limit: hard downward compression above threshold
//   - compress: 2:1 downward compression above threshold
//   - gate: mutes everything below threshold
//   - expand: upward expansion above threshold
//   - duck: compression keyed by an external sidechain
package dynamics
