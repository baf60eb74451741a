// Package meter derives level and spectrum readings from rendered audio.
//
// Both meters implement engine.Observer: they are fed every buffer on the
// render goroutine, keep all state pre-allocated, and report through a
// callback invoked on that goroutine. Peak additionally publishes its last
// reading atomically for pollers on other goroutines.
package meter
