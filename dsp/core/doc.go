// Package core holds configuration and numeric helpers shared by every
// synthesis package: processor options, phase wrapping, note to frequency
// conversion and allocation-free buffer reuse.
package core
