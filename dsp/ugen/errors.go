package ugen

import (
	"errors"
	"fmt"
)

// ErrUnsupported reports that a node lacks the requested capability.
var ErrUnsupported = errors.New("operation not supported by node")

// AsGenerator returns n as a Generator or an error wrapping ErrUnsupported.
func AsGenerator(n Node) (Generator, error) {
	if g, ok := n.(Generator); ok {
		return g, nil
	}
	return nil, fmt.Errorf("%T: Next: %w", n, ErrUnsupported)
}

// AsProcessor returns n as a Processor or an error wrapping ErrUnsupported.
func AsProcessor(n Node) (Processor, error) {
	if p, ok := n.(Processor); ok {
		return p, nil
	}
	return nil, fmt.Errorf("%T: Process: %w", n, ErrUnsupported)
}

// AsPlayer returns n as a Player or an error wrapping ErrUnsupported.
func AsPlayer(n Node) (Player, error) {
	if p, ok := n.(Player); ok {
		return p, nil
	}
	return nil, fmt.Errorf("%T: NoteOn/NoteOff: %w", n, ErrUnsupported)
}

// AsVoice returns n as a Voice or an error wrapping ErrUnsupported.
func AsVoice(n Node) (Voice, error) {
	if v, ok := n.(Voice); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%T: Next+NoteOn/NoteOff: %w", n, ErrUnsupported)
}

// MustGenerator is like AsGenerator but panics.
func MustGenerator(n Node) Generator {
	g, err := AsGenerator(n)
	if err != nil {
		panic("ugen: " + err.Error())
	}
	return g
}

// MustProcessor is like AsProcessor but panics.
func MustProcessor(n Node) Processor {
	p, err := AsProcessor(n)
	if err != nil {
		panic("ugen: " + err.Error())
	}
	return p
}

// MustPlayer is like AsPlayer but panics.
func MustPlayer(n Node) Player {
	p, err := AsPlayer(n)
	if err != nil {
		panic("ugen: " + err.Error())
	}
	return p
}
