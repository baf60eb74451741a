package dynamics

import (
	"fmt"
	"strings"
)

// Preset names one of the stock Dyno configurations.
type Preset int

const (
	PresetLimit Preset = iota
	PresetCompress
	PresetGate
	PresetExpand
	PresetDuck
)

type presetParams struct {
	slopeAbove float64
	slopeBelow float64
	threshold  float64
	attack     float64 // seconds
	release    float64 // seconds
	external   bool
}

var presets = [...]presetParams{
	PresetLimit:    {slopeAbove: 0.1, slopeBelow: 1.0, threshold: 0.5, attack: 0.005, release: 0.3},
	PresetCompress: {slopeAbove: 0.5, slopeBelow: 1.0, threshold: 0.5, attack: 0.005, release: 0.5},
	PresetGate:     {slopeAbove: 1.0, slopeBelow: 1e8, threshold: 0.1, attack: 0.011, release: 0.1},
	PresetExpand:   {slopeAbove: 2.0, slopeBelow: 1.0, threshold: 0.5, attack: 0.02, release: 0.4},
	PresetDuck:     {slopeAbove: 0.5, slopeBelow: 1.0, threshold: 0.1, attack: 0.01, release: 1.0, external: true},
}

func (p Preset) String() string {
	switch p {
	case PresetLimit:
		return "limit"
	case PresetCompress:
		return "compress"
	case PresetGate:
		return "gate"
	case PresetExpand:
		return "expand"
	case PresetDuck:
		return "duck"
	default:
		return fmt.Sprintf("Preset(%d)", int(p))
	}
}

func (p Preset) valid() bool {
	return p >= PresetLimit && p <= PresetDuck
}

// ParsePreset maps a preset name to a Preset.
func ParsePreset(name string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "limit", "limiter":
		return PresetLimit, nil
	case "compress", "compressor":
		return PresetCompress, nil
	case "gate":
		return PresetGate, nil
	case "expand", "expander":
		return PresetExpand, nil
	case "duck", "ducker":
		return PresetDuck, nil
	default:
		return 0, fmt.Errorf("unknown dynamics preset: %q", name)
	}
}
