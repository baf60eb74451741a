package ugen

import "math"

// Float coerces a control value to float64. Booleans map to 0 and 1.
// NaN and infinities are rejected.
func Float(value any) (float64, bool) {
	var f float64

	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint8:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

// Bool coerces a control value to bool. Numbers are true when non-zero.
func Bool(value any) (bool, bool) {
	if b, ok := value.(bool); ok {
		return b, true
	}

	f, ok := Float(value)
	if !ok {
		return false, false
	}

	return f != 0, true
}
