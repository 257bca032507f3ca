package dispatch

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/y0ug/mcptools/internal/registry"
)

// Coerce converts a decoded JSON argument into a Value of the given kind.
// Numeric strings are accepted for numbers, "true"/"false"/"1"/"0" and
// numbers for booleans, and scalars for strings.
func Coerce(raw any, kind registry.Kind) (registry.Value, error) {
	raw = normalize(raw)

	switch kind {
	case registry.KindString:
		switch v := raw.(type) {
		case string:
			return registry.String(v), nil
		case float64, bool, int64:
			s, err := cast.ToStringE(v)
			if err != nil {
				return registry.Value{}, err
			}
			return registry.String(s), nil
		}

	case registry.KindNumber:
		var f float64
		switch v := raw.(type) {
		case float64:
			f = v
		case int64:
			f = float64(v)
		case string:
			parsed, err := cast.ToFloat64E(strings.TrimSpace(v))
			if err != nil || strings.TrimSpace(v) == "" {
				return registry.Value{}, fmt.Errorf("%q is not a number", v)
			}
			f = parsed
		default:
			return registry.Value{}, mismatch(raw, kind)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return registry.Value{}, fmt.Errorf("%v is not a finite number", f)
		}
		return registry.Number(f), nil

	case registry.KindBoolean:
		switch v := raw.(type) {
		case bool:
			return registry.Boolean(v), nil
		case float64:
			return registry.Boolean(v != 0), nil
		case int64:
			return registry.Boolean(v != 0), nil
		case string:
			b, err := cast.ToBoolE(strings.TrimSpace(v))
			if err != nil {
				return registry.Value{}, fmt.Errorf("%q is not a boolean", v)
			}
			return registry.Boolean(b), nil
		}

	default:
		return registry.Value{}, fmt.Errorf("unsupported parameter type %s", kind)
	}

	return registry.Value{}, mismatch(raw, kind)
}

// normalize folds the numeric representations a JSON decoder or a Go
// caller may produce into float64 or int64.
func normalize(raw any) any {
	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToInt64(v)
	case float32:
		return float64(v)
	default:
		return raw
	}
}

func mismatch(raw any, kind registry.Kind) error {
	return fmt.Errorf("cannot use %v (%T) as %s", raw, raw, kind)
}
