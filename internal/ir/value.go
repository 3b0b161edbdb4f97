package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a sealed interface representing a literal in a filter predicate.
// Only Null, String, Int, Double, Bool, and List implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents SQL NULL.
type Null struct{}

func (Null) value() {}

// String represents a string literal.
type String string

func (String) value() {}

// Int represents an integer literal. Always int64.
type Int int64

func (Int) value() {}

// Double represents a floating point literal (e.g. double_value comparisons).
// NaN and infinities are rejected by FromAny since SQL has no literal for them.
type Double float64

func (Double) value() {}

// Bool represents a boolean literal.
type Bool bool

func (Bool) value() {}

// List represents a list of literals, used as the right-hand side of IN.
type List []Value

func (List) value() {}

// NewList creates a List from values.
func NewList(vals ...Value) List {
	return List(vals)
}

// FromAny converts a decoded YAML/JSON/CUE value into a Value.
//
// Accepted inputs: nil, string, bool, all Go integer kinds, float32/float64,
// json.Number, []any. Maps are rejected: predicates have no object literals.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val))
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		return fromUint(val)
	case float32:
		return fromFloat(float64(val))
	case float64:
		return fromFloat(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		if !strings.ContainsAny(val.String(), ".eE") {
			return nil, fmt.Errorf("integer %s out of int64 range", val.String())
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return fromFloat(f)
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			v, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			if _, nested := v.(List); nested {
				return nil, fmt.Errorf("list[%d]: nested lists are not allowed", i)
			}
			list[i] = v
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unsupported literal type: %T", v)
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("integer %d out of int64 range", u)
	}
	return Int(int64(u)), nil
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v has no SQL literal", f)
	}
	return Double(f), nil
}

// FormatDouble renders a Double the same way everywhere it is printed:
// shortest round-trip representation, no exponent for common magnitudes.
func FormatDouble(d Double) string {
	return strconv.FormatFloat(float64(d), 'g', -1, 64)
}
