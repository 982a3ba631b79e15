// Package ndarray implements the strided n-dimensional array and its operation set.
package ndarray

import (
	"github.com/x448/float16"
)

// Kind is the declared element kind of an array's backing store.
// It selects the specialised loop every kernel runs with.
type Kind int

// Supported element kinds.
const (
	Float64 Kind = iota
	Float32
	Float16
	Int64
	Object
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	case Int64:
		return "int64"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether the kind has a primitive (unboxed) path.
func (k Kind) IsNumeric() bool {
	return k == Float64 || k == Float32 || k == Float16 || k == Int64
}

// KindOf returns the kind whose store holds values of type T.
// Any type without a primitive store maps to Object.
func KindOf[T any]() Kind {
	var dummy T
	switch any(dummy).(type) {
	case float64:
		return Float64
	case float32:
		return Float32
	case float16.Float16:
		return Float16
	case int64:
		return Int64
	default:
		return Object
	}
}

// kindOfValue returns the primitive kind a single leaf value belongs to.
func kindOfValue(v any) Kind {
	switch v.(type) {
	case float64:
		return Float64
	case float32:
		return Float32
	case float16.Float16:
		return Float16
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return Int64
	default:
		return Object
	}
}

// promote returns the kind able to hold elements of both a and b.
func promote(a, b Kind) Kind {
	switch {
	case a == b:
		return a
	case a == Object || b == Object:
		return Object
	case a == Float64 || b == Float64 || a == Int64 || b == Int64:
		return Float64
	default:
		// Float32 with Float16.
		return Float32
	}
}
