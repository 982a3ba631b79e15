// Package protocol defines the capability interfaces array representations implement,
// and dispatch functions that fall back to the canonical implementation for
// capabilities a representation omits.
//
// A representation implements Array (dimension info) and any subset of the
// remaining capabilities. Callers go through the package-level functions
// (Get, MajorSlice, Broadcast, Map, Add, ...) which use the capability when
// present and otherwise coerce into the implementation registered under
// DefaultKey and retry there once.
package protocol

import (
	"errors"

	"github.com/born-ml/strided/internal/shape"
)

// DefaultKey is the registry key of the canonical implementation.
const DefaultKey = "ndarray"

// ErrNotImplemented is returned when a capability is absent and no fallback can serve it.
var ErrNotImplemented = errors.New("ndarray: capability not implemented")

// Array is the dimension-info capability every representation implements.
// len(Shape()) must equal Dimensionality().
type Array interface {
	Dimensionality() int
	Shape() shape.Shape
	DimensionCount(axis int) (int, error)
}

// Scalar is implemented by rank-0 representations to expose their value.
type Scalar interface {
	ScalarValue() any
}

// Getter reads elements. A full index yields an element, a partial index a sub-array.
type Getter interface {
	Get(index ...int) (any, error)
}

// Setter returns a copy with the addressed element (or sub-array) replaced.
type Setter interface {
	Set(value any, index ...int) (Array, error)
}

// MutableSetter writes in place.
type MutableSetter interface {
	IsMutable() bool
	SetInPlace(value any, index ...int) error
}

// MajorSlicer returns the sub-array obtained by fixing the leading index.
type MajorSlicer interface {
	MajorSlice(i int) (Array, error)
}

// Slicer returns the sub-array obtained by fixing the index along any axis.
type Slicer interface {
	Slice(axis, i int) (Array, error)
}

// Broadcaster expands an array to a larger shape by repetition.
type Broadcaster interface {
	Broadcast(target shape.Shape) (Array, error)
}

// Transposer reverses the axes of an array.
type Transposer interface {
	Transpose() (Array, error)
}

// Mapper applies functions element-wise.
//
// Map broadcasts the receiver and others to their common shape, which may be
// larger than the receiver's, and passes one element of each to f at every
// position of it. MapIndexed passes the full coordinate.
type Mapper interface {
	Map(f func(xs ...any) any, others ...Array) (Array, error)
	MapIndexed(f func(idx []int, x any) any) (Array, error)
}

// Reducer left-folds over the elements in row-major order.
type Reducer interface {
	Reduce(f func(acc, x any) any) (any, error)
	ReduceFrom(seed any, f func(acc, x any) any) (any, error)
}

// MutableMapper maps in place.
//
// A slot holding a value that is itself independently mutable is mapped in
// place; any other slot is replaced by f's result.
type MutableMapper interface {
	MapInPlace(f func(x any) any) error
}

// Arithmetic combines arrays element-wise. The argument has already been
// coerced into the receiver's representation when called through Add, Sub or Mul.
type Arithmetic interface {
	Add(other Array) (Array, error)
	Sub(other Array) (Array, error)
	Mul(other Array) (Array, error)
	Scale(factor any) (Array, error)
}

// Equaler compares structurally with any other value.
type Equaler interface {
	Equal(other any) bool
}

// Representation tags a value with the key of its implementation.
type Representation interface {
	ImplementationKey() string
}

// Implementation is the canonical instance of a representation, as stored in the registry.
// Coerce converts an arbitrary value into the representation, returning values
// already in it unchanged.
type Implementation interface {
	Representation
	Coerce(source any) (Array, error)
}
