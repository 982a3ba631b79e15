// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ndarray

import (
	"github.com/born-ml/strided/internal/ndarray"
	"github.com/born-ml/strided/internal/nested"
	"github.com/born-ml/strided/internal/protocol"
	"github.com/born-ml/strided/internal/registry"
	"github.com/born-ml/strided/internal/shape"
	"github.com/born-ml/strided/internal/specialize"
)

// Type aliases for public API

// Shape represents the dimensions of an array.
// Example: Shape{2, 3} is a 2x3 matrix.
type Shape = shape.Shape

// Kind is the element kind of an array's backing store.
type Kind = ndarray.Kind

// Element kinds.
const (
	Float64 Kind = ndarray.Float64
	Float32 Kind = ndarray.Float32
	Float16 Kind = ndarray.Float16
	Int64   Kind = ndarray.Int64
	Object  Kind = ndarray.Object
)

// NDArray is the operation set shared by owning arrays and views.
type NDArray = ndarray.NDArray

// Array is an n-dimensional array owning its backing store.
type Array = ndarray.Array

// View is a non-owning array over its owner's store.
type View = ndarray.View

// Config controls how Construct coerces sources.
type Config = ndarray.Config

// Nested is the nested-list array representation.
type Nested = nested.List

// Algebra lets Object elements take part in arithmetic.
type Algebra = specialize.Algebra

// Capability interfaces.
type (
	Capability     = protocol.Array
	Scalar         = protocol.Scalar
	Getter         = protocol.Getter
	Setter         = protocol.Setter
	MutableSetter  = protocol.MutableSetter
	MajorSlicer    = protocol.MajorSlicer
	Slicer         = protocol.Slicer
	Broadcaster    = protocol.Broadcaster
	Transposer     = protocol.Transposer
	Mapper         = protocol.Mapper
	Reducer        = protocol.Reducer
	MutableMapper  = protocol.MutableMapper
	Arithmetic     = protocol.Arithmetic
	Equaler        = protocol.Equaler
	Representation = protocol.Representation
	Implementation = protocol.Implementation
)

// Errors.
var (
	ErrInvalidShape      = shape.ErrInvalidShape
	ErrInconsistentShape = shape.ErrInconsistentShape
	ErrIndexOutOfBounds  = shape.ErrIndexOutOfBounds
	ErrRankMismatch      = shape.ErrRankMismatch
	ErrShapeMismatch     = shape.ErrShapeMismatch
	ErrIncompatibleShape = shape.ErrIncompatibleShape
	ErrElementKind       = ndarray.ErrElementKind
	ErrEmpty             = ndarray.ErrEmpty
	ErrAliasedWrite      = ndarray.ErrAliasedWrite
	ErrNotImplemented    = protocol.ErrNotImplemented
	ErrNoArithmetic      = specialize.ErrNoArithmetic
	ErrDuplicateKey      = registry.ErrDuplicateKey
	ErrUnknownKey        = registry.ErrUnknownKey
)

// Registry keys of the built-in representations.
const (
	Key       = ndarray.Key
	NestedKey = nested.Key
)

// DefaultConfig infers element kinds and produces mutable arrays.
func DefaultConfig() Config { return ndarray.DefaultConfig() }

// Construct coerces a Go scalar, nested slice or any array into a new Array.
func Construct(source any) (*Array, error) { return ndarray.Construct(source) }

// ConstructKind is Construct with a fixed element kind.
func ConstructKind(source any, k Kind) (*Array, error) { return ndarray.ConstructKind(source, k) }

// ConstructWith is Construct under cfg.
func ConstructWith(source any, cfg Config) (*Array, error) { return ndarray.ConstructWith(source, cfg) }

// ConvertKind returns an owning copy of a with element kind k.
func ConvertKind(a NDArray, k Kind) (*Array, error) { return ndarray.ConvertKind(a, k) }

// Zeros creates an array of zero values.
func Zeros(k Kind, s Shape) (*Array, error) { return ndarray.Zeros(k, s) }

// Full creates an array with every element set to value.
func Full(k Kind, s Shape, value any) (*Array, error) { return ndarray.Full(k, s, value) }

// FromFlat creates an array of shape s from row-major data.
func FromFlat[T any](data []T, s Shape) (*Array, error) { return ndarray.FromFlat(data, s) }

// NewScalar wraps v in a rank-0 array.
func NewScalar(v any) *Array { return ndarray.Scalar(v) }

// Join concatenates arrays along their leading axis.
func Join(arrays ...NDArray) (*Array, error) { return ndarray.Join(arrays...) }

// At returns the element at a full index as T.
func At[T any](a NDArray, index ...int) (T, error) { return ndarray.At[T](a, index...) }

// MapOf applies f to every element of a on its unboxed store.
func MapOf[T any](a NDArray, f func(x T) T) (*Array, error) { return ndarray.MapOf(a, f) }

// ZipOf combines a and b element-wise on their unboxed stores.
func ZipOf[T any](a, b NDArray, f func(x, y T) T) (*Array, error) { return ndarray.ZipOf(a, b, f) }

// FoldOf left-folds f over the elements of a.
func FoldOf[T, A any](a NDArray, acc A, f func(acc A, x T) A) (A, error) {
	return ndarray.FoldOf(a, acc, f)
}

// FromSlices builds a nested-list array from Go slices.
func FromSlices(source any) (*Nested, error) { return nested.FromSlices(source) }

// Register adds a representation to the default registry.
func Register(impl Implementation) error { return registry.Register(impl) }

// Dispatch through the capability protocol.
var (
	Get            = protocol.Get
	Set            = protocol.Set
	SetInPlace     = protocol.SetInPlace
	MajorSlice     = protocol.MajorSlice
	Slice          = protocol.Slice
	Broadcast      = protocol.Broadcast
	Transpose      = protocol.Transpose
	Map            = protocol.Map
	MapIndexed     = protocol.MapIndexed
	MapInPlace     = protocol.MapInPlace
	Reduce         = protocol.Reduce
	ReduceFrom     = protocol.ReduceFrom
	Add            = protocol.Add
	Sub            = protocol.Sub
	Mul            = protocol.Mul
	Scale          = protocol.Scale
	Equal          = protocol.Equal
	Coerce         = protocol.Coerce
	Canonical      = protocol.Canonical
	IsMutable      = protocol.IsMutable
	ShapeOf        = protocol.Shape
	Dimensionality = protocol.Dimensionality
)
