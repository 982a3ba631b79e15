package ndarray

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/born-ml/strided/internal/protocol"
	"github.com/born-ml/strided/internal/shape"
)

// Key is the registry key of this representation.
const Key = protocol.DefaultKey

// NDArray is the operation set shared by owning arrays and views.
type NDArray interface {
	protocol.Array
	protocol.Scalar
	protocol.Getter
	protocol.Setter
	protocol.MutableSetter
	protocol.MajorSlicer
	protocol.Slicer
	protocol.Broadcaster
	protocol.Transposer
	protocol.Mapper
	protocol.Reducer
	protocol.MutableMapper
	protocol.Arithmetic
	protocol.Equaler
	protocol.Representation

	Kind() Kind
	Strides() []int
	Offset() int
	NumElements() int
	IsContiguous() bool
	Owner() *Array
	Materialize() *Array
	ToNested() any

	core() *base
}

// base holds what owning arrays and views have in common: a layout over a
// backing store, and the owner responsible for the store.
type base struct {
	layout
	data  buffer
	owner *Array
}

// Array is an n-dimensional array that owns its backing store.
//
// Arrays are created mutable. Operations other than the explicit in-place ones
// (SetInPlace, MapInPlace, AddProductInPlace, AssignInPlace, Fill) return new
// arrays and leave the receiver untouched.
type Array struct {
	base
	mutable bool
}

// View is a non-owning array sharing its owner's backing store through its own
// shape, strides and offset. Writes through a view are visible in the owner
// and in every other view of it. A view of a view refers to the same owner.
//
// Views produced by Transpose or Broadcast do not have canonical row-major
// strides; Materialize them before relying on a contiguous layout.
type View struct {
	base
}

var (
	_ NDArray = (*Array)(nil)
	_ NDArray = (*View)(nil)
)

func newArray(k Kind, s shape.Shape) *Array {
	a := &Array{
		base: base{
			layout: canonical(s),
			data:   newBuffer(k, s.NumElements()),
		},
		mutable: true,
	}
	a.owner = a
	return a
}

// Zeros creates an array of kind k filled with the kind's zero value:
// numeric zero, or nil for Object.
func Zeros(k Kind, s shape.Shape) (*Array, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if k < Float64 || k > Object {
		return nil, errors.Wrapf(ErrElementKind, "unknown kind %d", int(k))
	}
	return newArray(k, s), nil
}

// Full creates an array of kind k with every element set to value.
func Full(k Kind, s shape.Shape, value any) (*Array, error) {
	a, err := Zeros(k, s)
	if err != nil {
		return nil, err
	}
	if err := a.Fill(value); err != nil {
		return nil, err
	}
	return a, nil
}

// FromFlat creates an array of shape s from row-major data.
// The data is copied.
//
// Example:
//
//	a, err := ndarray.FromFlat([]float64{1, 2, 3, 4}, shape.Shape{2, 2})
func FromFlat[T any](data []T, s shape.Shape) (*Array, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.NumElements() != len(data) {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "shape %v requires %d elements, but got %d",
			s, s.NumElements(), len(data))
	}
	a := newArray(KindOf[T](), s)
	if r, ok := a.data.(rawer[T]); ok {
		copy(r.raw(), data)
		return a, nil
	}
	for i, v := range data {
		if err := a.data.store(i, v); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Scalar wraps v in a rank-0 array.
func Scalar(v any) *Array {
	a := newArray(kindOfValue(v), shape.Shape{})
	if err := a.data.store(0, v); err != nil {
		exceptions.Panicf("ndarray: scalar %v (%T) rejected by its own kind: %v", v, v, err)
	}
	return a
}

// view returns a view over the same store with layout l.
func (b *base) view(l layout) *View {
	return &View{base: base{layout: l, data: b.data, owner: b.owner}}
}

func (b *base) core() *base { return b }

// Dimensionality returns the rank.
func (b *base) Dimensionality() int {
	return len(b.shape)
}

// Shape returns a copy of the shape.
func (b *base) Shape() shape.Shape {
	return b.shape.Clone()
}

// Strides returns a copy of the strides.
func (b *base) Strides() []int {
	return append([]int(nil), b.strides...)
}

// Offset returns the storage offset of the first element.
func (b *base) Offset() int {
	return b.offset
}

// DimensionCount returns the size of axis.
func (b *base) DimensionCount(axis int) (int, error) {
	if axis < 0 || axis >= len(b.shape) {
		return 0, errors.Wrapf(shape.ErrIndexOutOfBounds, "axis %d for rank %d", axis, len(b.shape))
	}
	return b.shape[axis], nil
}

// NumElements returns the logical number of elements.
func (b *base) NumElements() int {
	return b.shape.NumElements()
}

// Kind returns the element kind of the backing store.
func (b *base) Kind() Kind {
	return b.data.kind()
}

// IsContiguous reports whether the elements form a dense row-major run of the store.
func (b *base) IsContiguous() bool {
	return shape.IsCanonical(b.shape, b.strides)
}

// IsMutable reports whether in-place operations are permitted.
// Views follow their owner.
func (b *base) IsMutable() bool {
	return b.owner.mutable
}

// Owner returns the array responsible for the backing store.
func (b *base) Owner() *Array {
	return b.owner
}

// ImplementationKey returns Key.
func (b *base) ImplementationKey() string {
	return Key
}

// ScalarValue returns the element of a rank-0 array, and nil for higher ranks.
func (b *base) ScalarValue() any {
	if len(b.shape) != 0 {
		return nil
	}
	return b.data.load(b.offset)
}

// String returns a short description of the array.
func (b *base) String() string {
	return fmt.Sprintf("NDArray[%s]%v", b.Kind(), []int(b.shape))
}

// Freeze marks the array, and every view of it, immutable.
func (a *Array) Freeze() *Array {
	a.mutable = false
	return a
}

// Get returns the element at a full index, or a view of the sub-array at a partial index.
func (b *base) Get(index ...int) (any, error) {
	off, err := shape.Offset(b.shape, b.strides, index, b.offset)
	if err != nil {
		return nil, err
	}
	if len(index) < len(b.shape) {
		return b.subView(index, off), nil
	}
	return b.data.load(off), nil
}

// At returns the element at a full index as T.
func At[T any](a NDArray, index ...int) (T, error) {
	var zero T
	if len(index) != a.Dimensionality() {
		return zero, errors.Wrapf(shape.ErrRankMismatch, "expected %d indices, got %d", a.Dimensionality(), len(index))
	}
	v, err := a.Get(index...)
	if err != nil {
		return zero, err
	}
	x, ok := v.(T)
	if !ok {
		return zero, errors.Wrapf(ErrElementKind, "element %v is %T, not %T", index, v, zero)
	}
	return x, nil
}

// SubArray returns a view of the sub-array addressed by a partial index.
func (b *base) SubArray(index ...int) (*View, error) {
	off, err := shape.Offset(b.shape, b.strides, index, b.offset)
	if err != nil {
		return nil, err
	}
	return b.subView(index, off), nil
}

func (b *base) subView(index []int, off int) *View {
	k := len(index)
	return b.view(layout{
		shape:   b.shape[k:].Clone(),
		strides: append([]int(nil), b.strides[k:]...),
		offset:  off,
	})
}

// SetInPlace writes value at index. A partial index assigns value, broadcast
// if needed, to the whole addressed sub-array.
func (b *base) SetInPlace(value any, index ...int) error {
	if !b.IsMutable() {
		return errors.Wrapf(protocol.ErrNotImplemented, "SetInPlace on immutable %s", b)
	}
	off, err := shape.Offset(b.shape, b.strides, index, b.offset)
	if err != nil {
		return err
	}
	if len(index) == len(b.shape) {
		// Object slots may hold arrays as elements.
		if b.Kind() == Object && protocol.Dimensionality(value) > 0 {
			return b.data.store(off, value)
		}
		if protocol.Dimensionality(value) == 0 {
			if s, ok := value.(protocol.Scalar); ok {
				value = s.ScalarValue()
			}
			return b.data.store(off, value)
		}
	}
	return b.subView(index, off).AssignInPlace(value)
}

// Set returns a new array equal to the receiver with the element (or
// sub-array) at index replaced by value. The receiver is unchanged.
func (b *base) Set(value any, index ...int) (protocol.Array, error) {
	return b.With(value, index...)
}

// With is Set returning the concrete array.
func (b *base) With(value any, index ...int) (*Array, error) {
	out := b.Materialize()
	if err := out.SetInPlace(value, index...); err != nil {
		return nil, err
	}
	return out, nil
}

// Materialize returns an owning, row-major copy with the same kind.
func (b *base) Materialize() *Array {
	out := newArray(b.Kind(), b.shape)
	if err := out.data.copyFrom(out.layout, b.layout, b.data); err != nil {
		exceptions.Panicf("ndarray: materialize %s: %v", b, err)
	}
	return out
}

// Clone returns an owning copy of the array. It is Materialize under the name
// callers holding an owning array usually look for.
func (a *Array) Clone() *Array {
	return a.Materialize()
}
