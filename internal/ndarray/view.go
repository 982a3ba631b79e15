package ndarray

import (
	"iter"

	"github.com/pkg/errors"

	"github.com/born-ml/strided/internal/protocol"
	"github.com/born-ml/strided/internal/shape"
)

// MajorSlice returns a view of the sub-array at leading index i.
func (b *base) MajorSlice(i int) (protocol.Array, error) {
	v, err := b.MajorView(i)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// MajorView is MajorSlice returning the concrete view.
//
// Fixing the leading index of any strided layout only shifts the offset, so
// the result always shares the store; for a rank-1 array it is a rank-0 view.
func (b *base) MajorView(i int) (*View, error) {
	if len(b.shape) == 0 {
		return nil, errors.Wrap(shape.ErrRankMismatch, "major slice of a rank-0 array")
	}
	return b.SubArray(i)
}

// Slice returns the sub-array at index i along axis.
// Along axis 0 this is a view; along any other axis the elements are not a
// contiguous run of the store and the result is an owning copy.
func (b *base) Slice(axis, i int) (protocol.Array, error) {
	if axis == 0 {
		return b.MajorSlice(i)
	}
	a, err := b.SliceCopy(axis, i)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// SliceCopy returns an owning copy of the sub-array at index i along axis.
func (b *base) SliceCopy(axis, i int) (*Array, error) {
	if axis < 0 || axis >= len(b.shape) {
		return nil, errors.Wrapf(shape.ErrIndexOutOfBounds, "axis %d for rank %d", axis, len(b.shape))
	}
	if i < 0 || i >= b.shape[axis] {
		return nil, errors.Wrapf(shape.ErrIndexOutOfBounds, "index %d for axis %d (size %d)", i, axis, b.shape[axis])
	}
	l := layout{
		shape:   append(b.shape[:axis].Clone(), b.shape[axis+1:]...),
		strides: append(append([]int(nil), b.strides[:axis]...), b.strides[axis+1:]...),
		offset:  b.offset + i*b.strides[axis],
	}
	return b.view(l).Materialize(), nil
}

// Transpose returns a view with the axes reversed.
func (b *base) Transpose() (protocol.Array, error) {
	return b.TransposeView(), nil
}

// TransposeView reverses shape and strides over the same store.
// The result is not row-major unless its rank is below 2.
func (b *base) TransposeView() *View {
	n := len(b.shape)
	l := layout{
		shape:   make(shape.Shape, n),
		strides: make([]int, n),
		offset:  b.offset,
	}
	for d := range n {
		l.shape[d] = b.shape[n-1-d]
		l.strides[d] = b.strides[n-1-d]
	}
	return b.view(l)
}

// Broadcast returns a view expanded to target.
func (b *base) Broadcast(target shape.Shape) (protocol.Array, error) {
	v, err := b.BroadcastView(target)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// BroadcastView expands the array to target without copying. New leading axes
// and expanded size-1 axes get stride 0, so writes through any repeated
// position land on the single source element.
func (b *base) BroadcastView(target shape.Shape) (*View, error) {
	strides, err := shape.BroadcastStrides(b.shape, b.strides, target)
	if err != nil {
		return nil, err
	}
	return b.view(layout{shape: target.Clone(), strides: strides, offset: b.offset}), nil
}

// Reshape returns the elements in row-major order under a new shape. The
// result is a view when the receiver is contiguous, else a reshaped copy.
func (b *base) Reshape(s shape.Shape) (NDArray, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.NumElements() != b.NumElements() {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot reshape %v (%d elements) to %v (%d elements)",
			b.shape, b.NumElements(), s, s.NumElements())
	}
	l := layout{shape: s.Clone(), strides: s.ComputeStrides(), offset: b.offset}
	if b.IsContiguous() {
		return b.view(l), nil
	}
	out := b.Materialize()
	out.layout = l
	out.offset = 0
	return out, nil
}

// Elements iterates over the elements in row-major order.
func (b *base) Elements() iter.Seq[any] {
	return func(yield func(any) bool) {
		for idx := range b.shape.Iter() {
			if !yield(b.data.load(b.at(idx))) {
				return
			}
		}
	}
}

// Flat returns the elements in row-major order.
func (b *base) Flat() []any {
	out := make([]any, 0, b.NumElements())
	for v := range b.Elements() {
		out = append(out, v)
	}
	return out
}

// ToNested returns the array as nested []any slices, or the bare element for rank 0.
func (b *base) ToNested() any {
	if len(b.shape) == 0 {
		return b.data.load(b.offset)
	}
	out := make([]any, b.shape[0])
	for i := range out {
		v, _ := b.MajorView(i)
		out[i] = v.ToNested()
	}
	return out
}

// Join concatenates arrays along their leading axis into a new array.
// All arrays must share the shape of their trailing axes; the result kind
// holds every input kind.
func Join(arrays ...NDArray) (*Array, error) {
	if len(arrays) == 0 {
		return nil, errors.Wrap(shape.ErrRankMismatch, "join of no arrays")
	}
	first := arrays[0].core()
	if len(first.shape) == 0 {
		return nil, errors.Wrap(shape.ErrRankMismatch, "join of rank-0 arrays")
	}
	k := first.Kind()
	total := 0
	for i, a := range arrays {
		c := a.core()
		if len(c.shape) != len(first.shape) || !c.shape[1:].Equal(first.shape[1:]) {
			return nil, errors.Wrapf(shape.ErrInconsistentShape, "array %d has shape %v, expected [* %v]",
				i, c.shape, []int(first.shape[1:]))
		}
		total += c.shape[0]
		k = promote(k, c.Kind())
	}
	outShape := append(shape.Shape{total}, first.shape[1:]...)
	out := newArray(k, outShape)
	row := first.shape[1:].NumElements()
	pos := 0
	for _, a := range arrays {
		c := a.core()
		dst := layout{shape: c.shape, strides: c.shape.ComputeStrides(), offset: pos}
		if err := guard(func() error { return out.data.copyFrom(dst, c.layout, c.data) }); err != nil {
			return nil, err
		}
		pos += c.shape[0] * row
	}
	return out, nil
}
