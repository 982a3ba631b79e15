// Package shape implements shape, stride and offset arithmetic for strided arrays.
package shape

import (
	"iter"

	"github.com/pkg/errors"
)

// Shape represents the dimensions of an array.
type Shape []int

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// NumElements returns the total number of elements.
// A scalar (rank 0) holds one element; any zero dimension yields zero.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that no dimension is negative. Zero dimensions are valid.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return errors.Wrapf(ErrInvalidShape, "dimension %d is %d", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
// The shape is assumed valid; use Strides for a checked variant.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Strides returns the canonical row-major strides of s.
func Strides(s Shape) ([]int, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s.ComputeStrides(), nil
}

// IsCanonical reports whether strides are the row-major strides of s.
// Axes of size 1 are ignored since their stride never contributes to an offset.
func IsCanonical(s Shape, strides []int) bool {
	if len(strides) != len(s) {
		return false
	}
	want := 1
	for d := len(s) - 1; d >= 0; d-- {
		if s[d] != 1 && strides[d] != want {
			return false
		}
		want *= s[d]
	}
	return true
}

// Offset maps index onto a flat storage offset using strides, starting from base.
//
// The index may be partial (fewer entries than the rank); the result is then
// the offset of the origin of the addressed sub-array.
func Offset(s Shape, strides []int, index []int, base int) (int, error) {
	if len(index) > len(s) {
		return 0, errors.Wrapf(ErrRankMismatch, "index of length %d for rank %d", len(index), len(s))
	}
	offset := base
	for d, i := range index {
		if i < 0 || i >= s[d] {
			return 0, errors.Wrapf(ErrIndexOutOfBounds, "index %d for axis %d (size %d)", i, d, s[d])
		}
		offset += i * strides[d]
	}
	return offset, nil
}

// Unravel converts a row-major linear position into coordinates of s, written into idx.
func Unravel(linear int, s Shape, idx []int) {
	for d := len(s) - 1; d >= 0; d-- {
		if s[d] == 0 {
			idx[d] = 0
			continue
		}
		idx[d] = linear % s[d]
		linear /= s[d]
	}
}

// Iter iterates over all indices of s in row-major order.
// The yielded slice is reused between iterations: don't keep or change it.
func (s Shape) Iter() iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		n := s.NumElements()
		if n == 0 {
			return
		}
		idx := make([]int, len(s))
		for range n {
			if !yield(idx) {
				return
			}
			for d := len(s) - 1; d >= 0; d-- {
				idx[d]++
				if idx[d] < s[d] {
					break
				}
				idx[d] = 0
			}
		}
	}
}
