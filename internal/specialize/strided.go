package specialize

import (
	"github.com/pkg/errors"

	"github.com/born-ml/strided/internal/shape"
)

// Strided describes one operand of a kernel: a flat backing slice addressed
// through a shape, strides and a base offset.
type Strided[T any] struct {
	Data    []T
	Shape   shape.Shape
	Strides []int
	Offset  int
}

// Dense wraps a row-major slice as an operand of shape s.
func Dense[T any](data []T, s shape.Shape) Strided[T] {
	return Strided[T]{Data: data, Shape: s, Strides: s.ComputeStrides()}
}

// contiguous reports whether the operand covers a dense row-major run of Data.
func (s Strided[T]) contiguous() bool {
	return shape.IsCanonical(s.Shape, s.Strides)
}

// run returns the dense run backing a contiguous operand of n elements.
func (s Strided[T]) run(n int) []T {
	return s.Data[s.Offset : s.Offset+n]
}

// conform checks that all operands share the shape of the first one.
func conform[T any](first Strided[T], rest ...Strided[T]) error {
	for i, op := range rest {
		if !op.Shape.Equal(first.Shape) {
			return errors.Wrapf(shape.ErrShapeMismatch, "operand %d has shape %v, expected %v", i+1, op.Shape, first.Shape)
		}
	}
	return nil
}

func allContiguous[T any](ops ...Strided[T]) bool {
	for _, op := range ops {
		if !op.contiguous() {
			return false
		}
	}
	return true
}

// cursor walks a shape in row-major order and keeps the storage offset of
// every co-iterated operand up to date incrementally.
type cursor struct {
	shape   shape.Shape
	strides [][]int
	idx     []int
	offs    []int
}

func newCursor(s shape.Shape, strides [][]int, bases []int) *cursor {
	offs := make([]int, len(bases))
	copy(offs, bases)
	return &cursor{
		shape:   s,
		strides: strides,
		idx:     make([]int, len(s)),
		offs:    offs,
	}
}

// next advances to the following position. The last call on the final
// position leaves the cursor wrapped back at the origin.
func (c *cursor) next() {
	for d := len(c.shape) - 1; d >= 0; d-- {
		c.idx[d]++
		for k := range c.offs {
			c.offs[k] += c.strides[k][d]
		}
		if c.idx[d] < c.shape[d] {
			return
		}
		for k := range c.offs {
			c.offs[k] -= c.strides[k][d] * c.shape[d]
		}
		c.idx[d] = 0
	}
}

// walk calls fn for each of the n positions of s.
func walk[T any](ops []Strided[T], fn func(flat int, idx []int, offs []int)) {
	s := ops[0].Shape
	n := s.NumElements()
	if n == 0 {
		return
	}
	strides := make([][]int, len(ops))
	bases := make([]int, len(ops))
	for k, op := range ops {
		strides[k] = op.Strides
		bases[k] = op.Offset
	}
	c := newCursor(s, strides, bases)
	for flat := 0; flat < n; flat++ {
		fn(flat, c.idx, c.offs)
		c.next()
	}
}
