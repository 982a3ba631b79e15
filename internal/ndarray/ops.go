package ndarray

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/born-ml/strided/internal/protocol"
	"github.com/born-ml/strided/internal/shape"
	"github.com/born-ml/strided/internal/specialize"
)

// guard runs fn and returns any error panic raised inside it, such as
// specialize.ErrNoArithmetic from the Object algebra.
func guard(fn func() error) (err error) {
	if e := exceptions.TryCatch[error](func() { err = fn() }); e != nil {
		return e
	}
	return err
}

// distinct returns l with every stride-0 axis collapsed, so each storage
// element it reaches is visited once.
func (l layout) distinct() layout {
	out := layout{shape: l.shape.Clone(), strides: append([]int(nil), l.strides...), offset: l.offset}
	for d, st := range out.strides {
		if st == 0 {
			out.shape[d] = min(out.shape[d], 1)
		}
	}
	return out
}

// overlaps reports whether two indices of l address the same storage element.
func (l layout) overlaps() bool {
	for d, st := range l.strides {
		if st == 0 && l.shape[d] > 1 {
			return true
		}
	}
	return false
}

// as returns c when it already has kind k, else a converted copy.
func as(c *base, k Kind) (*base, error) {
	if c.Kind() == k {
		return c, nil
	}
	a, err := ConvertKind(c, k)
	if err != nil {
		return nil, err
	}
	return &a.base, nil
}

// stridedOf exposes the store of c as a typed operand, if its elements are T.
func stridedOf[T any](c *base) (specialize.Strided[T], bool) {
	r, ok := c.data.(rawer[T])
	if !ok {
		return specialize.Strided[T]{}, false
	}
	return specialize.Strided[T]{Data: r.raw(), Shape: c.shape, Strides: c.strides, Offset: c.offset}, true
}

// boxed returns c as an operand of boxed elements.
func boxed(c *base) (specialize.Strided[any], error) {
	o, err := as(c, Object)
	if err != nil {
		return specialize.Strided[any]{}, err
	}
	s, _ := stridedOf[any](o)
	return s, nil
}

// narrow converts a boxed result to k when k is numeric and every element fits.
func narrow(out *Array, k Kind) *Array {
	if !k.IsNumeric() {
		return out
	}
	n, err := ConvertKind(out, k)
	if err != nil {
		return out
	}
	return n
}

// Map applies f element-wise over the receiver and others, which are
// broadcast to a common shape. f receives one element per operand, the
// receiver's first.
//
// The result keeps the promoted numeric kind of the operands when every value
// f returns converts to it, and is of kind Object otherwise.
func (b *base) Map(f func(xs ...any) any, others ...protocol.Array) (protocol.Array, error) {
	out, err := b.MapAll(f, others...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MapAll is Map returning the concrete array.
func (b *base) MapAll(f func(xs ...any) any, others ...protocol.Array) (*Array, error) {
	operands := []*base{b}
	s := b.shape
	k := b.Kind()
	for i, o := range others {
		x, err := asNDArray(o)
		if err != nil {
			return nil, err
		}
		c := x.core()
		if s, err = shape.BroadcastShapes(s, c.shape); err != nil {
			return nil, errors.WithMessagef(err, "map operand %d", i+1)
		}
		k = promote(k, c.Kind())
		operands = append(operands, c)
	}
	srcs := make([]specialize.Strided[any], len(operands))
	for i, c := range operands {
		v, err := c.BroadcastView(s)
		if err != nil {
			return nil, err
		}
		if srcs[i], err = boxed(&v.base); err != nil {
			return nil, err
		}
	}
	out := newArray(Object, s)
	dst, _ := stridedOf[any](&out.base)
	err := guard(func() error {
		return specialize.NAry(dst, srcs, func(_ int, xs []any) any { return f(xs...) })
	})
	if err != nil {
		return nil, err
	}
	return narrow(out, k), nil
}

// MapIndexed applies f to every coordinate and element. The coordinate slice
// is owned by f.
func (b *base) MapIndexed(f func(idx []int, x any) any) (protocol.Array, error) {
	src, err := boxed(b)
	if err != nil {
		return nil, err
	}
	out := newArray(Object, b.shape)
	dst, _ := stridedOf[any](&out.base)
	err = guard(func() error {
		return specialize.Indexed(dst, src, func(idx []int, x any) any {
			return f(append([]int(nil), idx...), x)
		})
	})
	if err != nil {
		return nil, err
	}
	return narrow(out, b.Kind()), nil
}

// Reduce left-folds f over the elements in row-major order, seeded with the
// first element. It fails with ErrEmpty when there are no elements.
func (b *base) Reduce(f func(acc, x any) any) (any, error) {
	if b.NumElements() == 0 {
		return nil, errors.Wrapf(ErrEmpty, "reduce of %s", b)
	}
	var acc any
	first := true
	err := guard(func() error {
		for v := range b.Elements() {
			if first {
				acc, first = v, false
				continue
			}
			acc = f(acc, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// ReduceFrom left-folds f over the elements in row-major order starting from seed.
func (b *base) ReduceFrom(seed any, f func(acc, x any) any) (any, error) {
	acc := seed
	err := guard(func() error {
		for v := range b.Elements() {
			acc = f(acc, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Sum adds up all elements with the kind's own arithmetic.
// An empty array sums to the kind's zero.
func (b *base) Sum() (any, error) {
	var out any
	err := guard(func() error {
		out = b.data.sum(b.layout)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MapInPlace replaces every element x by f(x).
//
// On an Object array, an element that is itself an independently mutable
// array is mapped in place instead of being replaced. Elements reached through
// several indices of a broadcast view are mapped once.
//
// Results are staged in a scratch store of the array's kind and written back
// only once every f(x) has converted, so a failing call leaves the array as it
// was. Elements already mapped in place are not rolled back.
func (b *base) MapInPlace(f func(x any) any) error {
	if !b.IsMutable() {
		return errors.Wrapf(protocol.ErrNotImplemented, "MapInPlace on immutable %s", b)
	}
	l := b.distinct()
	boxes := b.Kind() == Object
	return guard(func() error {
		scratch := b.data.alloc(l.shape.NumElements())
		offsets := make([]int, 0, scratch.len())
		for idx := range l.shape.Iter() {
			off := l.at(idx)
			v := b.data.load(off)
			if boxes && protocol.IsMutable(v) {
				if err := v.(protocol.MutableMapper).MapInPlace(f); err != nil {
					return err
				}
				continue
			}
			if err := scratch.store(len(offsets), f(v)); err != nil {
				return err
			}
			offsets = append(offsets, off)
		}
		for j, off := range offsets {
			if err := b.data.store(off, scratch.load(j)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Add returns the element-wise sum, broadcasting both operands.
func (b *base) Add(other protocol.Array) (protocol.Array, error) {
	return b.arith(specialize.OpAdd, other)
}

// Sub returns the element-wise difference, broadcasting both operands.
func (b *base) Sub(other protocol.Array) (protocol.Array, error) {
	return b.arith(specialize.OpSub, other)
}

// Mul returns the element-wise product, broadcasting both operands.
func (b *base) Mul(other protocol.Array) (protocol.Array, error) {
	return b.arith(specialize.OpMul, other)
}

func (b *base) arith(op specialize.Op, other protocol.Array) (protocol.Array, error) {
	out, err := b.Combine(op, other)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Combine applies op element-wise. Operands are broadcast to a common shape
// and converted to their promoted kind, whose specialised loop then runs.
func (b *base) Combine(op specialize.Op, other protocol.Array) (*Array, error) {
	o, err := asNDArray(other)
	if err != nil {
		return nil, err
	}
	c := o.core()
	s, err := shape.BroadcastShapes(b.shape, c.shape)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s %s and %s", op, b, c)
	}
	k := promote(b.Kind(), c.Kind())
	x, err := broadcastAs(b, k, s)
	if err != nil {
		return nil, err
	}
	y, err := broadcastAs(c, k, s)
	if err != nil {
		return nil, err
	}
	out := newArray(k, s)
	if err := guard(func() error { return out.data.combine(op, out.layout, x.layout, x.data, y.layout, y.data) }); err != nil {
		return nil, err
	}
	return out, nil
}

// broadcastAs returns c with kind k viewed under shape s.
func broadcastAs(c *base, k Kind, s shape.Shape) (*base, error) {
	x, err := as(c, k)
	if err != nil {
		return nil, err
	}
	v, err := x.BroadcastView(s)
	if err != nil {
		return nil, err
	}
	return &v.base, nil
}

// scaleKind returns the kind of an array of kind k scaled by factor. Numeric
// factors keep the receiver's kind, except that a fractional factor moves
// Int64 to Float64.
func scaleKind(k Kind, factor any) Kind {
	switch {
	case k == Object || kindOfValue(factor) == Object:
		return Object
	case k == Int64:
		if _, ok := specialize.AsIntegral(factor); ok {
			return Int64
		}
		return Float64
	default:
		return k
	}
}

// Scale returns every element multiplied by factor.
func (b *base) Scale(factor any) (protocol.Array, error) {
	out, err := b.ScaleBy(factor)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ScaleBy is Scale returning the concrete array.
func (b *base) ScaleBy(factor any) (*Array, error) {
	if s, ok := factor.(protocol.Scalar); ok && protocol.Dimensionality(factor) == 0 {
		factor = s.ScalarValue()
	}
	k := scaleKind(b.Kind(), factor)
	src, err := as(b, k)
	if err != nil {
		return nil, err
	}
	out := newArray(k, b.shape)
	if err := guard(func() error { return out.data.scale(out.layout, src.layout, src.data, factor) }); err != nil {
		return nil, err
	}
	return out, nil
}

// AddProductInPlace accumulates the element-wise product x*y into the
// receiver. x and y are broadcast to the receiver's shape and converted to its
// kind; the receiver itself is never reshaped.
func (b *base) AddProductInPlace(x, y protocol.Array) error {
	if !b.IsMutable() {
		return errors.Wrapf(protocol.ErrNotImplemented, "AddProductInPlace on immutable %s", b)
	}
	if b.overlaps() {
		return errors.Wrapf(ErrAliasedWrite, "AddProductInPlace into %s with strides %v", b, b.strides)
	}
	xs, err := b.inPlaceOperand(x)
	if err != nil {
		return err
	}
	ys, err := b.inPlaceOperand(y)
	if err != nil {
		return err
	}
	return guard(func() error { return b.data.addProduct(b.layout, xs.layout, xs.data, ys.layout, ys.data) })
}

// inPlaceOperand prepares a source of an in-place kernel on the receiver:
// broadcast to its shape, of its kind, and detached from its store.
func (b *base) inPlaceOperand(src any) (*base, error) {
	o, err := asNDArray(src)
	if err != nil {
		return nil, err
	}
	c, err := broadcastAs(o.core(), b.Kind(), b.shape)
	if err != nil {
		return nil, err
	}
	if c.data == b.data {
		c = &c.Materialize().base
	}
	return c, nil
}

// AssignInPlace copies src, broadcast to the receiver's shape, into the
// receiver. src may be any value Construct accepts.
func (b *base) AssignInPlace(src any) error {
	if !b.IsMutable() {
		return errors.Wrapf(protocol.ErrNotImplemented, "AssignInPlace on immutable %s", b)
	}
	o, err := asNDArray(src)
	if err != nil {
		return err
	}
	v, err := o.core().BroadcastView(b.shape)
	if err != nil {
		return err
	}
	from := &v.base
	if from.data == b.data {
		from = &from.Materialize().base
	}
	return guard(func() error { return b.data.copyFrom(b.layout, from.layout, from.data) })
}

// Fill sets every element to value.
func (b *base) Fill(value any) error {
	if !b.IsMutable() {
		return errors.Wrapf(protocol.ErrNotImplemented, "Fill on immutable %s", b)
	}
	if s, ok := value.(protocol.Scalar); ok && protocol.Dimensionality(value) == 0 {
		value = s.ScalarValue()
	}
	l := b.distinct()
	for idx := range l.shape.Iter() {
		if err := b.data.store(l.at(idx), value); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether other has the same shape and equal elements. Arrays of
// different kinds compare by value; other may be any value Construct accepts.
func (b *base) Equal(other any) bool {
	o, err := asNDArray(other)
	if err != nil {
		return false
	}
	c := o.core()
	if !b.shape.Equal(c.shape) {
		return false
	}
	x, y := b, c
	if x.Kind() != y.Kind() {
		if x, err = as(x, Object); err != nil {
			return false
		}
		if y, err = as(y, Object); err != nil {
			return false
		}
	}
	var eq bool
	err = guard(func() (err error) {
		eq, err = x.data.equal(x.layout, y.layout, y.data)
		return err
	})
	return err == nil && eq
}

// MapOf applies f to every element of a, whose elements must be of type T.
// The loop runs on the unboxed store.
//
// Example:
//
//	inc, err := ndarray.MapOf(a, func(x float64) float64 { return x + 1 })
func MapOf[T any](a NDArray, f func(x T) T) (*Array, error) {
	c := a.core()
	src, ok := stridedOf[T](c)
	if !ok {
		return nil, errors.Wrapf(ErrElementKind, "%s elements are not %s", c, KindOf[T]())
	}
	out := newArray(c.Kind(), c.shape)
	dst, _ := stridedOf[T](&out.base)
	if err := guard(func() error { return specialize.Unary(dst, src, func(_ int, x T) T { return f(x) }) }); err != nil {
		return nil, err
	}
	return out, nil
}

// ZipOf combines a and b element-wise with f after broadcasting them to a
// common shape. Both must hold elements of type T.
func ZipOf[T any](a, b NDArray, f func(x, y T) T) (*Array, error) {
	ca, cb := a.core(), b.core()
	s, err := shape.BroadcastShapes(ca.shape, cb.shape)
	if err != nil {
		return nil, err
	}
	va, err := ca.BroadcastView(s)
	if err != nil {
		return nil, err
	}
	vb, err := cb.BroadcastView(s)
	if err != nil {
		return nil, err
	}
	x, okx := stridedOf[T](&va.base)
	y, oky := stridedOf[T](&vb.base)
	if !okx || !oky {
		return nil, errors.Wrapf(ErrElementKind, "zip of %s and %s as %s", ca, cb, KindOf[T]())
	}
	out := newArray(ca.Kind(), s)
	dst, _ := stridedOf[T](&out.base)
	if err := guard(func() error { return specialize.Binary(dst, x, y, func(_ int, p, q T) T { return f(p, q) }) }); err != nil {
		return nil, err
	}
	return out, nil
}

// FoldOf left-folds f over the elements of a, which must be of type T, in
// row-major order.
func FoldOf[T, A any](a NDArray, acc A, f func(acc A, x T) A) (A, error) {
	c := a.core()
	src, ok := stridedOf[T](c)
	if !ok {
		return acc, errors.Wrapf(ErrElementKind, "%s elements are not %s", c, KindOf[T]())
	}
	var out A
	err := guard(func() error {
		out = specialize.Fold(src, acc, f)
		return nil
	})
	if err != nil {
		return acc, err
	}
	return out, nil
}
