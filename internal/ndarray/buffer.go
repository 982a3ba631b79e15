package ndarray

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/born-ml/strided/internal/shape"
	"github.com/born-ml/strided/internal/specialize"
)

// layout addresses a region of a backing store.
type layout struct {
	shape   shape.Shape
	strides []int
	offset  int
}

// canonical returns the row-major layout of s starting at offset 0.
func canonical(s shape.Shape) layout {
	return layout{shape: s.Clone(), strides: s.ComputeStrides()}
}

// at maps a full index to a storage offset. The index is assumed in bounds.
func (l layout) at(idx []int) int {
	off := l.offset
	for d, i := range idx {
		off += i * l.strides[d]
	}
	return off
}

// buffer is a flat backing store of one element kind.
//
// Each kind is backed by one instantiation of typed, fixed when the store is
// allocated. Kernel methods therefore dispatch once per call, through this
// interface, and then run a loop specialised to the element type. Buffer
// arguments of kernel methods must have the receiver's kind.
type buffer interface {
	kind() Kind
	len() int
	load(i int) any
	store(i int, v any) error
	alloc(n int) buffer

	copyFrom(dst layout, src layout, from buffer) error
	combine(op specialize.Op, dst layout, a layout, abuf buffer, b layout, bbuf buffer) error
	addProduct(dst layout, a layout, abuf buffer, b layout, bbuf buffer) error
	scale(dst layout, src layout, sbuf buffer, factor any) error
	sum(src layout) any
	equal(a layout, b layout, bbuf buffer) (bool, error)
}

// typed is the buffer of elements of type T with algebra O.
type typed[T any, O specialize.Ops[T]] struct {
	data []T
	ops  O
	k    Kind
	conv func(v any) (T, error)
}

// rawer exposes the typed slice of a buffer to generic callers.
type rawer[T any] interface {
	raw() []T
}

// newBuffer allocates a zeroed store of n elements of kind k.
func newBuffer(k Kind, n int) buffer {
	switch k {
	case Float64:
		return &typed[float64, specialize.Prim[float64]]{data: make([]float64, n), k: k, conv: toFloat64}
	case Float32:
		return &typed[float32, specialize.Prim[float32]]{data: make([]float32, n), k: k, conv: toFloat32}
	case Float16:
		return &typed[float16.Float16, specialize.Half]{data: make([]float16.Float16, n), k: k, conv: toFloat16}
	case Int64:
		return &typed[int64, specialize.Prim[int64]]{data: make([]int64, n), k: k, conv: toInt64}
	case Object:
		return &typed[any, specialize.Object]{data: make([]any, n), k: k, conv: toObject}
	default:
		exceptions.Panicf("ndarray: unknown element kind %d", int(k))
		return nil
	}
}

func (b *typed[T, O]) kind() Kind { return b.k }

func (b *typed[T, O]) len() int { return len(b.data) }

func (b *typed[T, O]) raw() []T { return b.data }

func (b *typed[T, O]) load(i int) any { return b.data[i] }

func (b *typed[T, O]) store(i int, v any) error {
	x, err := b.conv(v)
	if err != nil {
		return err
	}
	b.data[i] = x
	return nil
}

func (b *typed[T, O]) alloc(n int) buffer {
	return &typed[T, O]{data: make([]T, n), ops: b.ops, k: b.k, conv: b.conv}
}

func (b *typed[T, O]) operand(l layout) specialize.Strided[T] {
	return specialize.Strided[T]{Data: b.data, Shape: l.shape, Strides: l.strides, Offset: l.offset}
}

// peer returns other as the receiver's own instantiation.
func (b *typed[T, O]) peer(other buffer) *typed[T, O] {
	p, ok := other.(*typed[T, O])
	if !ok {
		exceptions.Panicf("ndarray: kernel operand of kind %s on %s store", other.kind(), b.k)
	}
	return p
}

func (b *typed[T, O]) copyFrom(dst layout, src layout, from buffer) error {
	if p, ok := from.(*typed[T, O]); ok {
		return specialize.Copy(b.operand(dst), p.operand(src))
	}
	// Cross-kind copy converts element by element.
	if !dst.shape.Equal(src.shape) {
		return errors.Wrapf(shape.ErrShapeMismatch, "copy %v into %v", src.shape, dst.shape)
	}
	for idx := range dst.shape.Iter() {
		x, err := b.conv(from.load(src.at(idx)))
		if err != nil {
			return err
		}
		b.data[dst.at(idx)] = x
	}
	return nil
}

func (b *typed[T, O]) combine(op specialize.Op, dst layout, a layout, abuf buffer, bl layout, bbuf buffer) error {
	return specialize.Combine(b.ops, op, b.operand(dst), b.peer(abuf).operand(a), b.peer(bbuf).operand(bl))
}

func (b *typed[T, O]) addProduct(dst layout, a layout, abuf buffer, bl layout, bbuf buffer) error {
	return specialize.AddProduct(b.ops, b.operand(dst), b.peer(abuf).operand(a), b.peer(bbuf).operand(bl))
}

func (b *typed[T, O]) scale(dst layout, src layout, sbuf buffer, factor any) error {
	f, err := b.conv(factor)
	if err != nil {
		return err
	}
	return specialize.Scale(b.ops, b.operand(dst), b.peer(sbuf).operand(src), f)
}

func (b *typed[T, O]) sum(src layout) any {
	return specialize.Sum(b.ops, b.operand(src))
}

func (b *typed[T, O]) equal(a layout, bl layout, bbuf buffer) (bool, error) {
	return specialize.Equal(b.ops, b.operand(a), b.peer(bbuf).operand(bl))
}

func toFloat64(v any) (float64, error) {
	f, ok := specialize.AsFloat64(v)
	if !ok {
		return 0, errors.Wrapf(ErrElementKind, "%T as float64", v)
	}
	return f, nil
}

func toFloat32(v any) (float32, error) {
	f, ok := specialize.AsFloat64(v)
	if !ok {
		return 0, errors.Wrapf(ErrElementKind, "%T as float32", v)
	}
	return float32(f), nil
}

func toFloat16(v any) (float16.Float16, error) {
	if h, ok := v.(float16.Float16); ok {
		return h, nil
	}
	f, ok := specialize.AsFloat64(v)
	if !ok {
		return 0, errors.Wrapf(ErrElementKind, "%T as float16", v)
	}
	return float16.Fromfloat32(float32(f)), nil
}

func toInt64(v any) (int64, error) {
	i, ok := specialize.AsIntegral(v)
	if !ok {
		return 0, errors.Wrapf(ErrElementKind, "%v (%T) as int64", v, v)
	}
	return i, nil
}

func toObject(v any) (any, error) {
	return v, nil
}
