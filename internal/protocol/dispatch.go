package protocol

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/strided/internal/registry"
	"github.com/born-ml/strided/internal/shape"
)

// Resolver looks implementations up in a registry.
// The zero value uses registry.Default.
type Resolver struct {
	Registry *registry.Registry
}

func (r Resolver) table() *registry.Registry {
	if r.Registry == nil {
		return registry.Default
	}
	return r.Registry
}

// Implementation returns the implementation registered under key.
func (r Resolver) Implementation(key string) (Implementation, error) {
	e, err := r.table().Canonical(key)
	if err != nil {
		return nil, errors.Wrapf(ErrNotImplemented, "%v", err)
	}
	impl, ok := e.(Implementation)
	if !ok {
		return nil, errors.Wrapf(ErrNotImplemented, "registry entry %q (%T) cannot coerce", key, e)
	}
	return impl, nil
}

// Coerce converts source into the representation of like.
// Values without a Representation tag are treated as canonical.
func (r Resolver) Coerce(like any, source any) (Array, error) {
	key := DefaultKey
	if rep, ok := like.(Representation); ok {
		key = rep.ImplementationKey()
	}
	if rep, ok := source.(Representation); ok && rep.ImplementationKey() == key {
		if a, ok := source.(Array); ok {
			return a, nil
		}
	}
	impl, err := r.Implementation(key)
	if err != nil {
		return nil, err
	}
	return contain(func() (Array, error) { return impl.Coerce(source) })
}

// Canonical converts x into the canonical representation.
func (r Resolver) Canonical(x any) (Array, error) {
	return r.Coerce(nil, x)
}

var defaultResolver Resolver

// Coerce converts source into the representation of like, using registry.Default.
func Coerce(like any, source any) (Array, error) {
	return defaultResolver.Coerce(like, source)
}

// Canonical converts x into the canonical representation, using registry.Default.
func Canonical(x any) (Array, error) {
	return defaultResolver.Canonical(x)
}

// contain turns an error panic raised by a representation into a returned error.
func contain[R any](fn func() (R, error)) (r R, err error) {
	if e := exceptions.TryCatch[error](func() { r, err = fn() }); e != nil {
		var zero R
		return zero, e
	}
	return r, err
}

// dispatch calls the capability C on x, or on x coerced into the canonical
// representation when x lacks it. viaCanonical guards the single retry.
func dispatch[C, R any](name string, x Array, viaCanonical bool, call func(C) (R, error)) (R, error) {
	if c, ok := x.(C); ok {
		return contain(func() (R, error) { return call(c) })
	}
	var zero R
	if viaCanonical {
		return zero, errors.Wrapf(ErrNotImplemented, "%s on %T", name, x)
	}
	cx, err := Canonical(x)
	if err != nil {
		return zero, err
	}
	klog.V(3).Infof("ndarray: %s not implemented by %T, using canonical %T", name, x, cx)
	return dispatch(name, cx, true, call)
}

// Shape returns the shape of x. Values that are not arrays are scalars.
func Shape(x any) shape.Shape {
	if a, ok := x.(Array); ok {
		return a.Shape()
	}
	return shape.Shape{}
}

// Dimensionality returns the rank of x. Values that are not arrays have rank 0.
func Dimensionality(x any) int {
	if a, ok := x.(Array); ok {
		return a.Dimensionality()
	}
	return 0
}

// Get reads the element (full index) or sub-array (partial index) of x.
func Get(x Array, index ...int) (any, error) {
	return dispatch("Get", x, false, func(g Getter) (any, error) { return g.Get(index...) })
}

// Set returns a copy of x with the addressed element or sub-array replaced.
func Set(x Array, value any, index ...int) (Array, error) {
	return dispatch("Set", x, false, func(s Setter) (Array, error) { return s.Set(value, index...) })
}

// SetInPlace writes value into x. There is no fallback: mutating a canonical
// copy would not be observed by holders of x.
func SetInPlace(x Array, value any, index ...int) error {
	m, ok := x.(MutableSetter)
	if !ok || !m.IsMutable() {
		return errors.Wrapf(ErrNotImplemented, "SetInPlace on immutable %T", x)
	}
	_, err := contain(func() (struct{}, error) { return struct{}{}, m.SetInPlace(value, index...) })
	return err
}

// MajorSlice returns the sub-array of x at leading index i.
func MajorSlice(x Array, i int) (Array, error) {
	return dispatch("MajorSlice", x, false, func(s MajorSlicer) (Array, error) { return s.MajorSlice(i) })
}

// Slice returns the sub-array of x at index i along axis.
func Slice(x Array, axis, i int) (Array, error) {
	return dispatch("Slice", x, false, func(s Slicer) (Array, error) { return s.Slice(axis, i) })
}

// Broadcast expands x to target.
func Broadcast(x Array, target shape.Shape) (Array, error) {
	return dispatch("Broadcast", x, false, func(b Broadcaster) (Array, error) { return b.Broadcast(target) })
}

// Transpose reverses the axes of x.
func Transpose(x Array) (Array, error) {
	return dispatch("Transpose", x, false, func(t Transposer) (Array, error) { return t.Transpose() })
}

// Map applies f element-wise over x and others.
func Map(x Array, f func(xs ...any) any, others ...Array) (Array, error) {
	return dispatch("Map", x, false, func(m Mapper) (Array, error) { return m.Map(f, others...) })
}

// MapIndexed applies f to every coordinate and element of x.
func MapIndexed(x Array, f func(idx []int, v any) any) (Array, error) {
	return dispatch("MapIndexed", x, false, func(m Mapper) (Array, error) { return m.MapIndexed(f) })
}

// Reduce left-folds f over x, seeded with its first element.
func Reduce(x Array, f func(acc, v any) any) (any, error) {
	return dispatch("Reduce", x, false, func(r Reducer) (any, error) { return r.Reduce(f) })
}

// ReduceFrom left-folds f over x starting from seed.
func ReduceFrom(x Array, seed any, f func(acc, v any) any) (any, error) {
	return dispatch("ReduceFrom", x, false, func(r Reducer) (any, error) { return r.ReduceFrom(seed, f) })
}

// Equal reports structural equality: equal shapes and elementwise equal values.
func Equal(a, b Array) (bool, error) {
	return dispatch("Equal", a, false, func(e Equaler) (bool, error) { return e.Equal(b), nil })
}

// Add returns a+b.
func Add(a, b Array) (Array, error) {
	return arith("Add", a, b, Arithmetic.Add)
}

// Sub returns a-b.
func Sub(a, b Array) (Array, error) {
	return arith("Sub", a, b, Arithmetic.Sub)
}

// Mul returns the element-wise product of a and b.
func Mul(a, b Array) (Array, error) {
	return arith("Mul", a, b, Arithmetic.Mul)
}

// Scale multiplies every element of x by factor.
func Scale(x Array, factor any) (Array, error) {
	return dispatch("Scale", x, false, func(a Arithmetic) (Array, error) { return a.Scale(factor) })
}

// arith coerces b into a's representation and combines them there. Only when
// a's representation lacks Arithmetic are both coerced into the canonical one.
func arith(name string, a, b Array, op func(Arithmetic, Array) (Array, error)) (Array, error) {
	if x, ok := a.(Arithmetic); ok {
		other, err := Coerce(a, b)
		if err != nil {
			return nil, err
		}
		return contain(func() (Array, error) { return op(x, other) })
	}
	ca, err := Canonical(a)
	if err != nil {
		return nil, err
	}
	x, ok := ca.(Arithmetic)
	if !ok {
		return nil, errors.Wrapf(ErrNotImplemented, "%s on %T", name, a)
	}
	cb, err := Coerce(ca, b)
	if err != nil {
		return nil, err
	}
	klog.V(3).Infof("ndarray: %s not implemented by %T, using canonical %T", name, a, ca)
	return contain(func() (Array, error) { return op(x, cb) })
}
