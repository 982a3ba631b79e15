package protocol

import "github.com/pkg/errors"

// IsMutable reports whether v can be mapped in place independently of its container.
func IsMutable(v any) bool {
	if _, ok := v.(MutableMapper); !ok {
		return false
	}
	if m, ok := v.(interface{ IsMutable() bool }); ok {
		return m.IsMutable()
	}
	return true
}

// MapInPlace maps f over x in place.
//
// Representations implementing MutableMapper handle it themselves. Otherwise x
// must be a mutable MutableSetter. When x is also a MajorSlicer, each major
// slice that is itself mutable is mapped in place, and every other slice is
// replaced through SetInPlace. Without MajorSlicer, x is walked element by
// element at full indices. There is no canonical fallback, since the
// canonical copy is not x.
func MapInPlace(x Array, f func(v any) any) error {
	if m, ok := x.(MutableMapper); ok {
		if !IsMutable(x) {
			return errors.Wrapf(ErrNotImplemented, "MapInPlace on immutable %T", x)
		}
		_, err := contain(func() (struct{}, error) { return struct{}{}, m.MapInPlace(f) })
		return err
	}
	setter, ok := x.(MutableSetter)
	if !ok || !setter.IsMutable() {
		return errors.Wrapf(ErrNotImplemented, "MapInPlace on immutable %T", x)
	}
	if x.Dimensionality() == 0 {
		if s, ok := x.(Scalar); ok {
			return setter.SetInPlace(f(s.ScalarValue()))
		}
	}
	if _, ok := x.(MajorSlicer); !ok || x.Dimensionality() == 0 {
		return mapElements(x, setter, f)
	}
	n, err := x.DimensionCount(0)
	if err != nil {
		return err
	}
	for i := range n {
		if err := mapSlot(x, setter, i, f); err != nil {
			return err
		}
	}
	return nil
}

func mapSlot(x Array, setter MutableSetter, i int, f func(v any) any) error {
	if x.Dimensionality() == 1 {
		v, err := Get(x, i)
		if err != nil {
			return err
		}
		if IsMutable(v) {
			return v.(MutableMapper).MapInPlace(f)
		}
		return setter.SetInPlace(f(v), i)
	}
	slice, err := MajorSlice(x, i)
	if err != nil {
		return err
	}
	if IsMutable(slice) {
		return MapInPlace(slice, f)
	}
	mapped, err := Map(slice, func(xs ...any) any { return f(xs[0]) })
	if err != nil {
		return err
	}
	return setter.SetInPlace(mapped, i)
}

// mapElements maps every element of x through Get and SetInPlace at full
// indices. Major slices of x taken by fallback would be canonical copies.
func mapElements(x Array, setter MutableSetter, f func(v any) any) error {
	for idx := range x.Shape().Iter() {
		v, err := Get(x, idx...)
		if err != nil {
			return err
		}
		if IsMutable(v) {
			if err := v.(MutableMapper).MapInPlace(f); err != nil {
				return err
			}
			continue
		}
		if err := setter.SetInPlace(f(v), idx...); err != nil {
			return err
		}
	}
	return nil
}
