// Package nested provides an array representation backed by nested Go slices.
//
// A List implements only a handful of capabilities: dimension info, element
// access, major slicing, in-place writes and in-place mapping. Everything else
// (broadcasting, transposition, mapping, reductions, arithmetic) is served by
// the canonical representation through the protocol package.
package nested

import (
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/born-ml/strided/internal/protocol"
	"github.com/born-ml/strided/internal/registry"
	"github.com/born-ml/strided/internal/shape"
)

// Key is the registry key of this representation.
const Key = "nested"

// List is a rectangular nested list. A rank-0 List holds one value. A rank-1
// List holds its elements directly, and a List of higher rank holds one List
// per leading index, all of the same shape.
type List struct {
	dims   shape.Shape
	value  any
	items  []any
	frozen bool
}

var (
	_ protocol.Array          = (*List)(nil)
	_ protocol.Scalar         = (*List)(nil)
	_ protocol.Getter         = (*List)(nil)
	_ protocol.MajorSlicer    = (*List)(nil)
	_ protocol.MutableSetter  = (*List)(nil)
	_ protocol.MutableMapper  = (*List)(nil)
	_ protocol.Representation = (*List)(nil)
)

// Of wraps a single value in a rank-0 List.
func Of(v any) *List {
	return &List{dims: shape.Shape{}, value: v}
}

// FromSlices builds a List from Go slices or arrays of any depth. Values that
// are not slices become elements. Ragged input fails with
// shape.ErrInconsistentShape.
func FromSlices(source any) (*List, error) {
	rv := reflect.ValueOf(source)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return Of(source), nil
	}
	n := rv.Len()
	l := &List{items: make([]any, n)}
	var inner shape.Shape
	for i := range n {
		child, err := FromSlices(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		if i == 0 {
			inner = child.dims
		} else if !child.dims.Equal(inner) {
			return nil, errors.Wrapf(shape.ErrInconsistentShape, "item %d has shape %v, item 0 has %v", i, child.dims, inner)
		}
		if len(child.dims) == 0 {
			l.items[i] = child.value
		} else {
			l.items[i] = child
		}
	}
	l.dims = append(shape.Shape{n}, inner...)
	return l, nil
}

// FromArray copies any array representation into a List.
func FromArray(x protocol.Array) (*List, error) {
	if l, ok := x.(*List); ok {
		return l, nil
	}
	s := x.Shape()
	if len(s) == 0 {
		if sc, ok := x.(protocol.Scalar); ok {
			return Of(sc.ScalarValue()), nil
		}
		v, err := protocol.Get(x)
		if err != nil {
			return nil, err
		}
		return Of(v), nil
	}
	l := &List{dims: s, items: make([]any, s[0])}
	for i := range s[0] {
		if len(s) == 1 {
			v, err := protocol.Get(x, i)
			if err != nil {
				return nil, err
			}
			l.items[i] = v
			continue
		}
		slice, err := protocol.MajorSlice(x, i)
		if err != nil {
			return nil, err
		}
		child, err := FromArray(slice)
		if err != nil {
			return nil, err
		}
		if !child.dims.Equal(s[1:]) {
			return nil, errors.Wrapf(shape.ErrInconsistentShape, "%T slice %d has shape %v, expected %v", x, i, child.dims, s[1:])
		}
		l.items[i] = child
	}
	return l, nil
}

// Dimensionality returns the rank.
func (l *List) Dimensionality() int { return len(l.dims) }

// Shape returns a copy of the shape.
func (l *List) Shape() shape.Shape { return l.dims.Clone() }

// DimensionCount returns the size of axis.
func (l *List) DimensionCount(axis int) (int, error) {
	if axis < 0 || axis >= len(l.dims) {
		return 0, errors.Wrapf(shape.ErrIndexOutOfBounds, "axis %d for rank %d", axis, len(l.dims))
	}
	return l.dims[axis], nil
}

// ScalarValue returns the value of a rank-0 List.
func (l *List) ScalarValue() any { return l.value }

// ImplementationKey returns Key.
func (l *List) ImplementationKey() string { return Key }

// IsMutable reports whether the List accepts in-place writes.
func (l *List) IsMutable() bool { return !l.frozen }

// Freeze rejects further in-place writes to l, including writes made through
// an enclosing List. Lists nested inside l are not affected.
func (l *List) Freeze() *List {
	l.frozen = true
	return l
}

// locate walks index down to the List holding the addressed position.
func (l *List) locate(index []int) (*List, int, error) {
	if len(index) > len(l.dims) {
		return nil, 0, errors.Wrapf(shape.ErrRankMismatch, "index of length %d for rank %d", len(index), len(l.dims))
	}
	cur := l
	for d, i := range index {
		if i < 0 || i >= l.dims[d] {
			return nil, 0, errors.Wrapf(shape.ErrIndexOutOfBounds, "index %d for axis %d (size %d)", i, d, l.dims[d])
		}
		if d == len(index)-1 {
			return cur, i, nil
		}
		cur = cur.items[i].(*List)
	}
	return cur, -1, nil
}

// frozenAlong reports whether a frozen sub-list lies on the path of a located
// index below l.
func (l *List) frozenAlong(index []int) bool {
	cur := l
	for d := 0; d < len(index)-1; d++ {
		cur = cur.items[index[d]].(*List)
		if cur.frozen {
			return true
		}
	}
	return false
}

// Get returns the element at a full index, or the sub-list at a partial one.
// Sub-lists are shared with l.
func (l *List) Get(index ...int) (any, error) {
	owner, i, err := l.locate(index)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		if len(l.dims) == 0 {
			return l.value, nil
		}
		return l, nil
	}
	return owner.items[i], nil
}

// MajorSlice returns the sub-list at leading index i. For a rank-1 List the
// element is wrapped in a new rank-0 List.
func (l *List) MajorSlice(i int) (protocol.Array, error) {
	if len(l.dims) == 0 {
		return nil, errors.Wrap(shape.ErrRankMismatch, "major slice of a rank-0 list")
	}
	v, err := l.Get(i)
	if err != nil {
		return nil, err
	}
	if len(l.dims) == 1 {
		return Of(v), nil
	}
	return v.(*List), nil
}

// SetInPlace writes value at index. At a partial index value must have the
// shape of the addressed sub-list, which it replaces.
func (l *List) SetInPlace(value any, index ...int) error {
	if l.frozen {
		return errors.Wrap(protocol.ErrNotImplemented, "SetInPlace on frozen list")
	}
	owner, i, err := l.locate(index)
	if err != nil {
		return err
	}
	if l.frozenAlong(index) {
		return errors.Wrapf(protocol.ErrNotImplemented, "SetInPlace at %v reaches a frozen sub-list", index)
	}
	if len(index) == len(l.dims) {
		if i < 0 {
			l.value = value
		} else {
			owner.items[i] = value
		}
		return nil
	}
	repl, err := coerceList(value)
	if err != nil {
		return err
	}
	want := l.dims[len(index):]
	if !repl.dims.Equal(want) {
		return errors.Wrapf(shape.ErrShapeMismatch, "cannot write shape %v into %v", repl.dims, want)
	}
	if i < 0 {
		*l = List{dims: repl.dims.Clone(), value: repl.value, items: repl.items}
		return nil
	}
	owner.items[i] = repl
	return nil
}

// MapInPlace replaces every element x by f(x). Elements that are themselves
// independently mutable are mapped in place instead. A frozen sub-list is
// replaced by a mapped copy.
func (l *List) MapInPlace(f func(x any) any) error {
	if l.frozen {
		return errors.Wrap(protocol.ErrNotImplemented, "MapInPlace on frozen list")
	}
	if len(l.dims) == 0 {
		return mapValue(&l.value, f)
	}
	for i := range l.items {
		if len(l.dims) > 1 {
			child := l.items[i].(*List)
			if !child.frozen {
				if err := child.MapInPlace(f); err != nil {
					return err
				}
				continue
			}
			mapped := child.clone()
			if err := mapped.MapInPlace(f); err != nil {
				return err
			}
			l.items[i] = mapped
			continue
		}
		if err := mapValue(&l.items[i], f); err != nil {
			return err
		}
	}
	return nil
}

// clone copies the list structure of l, unfrozen. Elements are shared.
func (l *List) clone() *List {
	c := &List{dims: l.dims.Clone(), value: l.value, items: make([]any, len(l.items))}
	for i, it := range l.items {
		if child, ok := it.(*List); ok && len(l.dims) > 1 {
			c.items[i] = child.clone()
			continue
		}
		c.items[i] = it
	}
	return c
}

func mapValue(slot *any, f func(x any) any) error {
	if protocol.IsMutable(*slot) {
		return (*slot).(protocol.MutableMapper).MapInPlace(f)
	}
	*slot = f(*slot)
	return nil
}

// ToSlices returns the contents as nested []any, or the bare value at rank 0.
func (l *List) ToSlices() any {
	if len(l.dims) == 0 {
		return l.value
	}
	out := make([]any, len(l.items))
	for i, it := range l.items {
		if child, ok := it.(*List); ok && len(l.dims) > 1 {
			out[i] = child.ToSlices()
			continue
		}
		out[i] = it
	}
	return out
}

func coerceList(v any) (*List, error) {
	if a, ok := v.(protocol.Array); ok {
		return FromArray(a)
	}
	return FromSlices(v)
}

// Implementation coerces arbitrary sources into Lists.
type Implementation struct{}

// ImplementationKey returns Key.
func (Implementation) ImplementationKey() string { return Key }

// Coerce converts source into a List. Arrays of other representations are
// copied; anything else goes through FromSlices.
func (Implementation) Coerce(source any) (protocol.Array, error) {
	l, err := coerceList(source)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func init() {
	if err := registry.Register(Implementation{}); err != nil {
		exceptions.Panicf("nested: registering %q: %v", Key, err)
	}
}
