package ndarray

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/born-ml/strided/internal/protocol"
	"github.com/born-ml/strided/internal/shape"
)

// Config controls how sources are coerced into arrays.
type Config struct {
	InferKind bool // Pick the element kind from the source's leaf values.
	Kind      Kind // Element kind used when InferKind is false.
	Immutable bool // Freeze the constructed array.
}

// DefaultConfig infers the element kind and produces mutable arrays.
func DefaultConfig() Config {
	return Config{
		InferKind: true,
		Kind:      Float64,
	}
}

// Construct coerces source into a new owning array.
//
// source may be a Go scalar, a Go slice or array of any depth (including
// nested []any), or any protocol.Array. Nested input must be rectangular:
// the whole source is validated before any element is written, and ragged
// input fails with shape.ErrInconsistentShape.
//
// The element kind is inferred: all float64 leaves give Float64, all float32
// Float32, all float16 Float16, all Go integers Int64, mixed numbers the
// smallest kind holding them all, and anything else Object.
//
// Example:
//
//	a, err := ndarray.Construct([][]float64{{1, 2}, {3, 4}})
func Construct(source any) (*Array, error) {
	return ConstructWith(source, DefaultConfig())
}

// ConstructKind is Construct with a fixed element kind.
func ConstructKind(source any, k Kind) (*Array, error) {
	cfg := DefaultConfig()
	cfg.InferKind = false
	cfg.Kind = k
	return ConstructWith(source, cfg)
}

// ConstructWith is Construct under cfg.
func ConstructWith(source any, cfg Config) (*Array, error) {
	p := &probe{}
	s, err := shapeOf(source, p)
	if err != nil {
		return nil, err
	}
	k := cfg.Kind
	if cfg.InferKind {
		k = p.result()
	}
	a, err := Zeros(k, s)
	if err != nil {
		return nil, err
	}
	pos := 0
	if err := guard(func() error { return fill(source, a, &pos) }); err != nil {
		return nil, err
	}
	if cfg.Immutable {
		a.Freeze()
	}
	return a, nil
}

// ConvertKind returns an owning copy of a with element kind k.
func ConvertKind(a NDArray, k Kind) (*Array, error) {
	c := a.core()
	out, err := Zeros(k, c.shape)
	if err != nil {
		return nil, err
	}
	if err := guard(func() error { return out.data.copyFrom(out.layout, c.layout, c.data) }); err != nil {
		return nil, err
	}
	return out, nil
}

// asNDArray returns x itself when it already is an NDArray, else a constructed copy.
func asNDArray(x any) (NDArray, error) {
	if a, ok := x.(NDArray); ok {
		return a, nil
	}
	a, err := Construct(x)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// probe accumulates the element kind during shape discovery.
type probe struct {
	kind Kind
	seen bool
}

func (p *probe) add(k Kind) {
	if !p.seen {
		p.kind, p.seen = k, true
		return
	}
	p.kind = promote(p.kind, k)
}

func (p *probe) result() Kind {
	if !p.seen {
		return Float64
	}
	return p.kind
}

var float16Type = reflect.TypeOf(float16.Float16(0))

// staticKind maps a Go element type to a kind, for empty sequences.
func staticKind(t reflect.Type) (Kind, bool) {
	if t == float16Type {
		return Float16, true
	}
	switch t.Kind() {
	case reflect.Float64:
		return Float64, true
	case reflect.Float32:
		return Float32, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Int64, true
	default:
		return 0, false
	}
}

// shapeOf discovers and validates the shape of source without writing anything.
func shapeOf(source any, p *probe) (shape.Shape, error) {
	switch x := source.(type) {
	case NDArray:
		if x.NumElements() > 0 {
			p.add(x.Kind())
		}
		return x.Shape(), nil
	case protocol.Array:
		return foreignShape(x, p)
	}

	rv := reflect.ValueOf(source)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		p.add(kindOfValue(source))
		return shape.Shape{}, nil
	}
	n := rv.Len()
	if n == 0 {
		if k, ok := staticKind(rv.Type().Elem()); ok {
			p.add(k)
		}
		return shape.Shape{0}, nil
	}
	var inner shape.Shape
	for i := range n {
		s, err := shapeOf(rv.Index(i).Interface(), p)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			inner = s
			continue
		}
		if !s.Equal(inner) {
			return nil, errors.Wrapf(shape.ErrInconsistentShape, "slice %d has shape %v, slice 0 has %v", i, s, inner)
		}
	}
	return append(shape.Shape{n}, inner...), nil
}

// foreignShape validates another representation by walking its major slices.
func foreignShape(x protocol.Array, p *probe) (shape.Shape, error) {
	s := x.Shape()
	if len(s) != x.Dimensionality() {
		return nil, errors.Wrapf(shape.ErrInconsistentShape, "%T reports rank %d with shape %v", x, x.Dimensionality(), s)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(s) == 0 {
		v, err := scalarOf(x)
		if err != nil {
			return nil, err
		}
		p.add(kindOfValue(v))
		return s, nil
	}
	ms, ok := x.(protocol.MajorSlicer)
	if !ok {
		g, ok := x.(protocol.Getter)
		if !ok {
			return nil, errors.Wrapf(protocol.ErrNotImplemented, "%T exposes neither slices nor elements", x)
		}
		for idx := range s.Iter() {
			v, err := g.Get(idx...)
			if err != nil {
				return nil, err
			}
			p.add(kindOfValue(v))
		}
		return s, nil
	}
	for i := range s[0] {
		slice, err := ms.MajorSlice(i)
		if err != nil {
			return nil, err
		}
		ss, err := shapeOf(slice, p)
		if err != nil {
			return nil, err
		}
		if !ss.Equal(s[1:]) {
			return nil, errors.Wrapf(shape.ErrInconsistentShape, "%T slice %d has shape %v, expected %v", x, i, ss, s[1:])
		}
	}
	return s, nil
}

func scalarOf(x protocol.Array) (any, error) {
	if s, ok := x.(protocol.Scalar); ok {
		return s.ScalarValue(), nil
	}
	if g, ok := x.(protocol.Getter); ok {
		return g.Get()
	}
	return nil, errors.Wrapf(protocol.ErrNotImplemented, "%T exposes no scalar value", x)
}

// fill writes the leaves of a validated source into a, starting at *pos.
func fill(source any, a *Array, pos *int) error {
	switch x := source.(type) {
	case NDArray:
		c := x.core()
		dst := layout{shape: c.shape, strides: c.shape.ComputeStrides(), offset: *pos}
		if err := a.data.copyFrom(dst, c.layout, c.data); err != nil {
			return err
		}
		*pos += c.NumElements()
		return nil
	case protocol.Array:
		return fillForeign(x, a, pos)
	case []float64:
		return fillTyped(x, a, pos)
	case []float32:
		return fillTyped(x, a, pos)
	case []int64:
		return fillTyped(x, a, pos)
	}

	rv := reflect.ValueOf(source)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		if err := a.data.store(*pos, source); err != nil {
			return err
		}
		*pos++
		return nil
	}
	for i := range rv.Len() {
		if err := fill(rv.Index(i).Interface(), a, pos); err != nil {
			return err
		}
	}
	return nil
}

// fillTyped copies a flat slice directly when it matches the store's element type.
func fillTyped[T any](src []T, a *Array, pos *int) error {
	if r, ok := a.data.(rawer[T]); ok {
		copy(r.raw()[*pos:], src)
		*pos += len(src)
		return nil
	}
	for _, v := range src {
		if err := a.data.store(*pos, v); err != nil {
			return err
		}
		*pos++
	}
	return nil
}

func fillForeign(x protocol.Array, a *Array, pos *int) error {
	s := x.Shape()
	if len(s) == 0 {
		v, err := scalarOf(x)
		if err != nil {
			return err
		}
		if err := a.data.store(*pos, v); err != nil {
			return err
		}
		*pos++
		return nil
	}
	if ms, ok := x.(protocol.MajorSlicer); ok {
		for i := range s[0] {
			slice, err := ms.MajorSlice(i)
			if err != nil {
				return err
			}
			if err := fill(slice, a, pos); err != nil {
				return err
			}
		}
		return nil
	}
	g := x.(protocol.Getter)
	for idx := range s.Iter() {
		v, err := g.Get(idx...)
		if err != nil {
			return err
		}
		if err := a.data.store(*pos, v); err != nil {
			return err
		}
		*pos++
	}
	return nil
}
