package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/strided/internal/registry"
	"github.com/born-ml/strided/internal/shape"
)

// bare implements dimension info and nothing else.
type bare struct {
	dims shape.Shape
}

func (b *bare) Dimensionality() int { return len(b.dims) }
func (b *bare) Shape() shape.Shape { return b.dims.Clone() }
func (b *bare) DimensionCount(axis int) (int, error) {
	if axis < 0 || axis >= len(b.dims) {
		return 0, shape.ErrIndexOutOfBounds
	}
	return b.dims[axis], nil
}

// bareImpl is a canonical implementation that coerces into bare.
type bareImpl struct{}

func (bareImpl) ImplementationKey() string { return DefaultKey }

func (bareImpl) Coerce(source any) (Array, error) {
	return &bare{dims: Shape(source)}, nil
}

// tagged claims the canonical key.
type tagged struct {
	bare
}

func (*tagged) ImplementationKey() string { return DefaultKey }

// exploding panics from its Getter.
type exploding struct {
	bare
	with any
}

func (e *exploding) Get(...int) (any, error) { panic(e.with) }

// cells is a rank-1 representation writable only through MutableSetter.
type cells struct {
	vals   []any
	frozen bool
}

func (c *cells) Dimensionality() int { return 1 }
func (c *cells) Shape() shape.Shape { return shape.Shape{len(c.vals)} }
func (c *cells) DimensionCount(axis int) (int, error) {
	if axis != 0 {
		return 0, shape.ErrIndexOutOfBounds
	}
	return len(c.vals), nil
}

func (c *cells) Get(index ...int) (any, error) {
	if len(index) != 1 || index[0] < 0 || index[0] >= len(c.vals) {
		return nil, shape.ErrIndexOutOfBounds
	}
	return c.vals[index[0]], nil
}

func (c *cells) IsMutable() bool { return !c.frozen }

func (c *cells) SetInPlace(v any, index ...int) error {
	c.vals[index[0]] = v
	return nil
}

// counter is an element that maps itself in place.
type counter struct {
	n int
}

func (c *counter) MapInPlace(f func(x any) any) error {
	c.n = f(c.n).(int)
	return nil
}

// withRegistry runs the test against a fresh default registry holding entries.
func withRegistry(t *testing.T, entries ...registry.Entry) {
	t.Helper()
	old := registry.Default
	registry.Default = registry.New()
	t.Cleanup(func() { registry.Default = old })
	for _, e := range entries {
		require.NoError(t, registry.Default.Register(e))
	}
}

func TestDispatchFallbackIsTriedOnce(t *testing.T) {
	withRegistry(t, bareImpl{})

	_, err := Transpose(&bare{dims: shape.Shape{2, 3}})
	require.ErrorIs(t, err, ErrNotImplemented)

	_, err = Add(&bare{dims: shape.Shape{2}}, &bare{dims: shape.Shape{2}})
	require.ErrorIs(t, err, ErrNotImplemented)
}

func TestDispatchWithoutCanonical(t *testing.T) {
	withRegistry(t)

	_, err := Get(&bare{dims: shape.Shape{1}}, 0)
	require.ErrorIs(t, err, ErrNotImplemented)
}

func TestCoerceKeepsMatchingRepresentation(t *testing.T) {
	withRegistry(t)

	x := &tagged{bare{dims: shape.Shape{3}}}
	got, err := Canonical(x)
	require.NoError(t, err)
	assert.Same(t, x, got)
}

func TestDispatchContainsErrorPanics(t *testing.T) {
	withRegistry(t)

	boom := errors.New("boom")
	_, err := Get(&exploding{with: boom})
	require.ErrorIs(t, err, boom)

	assert.Panics(t, func() {
		_, _ = Get(&exploding{with: "not an error"})
	})
}

func TestScalarsOutsideArrays(t *testing.T) {
	assert.Equal(t, shape.Shape{}, Shape(3.5))
	assert.Equal(t, 0, Dimensionality("x"))
	assert.Equal(t, 2, Dimensionality(&bare{dims: shape.Shape{1, 1}}))
}

func TestSetInPlaceRequiresMutableSetter(t *testing.T) {
	require.ErrorIs(t, SetInPlace(&bare{dims: shape.Shape{1}}, 1.0, 0), ErrNotImplemented)

	c := &cells{vals: []any{1}, frozen: true}
	require.ErrorIs(t, SetInPlace(c, 2, 0), ErrNotImplemented)

	c.frozen = false
	require.NoError(t, SetInPlace(c, 2, 0))
	assert.Equal(t, []any{2}, c.vals)
}

func TestMapInPlaceThroughSetter(t *testing.T) {
	withRegistry(t)

	inner := &counter{n: 1}
	c := &cells{vals: []any{1, inner, 3}}
	require.NoError(t, MapInPlace(c, func(x any) any { return x.(int) * 10 }))

	assert.Same(t, inner, c.vals[1])
	assert.Equal(t, 10, inner.n)
	assert.Equal(t, 10, c.vals[0])
	assert.Equal(t, 30, c.vals[2])

	assert.True(t, IsMutable(inner))
	assert.False(t, IsMutable(c))
	assert.False(t, IsMutable(3))

	c.frozen = true
	require.ErrorIs(t, MapInPlace(c, func(x any) any { return x }), ErrNotImplemented)
	require.ErrorIs(t, MapInPlace(&bare{dims: shape.Shape{1}}, func(x any) any { return x }), ErrNotImplemented)
}
