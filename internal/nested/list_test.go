package nested

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/strided/internal/protocol"
	"github.com/born-ml/strided/internal/registry"
	"github.com/born-ml/strided/internal/shape"
)

func TestFromSlices(t *testing.T) {
	l, err := FromSlices([][]int{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	assert.Equal(t, 2, l.Dimensionality())
	assert.Equal(t, shape.Shape{2, 3}, l.Shape())
	n, err := l.DimensionCount(1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	v, err := l.Get(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, v)

	assert.Equal(t, []any{[]any{1, 2, 3}, []any{4, 5, 6}}, l.ToSlices())
}

func TestFromSlicesRagged(t *testing.T) {
	_, err := FromSlices([]any{[]any{1, 2}, []any{3}})
	require.ErrorIs(t, err, shape.ErrInconsistentShape)

	_, err = FromSlices([]any{[]any{1}, 2})
	require.ErrorIs(t, err, shape.ErrInconsistentShape)
}

func TestScalarList(t *testing.T) {
	l := Of("x")
	assert.Equal(t, 0, l.Dimensionality())
	assert.Equal(t, "x", l.ScalarValue())

	v, err := l.Get()
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	_, err = l.MajorSlice(0)
	require.ErrorIs(t, err, shape.ErrRankMismatch)
}

func TestMajorSliceSharesSubLists(t *testing.T) {
	l, err := FromSlices([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	row, err := l.MajorSlice(1)
	require.NoError(t, err)
	require.NoError(t, row.(*List).SetInPlace(40.0, 1))

	v, err := l.Get(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 40.0, v)

	leaf, err := row.(*List).MajorSlice(0)
	require.NoError(t, err)
	assert.Equal(t, 0, leaf.Dimensionality())
	assert.Equal(t, 3.0, leaf.(*List).ScalarValue())
}

func TestSetInPlace(t *testing.T) {
	l, err := FromSlices([][]int{{1, 2}, {3, 4}})
	require.NoError(t, err)

	require.NoError(t, l.SetInPlace([]int{7, 8}, 0))
	require.NoError(t, l.SetInPlace(9, 1, 0))
	assert.Equal(t, []any{[]any{7, 8}, []any{9, 4}}, l.ToSlices())

	require.ErrorIs(t, l.SetInPlace([]int{1, 2, 3}, 0), shape.ErrShapeMismatch)
	require.ErrorIs(t, l.SetInPlace(1, 2, 0), shape.ErrIndexOutOfBounds)
	require.ErrorIs(t, l.SetInPlace(1, 0, 0, 0), shape.ErrRankMismatch)

	l.Freeze()
	assert.False(t, l.IsMutable())
	require.ErrorIs(t, l.SetInPlace(1, 0, 0), protocol.ErrNotImplemented)
}

func TestMapInPlaceTwoModes(t *testing.T) {
	inner, err := FromSlices([]int{1, 2})
	require.NoError(t, err)
	frozen := Of(5).Freeze()
	l, err := FromSlices([]any{inner, 3, frozen})
	require.NoError(t, err)

	double := func(x any) any {
		if n, ok := x.(int); ok {
			return n * 2
		}
		return x
	}
	require.NoError(t, l.MapInPlace(double))

	// The mutable element was mapped in place; the frozen one was replaced by f(frozen).
	first, err := l.Get(0)
	require.NoError(t, err)
	assert.Same(t, inner, first)
	assert.Equal(t, []any{2, 4}, inner.ToSlices())

	second, err := l.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 6, second)

	third, err := l.Get(2)
	require.NoError(t, err)
	assert.Same(t, frozen, third)
	assert.Equal(t, 5, frozen.ScalarValue())
}

func TestFrozenSubList(t *testing.T) {
	l, err := FromSlices([][]int{{1, 2}, {3, 4}})
	require.NoError(t, err)
	row, err := l.MajorSlice(0)
	require.NoError(t, err)
	frozen := row.(*List).Freeze()

	// Writes through the parent do not reach into the frozen row.
	require.ErrorIs(t, l.SetInPlace(99, 0, 0), protocol.ErrNotImplemented)
	assert.Equal(t, []any{1, 2}, frozen.ToSlices())
	require.NoError(t, l.SetInPlace(40, 1, 1))

	// Mapping replaces the frozen row with a mapped copy.
	require.NoError(t, l.MapInPlace(func(x any) any { return x.(int) + 1 }))
	assert.Equal(t, []any{[]any{2, 3}, []any{4, 41}}, l.ToSlices())
	assert.Equal(t, []any{1, 2}, frozen.ToSlices())

	first, err := l.MajorSlice(0)
	require.NoError(t, err)
	assert.NotSame(t, frozen, first)
	assert.True(t, first.(*List).IsMutable())
}

func TestFrozenSubListKeepsMutableGrandchildren(t *testing.T) {
	l, err := FromSlices([][][]int{{{1}, {2}}, {{3}, {4}}})
	require.NoError(t, err)
	row, err := l.Get(0)
	require.NoError(t, err)
	row.(*List).Freeze()
	cell, err := l.Get(0, 1)
	require.NoError(t, err)

	require.NoError(t, l.MapInPlace(func(x any) any { return x.(int) * 10 }))
	assert.Equal(t, []any{[]any{[]any{10}, []any{20}}, []any{[]any{30}, []any{40}}}, l.ToSlices())

	// The copy of the frozen row does not share its sub-lists.
	assert.Equal(t, []any{2}, cell.(*List).ToSlices())
}

func TestCoerce(t *testing.T) {
	e, err := registry.Default.Canonical(Key)
	require.NoError(t, err)
	impl := e.(protocol.Implementation)

	l, err := FromSlices([]int{1})
	require.NoError(t, err)
	same, err := impl.Coerce(l)
	require.NoError(t, err)
	assert.Same(t, l, same)

	c, err := impl.Coerce([][]string{{"a"}, {"b"}})
	require.NoError(t, err)
	assert.Equal(t, shape.Shape{2, 1}, c.Shape())
	assert.Equal(t, Key, c.(protocol.Representation).ImplementationKey())
}
