// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ndarray_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/strided/ndarray"
)

// cents is an element type with its own arithmetic.
type cents int64

func (c cents) Add(other any) any { return c + other.(cents) }
func (c cents) Sub(other any) any { return c - other.(cents) }
func (c cents) Mul(other any) any {
	if n, ok := other.(int64); ok {
		return c * cents(n)
	}
	return c * other.(cents)
}

var _ ndarray.Algebra = cents(0)

func TestPublicConstruct(t *testing.T) {
	a, err := ndarray.Construct([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	assert.Equal(t, ndarray.Shape{2, 2}, a.Shape())
	assert.Equal(t, []int{2, 1}, a.Strides())

	v, err := ndarray.At[float64](a, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	_, err = ndarray.Construct([]any{[]any{1, 2}, []any{3}})
	require.ErrorIs(t, err, ndarray.ErrInconsistentShape)
}

func TestPublicObjectAlgebra(t *testing.T) {
	prices, err := ndarray.Construct([]any{cents(100), cents(250)})
	require.NoError(t, err)
	assert.Equal(t, ndarray.Object, prices.Kind())

	total, err := prices.Sum()
	require.NoError(t, err)
	assert.Equal(t, cents(350), total)

	doubled, err := prices.ScaleBy(int64(2))
	require.NoError(t, err)
	assert.True(t, doubled.Equal([]any{cents(200), cents(500)}))
}

func TestPublicDispatchAcrossRepresentations(t *testing.T) {
	l, err := ndarray.FromSlices([][]int{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	tr, err := ndarray.Transpose(l)
	require.NoError(t, err)
	assert.Equal(t, ndarray.Shape{3, 2}, tr.Shape())

	sum, err := ndarray.Add(l, l)
	require.NoError(t, err)
	want, err := ndarray.Construct([][]int{{2, 4, 6}, {8, 10, 12}})
	require.NoError(t, err)
	eq, err := ndarray.Equal(sum, want)
	require.NoError(t, err)
	assert.True(t, eq)

	require.NoError(t, ndarray.MapInPlace(l, func(x any) any { return x.(int) * 0 }))
	assert.Equal(t, []any{[]any{0, 0, 0}, []any{0, 0, 0}}, l.ToSlices())
}

func TestPublicBroadcastAliasing(t *testing.T) {
	a, err := ndarray.Construct([]float64{1, 2, 3})
	require.NoError(t, err)

	b, err := a.BroadcastView(ndarray.Shape{2, 3})
	require.NoError(t, err)
	require.NoError(t, a.SetInPlace(30.0, 2))

	v, err := ndarray.At[float64](b, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 30.0, v)
}

func TestPublicSliceCopy(t *testing.T) {
	a, err := ndarray.Construct([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)

	col, err := ndarray.Slice(a, 1, 1)
	require.NoError(t, err)
	require.NoError(t, ndarray.SetInPlace(col, 0.0, 0))

	v, err := ndarray.At[float64](a, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}
