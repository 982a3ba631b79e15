package specialize

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/born-ml/strided/internal/shape"
)

func boxed(xs []float64) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func TestUnaryPrimitiveMatchesObject(t *testing.T) {
	s := shape.Shape{2, 2}
	data := []float64{1, 2, 3, 4}

	prim := make([]float64, 4)
	require.NoError(t, Unary(Dense(prim, s), Dense(data, s), func(_ int, x float64) float64 { return x + 1 }))

	obj := make([]any, 4)
	require.NoError(t, Unary(Dense(obj, s), Dense(boxed(data), s), func(_ int, x any) any {
		return Object{}.Add(x, 1.0)
	}))

	assert.Equal(t, []float64{2, 3, 4, 5}, prim)
	for i := range prim {
		assert.True(t, Object{}.Equal(prim[i], obj[i]), "element %d: %v vs %v", i, prim[i], obj[i])
	}
}

func TestCombinePrimitiveMatchesObject(t *testing.T) {
	s := shape.Shape{2, 3}
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{6, 5, 4, 3, 2, 1}

	for _, op := range []Op{OpAdd, OpSub, OpMul} {
		t.Run(op.String(), func(t *testing.T) {
			prim := make([]float64, 6)
			require.NoError(t, Combine(Prim[float64]{}, op, Dense(prim, s), Dense(a, s), Dense(b, s)))

			obj := make([]any, 6)
			require.NoError(t, Combine(Object{}, op, Dense(obj, s), Dense(boxed(a), s), Dense(boxed(b), s)))

			for i := range prim {
				assert.True(t, Object{}.Equal(prim[i], obj[i]), "element %d: %v vs %v", i, prim[i], obj[i])
			}
		})
	}
}

func TestCombineStridedOperand(t *testing.T) {
	// a is the transpose of [[1 2 3] [4 5 6]], read through reversed strides.
	a := Strided[float64]{Data: []float64{1, 2, 3, 4, 5, 6}, Shape: shape.Shape{3, 2}, Strides: []int{1, 3}}
	b := Dense([]float64{10, 10, 10, 10, 10, 10}, shape.Shape{3, 2})
	dst := make([]float64, 6)

	require.NoError(t, Combine(Prim[float64]{}, OpAdd, Dense(dst, shape.Shape{3, 2}), a, b))
	assert.Equal(t, []float64{11, 14, 12, 15, 13, 16}, dst)
}

func TestZeroLengthIsNoOp(t *testing.T) {
	s := shape.Shape{3, 0}
	calls := 0
	err := Unary(Dense([]float64{}, s), Dense([]float64{}, s), func(_ int, x float64) float64 {
		calls++
		return x
	})
	require.NoError(t, err)
	assert.Zero(t, calls)

	require.NoError(t, Combine(Object{}, OpAdd, Dense([]any{}, s), Dense([]any{}, s), Dense([]any{}, s)))
	assert.Equal(t, 0.0, Sum(Prim[float64]{}, Dense([]float64{}, s)))
}

func TestShapeMismatch(t *testing.T) {
	dst := Dense(make([]float64, 4), shape.Shape{2, 2})
	src := Dense(make([]float64, 4), shape.Shape{4})

	err := Unary(dst, src, func(_ int, x float64) float64 { return x })
	assert.True(t, errors.Is(err, shape.ErrShapeMismatch))

	err = Combine(Prim[float64]{}, OpMul, dst, dst, src)
	assert.True(t, errors.Is(err, shape.ErrShapeMismatch))
}

func TestAddProduct(t *testing.T) {
	s := shape.Shape{3}
	dst := []float64{1, 1, 1}
	require.NoError(t, AddProduct(Prim[float64]{}, Dense(dst, s), Dense([]float64{1, 2, 3}, s), Dense([]float64{4, 5, 6}, s)))
	assert.Equal(t, []float64{5, 11, 19}, dst)

	objDst := []any{1, 1, 1}
	require.NoError(t, AddProduct(Object{}, Dense(objDst, s), Dense([]any{1, 2, 3}, s), Dense([]any{4, 5, 6}, s)))
	assert.Equal(t, []any{int64(5), int64(11), int64(19)}, objDst)
}

func TestBroadcastDestinationAliases(t *testing.T) {
	// A stride-0 destination maps every position onto one slot.
	store := []float64{0}
	dst := Strided[float64]{Data: store, Shape: shape.Shape{3}, Strides: []int{0}}
	require.NoError(t, Unary(dst, Dense([]float64{1, 2, 3}, shape.Shape{3}), func(_ int, x float64) float64 { return x }))
	assert.Equal(t, []float64{3}, store)
}

func TestNAryAndIndexed(t *testing.T) {
	s := shape.Shape{2, 2}
	srcs := []Strided[int64]{
		Dense([]int64{1, 2, 3, 4}, s),
		Dense([]int64{10, 20, 30, 40}, s),
		Dense([]int64{100, 200, 300, 400}, s),
	}
	dst := make([]int64, 4)
	require.NoError(t, NAry(Dense(dst, s), srcs, func(_ int, xs []int64) int64 { return xs[0] + xs[1] + xs[2] }))
	assert.Equal(t, []int64{111, 222, 333, 444}, dst)

	var seen [][]int
	require.NoError(t, Indexed(Dense(dst, s), Dense(dst, s), func(idx []int, x int64) int64 {
		seen = append(seen, append([]int(nil), idx...))
		return int64(idx[0]*10 + idx[1])
	}))
	assert.Equal(t, []int64{0, 1, 10, 11}, dst)
	assert.Equal(t, [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, seen)
}

func TestFoldAndSum(t *testing.T) {
	src := Dense([]float64{1, 2, 3, 4}, shape.Shape{4})
	assert.Equal(t, 10.0, Sum(Prim[float64]{}, src))
	assert.Equal(t, int64(10), Sum(Object{}, Dense([]any{1, 2, 3, 4}, shape.Shape{4})))

	count := Fold(src, 0, func(acc int, _ float64) int { return acc + 1 })
	assert.Equal(t, 4, count)
}

func TestEqual(t *testing.T) {
	s := shape.Shape{2}
	ok, err := Equal(Prim[float64]{}, Dense([]float64{1, 2}, s), Dense([]float64{1, 2}, s))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Equal(Object{}, Dense([]any{1, "a"}, s), Dense([]any{1.0, "a"}, s))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Equal(Object{}, Dense([]any{1, "a"}, s), Dense([]any{1, "b"}, s))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHalf(t *testing.T) {
	s := shape.Shape{2}
	h := func(f float32) float16.Float16 { return float16.Fromfloat32(f) }
	dst := make([]float16.Float16, 2)
	require.NoError(t, Combine(Half{}, OpMul, Dense(dst, s), Dense([]float16.Float16{h(1.5), h(2)}, s),
		Dense([]float16.Float16{h(2), h(0.25)}, s)))
	assert.Equal(t, float32(3), dst[0].Float32())
	assert.Equal(t, float32(0.5), dst[1].Float32())
}

type money int

func (m money) Add(other any) any { return m + other.(money) }
func (m money) Sub(other any) any { return m - other.(money) }
func (m money) Mul(other any) any { return m * other.(money) }

func TestObjectAlgebra(t *testing.T) {
	assert.Equal(t, money(7), Object{}.Add(money(3), money(4)))
	assert.Equal(t, int64(7), Object{}.Add(3, int8(4)))
	assert.Equal(t, 7.5, Object{}.Add(3, 4.5))

	assert.PanicsWithError(t, "add of string and int: ndarray: no arithmetic defined for operands", func() {
		Object{}.Add("x", 1)
	})
}

func TestConvert(t *testing.T) {
	f, ok := AsFloat64(float32(1.5))
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	_, ok = AsInt64(1.5)
	assert.False(t, ok)

	i, ok := AsIntegral(2.0)
	assert.True(t, ok)
	assert.Equal(t, int64(2), i)

	_, ok = AsIntegral(2.5)
	assert.False(t, ok)

	tests := []struct {
		name string
		in   float64
		want int64
		ok   bool
	}{
		{"2^63 overflows", math.Pow(2, 63), 0, false},
		{"largest float below 2^63", math.Nextafter(math.Pow(2, 63), 0), 1<<63 - 1024, true},
		{"-2^63 fits", -math.Pow(2, 63), math.MinInt64, true},
		{"below -2^63", math.Nextafter(-math.Pow(2, 63), math.Inf(-1)), 0, false},
		{"+Inf", math.Inf(1), 0, false},
		{"NaN", math.NaN(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsIntegral(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
