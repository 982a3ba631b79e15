// Package specialize compiles element-wise array algorithms into per-element-type loops.
//
// An algorithm is written once, against a type parameter T and an algebra
// O Ops[T]. Instantiating it with Prim[float64] yields a loop over unboxed
// []float64 with direct arithmetic; instantiating it with Object yields a loop
// over []any with value-level dispatch. Both share the same source.
package specialize

import (
	"errors"
	"reflect"

	pkgerrors "github.com/pkg/errors"
	"github.com/x448/float16"
)

// ErrNoArithmetic is raised when the generic path meets operands it cannot combine.
var ErrNoArithmetic = errors.New("ndarray: no arithmetic defined for operands")

// Number is the set of element types with a primitive path.
type Number interface {
	~float32 | ~float64 | ~int64
}

// Ops is the element algebra an algorithm body is written against.
type Ops[T any] interface {
	Zero() T
	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
	Equal(a, b T) bool
}

// Prim is the algebra of unboxed numeric elements.
type Prim[T Number] struct{}

// Zero returns 0.
func (Prim[T]) Zero() T { return 0 }

// Add returns a+b.
func (Prim[T]) Add(a, b T) T { return a + b }

// Sub returns a-b.
func (Prim[T]) Sub(a, b T) T { return a - b }

// Mul returns a*b.
func (Prim[T]) Mul(a, b T) T { return a * b }

// Equal reports a == b.
func (Prim[T]) Equal(a, b T) bool { return a == b }

// Half is the algebra of IEEE 754 half-precision elements.
// Arithmetic is carried out in float32 and rounded back on store.
type Half struct{}

// Zero returns +0.
func (Half) Zero() float16.Float16 { return float16.Fromfloat32(0) }

// Add returns a+b.
func (Half) Add(a, b float16.Float16) float16.Float16 {
	return float16.Fromfloat32(a.Float32() + b.Float32())
}

// Sub returns a-b.
func (Half) Sub(a, b float16.Float16) float16.Float16 {
	return float16.Fromfloat32(a.Float32() - b.Float32())
}

// Mul returns a*b.
func (Half) Mul(a, b float16.Float16) float16.Float16 {
	return float16.Fromfloat32(a.Float32() * b.Float32())
}

// Equal compares by value, so +0 equals -0 and NaN equals nothing.
func (Half) Equal(a, b float16.Float16) bool { return a.Float32() == b.Float32() }

// Algebra is implemented by element values that define their own arithmetic
// for the generic path.
type Algebra interface {
	Add(other any) any
	Sub(other any) any
	Mul(other any) any
}

// Equaler is implemented by element values with their own notion of equality.
type Equaler interface {
	Equal(other any) bool
}

// Object is the algebra of boxed elements.
//
// Two integers combine into an int64, any other pair of numbers into a
// float64. Values implementing Algebra combine through their own methods.
// Anything else panics with an error wrapping ErrNoArithmetic; callers running
// kernels on the generic path recover it into a returned error.
type Object struct{}

// Zero returns float64 zero.
func (Object) Zero() any { return float64(0) }

// Add returns a+b.
func (o Object) Add(a, b any) any {
	return o.combine("add", a, b,
		func(x, y int64) int64 { return x + y },
		func(x, y float64) float64 { return x + y },
		Algebra.Add)
}

// Sub returns a-b.
func (o Object) Sub(a, b any) any {
	return o.combine("sub", a, b,
		func(x, y int64) int64 { return x - y },
		func(x, y float64) float64 { return x - y },
		Algebra.Sub)
}

// Mul returns a*b.
func (o Object) Mul(a, b any) any {
	return o.combine("mul", a, b,
		func(x, y int64) int64 { return x * y },
		func(x, y float64) float64 { return x * y },
		Algebra.Mul)
}

func (Object) combine(name string, a, b any, ints func(x, y int64) int64, floats func(x, y float64) float64,
	alg func(Algebra, any) any) any {
	if x, ok := AsInt64(a); ok {
		if y, ok := AsInt64(b); ok {
			return ints(x, y)
		}
	}
	if x, ok := AsFloat64(a); ok {
		if y, ok := AsFloat64(b); ok {
			return floats(x, y)
		}
	}
	if x, ok := a.(Algebra); ok {
		return alg(x, b)
	}
	panic(pkgerrors.Wrapf(ErrNoArithmetic, "%s of %T and %T", name, a, b))
}

// Equal compares numbers by value across Go numeric types, defers to Equaler,
// and otherwise uses deep equality.
func (Object) Equal(a, b any) bool {
	if x, ok := AsFloat64(a); ok {
		if y, ok := AsFloat64(b); ok {
			if xi, ok := AsInt64(a); ok {
				if yi, ok := AsInt64(b); ok {
					return xi == yi
				}
			}
			return x == y
		}
		return false
	}
	if e, ok := a.(Equaler); ok {
		return e.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}
