package specialize

import "github.com/pkg/errors"

// Op names an element-wise algebraic combination.
type Op int

// Supported combinations.
const (
	OpAdd Op = iota
	OpSub
	OpMul
)

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	default:
		return "unknown"
	}
}

// pick resolves op against the algebra once, before the loop starts.
func pick[T any, O Ops[T]](o O, op Op) (func(a, b T) T, error) {
	switch op {
	case OpAdd:
		return o.Add, nil
	case OpSub:
		return o.Sub, nil
	case OpMul:
		return o.Mul, nil
	default:
		return nil, errors.Errorf("unknown operation %d", int(op))
	}
}

// Unary writes body(flat, x) into dst for every element x of src.
// dst and src may alias.
func Unary[T any](dst, src Strided[T], body func(flat int, x T) T) error {
	if err := conform(dst, src); err != nil {
		return err
	}
	n := dst.Shape.NumElements()
	if n == 0 {
		return nil
	}
	if allContiguous(dst, src) {
		d, s := dst.run(n), src.run(n)
		for i, x := range s {
			d[i] = body(i, x)
		}
		return nil
	}
	walk([]Strided[T]{dst, src}, func(flat int, _ []int, offs []int) {
		dst.Data[offs[0]] = body(flat, src.Data[offs[1]])
	})
	return nil
}

// Binary writes body(flat, x, y) into dst for co-iterated elements x of a and y of b.
func Binary[T any](dst, a, b Strided[T], body func(flat int, x, y T) T) error {
	if err := conform(dst, a, b); err != nil {
		return err
	}
	n := dst.Shape.NumElements()
	if n == 0 {
		return nil
	}
	if allContiguous(dst, a, b) {
		d, x, y := dst.run(n), a.run(n), b.run(n)
		for i := range d {
			d[i] = body(i, x[i], y[i])
		}
		return nil
	}
	walk([]Strided[T]{dst, a, b}, func(flat int, _ []int, offs []int) {
		dst.Data[offs[0]] = body(flat, a.Data[offs[1]], b.Data[offs[2]])
	})
	return nil
}

// NAry writes body(flat, xs) into dst, where xs holds the co-iterated element
// of every source. xs is reused between calls.
func NAry[T any](dst Strided[T], srcs []Strided[T], body func(flat int, xs []T) T) error {
	if err := conform(dst, srcs...); err != nil {
		return err
	}
	ops := append([]Strided[T]{dst}, srcs...)
	xs := make([]T, len(srcs))
	walk(ops, func(flat int, _ []int, offs []int) {
		for k := range srcs {
			xs[k] = srcs[k].Data[offs[k+1]]
		}
		dst.Data[offs[0]] = body(flat, xs)
	})
	return nil
}

// Indexed writes body(idx, x) into dst, where idx is the full coordinate of x.
// idx is reused between calls.
func Indexed[T any](dst, src Strided[T], body func(idx []int, x T) T) error {
	if err := conform(dst, src); err != nil {
		return err
	}
	walk([]Strided[T]{dst, src}, func(_ int, idx []int, offs []int) {
		dst.Data[offs[0]] = body(idx, src.Data[offs[1]])
	})
	return nil
}

// Fold left-folds body over the elements of src in row-major order.
func Fold[T, A any](src Strided[T], acc A, body func(acc A, x T) A) A {
	n := src.Shape.NumElements()
	if n == 0 {
		return acc
	}
	if src.contiguous() {
		for _, x := range src.run(n) {
			acc = body(acc, x)
		}
		return acc
	}
	walk([]Strided[T]{src}, func(_ int, _ []int, offs []int) {
		acc = body(acc, src.Data[offs[0]])
	})
	return acc
}

// Copy writes src into dst element by element. Overlapping operands are not supported.
func Copy[T any](dst, src Strided[T]) error {
	if err := conform(dst, src); err != nil {
		return err
	}
	n := dst.Shape.NumElements()
	if n == 0 {
		return nil
	}
	if allContiguous(dst, src) {
		copy(dst.run(n), src.run(n))
		return nil
	}
	walk([]Strided[T]{dst, src}, func(_ int, _ []int, offs []int) {
		dst.Data[offs[0]] = src.Data[offs[1]]
	})
	return nil
}

// Combine writes op(x, y) into dst for co-iterated elements of a and b.
func Combine[T any, O Ops[T]](o O, op Op, dst, a, b Strided[T]) error {
	f, err := pick[T](o, op)
	if err != nil {
		return err
	}
	if err := conform(dst, a, b); err != nil {
		return err
	}
	n := dst.Shape.NumElements()
	if n == 0 {
		return nil
	}
	if allContiguous(dst, a, b) {
		d, x, y := dst.run(n), a.run(n), b.run(n)
		for i := range d {
			d[i] = f(x[i], y[i])
		}
		return nil
	}
	walk([]Strided[T]{dst, a, b}, func(_ int, _ []int, offs []int) {
		dst.Data[offs[0]] = f(a.Data[offs[1]], b.Data[offs[2]])
	})
	return nil
}

// AddProduct accumulates a*b into dst in place.
func AddProduct[T any, O Ops[T]](o O, dst, a, b Strided[T]) error {
	if err := conform(dst, a, b); err != nil {
		return err
	}
	n := dst.Shape.NumElements()
	if n == 0 {
		return nil
	}
	if allContiguous(dst, a, b) {
		d, x, y := dst.run(n), a.run(n), b.run(n)
		for i := range d {
			d[i] = o.Add(d[i], o.Mul(x[i], y[i]))
		}
		return nil
	}
	walk([]Strided[T]{dst, a, b}, func(_ int, _ []int, offs []int) {
		dst.Data[offs[0]] = o.Add(dst.Data[offs[0]], o.Mul(a.Data[offs[1]], b.Data[offs[2]]))
	})
	return nil
}

// Scale writes x*factor into dst for every element x of src.
func Scale[T any, O Ops[T]](o O, dst, src Strided[T], factor T) error {
	return Unary(dst, src, func(_ int, x T) T { return o.Mul(x, factor) })
}

// Sum adds up all elements of src. An empty operand sums to o.Zero().
func Sum[T any, O Ops[T]](o O, src Strided[T]) T {
	if src.Shape.NumElements() == 0 {
		return o.Zero()
	}
	first := true
	return Fold(src, o.Zero(), func(acc, x T) T {
		if first {
			first = false
			return x
		}
		return o.Add(acc, x)
	})
}

// Equal reports whether a and b hold equal elements at every position.
func Equal[T any, O Ops[T]](o O, a, b Strided[T]) (bool, error) {
	if err := conform(a, b); err != nil {
		return false, err
	}
	equal := true
	walk([]Strided[T]{a, b}, func(_ int, _ []int, offs []int) {
		if equal && !o.Equal(a.Data[offs[0]], b.Data[offs[1]]) {
			equal = false
		}
	})
	return equal, nil
}
