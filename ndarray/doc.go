// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ndarray provides strided n-dimensional arrays and a capability
// protocol that lets other array representations interoperate with them.
//
// # Overview
//
// An Array owns a flat backing store and addresses it through a shape, a list
// of strides and an offset. Views share the store of their owner under their
// own layout, so slicing along the leading axis, transposition, reshaping of
// contiguous arrays and broadcasting never copy.
//
// # Basic Usage
//
//	import "github.com/born-ml/strided/ndarray"
//
//	func main() {
//	    a, _ := ndarray.Construct([][]float64{{1, 2}, {3, 4}})
//
//	    row, _ := a.MajorSlice(1)             // view of [3 4]
//	    t := a.TransposeView()                // view with strides [1 2]
//	    b, _ := a.BroadcastView(ndarray.Shape{3, 2, 2})
//
//	    sum, _ := a.Add(t)                    // new array
//	    inc, _ := ndarray.MapOf(a, func(x float64) float64 { return x + 1 })
//	}
//
// # Element Kinds
//
// Every store has one of the kinds Float64, Float32, Float16, Int64 or Object.
// Numeric kinds run element-wise kernels on unboxed values; Object stores any
// Go value and does arithmetic through the value's own Add, Sub and Mul
// methods when it has them. Construct picks the kind from the source values.
//
// # Capabilities
//
// Representations implement Array plus any subset of the capability
// interfaces (Getter, MajorSlicer, Broadcaster, Mapper, Arithmetic, ...).
// The package-level functions Get, Transpose, Map, Add and friends use the
// capability when present and otherwise convert to the canonical NDArray and
// retry there. The nested-list representation (Nested) relies on this for
// everything but element access and in-place updates.
//
// # Mutability
//
// Arrays are created mutable; Freeze makes an array and all its views
// read-only. Only SetInPlace, AssignInPlace, Fill, MapInPlace and
// AddProductInPlace write; every other operation returns a new array or a view.
package ndarray
