package shape

import "github.com/pkg/errors"

// BroadcastStrides computes strides that present an array of shape in with
// strides inStrides as an array of shape target, without copying.
//
// The shapes are aligned from the right. New leading axes and axes of size 1
// that are expanded get stride 0, so every position along them reads the
// same storage slot.
func BroadcastStrides(in Shape, inStrides []int, target Shape) ([]int, error) {
	if len(in) > len(target) {
		return nil, errors.Wrapf(ErrIncompatibleShape, "cannot broadcast rank %d shape %v to rank %d shape %v",
			len(in), in, len(target), target)
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	offset := len(target) - len(in)
	strides := make([]int, len(target))
	for i := range target {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			// New leading axis.
			strides[i] = 0
		case in[inIdx] == target[i]:
			strides[i] = inStrides[inIdx]
		case in[inIdx] == 1:
			strides[i] = 0
		default:
			return nil, errors.Wrapf(ErrIncompatibleShape, "cannot broadcast %v to %v (axis %d: %d vs %d)",
				in, target, i, in[inIdx], target[i])
		}
	}
	return strides, nil
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Rules:
// 1. Compare shapes element-wise from right to left
// 2. Dimensions are compatible if:
//   - They are equal, OR
//   - One of them is 1
//
// 3. Missing dimensions are treated as 1
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5)
//	(1, 5) + (3, 5) → (3, 5)
//	(3, 4) + (3, 5) → error
func BroadcastShapes(a, b Shape) (Shape, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)

	for i := 0; i < maxLen; i++ {
		aIdx := len(a) - 1 - i
		bIdx := len(b) - 1 - i

		aDim := 1
		if aIdx >= 0 {
			aDim = a[aIdx]
		}

		bDim := 1
		if bIdx >= 0 {
			bDim = b[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
		case bDim == 1:
			result[maxLen-1-i] = aDim
		default:
			return nil, errors.Wrapf(ErrShapeMismatch, "shapes %v and %v differ at axis %d (%d vs %d)",
				a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, nil
}
