package shape

import "errors"

// Sentinel errors for shape and index validation. Callers match them with
// errors.Is; context is attached with errors.Wrapf at the point of detection.
var (
	// ErrInvalidShape is returned for negative or otherwise malformed dimensions.
	ErrInvalidShape = errors.New("ndarray: invalid shape")

	// ErrInconsistentShape is returned for ragged nested input, or when
	// sub-arrays that must agree on shape do not.
	ErrInconsistentShape = errors.New("ndarray: inconsistent shape")

	// ErrIndexOutOfBounds indicates a coordinate (or axis) outside its valid range.
	ErrIndexOutOfBounds = errors.New("ndarray: index out of bounds")

	// ErrRankMismatch indicates an index or operand with the wrong number of dimensions.
	ErrRankMismatch = errors.New("ndarray: rank mismatch")

	// ErrShapeMismatch indicates co-iterated operands whose shapes differ.
	ErrShapeMismatch = errors.New("ndarray: shape mismatch")

	// ErrIncompatibleShape is returned by broadcasting when the source shape
	// cannot be expanded to the target shape.
	ErrIncompatibleShape = errors.New("ndarray: incompatible shape for broadcast")
)
