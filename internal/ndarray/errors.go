package ndarray

import "github.com/pkg/errors"

var (
	// ErrElementKind is returned when a value cannot be stored in an array's element kind.
	ErrElementKind = errors.New("ndarray: value not representable in element kind")

	// ErrEmpty is returned by Reduce on an array with no elements.
	ErrEmpty = errors.New("ndarray: reduction of an empty array without a seed")

	// ErrAliasedWrite is returned when an in-place destination reaches the same
	// storage element through more than one index.
	ErrAliasedWrite = errors.New("ndarray: destination has overlapping elements")
)
