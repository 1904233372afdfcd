package values

import "errors"

// Values package errors.
var (
	// ErrNilDataMap is returned when attempting to set a value on a nil map.
	ErrNilDataMap = errors.New("data map cannot be nil")

	// ErrEmptyPath is returned when an empty path is provided.
	ErrEmptyPath = errors.New("empty path")

	// ErrNotAnArray is returned when an indexed path element is not a list.
	ErrNotAnArray = errors.New("path element is not an array")

	// ErrNonMapTraversal is returned when a path traverses through a non-map value.
	ErrNonMapTraversal = errors.New("cannot traverse through non-map")

	// ErrPathNotFound is returned when a lookup path does not exist in the tree.
	ErrPathNotFound = errors.New("path not found")
)
