package drawing

import "errors"

// Errors returned by Node setters. Setters wrap them with the offending
// indices and lengths; test with errors.Is.
var (
	// ErrInvalidGeometry reports a triangle index outside the vertex array
	// or a per-vertex array whose length differs from the vertex count.
	ErrInvalidGeometry = errors.New("drawing: invalid geometry")

	// ErrDimensionMismatch reports a per-position or per-triangle array
	// whose length does not match what it parallels.
	ErrDimensionMismatch = errors.New("drawing: dimension mismatch")

	// ErrInvalidArgument reports any other precondition violation, such as
	// an empty positions array or a child that would create a cycle.
	ErrInvalidArgument = errors.New("drawing: invalid argument")

	// ErrDeleted is returned by setters with an error result when the node
	// was deleted. Setters without one leave a deleted node unchanged.
	ErrDeleted = errors.New("drawing: node deleted")
)
