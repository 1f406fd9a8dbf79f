package tree

import "errors"

// Sentinel kinds for tree fitting errors.
var (
	ErrEmptyInput    = errors.New("no samples to fit")
	ErrShapeMismatch = errors.New("sample shape mismatch")
)
