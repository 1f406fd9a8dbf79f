package prediction

import "errors"

// ErrInvalidInput marks operator input that violates the driver contract.
var ErrInvalidInput = errors.New("invalid prediction input")
