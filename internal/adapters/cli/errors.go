package cli

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInputClosed is returned when the input stream ends before every
	// answer was collected.
	ErrInputClosed = errors.New("input closed")
	// ErrUnknownFormat is returned for an output format other than table, json or yaml.
	ErrUnknownFormat = errors.New("unknown output format")
)
