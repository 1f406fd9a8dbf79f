package reference

import "errors"

// Sentinel kinds for reference table errors.
var (
	ErrInvalidTables = errors.New("invalid reference tables")
	ErrDecodeCSV     = errors.New("decode reference csv failed")
	ErrUnknownTrack  = errors.New("unknown track")
)
