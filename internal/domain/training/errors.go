package training

import "errors"

// ErrEmptyTrainingSet means no record had a known cutoff. It points at the
// reference tables, not at runtime input.
var ErrEmptyTrainingSet = errors.New("empty training set")
