package service

import "errors"

// ErrNotStarted is returned by Forecast before Start has trained a model.
var ErrNotStarted = errors.New("service not started")
