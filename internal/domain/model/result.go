package model

import (
	"strconv"

	"github.com/okian/cutoffs/internal/domain/reference"
)

// NotAvailable is the display text for a suppressed track.
const NotAvailable = "N/A"

// Result is the forecast for one track. When Known is false the track is
// expected to go unfilled and Estimate, Lower and Upper are zero.
type Result struct {
	Track    reference.Track `json:"track" yaml:"track"`
	Known    bool            `json:"known" yaml:"known"`
	Estimate float64         `json:"estimate" yaml:"estimate"`
	Lower    float64         `json:"lower" yaml:"lower"`
	Upper    float64         `json:"upper" yaml:"upper"`
}

// Bounds returns the display strings for the band.
func (r Result) Bounds() (lower, upper string) {
	if !r.Known {
		return NotAvailable, NotAvailable
	}
	return formatBound(r.Lower), formatBound(r.Upper)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
