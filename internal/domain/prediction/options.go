// Package prediction turns operator estimates for an upcoming year into
// per-track cutoff bands.
package prediction

// Documented prediction defaults.
const (
	DefaultSuppressionThreshold = 1040
	DefaultBandHalfWidth        = 0.10
	DefaultPrevCutoff           = 3.0
	DefaultPrevPopularity       = 5.0
	MinCohortSize               = 800
)

// Option applies a configuration option to the Predictor.
type Option func(*Predictor)

// WithSuppressionThreshold sets the cohort size below which the least
// popular track is marked unknown.
func WithSuppressionThreshold(threshold int) Option {
	return func(p *Predictor) {
		if threshold > 0 {
			p.threshold = threshold
		}
	}
}

// WithBandHalfWidth sets the distance from the estimate to each bound.
func WithBandHalfWidth(width float64) Option {
	return func(p *Predictor) {
		if width >= 0 {
			p.halfWidth = width
		}
	}
}

// WithHistoryDefaults sets the lag values used for a track with no
// observed cutoff in the last historical year.
func WithHistoryDefaults(prevCutoff, prevPopularity float64) Option {
	return func(p *Predictor) {
		p.defaultPrevCutoff = prevCutoff
		p.defaultPrevPopularity = prevPopularity
	}
}
