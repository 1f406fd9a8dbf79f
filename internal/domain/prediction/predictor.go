package prediction

import (
	"fmt"
	"math"

	"github.com/okian/cutoffs/internal/domain/model"
	"github.com/okian/cutoffs/internal/domain/reference"
)

// Estimator produces a raw point estimate from a feature vector.
type Estimator interface {
	Estimate(f model.Features) float64
}

// History exposes the engineered records that had a known cutoff.
type History interface {
	Observed(tr reference.Track, year int) (model.EngineeredRecord, bool)
}

// Input is the operator's view of the upcoming year. Popularity holds one
// score per track in the reference track order.
type Input struct {
	Year       int
	CohortSize int
	Popularity []float64
}

// Predictor assembles prediction features and applies the post-hoc rules.
type Predictor struct {
	estimator Estimator
	history   History
	tables    *reference.Tables

	threshold             int
	halfWidth             float64
	defaultPrevCutoff     float64
	defaultPrevPopularity float64
}

// New creates a Predictor with configuration options.
func New(est Estimator, hist History, tables *reference.Tables, opts ...Option) *Predictor {
	p := &Predictor{
		estimator:             est,
		history:               hist,
		tables:                tables,
		threshold:             DefaultSuppressionThreshold,
		halfWidth:             DefaultBandHalfWidth,
		defaultPrevCutoff:     DefaultPrevCutoff,
		defaultPrevPopularity: DefaultPrevPopularity,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Features builds one feature vector per track from the last historical
// year and the operator input.
func (p *Predictor) Features(in Input) ([]model.Features, error) {
	tracks := p.tables.Tracks()
	if len(in.Popularity) != len(tracks) {
		return nil, fmt.Errorf("%w: got %d popularity scores for %d tracks", ErrInvalidInput, len(in.Popularity), len(tracks))
	}

	last := p.tables.LastYear()
	out := make([]model.Features, len(tracks))
	for i, tr := range tracks {
		f := model.Features{
			Year:                 in.Year,
			CohortSize:           in.CohortSize,
			Seats:                p.tables.Seats(tr),
			Popularity:           in.Popularity[i],
			PrevCutoff:           p.defaultPrevCutoff,
			PrevCutoffWasMissing: true,
			PopularityWasMissing: false,
			PrevPopularity:       p.defaultPrevPopularity,
		}
		if rec, ok := p.history.Observed(tr, last); ok {
			f.PrevCutoff = rec.Cutoff
			f.PrevPopularity = rec.Popularity
			f.PrevCutoffWasMissing = false
		}
		out[i] = f
	}
	return out, nil
}

// Predict returns one result per track in the reference track order.
func (p *Predictor) Predict(in Input) ([]model.Result, error) {
	features, err := p.Features(in)
	if err != nil {
		return nil, err
	}

	tracks := p.tables.Tracks()
	results := make([]model.Result, len(tracks))
	for i, f := range features {
		est := p.estimator.Estimate(f)
		lo, hi := Band(est, p.halfWidth)
		results[i] = model.Result{Track: tracks[i], Known: true, Estimate: est, Lower: lo, Upper: hi}
	}

	if i, ok := Suppressed(in.CohortSize, in.Popularity, p.threshold); ok {
		results[i] = model.Result{Track: tracks[i]}
	}
	return results, nil
}

// Suppressed reports the track to mark unknown: when cohortSize is below
// threshold, the lowest popularity score, earliest index on ties.
func Suppressed(cohortSize int, popularity []float64, threshold int) (int, bool) {
	if cohortSize >= threshold || len(popularity) == 0 {
		return 0, false
	}
	lowest := 0
	for i, v := range popularity {
		if v < popularity[lowest] {
			lowest = i
		}
	}
	return lowest, true
}

// Band returns [estimate-halfWidth, estimate+halfWidth], each rounded half-up
// to two decimals on a shared micro-unit grid. Inputs snap to the grid before
// cent rounding, so 3.3749999 is treated as 3.375.
func Band(estimate, halfWidth float64) (lower, upper float64) {
	m := math.Round(estimate * 1e6)
	h := math.Round(halfWidth * 1e6)
	return cents(m-h) / 100, cents(m+h) / 100
}

func cents(micros float64) float64 {
	return math.Floor((micros + 5000) / 10000)
}

// CheckCohortSize validates a cohort size against the minimum intake.
func CheckCohortSize(n, minimum int) error {
	if n < minimum {
		return fmt.Errorf("%w: cohort size must be at least %d", ErrInvalidInput, minimum)
	}
	return nil
}

// CheckPopularity validates a single popularity score.
func CheckPopularity(v float64) error {
	if math.IsNaN(v) || v < reference.MinPopularity || v > reference.MaxPopularity {
		return fmt.Errorf("%w: score must be between %g and %g", ErrInvalidInput, reference.MinPopularity, reference.MaxPopularity)
	}
	return nil
}
