package dataset

import "github.com/okian/cutoffs/internal/domain/model"

type lag struct {
	prevCutoff           float64
	prevCutoffWasMissing bool
	prevPopularity       float64
}

// lagFeatures reads the predecessor's forward-filled cutoff and raw
// popularity. A missing predecessor counts as a missing cutoff.
func lagFeatures(prev *model.HistoricalRecord) lag {
	out := lag{
		prevCutoff:           DefaultPrevCutoff,
		prevCutoffWasMissing: true,
		prevPopularity:       DefaultPrevPopularity,
	}
	if prev == nil {
		return out
	}
	if prev.HasCutoff {
		out.prevCutoff, out.prevCutoffWasMissing = prev.Cutoff, false
	}
	if prev.HasPopularity {
		out.prevPopularity = prev.Popularity
	}
	return out
}

type popularity struct {
	value      float64
	wasMissing bool
}

// popularityFeatures captures missingness from the raw record and only then
// substitutes the neutral default.
func popularityFeatures(r model.HistoricalRecord) popularity {
	if !r.HasPopularity {
		return popularity{value: DefaultPopularity, wasMissing: true}
	}
	return popularity{value: r.Popularity}
}
