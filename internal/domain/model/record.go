// Package model contains domain models passed between layers.
package model

import "github.com/okian/cutoffs/internal/domain/reference"

// HistoricalRecord is one (year, track) cell of the reference grid.
// Cutoff and Popularity are only meaningful when their Has* flag is set.
type HistoricalRecord struct {
	Year          int
	Track         reference.Track
	Cutoff        float64
	HasCutoff     bool
	Popularity    float64
	HasPopularity bool
	Seats         int
	CohortSize    int
}

// EngineeredRecord is a HistoricalRecord with lag and missingness features.
// Popularity here is already substituted; PopularityWasMissing records
// whether the raw value was absent.
type EngineeredRecord struct {
	Year                 int
	Track                reference.Track
	Cutoff               float64
	HasCutoff            bool
	Seats                int
	CohortSize           int
	Popularity           float64
	PopularityWasMissing bool
	PrevCutoff           float64
	PrevCutoffWasMissing bool
	PrevPopularity       float64
}

// TrainingRow pairs a feature vector with its known cutoff.
type TrainingRow struct {
	Track    reference.Track
	Features Features
	Cutoff   float64
}

// Features returns the model inputs for r.
func (r EngineeredRecord) Features() Features {
	return Features{
		Year:                 r.Year,
		CohortSize:           r.CohortSize,
		Seats:                r.Seats,
		Popularity:           r.Popularity,
		PrevCutoff:           r.PrevCutoff,
		PrevCutoffWasMissing: r.PrevCutoffWasMissing,
		PopularityWasMissing: r.PopularityWasMissing,
		PrevPopularity:       r.PrevPopularity,
	}
}
