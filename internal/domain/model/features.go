package model

// FeatureNames lists the model inputs in vector order.
var FeatureNames = []string{ //nolint:gochecknoglobals // fixed schema
	"year",
	"cohort_size",
	"seats",
	"popularity",
	"prev_cutoff",
	"prev_cutoff_missing",
	"popularity_missing",
	"prev_popularity",
}

// FeatureCount is the length of every vector produced by Features.Vector.
const FeatureCount = 8

// Features is the fixed input schema shared by training and prediction.
type Features struct {
	Year                 int
	CohortSize           int
	Seats                int
	Popularity           float64
	PrevCutoff           float64
	PrevCutoffWasMissing bool
	PopularityWasMissing bool
	PrevPopularity       float64
}

// Vector encodes f in FeatureNames order. Both the trainer and the
// predictor must go through this method.
func (f Features) Vector() []float64 {
	return []float64{
		float64(f.Year),
		float64(f.CohortSize),
		float64(f.Seats),
		f.Popularity,
		f.PrevCutoff,
		flag(f.PrevCutoffWasMissing),
		flag(f.PopularityWasMissing),
		f.PrevPopularity,
	}
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
