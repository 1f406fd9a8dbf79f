// Package dataset turns the reference tables into engineered training rows:
// grid expansion, per-track forward fill, lag features, missingness flags
// and target filtering.
package dataset

import (
	"sort"

	"github.com/okian/cutoffs/internal/domain/model"
	"github.com/okian/cutoffs/internal/domain/reference"
)

// Defaults applied when a lag or popularity value cannot be observed.
const (
	DefaultPrevCutoff     = 2.5
	DefaultPopularity     = 5.0
	DefaultPrevPopularity = 5.0
)

// Dataset is the immutable result of Build.
type Dataset struct {
	records []model.EngineeredRecord
	rows    []model.TrainingRow
	index   map[reference.Key]int
}

// Build runs the full preparation pipeline over t.
func Build(t *reference.Tables) *Dataset {
	filled := ForwardFill(Expand(t))
	SortByTrackYear(t, filled)
	records := Engineer(filled)

	d := &Dataset{
		records: records,
		rows:    TrainingRows(records),
		index:   make(map[reference.Key]int, len(records)),
	}
	for i, r := range records {
		d.index[reference.Key{Year: r.Year, Track: r.Track}] = i
	}
	return d
}

// Records returns every engineered record in (track, year) order,
// including those without a known cutoff.
func (d *Dataset) Records() []model.EngineeredRecord {
	out := make([]model.EngineeredRecord, len(d.records))
	copy(out, d.records)
	return out
}

// TrainingRows returns the rows with a known target.
func (d *Dataset) TrainingRows() []model.TrainingRow {
	out := make([]model.TrainingRow, len(d.rows))
	copy(out, d.rows)
	return out
}

// Observed returns the engineered record for (track, year) if its cutoff is
// known after forward fill, i.e. if the record is part of the training set.
func (d *Dataset) Observed(tr reference.Track, year int) (model.EngineeredRecord, bool) {
	i, ok := d.index[reference.Key{Year: year, Track: tr}]
	if !ok || !d.records[i].HasCutoff {
		return model.EngineeredRecord{}, false
	}
	return d.records[i], true
}

// Expand produces one record per (year, track), year-major.
func Expand(t *reference.Tables) []model.HistoricalRecord {
	years, tracks := t.Years(), t.Tracks()
	out := make([]model.HistoricalRecord, 0, len(years)*len(tracks))
	for _, year := range years {
		for _, tr := range tracks {
			rec := model.HistoricalRecord{
				Year:       year,
				Track:      tr,
				Seats:      t.Seats(tr),
				CohortSize: t.CohortSize(year),
			}
			rec.Cutoff, rec.HasCutoff = t.Cutoff(year, tr)
			rec.Popularity, rec.HasPopularity = t.Popularity(year, tr)
			out = append(out, rec)
		}
	}
	return out
}

// ForwardFill returns a copy of records where each absent cutoff takes the
// nearest earlier known cutoff of the same track. Values never propagate
// backwards or across tracks. Input order is preserved.
func ForwardFill(records []model.HistoricalRecord) []model.HistoricalRecord {
	out := make([]model.HistoricalRecord, len(records))
	copy(out, records)

	groups := make(map[reference.Track][]int)
	for i, r := range out {
		groups[r.Track] = append(groups[r.Track], i)
	}
	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool { return out[idx[a]].Year < out[idx[b]].Year })

		var last float64
		seen := false
		for _, i := range idx {
			if out[i].HasCutoff {
				last, seen = out[i].Cutoff, true
				continue
			}
			if seen {
				out[i].Cutoff, out[i].HasCutoff = last, true
			}
		}
	}
	return out
}

// SortByTrackYear orders records by the tables' track order, then year.
// Unknown tracks sort last by name.
func SortByTrackYear(t *reference.Tables, records []model.HistoricalRecord) {
	rank := func(tr reference.Track) int {
		if i, ok := t.TrackIndex(tr); ok {
			return i
		}
		return len(t.Tracks())
	}
	sort.SliceStable(records, func(a, b int) bool {
		ra, rb := rank(records[a].Track), rank(records[b].Track)
		if ra != rb {
			return ra < rb
		}
		if records[a].Track != records[b].Track {
			return records[a].Track < records[b].Track
		}
		return records[a].Year < records[b].Year
	})
}

// Engineer derives lag and popularity features. records must already be
// grouped by track and ascending by year within each group; the predecessor
// of a record is the previous element of the same track.
func Engineer(records []model.HistoricalRecord) []model.EngineeredRecord {
	out := make([]model.EngineeredRecord, len(records))
	for i, r := range records {
		var prev *model.HistoricalRecord
		if i > 0 && records[i-1].Track == r.Track {
			prev = &records[i-1]
		}
		lag := lagFeatures(prev)
		pop := popularityFeatures(r)

		out[i] = model.EngineeredRecord{
			Year:                 r.Year,
			Track:                r.Track,
			Cutoff:               r.Cutoff,
			HasCutoff:            r.HasCutoff,
			Seats:                r.Seats,
			CohortSize:           r.CohortSize,
			Popularity:           pop.value,
			PopularityWasMissing: pop.wasMissing,
			PrevCutoff:           lag.prevCutoff,
			PrevCutoffWasMissing: lag.prevCutoffWasMissing,
			PrevPopularity:       lag.prevPopularity,
		}
	}
	return out
}

// TrainingRows keeps the records whose cutoff is known.
func TrainingRows(records []model.EngineeredRecord) []model.TrainingRow {
	rows := make([]model.TrainingRow, 0, len(records))
	for _, r := range records {
		if !r.HasCutoff {
			continue
		}
		rows = append(rows, model.TrainingRow{
			Track:    r.Track,
			Features: r.Features(),
			Cutoff:   r.Cutoff,
		})
	}
	return rows
}
