// Package reference holds the immutable historical tables the forecaster
// learns from: tracks, seat capacities, cohort sizes, popularity scores and
// realized cutoffs.
package reference

import (
	"fmt"
	"math"
	"sort"
)

// Popularity scores are bounded to this closed range.
const (
	MinPopularity = 1.0
	MaxPopularity = 10.0
)

// Track identifies one program specialisation.
type Track string

// Key addresses a single (year, track) cell.
type Key struct {
	Year  int
	Track Track
}

// Spec is the mutable input used to build Tables. Absent cutoffs or
// popularity scores are simply missing from the maps.
type Spec struct {
	Tracks     []Track
	Seats      map[Track]int
	Cohorts    map[int]int
	Popularity map[Key]float64
	Cutoffs    map[Key]float64
}

// Tables is a validated, read-only view over the historical data.
type Tables struct {
	tracks     []Track
	trackIndex map[Track]int
	years      []int
	seats      map[Track]int
	cohorts    map[int]int
	popularity map[Key]float64
	cutoffs    map[Key]float64
}

// NewTables validates spec and copies it into an immutable Tables.
func NewTables(spec Spec) (*Tables, error) {
	if len(spec.Tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks", ErrInvalidTables)
	}
	if len(spec.Cohorts) == 0 {
		return nil, fmt.Errorf("%w: no cohort years", ErrInvalidTables)
	}

	t := &Tables{
		tracks:     make([]Track, len(spec.Tracks)),
		trackIndex: make(map[Track]int, len(spec.Tracks)),
		seats:      make(map[Track]int, len(spec.Tracks)),
		cohorts:    make(map[int]int, len(spec.Cohorts)),
		popularity: make(map[Key]float64, len(spec.Popularity)),
		cutoffs:    make(map[Key]float64, len(spec.Cutoffs)),
	}
	copy(t.tracks, spec.Tracks)

	for i, tr := range t.tracks {
		if tr == "" {
			return nil, fmt.Errorf("%w: empty track name at position %d", ErrInvalidTables, i)
		}
		if _, dup := t.trackIndex[tr]; dup {
			return nil, fmt.Errorf("%w: duplicate track %q", ErrInvalidTables, tr)
		}
		t.trackIndex[tr] = i

		seats, ok := spec.Seats[tr]
		if !ok || seats <= 0 {
			return nil, fmt.Errorf("%w: track %q has no positive seat capacity", ErrInvalidTables, tr)
		}
		t.seats[tr] = seats
	}

	for year, size := range spec.Cohorts {
		if size <= 0 {
			return nil, fmt.Errorf("%w: cohort size for %d must be positive", ErrInvalidTables, year)
		}
		t.cohorts[year] = size
		t.years = append(t.years, year)
	}
	sort.Ints(t.years)

	for k, v := range spec.Popularity {
		if err := t.checkKey(k); err != nil {
			return nil, err
		}
		if !finite(v) || v < MinPopularity || v > MaxPopularity {
			return nil, fmt.Errorf("%w: popularity %.2f for %s/%d outside [1,10]", ErrInvalidTables, v, k.Track, k.Year)
		}
		t.popularity[k] = v
	}
	for k, v := range spec.Cutoffs {
		if err := t.checkKey(k); err != nil {
			return nil, err
		}
		if !finite(v) {
			return nil, fmt.Errorf("%w: cutoff %v for %s/%d is not a finite number", ErrInvalidTables, v, k.Track, k.Year)
		}
		t.cutoffs[k] = v
	}

	return t, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (t *Tables) checkKey(k Key) error {
	if _, ok := t.trackIndex[k.Track]; !ok {
		return fmt.Errorf("%w: %w %q", ErrInvalidTables, ErrUnknownTrack, k.Track)
	}
	if _, ok := t.cohorts[k.Year]; !ok {
		return fmt.Errorf("%w: year %d has no cohort size", ErrInvalidTables, k.Year)
	}
	return nil
}

// Tracks returns the tracks in their fixed display order.
func (t *Tables) Tracks() []Track {
	out := make([]Track, len(t.tracks))
	copy(out, t.tracks)
	return out
}

// Years returns the historical years in ascending order.
func (t *Tables) Years() []int {
	out := make([]int, len(t.years))
	copy(out, t.years)
	return out
}

// LastYear returns the most recent historical year.
func (t *Tables) LastYear() int {
	return t.years[len(t.years)-1]
}

// TrackIndex returns the position of tr in the fixed ordering.
func (t *Tables) TrackIndex(tr Track) (int, bool) {
	i, ok := t.trackIndex[tr]
	return i, ok
}

// Seats returns the seat capacity of tr, or 0 if the track is unknown.
func (t *Tables) Seats(tr Track) int {
	return t.seats[tr]
}

// CohortSize returns the total intake for year, or 0 if the year is unknown.
func (t *Tables) CohortSize(year int) int {
	return t.cohorts[year]
}

// Cutoff returns the realized cutoff for (year, track) if it was observed.
func (t *Tables) Cutoff(year int, tr Track) (float64, bool) {
	v, ok := t.cutoffs[Key{Year: year, Track: tr}]
	return v, ok
}

// Popularity returns the popularity score for (year, track) if it was recorded.
func (t *Tables) Popularity(year int, tr Track) (float64, bool) {
	v, ok := t.popularity[Key{Year: year, Track: tr}]
	return v, ok
}
