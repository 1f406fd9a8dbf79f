package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/jszwec/csvutil"
)

// Row is one line of the long-format history CSV. Empty popularity or
// cutoff cells decode to nil and mean "not recorded".
type Row struct {
	Year       int      `csv:"year"`
	Track      string   `csv:"track"`
	CohortSize int      `csv:"cohort_size"`
	Seats      int      `csv:"seats"`
	Popularity *float64 `csv:"popularity"`
	Cutoff     *float64 `csv:"cutoff"`
}

// LoadCSV decodes long-format history rows and validates them into Tables.
// Track order follows first appearance in the file. Seat capacity must be
// constant per track and cohort size constant per year.
func LoadCSV(r io.Reader) (*Tables, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeCSV, err)
	}

	var rows []Row
	if err := dec.Decode(&rows); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", ErrDecodeCSV, err)
	}
	return FromRows(rows)
}

// FromRows folds long-format rows into a Spec and validates it.
func FromRows(rows []Row) (*Tables, error) {
	spec := Spec{
		Seats:      make(map[Track]int),
		Cohorts:    make(map[int]int),
		Popularity: make(map[Key]float64),
		Cutoffs:    make(map[Key]float64),
	}
	seen := make(map[Key]bool, len(rows))

	for i, row := range rows {
		tr := Track(row.Track)
		key := Key{Year: row.Year, Track: tr}
		if seen[key] {
			return nil, fmt.Errorf("%w: row %d duplicates %s/%d", ErrInvalidTables, i+1, tr, row.Year)
		}
		seen[key] = true

		if s, ok := spec.Seats[tr]; !ok {
			spec.Tracks = append(spec.Tracks, tr)
			spec.Seats[tr] = row.Seats
		} else if s != row.Seats {
			return nil, fmt.Errorf("%w: row %d seats %d conflict with %d for %s", ErrInvalidTables, i+1, row.Seats, s, tr)
		}

		if c, ok := spec.Cohorts[row.Year]; !ok {
			spec.Cohorts[row.Year] = row.CohortSize
		} else if c != row.CohortSize {
			return nil, fmt.Errorf("%w: row %d cohort %d conflicts with %d for %d", ErrInvalidTables, i+1, row.CohortSize, c, row.Year)
		}

		if row.Popularity != nil {
			spec.Popularity[key] = *row.Popularity
		}
		if row.Cutoff != nil {
			spec.Cutoffs[key] = *row.Cutoff
		}
	}

	// Every (year, track) cell must be present exactly once.
	for _, year := range sortedYears(spec.Cohorts) {
		for _, tr := range spec.Tracks {
			if !seen[Key{Year: year, Track: tr}] {
				return nil, fmt.Errorf("%w: missing row for %s/%d", ErrInvalidTables, tr, year)
			}
		}
	}

	return NewTables(spec)
}

// Rows flattens t into long-format rows ordered by year then track.
func (t *Tables) Rows() []Row {
	rows := make([]Row, 0, len(t.years)*len(t.tracks))
	for _, year := range t.years {
		for _, tr := range t.tracks {
			row := Row{
				Year:       year,
				Track:      string(tr),
				CohortSize: t.cohorts[year],
				Seats:      t.seats[tr],
			}
			if v, ok := t.Popularity(year, tr); ok {
				row.Popularity = &v
			}
			if v, ok := t.Cutoff(year, tr); ok {
				row.Cutoff = &v
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteCSV encodes t as long-format CSV with a header line.
func WriteCSV(w io.Writer, t *Tables) error {
	data, err := csvutil.Marshal(t.Rows())
	if err != nil {
		return fmt.Errorf("encode reference csv: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write reference csv: %w", err)
	}
	return nil
}

func sortedYears(cohorts map[int]int) []int {
	years := make([]int, 0, len(cohorts))
	for y := range cohorts {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
