package reference

import "math"

// Engineering specialisations in display order.
const (
	Biomedical              Track = "Biomedical"
	ChemicalAndMaterials    Track = "Chemical and Materials"
	CivilAndEnvironmental   Track = "Civil and Environmental"
	ComputerSystems         Track = "Computer Systems"
	ElectricalAndElectronic Track = "Electrical and Electronic"
	EngineeringScience      Track = "Engineering Science"
	Mechanical              Track = "Mechanical"
	Mechatronics            Track = "Mechatronics"
	Software                Track = "Software"
	Structural              Track = "Structural"
)

const firstHistoricalYear = 2019

// na marks a cell that was never recorded in the literal tables below.
var na = math.NaN() //nolint:gochecknoglobals // literal table marker

var defaultTracks = []Track{ //nolint:gochecknoglobals // fixed reference data
	Biomedical, ChemicalAndMaterials, CivilAndEnvironmental, ComputerSystems,
	ElectricalAndElectronic, EngineeringScience, Mechanical, Mechatronics,
	Software, Structural,
}

var defaultSeats = map[Track]int{ //nolint:gochecknoglobals // fixed reference data
	Biomedical:              35,
	ChemicalAndMaterials:    85,
	CivilAndEnvironmental:   185,
	ComputerSystems:         100,
	ElectricalAndElectronic: 100,
	EngineeringScience:      80,
	Mechanical:              125,
	Mechatronics:            105,
	Software:                120,
	Structural:              105,
}

var defaultCohorts = map[int]int{ //nolint:gochecknoglobals // fixed reference data
	2019: 987, 2020: 995, 2021: 1020, 2022: 994, 2023: 1035, 2024: 875, 2025: 958,
}

// Rows are years from firstHistoricalYear, columns follow defaultTracks.
var defaultPopularity = [][]float64{ //nolint:gochecknoglobals // fixed reference data
	{4, 1, 4, 7, 1, 9, 4, 6, 8, na},
	{3, 1, 3, 4, 1, 4, 3, 7, 9, na},
	{3, 1, 4, 6, 1, 6, 1, 7, 9, 1},
	{4, 1, 3, 5, 1, 7, 3, 8, 10, 1},
	{3, 1, 3, 7, 1, 7, 2, 8, 10, 1},
	{2, 1, 4, 6, 2, 4, 7, 10, 6, 1},
	{2, 1, 3, 5, 6, 2, 8, 9, 4, 1},
}

var defaultCutoffs = [][]float64{ //nolint:gochecknoglobals // fixed reference data
	{5.2, na, 2.6, 3.4, na, 7.0, 3.6, 6.0, 6.4, na},
	{4.6, na, 2.5, 2.2, na, 5.4, 2.7, 6.1, 6.4, na},
	{4.4, na, 3.6, 1.1, na, 6.7, 1.1, 6.9, 7.9, na},
	{4.7, na, 2.8, 4.0, na, 6.0, 2.7, 6.2, 7.2, na},
	{3.6, na, 1.9, 4.9, na, 6.2, 1.8, 6.2, 7.0, na},
	{na, na, na, na, na, 3.8, 3.8, 6.9, 5.8, na},
	{3.0, na, 1.7, 1.7, 3.2, na, 4.7, 6.9, 4.6, na},
}

// DefaultSpec returns a fresh copy of the 2019–2025 reference data.
func DefaultSpec() Spec {
	spec := Spec{
		Tracks:     append([]Track(nil), defaultTracks...),
		Seats:      make(map[Track]int, len(defaultSeats)),
		Cohorts:    make(map[int]int, len(defaultCohorts)),
		Popularity: make(map[Key]float64),
		Cutoffs:    make(map[Key]float64),
	}
	for tr, s := range defaultSeats {
		spec.Seats[tr] = s
	}
	for y, c := range defaultCohorts {
		spec.Cohorts[y] = c
	}
	fillGrid(spec.Popularity, defaultPopularity)
	fillGrid(spec.Cutoffs, defaultCutoffs)
	return spec
}

func fillGrid(dst map[Key]float64, grid [][]float64) {
	for row, values := range grid {
		year := firstHistoricalYear + row
		for col, v := range values {
			if math.IsNaN(v) {
				continue
			}
			dst[Key{Year: year, Track: defaultTracks[col]}] = v
		}
	}
}

// Default returns the validated 2019–2025 reference tables.
func Default() *Tables {
	t, err := NewTables(DefaultSpec())
	if err != nil {
		// The literal data above is fixed; failing here is a programming error.
		panic(err)
	}
	return t
}
