// Package service wires the reference tables, dataset builder, trainer and
// predictor behind a single entry point used by the CLI and HTTP drivers.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/cutoffs/internal/domain/dataset"
	"github.com/okian/cutoffs/internal/domain/model"
	"github.com/okian/cutoffs/internal/domain/prediction"
	"github.com/okian/cutoffs/internal/domain/reference"
	"github.com/okian/cutoffs/internal/domain/training"
	"github.com/okian/cutoffs/pkg/logger"
	"github.com/okian/cutoffs/pkg/metrics"
)

// Forecast is the outcome of one prediction run.
type Forecast struct {
	RunID      uuid.UUID      `json:"run_id" yaml:"run_id"`
	Year       int            `json:"year" yaml:"year"`
	CohortSize int            `json:"cohort_size" yaml:"cohort_size"`
	Results    []model.Result `json:"results" yaml:"results"`
}

// Stats describes the trained state of the service.
type Stats struct {
	Started      bool `json:"started"`
	Records      int  `json:"records"`
	TrainingRows int  `json:"training_rows"`
	TreeDepth    int  `json:"tree_depth"`
	TreeLeaves   int  `json:"tree_leaves"`
	TargetYear   int  `json:"target_year"`
}

// Service trains once at Start and serves read-only forecasts afterwards.
type Service struct {
	mu sync.RWMutex

	// Configuration
	tables     *reference.Tables
	maxDepth   int
	seed       int64
	threshold  int
	halfWidth  float64
	targetYear int
	minCohort  int

	// State
	started   bool
	data      *dataset.Dataset
	model     *training.Model
	predictor *prediction.Predictor

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTables replaces the built-in reference history.
func WithTables(t *reference.Tables) Option {
	return func(s *Service) {
		if t != nil {
			s.tables = t
		}
	}
}

// WithMaxDepth bounds the regression tree depth.
func WithMaxDepth(depth int) Option {
	return func(s *Service) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithSeed fixes tree construction.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithSuppressionThreshold sets the cohort size below which the least
// popular track is reported as not offered.
func WithSuppressionThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithMinCohortSize sets the smallest cohort size Forecast accepts.
func WithMinCohortSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minCohort = n
		}
	}
}

// WithBandHalfWidth sets the distance from the estimate to each bound.
func WithBandHalfWidth(width float64) Option {
	return func(s *Service) {
		if width >= 0 {
			s.halfWidth = width
		}
	}
}

// WithTargetYear overrides the forecast year. Zero keeps the default of the
// year after the last historical year.
func WithTargetYear(year int) Option {
	return func(s *Service) {
		if year > 0 {
			s.targetYear = year
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		maxDepth:  training.DefaultMaxDepth,
		seed:      training.DefaultSeed,
		threshold: prediction.DefaultSuppressionThreshold,
		halfWidth: prediction.DefaultBandHalfWidth,
		minCohort: prediction.MinCohortSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the dataset and fits the model. Calling it again is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.tables == nil {
		s.tables = reference.Default()
	}
	if s.targetYear == 0 {
		s.targetYear = s.tables.LastYear() + 1
	}

	s.logger.Info(ctx, "building training set",
		logger.Int("tracks", len(s.tables.Tracks())),
		logger.Int("years", len(s.tables.Years())),
	)

	start := time.Now()
	data := dataset.Build(s.tables)
	rows := data.TrainingRows()
	metrics.UpdateDatasetRecords(len(data.Records()))
	metrics.UpdateTrainingRows(len(rows))

	m, err := training.Train(rows,
		training.WithMaxDepth(s.maxDepth),
		training.WithSeed(s.seed),
	)
	if err != nil {
		metrics.RecordErrorByComponent("training", "fit_failed")
		s.logger.Error(ctx, "training failed", logger.Error(err))
		return fmt.Errorf("train model: %w", err)
	}
	elapsed := time.Since(start)
	metrics.RecordTrainingDuration(float64(elapsed.Microseconds()) / 1000)
	metrics.UpdateTreeShape(m.Depth(), m.Leaves())

	s.data = data
	s.model = m
	s.predictor = prediction.New(m, data, s.tables,
		prediction.WithSuppressionThreshold(s.threshold),
		prediction.WithBandHalfWidth(s.halfWidth),
	)
	s.started = true

	s.logger.Info(ctx, "model trained",
		logger.Int("records", len(data.Records())),
		logger.Int("rows", m.Rows()),
		logger.Int("depth", m.Depth()),
		logger.Int("leaves", m.Leaves()),
		logger.Int("targetYear", s.targetYear),
		logger.Duration("elapsed", elapsed),
	)
	return nil
}

// Forecast predicts every track for the target year. Inputs are validated
// with the same rules the drivers enforce.
func (s *Service) Forecast(ctx context.Context, cohortSize int, popularity []float64) (Forecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return Forecast{}, ErrNotStarted
	}

	if err := prediction.CheckCohortSize(cohortSize, s.minCohort); err != nil {
		metrics.RecordErrorByComponent("prediction", "invalid_input")
		return Forecast{}, err
	}
	for i, v := range popularity {
		if err := prediction.CheckPopularity(v); err != nil {
			metrics.RecordErrorByComponent("prediction", "invalid_input")
			return Forecast{}, fmt.Errorf("popularity[%d]: %w", i, err)
		}
	}

	start := time.Now()
	results, err := s.predictor.Predict(prediction.Input{
		Year:       s.targetYear,
		CohortSize: cohortSize,
		Popularity: popularity,
	})
	if err != nil {
		metrics.RecordErrorByComponent("prediction", "invalid_input")
		return Forecast{}, err
	}
	metrics.RecordForecast(float64(time.Since(start).Microseconds()) / 1000)

	for _, r := range results {
		if !r.Known {
			metrics.RecordSuppressedTrack()
			metrics.ClearPredictedCutoff(string(r.Track))
			continue
		}
		metrics.UpdatePredictedCutoff(string(r.Track), r.Estimate)
	}

	f := Forecast{
		RunID:      uuid.New(),
		Year:       s.targetYear,
		CohortSize: cohortSize,
		Results:    results,
	}
	s.logger.Debug(ctx, "forecast complete",
		logger.String("runID", f.RunID.String()),
		logger.Int("cohortSize", cohortSize),
		logger.Int("year", f.Year),
	)
	return f, nil
}

// Tracks returns the reference tracks in display order.
func (s *Service) Tracks() []reference.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tables == nil {
		return reference.Default().Tracks()
	}
	return s.tables.Tracks()
}

// MinCohortSize returns the smallest cohort size Forecast accepts.
func (s *Service) MinCohortSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minCohort
}

// Tables returns the active reference tables, or nil before Start.
func (s *Service) Tables() *reference.Tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables
}

// TargetYear returns the forecast year. Before Start it is zero unless set
// with WithTargetYear.
func (s *Service) TargetYear() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.targetYear
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Started: s.started, TargetYear: s.targetYear}
	if s.started {
		st.Records = len(s.data.Records())
		st.TrainingRows = s.model.Rows()
		st.TreeDepth = s.model.Depth()
		st.TreeLeaves = s.model.Leaves()
	}
	return st
}
