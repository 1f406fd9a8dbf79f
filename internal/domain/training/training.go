// Package training fits the cutoff model from engineered training rows.
package training

import (
	"errors"
	"fmt"

	"github.com/okian/cutoffs/internal/domain/model"
	"github.com/okian/cutoffs/internal/domain/tree"
)

// Default hyperparameters. They are fixed, not tuned.
const (
	DefaultMaxDepth = 4
	DefaultSeed     = 42
)

// Option applies a configuration option to Train.
type Option func(*settings)

type settings struct {
	maxDepth int
	seed     int64
}

// WithMaxDepth overrides the tree depth bound.
func WithMaxDepth(depth int) Option {
	return func(s *settings) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithSeed overrides the deterministic seed.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

// Model maps a feature vector to a predicted cutoff. It is immutable once
// trained.
type Model struct {
	tree *tree.Tree
	rows int
}

// Train fits a bounded-depth regression tree on every row. There is no
// held-out split.
func Train(rows []model.TrainingRow, opts ...Option) (*Model, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	s := settings{maxDepth: DefaultMaxDepth, seed: DefaultSeed}
	for _, opt := range opts {
		opt(&s)
	}

	x := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		x[i] = r.Features.Vector()
		y[i] = r.Cutoff
	}

	fitted, err := tree.NewRegressor(tree.WithMaxDepth(s.maxDepth), tree.WithSeed(s.seed)).Fit(x, y)
	if err != nil {
		if errors.Is(err, tree.ErrEmptyInput) {
			return nil, ErrEmptyTrainingSet
		}
		return nil, fmt.Errorf("fit tree: %w", err)
	}
	return &Model{tree: fitted, rows: len(rows)}, nil
}

// Estimate returns the predicted cutoff for f.
func (m *Model) Estimate(f model.Features) float64 {
	// Vector always has model.FeatureCount entries, matching the fit.
	v, _ := m.tree.Predict(f.Vector())
	return v
}

// Depth returns the fitted tree depth.
func (m *Model) Depth() int { return m.tree.Depth() }

// Leaves returns the number of leaves of the fitted tree.
func (m *Model) Leaves() int { return m.tree.Leaves() }

// Rows returns how many training rows the model was fitted on.
func (m *Model) Rows() int { return m.rows }
