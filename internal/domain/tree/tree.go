package tree

import (
	"fmt"
	"math/rand"
	"sort"
)

// Tolerances matching the usual CART implementations: feature values closer
// than featureEpsilon are treated as equal, and a node whose impurity is at
// most impurityEpsilon (machine epsilon) is a leaf.
const (
	featureEpsilon  = 1e-7
	impurityEpsilon = 2.220446049250313e-16
)

// Regressor fits regression trees. It holds configuration only and is safe
// to reuse.
type Regressor struct {
	maxDepth        int
	seed            int64
	minSamplesSplit int
	minSamplesLeaf  int
}

// NewRegressor creates a regressor with configuration options.
func NewRegressor(opts ...Option) *Regressor {
	r := &Regressor{
		maxDepth:        defaultMaxDepth,
		seed:            defaultSeed,
		minSamplesSplit: defaultMinSamplesSplit,
		minSamplesLeaf:  defaultMinSamplesLeaf,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tree is a fitted, immutable regression tree.
type Tree struct {
	root     *node
	features int
	depth    int
	leaves   int
}

type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	value     float64
	samples   int
	leaf      bool
}

// fitter carries per-Fit state so that Regressor stays stateless.
type fitter struct {
	cfg *Regressor
	x   [][]float64
	y   []float64
	rng *rand.Rand
	t   *Tree
}

// Fit grows a tree on x (one row per sample) and targets y. The same
// inputs and seed always produce the same tree.
func (r *Regressor) Fit(x [][]float64, y []float64) (*Tree, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d rows but %d targets", ErrShapeMismatch, len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: rows have no features", ErrShapeMismatch)
	}
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), width)
		}
	}

	f := &fitter{
		cfg: r,
		x:   x,
		y:   y,
		rng: rand.New(rand.NewSource(r.seed)), //nolint:gosec // deterministic seed for reproducible trees
		t:   &Tree{features: width},
	}
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	f.t.root = f.grow(idx, 0)
	return f.t, nil
}

func (f *fitter) grow(idx []int, depth int) *node {
	sum := 0.0
	for _, i := range idx {
		sum += f.y[i]
	}
	n := float64(len(idx))
	mean := sum / n
	impurity := 0.0
	for _, i := range idx {
		d := f.y[i] - mean
		impurity += d * d
	}
	impurity /= n

	nd := &node{value: mean, samples: len(idx)}
	if depth > f.t.depth {
		f.t.depth = depth
	}

	if depth >= f.cfg.maxDepth || len(idx) < f.cfg.minSamplesSplit ||
		len(idx) < 2*f.cfg.minSamplesLeaf || impurity <= impurityEpsilon {
		return f.makeLeaf(nd)
	}

	s, ok := f.bestSplit(idx, sum)
	if !ok {
		return f.makeLeaf(nd)
	}

	left := make([]int, 0, s.nLeft)
	right := make([]int, 0, len(idx)-s.nLeft)
	for _, i := range idx {
		if f.x[i][s.feature] <= s.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	nd.feature = s.feature
	nd.threshold = s.threshold
	nd.left = f.grow(left, depth+1)
	nd.right = f.grow(right, depth+1)
	return nd
}

func (f *fitter) makeLeaf(nd *node) *node {
	nd.leaf = true
	f.t.leaves++
	return nd
}

type split struct {
	feature   int
	threshold float64
	nLeft     int
	score     float64
}

// bestSplit scans every feature, in a seeded random order, for the
// threshold that maximizes the reduction in squared error. Ties keep the
// first candidate found, which is why the visiting order is seeded.
func (f *fitter) bestSplit(idx []int, total float64) (split, bool) {
	n := len(idx)
	minLeaf := f.cfg.minSamplesLeaf
	best := split{score: -1}
	found := false

	sorted := make([]int, n)
	for _, feat := range f.rng.Perm(f.t.features) {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool {
			return f.x[sorted[a]][feat] < f.x[sorted[b]][feat]
		})
		if f.x[sorted[n-1]][feat] <= f.x[sorted[0]][feat]+featureEpsilon {
			continue // constant feature in this node
		}

		leftSum := 0.0
		for pos := 1; pos < n; pos++ {
			leftSum += f.y[sorted[pos-1]]
			lo, hi := f.x[sorted[pos-1]][feat], f.x[sorted[pos]][feat]
			if hi <= lo+featureEpsilon {
				continue
			}
			if pos < minLeaf || n-pos < minLeaf {
				continue
			}

			nl, nr := float64(pos), float64(n-pos)
			rightSum := total - leftSum
			// Proxy for impurity reduction: the parent term is constant per node.
			score := leftSum*leftSum/nl + rightSum*rightSum/nr
			if !found || score > best.score {
				threshold := lo/2 + hi/2
				if threshold >= hi {
					threshold = lo
				}
				best = split{feature: feat, threshold: threshold, nLeft: pos, score: score}
				found = true
			}
		}
	}
	// Any valid split is taken, however small its gain.
	return best, found
}

// Predict walks the tree for a single feature vector.
func (t *Tree) Predict(x []float64) (float64, error) {
	if len(x) != t.features {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrShapeMismatch, len(x), t.features)
	}
	nd := t.root
	for !nd.leaf {
		if x[nd.feature] <= nd.threshold {
			nd = nd.left
		} else {
			nd = nd.right
		}
	}
	return nd.value, nil
}

// Depth returns the depth of the deepest leaf; a single leaf has depth 0.
func (t *Tree) Depth() int { return t.depth }

// Leaves returns the number of leaves.
func (t *Tree) Leaves() int { return t.leaves }

// Features returns the expected vector length.
func (t *Tree) Features() int { return t.features }
