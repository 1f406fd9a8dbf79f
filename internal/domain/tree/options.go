// Package tree implements a CART regression tree with a squared-error
// criterion.
package tree

// Default fitting parameters.
const (
	defaultMaxDepth        = 4
	defaultSeed            = 42
	defaultMinSamplesSplit = 2
	defaultMinSamplesLeaf  = 1
)

// Option applies a configuration option to the Regressor.
type Option func(*Regressor)

// WithMaxDepth bounds the depth of the fitted tree. The root is depth 0.
func WithMaxDepth(depth int) Option {
	return func(r *Regressor) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithSeed fixes the seed that orders feature evaluation at each node.
func WithSeed(seed int64) Option {
	return func(r *Regressor) {
		r.seed = seed
	}
}

// WithMinSamplesSplit sets the minimum node size eligible for a split.
func WithMinSamplesSplit(n int) Option {
	return func(r *Regressor) {
		if n >= 2 {
			r.minSamplesSplit = n
		}
	}
}

// WithMinSamplesLeaf sets the minimum number of samples on each side of a split.
func WithMinSamplesLeaf(n int) Option {
	return func(r *Regressor) {
		if n >= 1 {
			r.minSamplesLeaf = n
		}
	}
}
