// Package core wires the two-stage reconstruction pipeline together: contact
// matrix → shortest-path distance matrix → 3D coordinates.
package core

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/chromoscope/shrec3d/pkg/mds"
	"github.com/chromoscope/shrec3d/pkg/pathdist"
	"github.com/chromoscope/shrec3d/pkg/synth"
)

var (
	ErrInvalidConfiguration = errors.New("core: invalid configuration")
	ErrDimensionMismatch    = errors.New("core: coordinate sets have different point counts")
)

// Options contains configuration parameters for a Reconstructor.
type Options struct {
	// Sentinel is the distance recorded for unreachable point pairs.
	// 0 means pathdist.UnreachableDistance.
	Sentinel float64
	// Workers bounds the parallelism of distance inference.
	// 0 means one worker per CPU.
	Workers int
	// Logger for diagnostics. nil means no logging.
	Logger *zap.Logger
}

// DefaultOptions returns the default reconstruction configuration.
func DefaultOptions() Options {
	return Options{
		Sentinel: pathdist.UnreachableDistance,
		Workers:  0,
		Logger:   nil,
	}
}

// Reconstructor runs the ShRec3D pipeline. It holds no state between calls;
// every Reconstruct invocation is an independent pure computation.
type Reconstructor struct {
	opts   Options
	logger *zap.Logger
}

// New validates opts and returns a Reconstructor.
func New(opts Options) (*Reconstructor, error) {
	if opts.Sentinel < 0 {
		return nil, fmt.Errorf("%w: sentinel must be non-negative, got %g", ErrInvalidConfiguration, opts.Sentinel)
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfiguration, opts.Workers)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconstructor{opts: opts, logger: logger}, nil
}

// Reconstruct infers approximate 3D coordinates for the points described by
// the given contact matrix. The output is N×3, recovered up to a rigid
// transform plus possible reflections.
//
// Disconnected contact graphs do not fail: unreachable pairs are assigned the
// configured sentinel distance, which lets the embedding proceed but can
// distort it. Callers holding disconnected data should expect approximate
// results at best.
func (r *Reconstructor) Reconstruct(contacts *mat.Dense) (*mat.Dense, error) {
	distances, err := r.InferDistances(contacts)
	if err != nil {
		return nil, err
	}
	return r.Embed(distances)
}

// InferDistances exposes the first pipeline stage.
func (r *Reconstructor) InferDistances(contacts *mat.Dense) (*mat.Dense, error) {
	return pathdist.InferDistances(contacts, pathdist.Options{
		Sentinel: r.opts.Sentinel,
		Workers:  r.opts.Workers,
		Logger:   r.logger,
	})
}

// Embed exposes the second pipeline stage.
func (r *Reconstructor) Embed(distances *mat.Dense) (*mat.Dense, error) {
	return mds.Embed(distances, mds.Options{Logger: r.logger})
}

// RoundTripError measures how well a reconstructed configuration preserves
// the shape of the original: the root-mean-square difference between the two
// pairwise-distance matrices. Comparing distances rather than raw coordinates
// makes the measure invariant under the rigid transforms and reflections that
// the embedding cannot and need not recover.
func RoundTripError(original, reconstructed *mat.Dense) (float64, error) {
	do, err := synth.PairwiseDistances(original)
	if err != nil {
		return 0, err
	}
	dr, err := synth.PairwiseDistances(reconstructed)
	if err != nil {
		return 0, err
	}

	n, _ := do.Dims()
	m, _ := dr.Dims()
	if n != m {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, n, m)
	}

	var sum float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			diff := do.At(i, j) - dr.At(i, j)
			sum += diff * diff
		}
	}
	return math.Sqrt(sum / float64(n*n)), nil
}
