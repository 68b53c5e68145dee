// Package mds recovers a 3-dimensional point embedding from a dense distance
// matrix using classical multidimensional scaling: the squared distances are
// double-centered around an estimated centroid profile, and the three largest
// eigenpairs of the resulting Gram matrix are scaled into coordinate columns.
package mds

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Dimensions is the fixed output dimensionality of the embedding.
const Dimensions = 3

var (
	ErrNonSquare     = errors.New("mds: distance matrix must be square")
	ErrTooFewPoints  = errors.New("mds: need at least 3 points for a 3D embedding")
	ErrFactorization = errors.New("mds: eigendecomposition failed")
)

// Options controls the embedding.
type Options struct {
	// Logger for diagnostics. nil means no logging.
	Logger *zap.Logger
}

// Embed converts an N×N distance matrix into an N×3 coordinate matrix.
//
// The embedding is recovered up to a rigid transform plus possible axis
// reflections; absolute position and orientation carry no meaning. Negative
// eigenvalues among the selected three (a degeneracy of non-Euclidean input)
// are clamped to zero, producing a zero coordinate column along that axis
// rather than NaN; each clamp is logged as a warning.
func Embed(distances *mat.Dense, opts Options) (*mat.Dense, error) {
	if distances == nil {
		return nil, ErrTooFewPoints
	}
	n, c := distances.Dims()
	if n != c {
		return nil, fmt.Errorf("%w: got %d×%d", ErrNonSquare, n, c)
	}
	if n < Dimensions {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, n)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	d0 := centroidProfile(distances, n)

	// Double centering: recover inner products relative to the estimated
	// centroid from squared pairwise distances.
	gram := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			d := distances.At(i, j)
			gram.SetSym(i, j, 0.5*(d0[i]*d0[i]+d0[j]*d0[j]-d*d))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(gram, true); !ok {
		return nil, ErrFactorization
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Eigenvalues arrive in ascending order; the embedding axes are the last
	// three. Each coordinate column is the eigenvector scaled by sqrt(λ).
	coords := mat.NewDense(n, Dimensions, nil)
	for k := 0; k < Dimensions; k++ {
		idx := n - Dimensions + k
		val := values[idx]
		if val < 0 {
			logger.Warn("negative eigenvalue among embedding axes, clamping to zero",
				zap.Int("axis", k),
				zap.Float64("eigenvalue", val))
			val = 0
		}
		scale := math.Sqrt(val)
		for i := 0; i < n; i++ {
			coords.Set(i, k, vectors.At(i, idx)*scale)
		}
	}

	logger.Debug("embedding complete",
		zap.Int("points", n),
		zap.Float64s("eigenvalues", values[n-Dimensions:]))
	return coords, nil
}

// centroidProfile estimates, for each point, its squared distance to the
// configuration's center of mass:
//
//	d0[i] = (1/N)·Σⱼ d[i,j]² − (1/N²)·Σ_{j<k} d[j,k]²
//
// The second term is identical for every i and is computed once.
func centroidProfile(distances *mat.Dense, n int) []float64 {
	var pairSum float64
	for j := 0; j < n; j++ {
		for k := j + 1; k < n; k++ {
			d := distances.At(j, k)
			pairSum += d * d
		}
	}
	meanTerm := pairSum / float64(n*n)

	d0 := make([]float64, n)
	for i := 0; i < n; i++ {
		var rowSum float64
		for j := 0; j < n; j++ {
			d := distances.At(i, j)
			rowSum += d * d
		}
		d0[i] = rowSum/float64(n) - meanTerm
	}
	return d0
}
