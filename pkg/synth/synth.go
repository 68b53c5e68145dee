// Package synth derives a binary contact matrix from a known set of
// coordinates by thresholding Euclidean distances. It exists to manufacture
// inputs for round-trip validation of the reconstruction pipeline and is not
// part of the pipeline itself.
package synth

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoPoints        = errors.New("synth: coordinate matrix has no rows")
	ErrNegativeEpsilon = errors.New("synth: epsilon must be non-negative")
)

// PairwiseDistances returns the N×N matrix of Euclidean distances between the
// rows of coords. The coordinate dimensionality is whatever coords carries;
// it is not fixed to 3.
func PairwiseDistances(coords *mat.Dense) (*mat.Dense, error) {
	if coords == nil {
		return nil, ErrNoPoints
	}
	n, _ := coords.Dims()
	if n == 0 {
		return nil, ErrNoPoints
	}

	distances := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		ri := coords.RawRowView(i)
		for j := i + 1; j < n; j++ {
			d := floats.Distance(ri, coords.RawRowView(j), 2)
			distances.Set(i, j, d)
			distances.Set(j, i, d)
		}
	}
	return distances, nil
}

// Contacts thresholds the pairwise distances of coords at epsilon: entry
// (i,j) is 1 if the points lie within epsilon of each other and 0 otherwise.
// The diagonal is always 1 for epsilon >= 0, since self-distance is zero.
func Contacts(coords *mat.Dense, epsilon float64) (*mat.Dense, error) {
	if epsilon < 0 {
		return nil, fmt.Errorf("%w: got %g", ErrNegativeEpsilon, epsilon)
	}
	distances, err := PairwiseDistances(coords)
	if err != nil {
		return nil, err
	}

	n, _ := distances.Dims()
	contacts := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if distances.At(i, j) <= epsilon {
				contacts.Set(i, j, 1)
			}
		}
	}
	return contacts, nil
}
