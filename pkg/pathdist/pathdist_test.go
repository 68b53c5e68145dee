package pathdist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestInferDistancesTwoPoints(t *testing.T) {
	contacts := mat.NewDense(2, 2, []float64{
		0, 1,
		1, 0,
	})

	distances, err := InferDistances(contacts, DefaultOptions())
	require.NoError(t, err)

	want := mat.NewDense(2, 2, []float64{
		0, 1,
		1, 0,
	})
	assert.True(t, mat.EqualApprox(distances, want, 1e-12))
}

func TestInferDistancesUnitTriangle(t *testing.T) {
	contacts := mat.NewDense(3, 3, []float64{
		0, 1, 1,
		1, 0, 1,
		1, 1, 0,
	})

	distances, err := InferDistances(contacts, DefaultOptions())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				assert.Equal(t, 0.0, distances.At(i, j))
			} else {
				assert.InDelta(t, 1.0, distances.At(i, j), 1e-12)
			}
		}
	}
}

func TestInferDistancesSinglePoint(t *testing.T) {
	contacts := mat.NewDense(1, 1, []float64{0})

	distances, err := InferDistances(contacts, DefaultOptions())
	require.NoError(t, err)

	rows, cols := distances.Dims()
	require.Equal(t, 1, rows)
	require.Equal(t, 1, cols)
	assert.Equal(t, 0.0, distances.At(0, 0))
}

func TestInferDistancesIndirectPathWins(t *testing.T) {
	// Direct edge 0-2 has weight 1, but the two-hop route via 1 costs
	// 0.25 + 0.25 = 0.5 thanks to the higher contact frequencies.
	contacts := mat.NewDense(3, 3, []float64{
		0, 4, 1,
		4, 0, 4,
		1, 4, 0,
	})

	distances, err := InferDistances(contacts, DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 0.25, distances.At(0, 1), 1e-12)
	assert.InDelta(t, 0.5, distances.At(0, 2), 1e-12)
}

func TestInferDistancesMonotonicity(t *testing.T) {
	base := mat.NewDense(2, 2, []float64{
		0, 1,
		1, 0,
	})
	boosted := mat.NewDense(2, 2, []float64{
		0, 2,
		2, 0,
	})

	d1, err := InferDistances(base, DefaultOptions())
	require.NoError(t, err)
	d2, err := InferDistances(boosted, DefaultOptions())
	require.NoError(t, err)

	assert.Greater(t, d1.At(0, 1), d2.At(0, 1))
}

func TestInferDistancesAsymmetricLaterWriteWins(t *testing.T) {
	// (0,1) is visited before (1,0) in row-major order, so the edge's final
	// weight is 1/2 from the (1,0) entry.
	contacts := mat.NewDense(2, 2, []float64{
		0, 1,
		2, 0,
	})

	distances, err := InferDistances(contacts, DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 0.5, distances.At(0, 1), 1e-12)
	assert.InDelta(t, 0.5, distances.At(1, 0), 1e-12)
}

func TestInferDistancesDisconnectedSentinel(t *testing.T) {
	// Two components: {0,1} and {2,3}.
	contacts := mat.NewDense(4, 4, []float64{
		0, 1, 0, 0,
		1, 0, 0, 0,
		0, 0, 0, 1,
		0, 0, 1, 0,
	})

	distances, err := InferDistances(contacts, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, UnreachableDistance, distances.At(0, 2))
	assert.Equal(t, UnreachableDistance, distances.At(3, 1))
	assert.InDelta(t, 1.0, distances.At(0, 1), 1e-12)
	assert.InDelta(t, 1.0, distances.At(2, 3), 1e-12)
}

func TestInferDistancesCustomSentinel(t *testing.T) {
	contacts := mat.NewDense(3, 3, []float64{
		0, 1, 0,
		1, 0, 0,
		0, 0, 0,
	})

	opts := DefaultOptions()
	opts.Sentinel = 99
	distances, err := InferDistances(contacts, opts)
	require.NoError(t, err)

	assert.Equal(t, 99.0, distances.At(0, 2))
	assert.Equal(t, 0.0, distances.At(2, 2))
}

func TestInferDistancesSelfLoopIgnored(t *testing.T) {
	plain := mat.NewDense(2, 2, []float64{
		0, 1,
		1, 0,
	})
	looped := mat.NewDense(2, 2, []float64{
		5, 1,
		1, 7,
	})

	d1, err := InferDistances(plain, DefaultOptions())
	require.NoError(t, err)
	d2, err := InferDistances(looped, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, mat.Equal(d1, d2))
}

func TestInferDistancesInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		contacts *mat.Dense
		wantErr  error
	}{
		{"nil matrix", nil, ErrEmptyMatrix},
		{"non-square", mat.NewDense(2, 3, nil), ErrNonSquare},
		{"negative frequency", mat.NewDense(2, 2, []float64{0, -1, -1, 0}), ErrNegativeContact},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := InferDistances(tc.contacts, DefaultOptions())
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// chainContacts builds an n-point chain where neighbours i and i+1 share a
// contact of frequency 1+i%3.
func chainContacts(n int) *mat.Dense {
	contacts := mat.NewDense(n, n, nil)
	for i := 0; i < n-1; i++ {
		f := float64(1 + i%3)
		contacts.Set(i, i+1, f)
		contacts.Set(i+1, i, f)
	}
	return contacts
}

func TestInferDistancesParallelMatchesSequential(t *testing.T) {
	contacts := chainContacts(40)

	seq := DefaultOptions()
	seq.Workers = 1
	par := DefaultOptions()
	par.Workers = 4

	d1, err := InferDistances(contacts, seq)
	require.NoError(t, err)
	d2, err := InferDistances(contacts, par)
	require.NoError(t, err)

	assert.True(t, mat.Equal(d1, d2))
}

func TestInferDistancesDense(t *testing.T) {
	contacts := chainContacts(10)

	distances, err := InferDistances(contacts, DefaultOptions())
	require.NoError(t, err)

	// Fully connected chain: every entry finite, non-negative, zero diagonal.
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			v := distances.At(i, j)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, UnreachableDistance)
			if i == j {
				assert.Equal(t, 0.0, v)
			}
		}
	}
}
