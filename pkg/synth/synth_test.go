package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestPairwiseDistancesRightTriangle(t *testing.T) {
	// 3-4-5 right triangle in the plane; the dimensionality is whatever the
	// coordinate matrix carries, not fixed to 3.
	coords := mat.NewDense(3, 2, []float64{
		0, 0,
		3, 0,
		3, 4,
	})

	distances, err := PairwiseDistances(coords)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, distances.At(0, 1), 1e-12)
	assert.InDelta(t, 4.0, distances.At(1, 2), 1e-12)
	assert.InDelta(t, 5.0, distances.At(0, 2), 1e-12)
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, distances.At(i, i))
		for j := 0; j < 3; j++ {
			assert.Equal(t, distances.At(i, j), distances.At(j, i))
		}
	}
}

func TestContactsThreshold(t *testing.T) {
	coords := mat.NewDense(3, 1, []float64{0, 1, 3})

	contacts, err := Contacts(coords, 1.5)
	require.NoError(t, err)

	want := mat.NewDense(3, 3, []float64{
		1, 1, 0,
		1, 1, 0,
		0, 0, 1,
	})
	assert.True(t, mat.Equal(contacts, want))
}

func TestContactsBinaryWithSelfContacts(t *testing.T) {
	coords := mat.NewDense(4, 3, []float64{
		0, 0, 0,
		0.1, 0, 0,
		0, 0.1, 0,
		5, 5, 5,
	})

	contacts, err := Contacts(coords, 0.2)
	require.NoError(t, err)

	n, _ := contacts.Dims()
	for i := 0; i < n; i++ {
		// Self-distance is zero, so the diagonal is always a contact.
		assert.Equal(t, 1.0, contacts.At(i, i))
		for j := 0; j < n; j++ {
			v := contacts.At(i, j)
			assert.True(t, v == 0 || v == 1, "contacts[%d,%d] = %v", i, j, v)
		}
	}
	assert.Equal(t, 1.0, contacts.At(0, 1))
	assert.Equal(t, 0.0, contacts.At(0, 3))
}

func TestContactsZeroEpsilon(t *testing.T) {
	coords := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
	})

	contacts, err := Contacts(coords, 0)
	require.NoError(t, err)

	// Only self-pairs survive a zero threshold.
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				assert.Equal(t, 1.0, contacts.At(i, j))
			} else {
				assert.Equal(t, 0.0, contacts.At(i, j))
			}
		}
	}
}

func TestContactsInvalidInput(t *testing.T) {
	coords := mat.NewDense(2, 2, []float64{0, 0, 1, 1})

	_, err := Contacts(coords, -0.1)
	require.ErrorIs(t, err, ErrNegativeEpsilon)

	_, err = Contacts(nil, 0.5)
	require.ErrorIs(t, err, ErrNoPoints)

	_, err = PairwiseDistances(nil)
	require.ErrorIs(t, err, ErrNoPoints)
}
