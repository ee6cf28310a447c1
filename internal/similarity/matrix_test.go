package similarity

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popflix/internal/catalog"
)

func sparse(dense ...[]int) *catalog.FeatureMatrix {
	cols := 0
	rows := make([][]catalog.Entry, len(dense))
	for i, d := range dense {
		if len(d) > cols {
			cols = len(d)
		}
		for c, n := range d {
			if n != 0 {
				rows[i] = append(rows[i], catalog.Entry{Col: c, Count: n})
			}
		}
	}
	return catalog.NewFeatureMatrix(cols, rows)
}

func TestBuildKnownValues(t *testing.T) {
	m := Build(sparse(
		[]int{1, 0, 0},
		[]int{0, 1, 0},
		[]int{1, 0, 0},
		[]int{1, 1, 0},
	))

	assert.Equal(t, 0.0, m.At(0, 1))
	assert.Equal(t, 1.0, m.At(0, 2))
	assert.InDelta(t, 1/math.Sqrt2, m.At(0, 3), 1e-12)
	assert.InDelta(t, 1/math.Sqrt2, m.At(1, 3), 1e-12)
}

func TestBuildSymmetricAndDiagonal(t *testing.T) {
	m := Build(sparse(
		[]int{3, 1, 0, 2},
		[]int{0, 0, 0, 0},
		[]int{1, 4, 1, 0},
		[]int{2, 2, 2, 2},
		[]int{0, 0, 0, 0},
	))

	for i := 0; i < m.Size(); i++ {
		for j := 0; j < m.Size(); j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i), "sim[%d][%d]", i, j)
			assert.False(t, math.IsNaN(m.At(i, j)))
			assert.GreaterOrEqual(t, m.At(i, j), 0.0)
			assert.LessOrEqual(t, m.At(i, j), 1.0)
		}
	}

	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 1.0, m.At(2, 2))
	assert.Equal(t, 1.0, m.At(3, 3))
}

func TestBuildZeroVectors(t *testing.T) {
	m := Build(sparse(
		[]int{0, 0},
		[]int{0, 0},
		[]int{1, 1},
	))

	assert.Equal(t, 0.0, m.At(0, 1), "two zero rows")
	assert.Equal(t, 0.0, m.At(0, 2), "zero row against non-zero row")
	assert.Equal(t, 0.0, m.At(0, 0), "zero row self-similarity")
	assert.Equal(t, 1.0, m.At(2, 2))
}

func TestBuildContextMatchesSequential(t *testing.T) {
	fm := sparse(
		[]int{1, 2, 3, 0, 0},
		[]int{0, 1, 0, 4, 1},
		[]int{5, 0, 0, 0, 1},
		[]int{1, 1, 1, 1, 1},
		[]int{0, 0, 7, 0, 0},
		[]int{2, 0, 2, 0, 2},
	)
	want := Build(fm)

	got, err := BuildContext(context.Background(), fm, 4)
	require.NoError(t, err)
	for i := 0; i < want.Size(); i++ {
		assert.Equal(t, want.Row(i), got.Row(i))
	}
}

func TestBuildContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildContext(ctx, sparse([]int{1}, []int{1}), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewMatrixDimension(t *testing.T) {
	_, err := NewMatrix(2, []float64{1, 0, 0})
	assert.ErrorIs(t, err, ErrDimension)

	m, err := NewMatrix(2, []float64{1, 0.5, 0.5, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1}, m.Row(1))
}

func TestDot(t *testing.T) {
	a := []catalog.Entry{{Col: 0, Count: 2}, {Col: 3, Count: 1}, {Col: 7, Count: 4}}
	b := []catalog.Entry{{Col: 1, Count: 5}, {Col: 3, Count: 3}, {Col: 7, Count: 1}}
	assert.Equal(t, 7, Dot(a, b))
	assert.Equal(t, 0, Dot(nil, b))
}
