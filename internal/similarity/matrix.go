// Package similarity computes the all-pairs cosine-similarity matrix over
// catalog feature rows and ranks movies against it.
package similarity

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"popflix/internal/catalog"
)

// Matrix is a square, symmetric similarity matrix stored row-major.
// It is never mutated after Build returns.
type Matrix struct {
	n      int
	values []float64
}

// NewMatrix wraps an n*n row-major slice, e.g. one restored from a snapshot.
func NewMatrix(n int, values []float64) (*Matrix, error) {
	if n < 0 || len(values) != n*n {
		return nil, ErrDimension
	}
	return &Matrix{n: n, values: values}, nil
}

// Size returns the number of rows (and columns).
func (m *Matrix) Size() int { return m.n }

// At returns sim(i, j).
func (m *Matrix) At(i, j int) float64 { return m.values[i*m.n+j] }

// Row returns row i. The slice must not be modified.
func (m *Matrix) Row(i int) []float64 { return m.values[i*m.n : (i+1)*m.n] }

// Build computes the matrix on a single goroutine.
func Build(fm *catalog.FeatureMatrix) *Matrix {
	m, _ := BuildContext(context.Background(), fm, 1)
	return m
}

// BuildContext computes cosine similarity for every unordered pair of rows
// using up to workers goroutines (workers <= 0 means GOMAXPROCS).
//
// A pair involving an all-zero row scores 0. The diagonal is exactly 1 for
// non-zero rows and 0 for zero rows. Each cell is written by one goroutine
// only, so the result does not depend on scheduling.
func BuildContext(ctx context.Context, fm *catalog.FeatureMatrix, workers int) (*Matrix, error) {
	n := fm.Rows()
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	norms := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for _, e := range fm.Sparse(i) {
			sum += float64(e.Count) * float64(e.Count)
		}
		norms[i] = math.Sqrt(sum)
	}

	m := &Matrix{n: n, values: make([]float64, n*n)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m.fillRow(fm, norms, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// gctx is done once Wait returns; only the caller's ctx tells a
	// cancelled build apart from a finished one.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// fillRow computes the cells (i, j) and (j, i) for every j >= i.
func (m *Matrix) fillRow(fm *catalog.FeatureMatrix, norms []float64, i int) {
	n := m.n
	if norms[i] == 0 {
		return
	}
	m.values[i*n+i] = 1

	a := fm.Sparse(i)
	for j := i + 1; j < n; j++ {
		if norms[j] == 0 {
			continue
		}
		s := cosine(a, fm.Sparse(j), norms[i], norms[j])
		m.values[i*n+j] = s
		m.values[j*n+i] = s
	}
}

func cosine(a, b []catalog.Entry, na, nb float64) float64 {
	dot := Dot(a, b)
	if dot == 0 {
		return 0
	}
	s := float64(dot) / (na * nb)
	if s > 1 {
		s = 1
	}
	return s
}

// Dot is the inner product of two sparse rows with ascending columns.
func Dot(a, b []catalog.Entry) int {
	var (
		sum  int
		x, y int
	)
	for x < len(a) && y < len(b) {
		switch {
		case a[x].Col == b[y].Col:
			sum += a[x].Count * b[y].Count
			x++
			y++
		case a[x].Col < b[y].Col:
			x++
		default:
			y++
		}
	}
	return sum
}
