package similarity

import (
	"fmt"
	"sort"

	"popflix/internal/catalog"
	"popflix/pkg/models"
)

// DefaultK is the number of recommendations the original app shows.
const DefaultK = 5

// Recommend returns the k movies most similar to the first corpus entry
// titled title, best first. Equal scores keep corpus order. The query movie
// itself is never returned.
//
// Recommend only reads c and m and is safe for concurrent use.
func Recommend(c *catalog.Corpus, m *Matrix, title string, k int) ([]models.Recommendation, error) {
	if c.Len() != m.Size() {
		return nil, fmt.Errorf("%w: corpus %d, matrix %d", ErrDimension, c.Len(), m.Size())
	}
	idx, ok := c.IndexOf(title)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTitleNotFound, title)
	}
	if k <= 0 || k > c.Len()-1 {
		return nil, fmt.Errorf("%w: %d (catalog has %d other movies)", ErrInvalidK, k, c.Len()-1)
	}

	row := m.Row(idx)
	order := make([]int, 0, len(row)-1)
	for j := range row {
		if j != idx {
			order = append(order, j)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return row[order[a]] > row[order[b]]
	})

	out := make([]models.Recommendation, k)
	for i := 0; i < k; i++ {
		rec := c.At(order[i])
		out[i] = models.Recommendation{Title: rec.Title, ID: rec.ID, Score: row[order[i]]}
	}
	return out, nil
}
