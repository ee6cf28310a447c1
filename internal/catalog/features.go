package catalog

import (
	"sort"
)

// DefaultMaxFeatures caps the vocabulary when the caller has no preference.
const DefaultMaxFeatures = 5000

// Vocabulary maps a token to its column in the feature matrix. Columns are
// assigned in lexicographic token order.
type Vocabulary struct {
	tokens []string
	index  map[string]int
}

// NewVocabulary builds a vocabulary from tokens already in column order.
func NewVocabulary(tokens []string) *Vocabulary {
	v := &Vocabulary{
		tokens: append([]string(nil), tokens...),
		index:  make(map[string]int, len(tokens)),
	}
	for i, t := range v.tokens {
		v.index[t] = i
	}
	return v
}

// Len returns the number of columns.
func (v *Vocabulary) Len() int { return len(v.tokens) }

// Column returns the column for token, if it is in the vocabulary.
func (v *Vocabulary) Column(token string) (int, bool) {
	i, ok := v.index[token]
	return i, ok
}

// Token returns the token at column i.
func (v *Vocabulary) Token(i int) string { return v.tokens[i] }

// Tokens returns all tokens in column order.
func (v *Vocabulary) Tokens() []string { return append([]string(nil), v.tokens...) }

// Entry is one non-zero cell of a feature row.
type Entry struct {
	Col   int `json:"c"`
	Count int `json:"n"`
}

// FeatureMatrix holds one count row per corpus entry. Rows are stored
// sparsely with ascending columns; absent columns are zero.
type FeatureMatrix struct {
	cols int
	rows [][]Entry
}

// NewFeatureMatrix wraps prebuilt sparse rows; each row must have strictly
// ascending columns below cols.
func NewFeatureMatrix(cols int, rows [][]Entry) *FeatureMatrix {
	return &FeatureMatrix{cols: cols, rows: rows}
}

// Rows returns the number of rows.
func (m *FeatureMatrix) Rows() int { return len(m.rows) }

// Cols returns the number of columns.
func (m *FeatureMatrix) Cols() int { return m.cols }

// Sparse returns the non-zero cells of row i. The slice must not be modified.
func (m *FeatureMatrix) Sparse(i int) []Entry { return m.rows[i] }

// Dense returns row i as a full-width count vector.
func (m *FeatureMatrix) Dense(i int) []int {
	out := make([]int, m.cols)
	for _, e := range m.rows[i] {
		out[e.Col] = e.Count
	}
	return out
}

// BuildFeatures derives the vocabulary and count matrix for c.
//
// The vocabulary is the maxFeatures most frequent tokens over the whole
// corpus, ties broken lexicographically. Tokens outside it are ignored.
func BuildFeatures(c *Corpus, maxFeatures int) (*Vocabulary, *FeatureMatrix, error) {
	if maxFeatures <= 0 {
		return nil, nil, ErrInvalidMaxFeatures
	}

	docs := make([][]string, c.Len())
	totals := make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		docs[i] = Tokenize(Text(c.At(i)))
		for _, t := range docs[i] {
			totals[t]++
		}
	}

	vocab := NewVocabulary(selectTokens(totals, maxFeatures))

	rows := make([][]Entry, len(docs))
	for i, doc := range docs {
		rows[i] = countRow(vocab, doc)
	}
	return vocab, NewFeatureMatrix(vocab.Len(), rows), nil
}

func selectTokens(totals map[string]int, limit int) []string {
	all := make([]string, 0, len(totals))
	for t := range totals {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		if totals[all[i]] != totals[all[j]] {
			return totals[all[i]] > totals[all[j]]
		}
		return all[i] < all[j]
	})
	if len(all) > limit {
		all = all[:limit]
	}
	sort.Strings(all)
	return all
}

func countRow(vocab *Vocabulary, doc []string) []Entry {
	counts := make(map[int]int)
	for _, t := range doc {
		if col, ok := vocab.Column(t); ok {
			counts[col]++
		}
	}
	row := make([]Entry, 0, len(counts))
	for col, n := range counts {
		row = append(row, Entry{Col: col, Count: n})
	}
	sort.Slice(row, func(i, j int) bool { return row[i].Col < row[j].Col })
	return row
}
