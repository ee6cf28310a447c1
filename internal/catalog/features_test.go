package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popflix/pkg/models"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"splits on punctuation", "space-war, robots!", []string{"space", "war", "robots"}},
		{"drops stop words", "the robots and the war", []string{"robots", "war"}},
		{"drops single runes", "a b c robots x", []string{"robots"}},
		{"keeps digits", "apollo 13 in 1995", []string{"apollo", "13", "1995"}},
		{"unicode letters", "amélie café", []string{"amélie", "café"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func corpusOf(t *testing.T, texts ...string) *Corpus {
	t.Helper()
	recs := make([]models.MovieRecord, len(texts))
	for i, text := range texts {
		recs[i] = models.MovieRecord{ID: i + 1, Title: text, Overview: text}
	}
	c, err := NewCorpus(recs)
	require.NoError(t, err)
	return c
}

func TestBuildFeaturesCountsAndColumns(t *testing.T) {
	c := corpusOf(t, "space war robots", "space opera robots", "romance drama")

	vocab, fm, err := BuildFeatures(c, DefaultMaxFeatures)
	require.NoError(t, err)

	assert.Equal(t, []string{"drama", "opera", "robots", "romance", "space", "war"}, vocab.Tokens())
	assert.Equal(t, 3, fm.Rows())
	assert.Equal(t, 6, fm.Cols())

	assert.Equal(t, []int{0, 0, 1, 0, 1, 1}, fm.Dense(0))
	assert.Equal(t, []int{0, 1, 1, 0, 1, 0}, fm.Dense(1))
	assert.Equal(t, []int{1, 0, 0, 1, 0, 0}, fm.Dense(2))
}

func TestBuildFeaturesRepeatedTokens(t *testing.T) {
	c := corpusOf(t, "robot robot robot dog")
	vocab, fm, err := BuildFeatures(c, 10)
	require.NoError(t, err)

	col, ok := vocab.Column("robot")
	require.True(t, ok)
	assert.Equal(t, 3, fm.Dense(0)[col])
}

func TestBuildFeaturesCapTieBreak(t *testing.T) {
	// zebra appears three times; every other token once.
	c := corpusOf(t, "zebra zebra zebra delta", "charlie bravo", "alpha")

	vocab, fm, err := BuildFeatures(c, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "bravo", "zebra"}, vocab.Tokens())
	_, ok := vocab.Column("delta")
	assert.False(t, ok)

	// out-of-vocabulary tokens contribute nothing
	assert.Equal(t, []Entry{{Col: 2, Count: 3}}, fm.Sparse(0))
	assert.Equal(t, []Entry{{Col: 1, Count: 1}}, fm.Sparse(1))
}

func TestBuildFeaturesDeterministic(t *testing.T) {
	texts := []string{"wizard school magic", "magic ring quest", "space quest", "school drama"}
	v1, m1, err := BuildFeatures(corpusOf(t, texts...), 4)
	require.NoError(t, err)
	v2, m2, err := BuildFeatures(corpusOf(t, texts...), 4)
	require.NoError(t, err)

	assert.Equal(t, v1.Tokens(), v2.Tokens())
	for i := 0; i < m1.Rows(); i++ {
		assert.Equal(t, m1.Sparse(i), m2.Sparse(i))
	}
}

func TestBuildFeaturesAllStopWordsRowIsZero(t *testing.T) {
	c := corpusOf(t, "the and of", "robots")
	_, fm, err := BuildFeatures(c, 10)
	require.NoError(t, err)
	assert.Empty(t, fm.Sparse(0))
	assert.Equal(t, []int{1}, fm.Dense(1))
}

func TestBuildFeaturesInvalidCap(t *testing.T) {
	_, _, err := BuildFeatures(corpusOf(t, "x y"), 0)
	assert.ErrorIs(t, err, ErrInvalidMaxFeatures)
}
