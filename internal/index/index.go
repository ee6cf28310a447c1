// Package index owns the explicitly constructed CatalogIndex: the corpus,
// vocabulary, feature matrix and similarity matrix built once from raw rows
// and shared read-only by every recommendation request.
//
// Building is O(n²·t) in the number of movies n and average distinct tokens
// per movie t, and holds an n×n float64 matrix in memory (about 180 MiB for
// 4,800 movies). Callers rebuild explicitly by calling Build again.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"popflix/internal/catalog"
	"popflix/internal/similarity"
	"popflix/pkg/models"
)

// Options configures Build.
type Options struct {
	MaxFeatures int // vocabulary cap, default catalog.DefaultMaxFeatures
	Workers     int // similarity build goroutines, <= 0 means GOMAXPROCS
}

func (o Options) withDefaults() Options {
	if o.MaxFeatures == 0 {
		o.MaxFeatures = catalog.DefaultMaxFeatures
	}
	return o
}

// BuildInfo describes a finished build.
type BuildInfo struct {
	Rows       int `json:"rows"`
	Dropped    int `json:"dropped"`
	Movies     int `json:"movies"`
	Vocabulary int `json:"vocabulary"`
	// MaxFeatures and Fingerprint identify the inputs the index was built from.
	MaxFeatures int           `json:"max_features"`
	Fingerprint string        `json:"fingerprint"`
	Duration    time.Duration `json:"duration"`
	BuiltAt     time.Time     `json:"built_at"`
	Source      string        `json:"source,omitempty"`
}

// CatalogIndex is immutable once returned by Build or ReadSnapshot.
type CatalogIndex struct {
	corpus   *catalog.Corpus
	vocab    *catalog.Vocabulary
	features *catalog.FeatureMatrix
	sim      *similarity.Matrix
	info     BuildInfo
}

// Build loads rows, derives features and computes the similarity matrix.
func Build(ctx context.Context, rows []models.RawRow, opts Options) (*CatalogIndex, error) {
	start := time.Now()
	opts = opts.withDefaults()

	corpus, stats, err := catalog.Load(rows)
	if err != nil {
		return nil, err
	}

	vocab, fm, err := catalog.BuildFeatures(corpus, opts.MaxFeatures)
	if err != nil {
		return nil, err
	}

	sim, err := similarity.BuildContext(ctx, fm, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("build similarity: %w", err)
	}

	return &CatalogIndex{
		corpus:   corpus,
		vocab:    vocab,
		features: fm,
		sim:      sim,
		info: BuildInfo{
			Rows:        stats.Rows,
			Dropped:     stats.Dropped,
			Movies:      corpus.Len(),
			Vocabulary:  vocab.Len(),
			MaxFeatures: opts.MaxFeatures,
			Fingerprint: Fingerprint(rows),
			Duration:    time.Since(start),
			BuiltAt:     time.Now().UTC(),
		},
	}, nil
}

// Fingerprint hashes rows in order, every field included, so any change to
// the catalog that could change the index changes the fingerprint.
func Fingerprint(rows []models.RawRow) string {
	h := sha256.New()
	for _, r := range rows {
		for _, f := range []string{r.ID, r.Title, r.Overview, r.Genres, r.Keywords, r.Cast, r.Director} {
			fmt.Fprintf(h, "%d:%s", len(f), f)
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// BuiltFrom reports whether x was built from rows with the given
// fingerprint under the same vocabulary cap as opts.
func (x *CatalogIndex) BuiltFrom(fingerprint string, opts Options) bool {
	return x.info.Fingerprint != "" &&
		x.info.Fingerprint == fingerprint &&
		x.info.MaxFeatures == opts.withDefaults().MaxFeatures
}

// Recommend returns the k most similar movies to title.
func (x *CatalogIndex) Recommend(title string, k int) ([]models.Recommendation, error) {
	return similarity.Recommend(x.corpus, x.sim, title, k)
}

func (x *CatalogIndex) Len() int                         { return x.corpus.Len() }
func (x *CatalogIndex) Titles() []string                 { return x.corpus.Titles() }
func (x *CatalogIndex) Movie(i int) models.MovieRecord   { return x.corpus.At(i) }
func (x *CatalogIndex) Vocabulary() *catalog.Vocabulary  { return x.vocab }
func (x *CatalogIndex) Features() *catalog.FeatureMatrix { return x.features }
func (x *CatalogIndex) Similarity() *similarity.Matrix   { return x.sim }
func (x *CatalogIndex) Info() BuildInfo                  { return x.info }

// WithSource returns a shallow copy tagged with where its rows came from.
func (x *CatalogIndex) WithSource(source string) *CatalogIndex {
	cp := *x
	cp.info.Source = source
	return &cp
}
