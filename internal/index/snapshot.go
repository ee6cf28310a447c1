package index

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"popflix/internal/catalog"
	"popflix/internal/similarity"
	"popflix/pkg/models"
)

const snapshotVersion = 2

var (
	ErrSnapshotVersion = errors.New("index: unsupported snapshot version")
	ErrSnapshotCorrupt = errors.New("index: corrupt snapshot")
)

// snapshot stores only the upper triangle (diagonal included) of the
// similarity matrix; the lower half is mirrored back on read.
type snapshot struct {
	Version     int                  `json:"version"`
	BuiltAt     time.Time            `json:"built_at"`
	Rows        int                  `json:"rows"`
	Dropped     int                  `json:"dropped"`
	MaxFeatures int                  `json:"max_features"`
	Fingerprint string               `json:"fingerprint"`
	Movies      []models.MovieRecord `json:"movies"`
	Vocabulary  []string             `json:"vocabulary"`
	Features    [][]catalog.Entry    `json:"features"`
	Upper       []float64            `json:"similarity_upper"`
}

// WriteSnapshot serializes x to w.
func WriteSnapshot(w io.Writer, x *CatalogIndex) error {
	n := x.Len()
	s := snapshot{
		Version:     snapshotVersion,
		BuiltAt:     x.info.BuiltAt,
		Rows:        x.info.Rows,
		Dropped:     x.info.Dropped,
		MaxFeatures: x.info.MaxFeatures,
		Fingerprint: x.info.Fingerprint,
		Movies:      x.corpus.Records(),
		Vocabulary:  x.vocab.Tokens(),
		Features:    make([][]catalog.Entry, n),
		Upper:       make([]float64, 0, n*(n+1)/2),
	}
	for i := 0; i < n; i++ {
		s.Features[i] = x.features.Sparse(i)
		s.Upper = append(s.Upper, x.sim.Row(i)[i:]...)
	}

	if err := json.NewEncoder(w).Encode(&s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot restores an index written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*CatalogIndex, error) {
	var s snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, s.Version)
	}

	n := len(s.Movies)
	if len(s.Features) != n || len(s.Upper) != n*(n+1)/2 {
		return nil, fmt.Errorf("%w: %d movies, %d feature rows, %d similarity cells",
			ErrSnapshotCorrupt, n, len(s.Features), len(s.Upper))
	}

	corpus, err := catalog.NewCorpus(s.Movies)
	if err != nil {
		return nil, err
	}

	cols := len(s.Vocabulary)
	for i, row := range s.Features {
		prev := -1
		for _, e := range row {
			if e.Col <= prev || e.Col >= cols || e.Count <= 0 {
				return nil, fmt.Errorf("%w: feature row %d", ErrSnapshotCorrupt, i)
			}
			prev = e.Col
		}
	}

	values := make([]float64, n*n)
	pos := 0
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			values[i*n+j] = s.Upper[pos]
			values[j*n+i] = s.Upper[pos]
			pos++
		}
	}
	sim, err := similarity.NewMatrix(n, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}

	return &CatalogIndex{
		corpus:   corpus,
		vocab:    catalog.NewVocabulary(s.Vocabulary),
		features: catalog.NewFeatureMatrix(cols, s.Features),
		sim:      sim,
		info: BuildInfo{
			Rows:        s.Rows,
			Dropped:     s.Dropped,
			Movies:      n,
			Vocabulary:  cols,
			MaxFeatures: s.MaxFeatures,
			Fingerprint: s.Fingerprint,
			BuiltAt:     s.BuiltAt,
			Source:      "snapshot",
		},
	}, nil
}

// SaveSnapshot writes x to path atomically via a temp file and rename.
func SaveSnapshot(path string, x *CatalogIndex) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteSnapshot(tmp, x); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (*CatalogIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}
