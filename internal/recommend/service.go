// Package recommend owns the process-wide catalog index and exposes it to
// the HTTP and gRPC surfaces: bootstrap, explicit reload and top-k queries.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"popflix/internal/events"
	"popflix/internal/index"
	"popflix/internal/logging"
	"popflix/internal/metrics"
	"popflix/pkg/models"
)

type Options struct {
	Index        index.Options
	SnapshotPath string // read at bootstrap when present, written after each build
	DefaultK     int
}

// Service builds indexes from a Source and serves queries from the current one.
type Service struct {
	holder *index.Holder
	source Source
	opts   Options
	hub    *events.Hub // optional
	log    zerolog.Logger

	reloadMu sync.Mutex
}

func NewService(source Source, opts Options, hub *events.Hub) *Service {
	if opts.DefaultK <= 0 {
		opts.DefaultK = 5
	}
	return &Service{
		holder: index.NewHolder(nil),
		source: source,
		opts:   opts,
		hub:    hub,
		log:    logging.With("recommend"),
	}
}

// Bootstrap installs the first index. A readable snapshot is used only when
// it was built from the current source rows under the configured vocabulary
// cap; when the source cannot be read the snapshot is served as is.
func (s *Service) Bootstrap(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	rows, rowsErr := s.source.Rows(ctx)

	if p := s.opts.SnapshotPath; p != "" {
		x, err := index.LoadSnapshot(p)
		switch {
		case err == nil && rowsErr != nil:
			s.log.Warn().Err(rowsErr).Str("path", p).Msg("source unavailable, serving snapshot")
			s.install(x, 0)
			return nil
		case err == nil && x.BuiltFrom(index.Fingerprint(rows), s.opts.Index):
			s.install(x, 0)
			return nil
		case err == nil:
			s.log.Info().Str("path", p).Msg("snapshot is stale, rebuilding")
		case errors.Is(err, os.ErrNotExist):
			s.log.Info().Str("path", p).Msg("no snapshot, building index")
		default:
			s.log.Warn().Err(err).Str("path", p).Msg("snapshot unusable, rebuilding")
		}
	}

	if rowsErr != nil {
		return s.readFailed(rowsErr)
	}
	_, err := s.build(ctx, rows, start)
	return err
}

// Reload rebuilds the index from the source and swaps it in. Concurrent
// reloads are serialized; queries keep using the previous index meanwhile.
func (s *Service) Reload(ctx context.Context) (index.BuildInfo, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	rows, err := s.source.Rows(ctx)
	if err != nil {
		return index.BuildInfo{}, s.readFailed(err)
	}
	return s.build(ctx, rows, start)
}

func (s *Service) readFailed(err error) error {
	metrics.IndexBuildsTotal.WithLabelValues(s.source.Name(), "error").Inc()
	return fmt.Errorf("read %s rows: %w", s.source.Name(), err)
}

func (s *Service) build(ctx context.Context, rows []models.RawRow, start time.Time) (index.BuildInfo, error) {
	x, err := index.Build(ctx, rows, s.opts.Index)
	if err != nil {
		metrics.IndexBuildsTotal.WithLabelValues(s.source.Name(), "error").Inc()
		return index.BuildInfo{}, fmt.Errorf("build index: %w", err)
	}
	x = x.WithSource(s.source.Name())
	s.install(x, time.Since(start))

	if p := s.opts.SnapshotPath; p != "" {
		if err := index.SaveSnapshot(p, x); err != nil {
			s.log.Warn().Err(err).Str("path", p).Msg("write snapshot failed")
		}
	}
	return x.Info(), nil
}

func (s *Service) install(x *index.CatalogIndex, took time.Duration) {
	s.holder.Swap(x)
	info := x.Info()
	metrics.RecordIndex(info.Source, info.Movies, info.Vocabulary, took.Seconds())

	s.log.Info().
		Str("source", info.Source).
		Int("rows", info.Rows).
		Int("dropped", info.Dropped).
		Int("movies", info.Movies).
		Int("vocabulary", info.Vocabulary).
		Dur("took", took).
		Msg("catalog index installed")

	if s.hub != nil {
		err := s.hub.BroadcastJSON(events.CatalogEvent{
			Type:       events.TypeCatalogReloaded,
			Source:     info.Source,
			Movies:     info.Movies,
			Vocabulary: info.Vocabulary,
			At:         time.Now().UTC(),
		})
		if err != nil {
			s.log.Warn().Err(err).Msg("broadcast reload event failed")
		}
	}
}

// Recommend answers a top-k query against the current index; k <= 0 means
// the configured default.
func (s *Service) Recommend(title string, k int) ([]models.Recommendation, error) {
	x, err := s.holder.Current()
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = s.opts.DefaultK
	}
	return x.Recommend(title, k)
}

func (s *Service) Titles() ([]string, error) {
	x, err := s.holder.Current()
	if err != nil {
		return nil, err
	}
	return x.Titles(), nil
}

func (s *Service) Info() (index.BuildInfo, error) {
	x, err := s.holder.Current()
	if err != nil {
		return index.BuildInfo{}, err
	}
	return x.Info(), nil
}

func (s *Service) Ready() bool { return s.holder.Loaded() }

func (s *Service) DefaultK() int { return s.opts.DefaultK }
