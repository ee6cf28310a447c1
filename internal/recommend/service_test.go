package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popflix/internal/index"
	"popflix/internal/similarity"
	"popflix/pkg/models"
)

func raw(id, title, overview, genres string) models.RawRow {
	return models.RawRow{
		ID: id, Title: title, Overview: overview, Genres: genres,
		Keywords: "kw", Cast: "cast", Director: "dir",
	}
}

var catalogRows = StaticSource{
	raw("19995", "Avatar", "marine on alien planet", "Action Adventure ScienceFiction"),
	raw("285", "Pirates", "captain sails the seas", "Adventure Fantasy Action"),
	raw("206647", "Spectre", "secret agent mission", "Action Adventure Crime"),
	raw("49026", "Dark Knight", "gotham vigilante crime", "Action Crime Drama Thriller"),
	raw("49529", "John Carter", "soldier on alien planet mars", "Action Adventure ScienceFiction"),
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }

func (failingSource) Rows(context.Context) ([]models.RawRow, error) {
	return nil, errors.New("source offline")
}

func TestServiceNotLoaded(t *testing.T) {
	svc := NewService(catalogRows, Options{}, nil)
	assert.False(t, svc.Ready())

	_, err := svc.Recommend("Avatar", 1)
	assert.ErrorIs(t, err, index.ErrNotLoaded)
	_, err = svc.Titles()
	assert.ErrorIs(t, err, index.ErrNotLoaded)
}

func TestServiceReloadAndRecommend(t *testing.T) {
	svc := NewService(catalogRows, Options{DefaultK: 2}, nil)
	info, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static", info.Source)
	assert.Equal(t, 5, info.Movies)
	assert.True(t, svc.Ready())

	recs, err := svc.Recommend("Avatar", 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "John Carter", recs[0].Title)

	_, err = svc.Recommend("Avatar", 5)
	assert.ErrorIs(t, err, similarity.ErrInvalidK)
	_, err = svc.Recommend("Titanic", 1)
	assert.ErrorIs(t, err, similarity.ErrTitleNotFound)
}

func TestServiceReloadFailureKeepsIndex(t *testing.T) {
	svc := NewService(catalogRows, Options{}, nil)
	_, err := svc.Reload(context.Background())
	require.NoError(t, err)

	svc.source = failingSource{}
	_, err = svc.Reload(context.Background())
	assert.ErrorContains(t, err, "source offline")

	titles, err := svc.Titles()
	require.NoError(t, err)
	assert.Len(t, titles, 5)
}

func TestServiceBootstrapPrefersSnapshot(t *testing.T) {
	path := t.TempDir() + "/index.json"

	first := NewService(catalogRows, Options{SnapshotPath: path}, nil)
	require.NoError(t, first.Bootstrap(context.Background()))
	info, err := first.Info()
	require.NoError(t, err)
	assert.Equal(t, "static", info.Source)

	second := NewService(catalogRows, Options{SnapshotPath: path}, nil)
	require.NoError(t, second.Bootstrap(context.Background()))
	info, err = second.Info()
	require.NoError(t, err)
	assert.Equal(t, "snapshot", info.Source)
	assert.Equal(t, 5, info.Movies)
}

func TestServiceBootstrapServesSnapshotWhenSourceFails(t *testing.T) {
	path := t.TempDir() + "/index.json"
	require.NoError(t, NewService(catalogRows, Options{SnapshotPath: path}, nil).Bootstrap(context.Background()))

	svc := NewService(failingSource{}, Options{SnapshotPath: path}, nil)
	require.NoError(t, svc.Bootstrap(context.Background()))
	info, err := svc.Info()
	require.NoError(t, err)
	assert.Equal(t, "snapshot", info.Source)
	assert.Equal(t, 5, info.Movies)
}

func TestServiceBootstrapRebuildsStaleSnapshot(t *testing.T) {
	path := t.TempDir() + "/index.json"
	require.NoError(t, NewService(catalogRows, Options{SnapshotPath: path}, nil).Bootstrap(context.Background()))

	grown := append(StaticSource{}, catalogRows...)
	grown = append(grown, raw("157336", "Interstellar", "explorers cross a wormhole", "Adventure Drama ScienceFiction"))

	svc := NewService(grown, Options{SnapshotPath: path}, nil)
	require.NoError(t, svc.Bootstrap(context.Background()))
	info, err := svc.Info()
	require.NoError(t, err)
	assert.Equal(t, "static", info.Source)
	assert.Equal(t, 6, info.Movies)

	recs, err := svc.Recommend("Interstellar", 1)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	// the rebuilt index replaced the stale snapshot on disk
	again := NewService(grown, Options{SnapshotPath: path}, nil)
	require.NoError(t, again.Bootstrap(context.Background()))
	info, err = again.Info()
	require.NoError(t, err)
	assert.Equal(t, "snapshot", info.Source)
	assert.Equal(t, 6, info.Movies)
}

func TestServiceBootstrapRebuildsOnMaxFeaturesChange(t *testing.T) {
	path := t.TempDir() + "/index.json"
	require.NoError(t, NewService(catalogRows, Options{SnapshotPath: path}, nil).Bootstrap(context.Background()))

	svc := NewService(catalogRows, Options{SnapshotPath: path, Index: index.Options{MaxFeatures: 3}}, nil)
	require.NoError(t, svc.Bootstrap(context.Background()))
	info, err := svc.Info()
	require.NoError(t, err)
	assert.Equal(t, "static", info.Source)
	assert.Equal(t, 3, info.Vocabulary)
	assert.Equal(t, 3, info.MaxFeatures)
}

func TestServiceBootstrapWithoutSnapshotOrSource(t *testing.T) {
	svc := NewService(failingSource{}, Options{SnapshotPath: t.TempDir() + "/missing.json"}, nil)
	assert.Error(t, svc.Bootstrap(context.Background()))
	assert.False(t, svc.Ready())
}
