package movies

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popflix/internal/catalog"
	"popflix/pkg/database"
	"popflix/pkg/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenAndMigrate(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seed(t *testing.T, repo *Repo) {
	t.Helper()
	n, err := repo.Upsert(context.Background(), []models.RawRow{
		{ID: "300", Title: "Zodiac", Overview: "killer", Genres: "Crime Mystery", Keywords: "k", Cast: "Jake Gyllenhaal", Director: "David Fincher"},
		{ID: "100", Title: "Alien", Overview: "crew", Genres: "Horror ScienceFiction", Keywords: "k", Cast: "Sigourney Weaver", Director: "Ridley Scott"},
		{ID: "bad", Title: "No id"},
		{ID: "200", Title: "Gladiator", Overview: "", Genres: "Action Drama", Keywords: "k", Cast: "Russell Crowe", Director: "Ridley Scott"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestRepoAllRowsKeepsCatalogOrder(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	seed(t, repo)

	rows, err := repo.AllRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"300", "100", "200"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
	assert.Equal(t, "Jake Gyllenhaal", rows[0].Cast)
	assert.Empty(t, rows[2].Overview, "NULL comes back empty")
}

func TestRepoUpsertUpdatesInPlace(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	seed(t, repo)

	_, err := repo.Upsert(context.Background(), []models.RawRow{
		{ID: "300", Title: "Zodiac (2007)", Director: "David Fincher"},
		{ID: "400", Title: "Se7en"},
	})
	require.NoError(t, err)

	rows, err := repo.AllRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Zodiac (2007)", rows[0].Title)
	assert.Equal(t, "400", rows[3].ID)
}

func TestRepoUpsertFirstDuplicateWins(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	batch := []models.RawRow{
		{ID: "1", Title: "Original", Overview: "o", Genres: "g", Keywords: "k", Cast: "c", Director: "d"},
		{ID: "2", Title: "Other", Overview: "o", Genres: "g", Keywords: "k", Cast: "c", Director: "d"},
		{ID: "1", Title: "Remake", Overview: "r", Genres: "g", Keywords: "k", Cast: "c", Director: "d"},
	}
	n, err := repo.Upsert(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := repo.AllRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Original", rows[0].Title)

	// the table yields the same corpus as loading the batch directly
	fromDB, _, err := catalog.Load(rows)
	require.NoError(t, err)
	fromBatch, _, err := catalog.Load(batch)
	require.NoError(t, err)
	assert.Equal(t, fromBatch.Records(), fromDB.Records())
}

func TestRepoGetAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(openTestDB(t))
	seed(t, repo)

	m, err := repo.GetByID(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Alien", m.Title)

	m, err = repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, m)

	items, err := repo.List(ctx, ListQuery{Q: "ridley"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Alien", items[0].Title)
	assert.Equal(t, "Gladiator", items[1].Title)

	total, err := repo.Count(ctx, ListQuery{Genre: "drama"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	items, err = repo.List(ctx, ListQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Gladiator", items[0].Title)
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := NewRepo(openTestDB(t))
	seed(t, repo)

	r := gin.New()
	NewHandler(repo).RegisterRoutes(r.Group("/movies"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/movies?q=alien", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Total int              `json:"total"`
		Items []models.MovieDB `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 100, list.Items[0].ID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/movies/200", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/movies/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/movies/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
