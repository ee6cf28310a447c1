package movies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"popflix/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q      string // substring search in title/director/cast
	Genre  string
	Limit  int
	Offset int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const movieColumns = `id, title, overview, genres, keywords, cast_names, director`

// Upsert inserts or updates rows in one transaction. Rows without a numeric
// id or a title cannot be keyed and are skipped, as are repeats of an id
// already seen in the same batch, so the first row wins like catalog.Load.
// The count of stored rows is returned. New rows are appended to the catalog
// order.
func (r *Repo) Upsert(ctx context.Context, rows []models.RawRow) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM movies`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO movies (id, title, overview, genres, keywords, cast_names, director, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  overview = excluded.overview,
		  genres = excluded.genres,
		  keywords = excluded.keywords,
		  cast_names = excluded.cast_names,
		  director = excluded.director
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	stored := 0
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		id, err := strconv.ParseInt(strings.TrimSpace(row.ID), 10, 64)
		if err != nil || strings.TrimSpace(row.Title) == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		seq++
		if _, err := stmt.ExecContext(ctx,
			id,
			row.Title,
			nullString(row.Overview),
			nullString(row.Genres),
			nullString(row.Keywords),
			nullString(row.Cast),
			nullString(row.Director),
			seq,
		); err != nil {
			return 0, fmt.Errorf("exec upsert for %d: %w", id, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return stored, nil
}

// AllRows returns every movie as a raw row, in catalog order. NULL columns
// come back empty so the index builder can drop them.
func (r *Repo) AllRows(ctx context.Context) ([]models.RawRow, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY seq ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("all rows query: %w", err)
	}
	defer rows.Close()

	var out []models.RawRow
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, models.RawRow{
			ID:       strconv.Itoa(m.ID),
			Title:    m.Title,
			Overview: m.Overview,
			Genres:   m.Genres,
			Keywords: m.Keywords,
			Cast:     m.Cast,
			Director: m.Director,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id int) (*models.MovieDB, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	m, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.MovieDB, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.MovieDB, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(s scanner) (models.MovieDB, error) {
	var (
		m                                          models.MovieDB
		overview, genres, keywords, cast, director sql.NullString
	)
	if err := s.Scan(&m.ID, &m.Title, &overview, &genres, &keywords, &cast, &director); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return m, err
		}
		return m, fmt.Errorf("scan movie: %w", err)
	}
	m.Overview = overview.String
	m.Genres = genres.String
	m.Keywords = keywords.String
	m.Cast = cast.String
	m.Director = director.String
	return m, nil
}

// buildListSQL builds either COUNT(*) or the paged SELECT.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	base := `SELECT ` + movieColumns + ` FROM movies`
	if countOnly {
		base = `SELECT COUNT(*) FROM movies`
	}

	var where []string
	var args []any

	if kw := strings.TrimSpace(q.Q); kw != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(director) LIKE ? OR LOWER(cast_names) LIKE ?)")
		like := "%" + strings.ToLower(kw) + "%"
		args = append(args, like, like, like)
	}
	if g := strings.TrimSpace(q.Genre); g != "" {
		where = append(where, "LOWER(genres) LIKE ?")
		args = append(args, "%"+strings.ToLower(g)+"%")
	}

	sqlStr := base
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY title ASC LIMIT ? OFFSET ?"
		args = append(args, normalizeLimit(q.Limit), max(q.Offset, 0))
	}
	return sqlStr, args
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

func nullString(raw string) sql.NullString {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
