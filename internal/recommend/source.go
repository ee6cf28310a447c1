package recommend

import (
	"context"

	"popflix/internal/loader"
	"popflix/internal/movies"
	"popflix/pkg/models"
)

// Source yields the raw catalog rows an index is built from.
type Source interface {
	Name() string
	Rows(ctx context.Context) ([]models.RawRow, error)
}

// CSVSource reads the movies CSV on every call.
type CSVSource struct {
	Path string
}

func (s CSVSource) Name() string { return "csv" }

func (s CSVSource) Rows(ctx context.Context) ([]models.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return loader.ReadCSVFile(s.Path)
}

// DBSource reads the movies table.
type DBSource struct {
	Repo *movies.Repo
}

func (s DBSource) Name() string { return "db" }

func (s DBSource) Rows(ctx context.Context) ([]models.RawRow, error) {
	return s.Repo.AllRows(ctx)
}

// StaticSource serves a fixed slice of rows.
type StaticSource []models.RawRow

func (s StaticSource) Name() string { return "static" }

func (s StaticSource) Rows(context.Context) ([]models.RawRow, error) { return s, nil }
