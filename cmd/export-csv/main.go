package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"popflix/internal/loader"
	"popflix/internal/logging"
	"popflix/internal/movies"
	"popflix/pkg/database"
	"popflix/pkg/models"
	"popflix/pkg/utils"
)

func main() {
	cfg, err := utils.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}

	var (
		out    = flag.String("movies", "data/movies_export.csv", "output CSV path for movies")
		dbPath = flag.String("db", cfg.Database.Path, "SQLite database path")
	)
	flag.Parse()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: "console"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.OpenAndMigrate(database.Config{Path: *dbPath})
	if err != nil {
		logging.Fatal().Err(err).Str("path", *dbPath).Msg("open database")
	}
	defer db.Close()

	rows, err := movies.NewRepo(db).AllRows(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("read movies table")
	}

	if err := writeFile(*out, rows); err != nil {
		logging.Fatal().Err(err).Str("path", *out).Msg("export movies")
	}
	logging.Info().Str("to", *out).Int("rows", len(rows)).Msg("exported movies")
}

func writeFile(path string, rows []models.RawRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := loader.WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
