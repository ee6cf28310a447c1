package main

import (
	"context"
	"flag"
	"time"

	"popflix/internal/loader"
	"popflix/internal/logging"
	"popflix/internal/movies"
	"popflix/pkg/database"
	"popflix/pkg/utils"
)

func main() {
	cfg, err := utils.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}

	var (
		in     = flag.String("movies", cfg.Catalog.CSVPath, "input CSV path for movies")
		dbPath = flag.String("db", cfg.Database.Path, "SQLite database path")
	)
	flag.Parse()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: "console"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.OpenAndMigrate(database.Config{Path: *dbPath})
	if err != nil {
		logging.Fatal().Err(err).Str("path", *dbPath).Msg("open database")
	}
	defer db.Close()

	rows, err := loader.ReadCSVFile(*in)
	if err != nil {
		logging.Fatal().Err(err).Msg("read movies csv")
	}

	stored, err := movies.NewRepo(db).Upsert(ctx, rows)
	if err != nil {
		logging.Fatal().Err(err).Msg("import movies")
	}

	logging.Info().
		Str("from", *in).
		Str("db", *dbPath).
		Int("rows", len(rows)).
		Int("stored", stored).
		Int("skipped", len(rows)-stored).
		Msg("imported movies")
}
