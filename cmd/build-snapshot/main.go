// Command build-snapshot builds the catalog index once and writes it to a
// snapshot file the servers can start from.
package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	"popflix/internal/app"
	"popflix/internal/index"
	"popflix/internal/logging"
	"popflix/pkg/database"
	"popflix/pkg/utils"
)

func main() {
	cfg, err := utils.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}

	var (
		out    = flag.String("out", cfg.Catalog.SnapshotPath, "snapshot output path")
		source = flag.String("source", cfg.Catalog.Source, "catalog source: csv or db")
		csvIn  = flag.String("csv", cfg.Catalog.CSVPath, "CSV path when -source=csv")
	)
	flag.Parse()
	app.InitLogging(cfg)

	if *out == "" {
		logging.Fatal().Msg("-out or catalog.snapshot_path required")
	}
	cfg.Catalog.Source = *source
	cfg.Catalog.CSVPath = *csvIn
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid flags")
	}

	var db *sql.DB
	if cfg.Catalog.Source == "db" {
		db, err = database.OpenAndMigrate(database.Config{Path: cfg.Database.Path})
		if err != nil {
			logging.Fatal().Err(err).Msg("open database")
		}
		defer db.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	src := app.Source(cfg, db)
	rows, err := src.Rows(ctx)
	if err != nil {
		logging.Fatal().Err(err).Str("source", src.Name()).Msg("read catalog")
	}
	x, err := index.Build(ctx, rows, app.ServiceOptions(cfg).Index)
	if err != nil {
		logging.Fatal().Err(err).Msg("build index")
	}
	x = x.WithSource(src.Name())
	if err := index.SaveSnapshot(*out, x); err != nil {
		logging.Fatal().Err(err).Str("path", *out).Msg("write snapshot")
	}

	info := x.Info()
	logging.Info().
		Str("path", *out).
		Int("movies", info.Movies).
		Int("dropped", info.Dropped).
		Int("vocabulary", info.Vocabulary).
		Dur("took", info.Duration).
		Msg("snapshot written")
}
