// Package app translates the loaded configuration into the collaborators the
// binaries share.
package app

import (
	"database/sql"

	"popflix/internal/auth"
	"popflix/internal/index"
	"popflix/internal/logging"
	"popflix/internal/movies"
	"popflix/internal/poster"
	"popflix/internal/recommend"
	"popflix/pkg/utils"
)

func InitLogging(cfg *utils.Config) {
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

// Source picks the catalog source; db may be nil when catalog.source is csv.
func Source(cfg *utils.Config, db *sql.DB) recommend.Source {
	if cfg.Catalog.Source == "csv" {
		return recommend.CSVSource{Path: cfg.Catalog.CSVPath}
	}
	return recommend.DBSource{Repo: movies.NewRepo(db)}
}

func ServiceOptions(cfg *utils.Config) recommend.Options {
	return recommend.Options{
		Index: index.Options{
			MaxFeatures: cfg.Catalog.MaxFeatures,
			Workers:     cfg.Catalog.BuildWorkers,
		},
		SnapshotPath: cfg.Catalog.SnapshotPath,
		DefaultK:     cfg.Catalog.DefaultK,
	}
}

func PosterClient(cfg *utils.Config) *poster.Client {
	p := cfg.Poster
	return poster.NewClient(poster.Config{
		APIKey:          p.APIKey,
		BaseURL:         p.BaseURL,
		ImageBase:       p.ImageBase,
		Timeout:         p.Timeout,
		RatePerSecond:   p.RatePerSecond,
		Burst:           p.Burst,
		BreakerFailures: p.BreakerFailures,
		BreakerCooldown: p.BreakerCooldown,
		Parallelism:     p.Parallelism,
	})
}

func Tokens(cfg *utils.Config) auth.TokenService {
	return auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
}
