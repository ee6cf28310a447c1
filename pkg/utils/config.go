package utils

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every environment override: POPFLIX_SERVER_ADDR -> server.addr.
const EnvPrefix = "POPFLIX_"

// ConfigPathEnvVar points at an optional YAML config file.
const ConfigPathEnvVar = "POPFLIX_CONFIG"

var DefaultConfigPaths = []string{"config.yaml", "config.yml", "/etc/popflix/config.yaml"}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	GRPC     GrpcConfig     `koanf:"grpc"`
	Database DatabaseConfig `koanf:"database"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Poster   PosterConfig   `koanf:"poster"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	TrustedProxies  []string      `koanf:"trusted_proxies"`
}

type GrpcConfig struct {
	Addr string `koanf:"addr"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// CatalogConfig controls where the index is built from.
//
// Source "csv" reads CSVPath directly, "db" reads the movies table. When
// SnapshotPath names an existing file it is used instead of rebuilding.
type CatalogConfig struct {
	Source       string `koanf:"source"`
	CSVPath      string `koanf:"csv_path"`
	SnapshotPath string `koanf:"snapshot_path"`
	MaxFeatures  int    `koanf:"max_features"`
	BuildWorkers int    `koanf:"build_workers"`
	DefaultK     int    `koanf:"default_k"`
}

type PosterConfig struct {
	APIKey          string        `koanf:"api_key"`
	BaseURL         string        `koanf:"base_url"`
	ImageBase       string        `koanf:"image_base"`
	Timeout         time.Duration `koanf:"timeout"`
	RatePerSecond   float64       `koanf:"rate_per_second"`
	Burst           int           `koanf:"burst"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`
	Parallelism     int           `koanf:"parallelism"`
}

type AuthConfig struct {
	JWTSecret   string        `koanf:"jwt_secret"`
	JWTIssuer   string        `koanf:"jwt_issuer"`
	JWTDuration time.Duration `koanf:"jwt_ttl"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			TrustedProxies:  []string{"127.0.0.1"},
		},
		GRPC:     GrpcConfig{Addr: ":9090"},
		Database: DatabaseConfig{Path: defaultDBPath()},
		Catalog: CatalogConfig{
			Source:      "db",
			CSVPath:     "data/movies.csv",
			MaxFeatures: 5000,
			DefaultK:    5,
		},
		Poster: PosterConfig{
			BaseURL:         "https://api.themoviedb.org/3",
			ImageBase:       "https://image.tmdb.org/t/p/w500/",
			Timeout:         5 * time.Second,
			RatePerSecond:   20,
			Burst:           10,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
			Parallelism:     5,
		},
		Auth: AuthConfig{
			// dev default (change for demo / production)
			JWTSecret:   "dev-secret-change-me",
			JWTIssuer:   "popflix",
			JWTDuration: 24 * time.Hour,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return home + "/.popflix/data.db"
}

// Load layers configuration: struct defaults, then an optional YAML file,
// then POPFLIX_* environment variables.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit config file path ("" for none).
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitList(k, "server.trusted_proxies"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey maps POPFLIX_CATALOG_MAX_FEATURES to catalog.max_features: the first
// segment after the prefix is the section, the rest is the field name.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + field
}

func splitList(k *koanf.Koanf, path string) error {
	raw, ok := k.Get(path).(string)
	if !ok || raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Catalog.Source {
	case "csv":
		if c.Catalog.CSVPath == "" {
			errs = append(errs, errors.New("catalog.csv_path required when catalog.source is csv"))
		}
	case "db":
	default:
		errs = append(errs, fmt.Errorf("catalog.source must be csv or db, got %q", c.Catalog.Source))
	}
	if c.Catalog.MaxFeatures <= 0 {
		errs = append(errs, errors.New("catalog.max_features must be positive"))
	}
	if c.Catalog.DefaultK <= 0 {
		errs = append(errs, errors.New("catalog.default_k must be positive"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret required"))
	}
	if c.Auth.JWTDuration <= 0 {
		errs = append(errs, errors.New("auth.jwt_ttl must be positive"))
	}
	if c.Poster.Parallelism <= 0 {
		errs = append(errs, errors.New("poster.parallelism must be positive"))
	}
	for _, p := range c.Server.TrustedProxies {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			errs = append(errs, fmt.Errorf("server.trusted_proxies: %q is not an IP or CIDR", p))
		}
	}
	return errors.Join(errs...)
}
