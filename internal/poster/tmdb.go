// Package poster resolves poster image URLs for recommended movies from the
// TMDB metadata API. It owns every network policy the recommendation core
// does not: timeouts, rate limiting, circuit breaking and placeholder
// fallback. Lookups never fail; a failure yields a placeholder URL.
package poster

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"popflix/internal/logging"
	"popflix/internal/metrics"
	"popflix/pkg/models"
)

const (
	PlaceholderNoImage = "https://via.placeholder.com/500x750?text=No+Image"
	PlaceholderError   = "https://via.placeholder.com/500x750?text=Error"
)

type Config struct {
	APIKey          string
	BaseURL         string // e.g. https://api.themoviedb.org/3
	ImageBase       string // e.g. https://image.tmdb.org/t/p/w500/
	Timeout         time.Duration
	RatePerSecond   float64
	Burst           int
	BreakerFailures uint32
	BreakerCooldown time.Duration
	Parallelism     int
}

// Client looks up poster URLs. The zero API key disables network access.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
	log     zerolog.Logger
}

var (
	errNoPoster = errors.New("no poster path")
	// errAbandoned marks lookups the caller gave up on; they say nothing
	// about TMDB health.
	errAbandoned = errors.New("poster lookup abandoned")
)

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 5
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		log:     logging.With("poster"),
	}
	c.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "tmdb",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// a movie without poster art is a valid answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNoPoster) || errors.Is(err, errAbandoned)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("poster circuit breaker state change")
		},
	})
	return c
}

func (c *Client) Enabled() bool { return c.cfg.APIKey != "" }

// PosterURL returns the poster image for a TMDB movie id, or a placeholder.
func (c *Client) PosterURL(ctx context.Context, movieID int) string {
	if !c.Enabled() {
		metrics.PosterFetchesTotal.WithLabelValues("disabled").Inc()
		return PlaceholderNoImage
	}

	if ctx.Err() != nil {
		metrics.PosterFetchesTotal.WithLabelValues("canceled").Inc()
		return PlaceholderError
	}

	u, err := c.breaker.Execute(func() (string, error) {
		u, err := c.fetch(ctx, movieID)
		if err != nil && ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", errAbandoned, err)
		}
		return u, err
	})
	switch {
	case err == nil:
		metrics.PosterFetchesTotal.WithLabelValues("found").Inc()
		return u
	case errors.Is(err, errNoPoster):
		metrics.PosterFetchesTotal.WithLabelValues("missing").Inc()
		return PlaceholderNoImage
	case errors.Is(err, errAbandoned):
		metrics.PosterFetchesTotal.WithLabelValues("canceled").Inc()
		return PlaceholderError
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.PosterFetchesTotal.WithLabelValues("breaker_open").Inc()
		return PlaceholderError
	default:
		metrics.PosterFetchesTotal.WithLabelValues("error").Inc()
		c.log.Debug().Err(err).Int("movie_id", movieID).Msg("poster lookup failed")
		return PlaceholderError
	}
}

type movieResponse struct {
	PosterPath string `json:"poster_path"`
}

func (c *Client) fetch(ctx context.Context, movieID int) (string, error) {
	// Wait fails early when the caller's deadline cannot fit the next token.
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", errAbandoned, err)
	}

	u, err := url.Parse(c.cfg.BaseURL + "/movie/" + strconv.Itoa(movieID))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("api_key", c.cfg.APIKey)
	q.Set("language", "en-US")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", errNoPoster
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("tmdb status %d", resp.StatusCode)
	}

	var body movieResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode tmdb response: %w", err)
	}
	if body.PosterPath == "" {
		return "", errNoPoster
	}
	return c.cfg.ImageBase + strings.TrimLeft(body.PosterPath, "/"), nil
}

// Item is a recommendation paired with its poster.
type Item struct {
	models.Recommendation
	PosterURL string `json:"poster_url"`
}

// Decorate resolves posters for recs in parallel, preserving order.
func (c *Client) Decorate(ctx context.Context, recs []models.Recommendation) []Item {
	out := make([]Item, len(recs))
	var g errgroup.Group
	g.SetLimit(c.cfg.Parallelism)
	for i, r := range recs {
		g.Go(func() error {
			out[i] = Item{Recommendation: r, PosterURL: c.PosterURL(ctx, r.ID)}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
