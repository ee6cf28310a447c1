package recommend

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"popflix/internal/index"
	"popflix/internal/logging"
	"popflix/internal/metrics"
	"popflix/internal/poster"
	"popflix/internal/similarity"
)

type Handler struct {
	Svc     *Service
	Posters *poster.Client // optional
}

func NewHandler(svc *Service, posters *poster.Client) *Handler {
	return &Handler{Svc: svc, Posters: posters}
}

type RecommendationsResponse struct {
	Title string        `json:"title"`
	K     int           `json:"k"`
	Items []poster.Item `json:"items"`
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/titles", h.titles)
	r.GET("/recommendations", h.recommendations)
}

// RegisterAdminRoutes expects rg to already carry the admin auth middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/reload", h.reload)
}

func (h *Handler) titles(c *gin.Context) {
	titles, err := h.Svc.Titles()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "index not loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(titles), "titles": titles})
}

func (h *Handler) recommendations(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		metrics.RecommendationsTotal.WithLabelValues("http", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	k := h.Svc.DefaultK()
	if raw := strings.TrimSpace(c.Query("k")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			metrics.RecommendationsTotal.WithLabelValues("http", "bad_request").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "k must be an integer"})
			return
		}
		if n <= 0 {
			metrics.RecommendationsTotal.WithLabelValues("http", "invalid_k").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": similarity.ErrInvalidK.Error()})
			return
		}
		k = n
	}

	recs, err := h.Svc.Recommend(title, k)
	if err != nil {
		outcome, code := Classify(err)
		metrics.RecommendationsTotal.WithLabelValues("http", outcome).Inc()
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	metrics.RecommendationsTotal.WithLabelValues("http", "ok").Inc()

	var items []poster.Item
	if h.Posters != nil {
		items = h.Posters.Decorate(c.Request.Context(), recs)
	} else {
		items = make([]poster.Item, len(recs))
		for i, r := range recs {
			items[i] = poster.Item{Recommendation: r}
		}
	}
	c.JSON(http.StatusOK, RecommendationsResponse{Title: title, K: k, Items: items})
}

func (h *Handler) reload(c *gin.Context) {
	info, err := h.Svc.Reload(c.Request.Context())
	if err != nil {
		logging.Error().Err(err).Msg("catalog reload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// Classify maps a recommend error to a metrics outcome label and HTTP status.
func Classify(err error) (string, int) {
	switch {
	case errors.Is(err, similarity.ErrTitleNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, similarity.ErrInvalidK):
		return "invalid_k", http.StatusBadRequest
	case errors.Is(err, index.ErrNotLoaded):
		return "unavailable", http.StatusServiceUnavailable
	default:
		return "error", http.StatusInternalServerError
	}
}
