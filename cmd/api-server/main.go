package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"popflix/internal/app"
	"popflix/internal/auth"
	"popflix/internal/events"
	"popflix/internal/logging"
	"popflix/internal/movies"
	"popflix/internal/recommend"
	"popflix/pkg/database"
	"popflix/pkg/utils"
)

func main() {
	cfg, err := utils.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	app.InitLogging(cfg)

	db, err := database.OpenAndMigrate(database.Config{Path: cfg.Database.Path})
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("open database")
	}
	defer db.Close()

	hub := events.NewHub()
	svc := recommend.NewService(app.Source(cfg, db), app.ServiceOptions(cfg), hub)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 5*time.Minute)
	if err := svc.Bootstrap(bootCtx); err != nil {
		// /ready stays 503 until an admin reload succeeds.
		logging.Error().Err(err).Str("source", cfg.Catalog.Source).Msg("initial index build failed")
	}
	cancelBoot()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.GinMiddleware())
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logging.Fatal().Err(err).Strs("trusted_proxies", cfg.Server.TrustedProxies).Msg("invalid trusted proxies")
	}

	router.GET("/ws", events.WSHandler(hub))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Database.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body := gin.H{"ws_clients": stats.WSClients, "index": svc.Ready()}
		if err := db.PingContext(ctx); err != nil {
			body["status"] = "not_ready"
			body["db_error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		if !svc.Ready() {
			body["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		if info, err := svc.Info(); err == nil {
			body["movies"] = info.Movies
			body["source"] = info.Source
		}
		body["status"] = "ready"
		c.JSON(http.StatusOK, body)
	})

	movies.NewHandler(movies.NewRepo(db)).RegisterRoutes(router.Group("/movies"))

	recHandler := recommend.NewHandler(svc, app.PosterClient(cfg))
	recHandler.RegisterRoutes(router)
	admin := router.Group("/admin")
	admin.Use(auth.RequireRole(app.Tokens(cfg), auth.RoleAdmin))
	recHandler.RegisterAdminRoutes(admin)

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logging.Info().Str("addr", cfg.Server.Addr).Msg("HTTP API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		logging.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("http shutdown")
	}

	wg.Wait()
	logging.Info().Msg("server stopped")
}
