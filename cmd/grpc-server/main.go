package main

import (
	"context"
	"database/sql"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"popflix/internal/app"
	"popflix/internal/grpcserver"
	"popflix/internal/logging"
	"popflix/internal/recommend"
	"popflix/pkg/database"
	"popflix/pkg/grpc/moviepb"
	"popflix/pkg/utils"
)

func main() {
	cfg, err := utils.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	app.InitLogging(cfg)

	var db *sql.DB
	if cfg.Catalog.Source == "db" {
		db, err = database.OpenAndMigrate(database.Config{Path: cfg.Database.Path})
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("open database")
		}
		defer db.Close()
	}

	svc := recommend.NewService(app.Source(cfg, db), app.ServiceOptions(cfg), nil)
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 5*time.Minute)
	err = svc.Bootstrap(bootCtx)
	cancelBoot()
	if err != nil {
		logging.Fatal().Err(err).Msg("build catalog index")
	}

	listener, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		logging.Fatal().Err(err).Str("addr", cfg.GRPC.Addr).Msg("grpc listen")
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LoggingInterceptor()))
	moviepb.RegisterRecommendServiceServer(grpcServer, grpcserver.NewServer(svc, app.PosterClient(cfg)))

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		grpcServer.GracefulStop()
	}()

	logging.Info().Str("addr", cfg.GRPC.Addr).Msg("gRPC server listening")
	if err := grpcServer.Serve(listener); err != nil {
		logging.Fatal().Err(err).Msg("grpc server stopped")
	}
}
