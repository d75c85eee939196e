package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/almadegranja/alma-backend/internal/config"
	"github.com/almadegranja/alma-backend/internal/logging"
	"github.com/almadegranja/alma-backend/internal/modules/catalog"
	"github.com/almadegranja/alma-backend/internal/modules/media"
	"github.com/almadegranja/alma-backend/internal/server"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File, cfg.Production())
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if d := cfg.Defaulted(); len(d) > 0 {
		logger.Warn("using development defaults, do not deploy like this", zap.Strings("keys", d))
	}
	logger.Info("configuration loaded", cfg.LogFields()...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Storage ─────────────────────────────────────────────
	repo, closeRepo, err := catalog.OpenRepository(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to open product storage", zap.Error(err))
	}

	// ── Image host ──────────────────────────────────────────
	host, err := media.NewCloudinaryHost(cfg.Media)
	if err != nil {
		logger.Fatal("failed to configure image host", zap.Error(err))
	}
	if host == nil {
		logger.Warn("image host not configured, uploads will fail")
	}

	// ── Start Server ────────────────────────────────────────
	router := server.NewRouter(cfg, repo, host, logger)
	srv := server.NewHTTPServer(cfg.HTTP.Addr, router, logger)
	go srv.Run(stop)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Close(shutdownCtx)
	if err := closeRepo(); err != nil {
		logger.Error("failed to close product storage", zap.Error(err))
	}
}
