package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tabletennis-scoreboard/internal/config"
	"tabletennis-scoreboard/internal/httpapi"
	"tabletennis-scoreboard/internal/hub"
)

func main() {
	cfg := config.Load()

	log := buildLogger(cfg)
	defer log.Sync()

	ctx := context.Background()
	h := hub.New(ctx, log)

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(h, log)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("forced shutdown", zap.Error(err))
	}
	h.Inbox() <- hub.ShutdownHub{}

	log.Info("server exited")
}

func buildLogger(cfg config.Config) *zap.Logger {
	level := zapcore.InfoLevel
	_ = level.Set(cfg.LogLevel)

	zcfg := zap.NewDevelopmentConfig()
	if cfg.LogJSON {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return log
}
