package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/api/server"
	"github.com/mox-desktop/moxnotify/internal/bus"
	"github.com/mox-desktop/moxnotify/internal/config"
	"github.com/mox-desktop/moxnotify/internal/controlplane"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()

	b, err := bus.Connect(ctx, cfg.Bus.Address)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to bus")
	}

	service := controlplane.New(b)

	go func() {
		if err := service.Run(ctx); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to start re-publish loops")
		}
	}()

	r := controlplane.Router(service)
	s := server.New(cfg.ControlPlane.Address, r)

	go func() {
		zlog.Logger.Info().Str("addr", cfg.ControlPlane.Address).Msg("control plane listening")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if err := b.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close bus connection")
	}
}
