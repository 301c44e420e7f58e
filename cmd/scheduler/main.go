package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/api/server"
	"github.com/mox-desktop/moxnotify/internal/bus"
	"github.com/mox-desktop/moxnotify/internal/config"
	"github.com/mox-desktop/moxnotify/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()

	b, err := bus.Connect(ctx, cfg.Bus.Address)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to bus")
	}

	store := scheduler.NewStateStore(b.Client())
	timeouts := scheduler.Timeouts{
		Low:      time.Duration(cfg.Scheduler.DefaultTimeout.UrgencyLow) * time.Second,
		Normal:   time.Duration(cfg.Scheduler.DefaultTimeout.UrgencyNormal) * time.Second,
		Critical: time.Duration(cfg.Scheduler.DefaultTimeout.UrgencyCritical) * time.Second,
	}

	service := scheduler.New(b, store, timeouts)

	go func() {
		if err := service.Run(ctx); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to start stream consumers")
		}
	}()

	handler := scheduler.NewHandler(service, val)
	r := scheduler.Router(handler)
	s := server.New(cfg.Scheduler.Address, r)

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Scheduler.Address).Msg("scheduler listening")
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
