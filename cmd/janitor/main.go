package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/config"
	"github.com/mox-desktop/moxnotify/internal/index"
	"github.com/mox-desktop/moxnotify/internal/janitor"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()

	period, err := cfg.Janitor.Retention.PeriodDuration()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("invalid retention period")
	}
	schedule, err := cfg.Janitor.Retention.ScheduleDuration()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("invalid retention schedule")
	}

	idx, err := index.Open(cfg.Index.Path)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Str("path", cfg.Index.Path).Msg("failed to open index")
	}

	zlog.Logger.Info().
		Str("path", cfg.Index.Path).
		Dur("period", period).
		Dur("schedule", schedule).
		Msg("janitor running")

	if err := janitor.New(idx, period, schedule, cfg.Retry).Run(ctx); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("janitor failed")
	}

	if err := idx.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close index")
	}
}
