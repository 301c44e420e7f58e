package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/wb-go/wbf/zlog"

	"github.com/mox-desktop/moxnotify/internal/bus"
	"github.com/mox-desktop/moxnotify/internal/config"
	"github.com/mox-desktop/moxnotify/internal/index"
	"github.com/mox-desktop/moxnotify/internal/indexer"
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

	idx, err := index.Open(cfg.Index.Path)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Str("path", cfg.Index.Path).Msg("failed to open index")
	}

	zlog.Logger.Info().Str("path", cfg.Index.Path).Msg("indexer running")
	if err := indexer.New(b, idx).Run(ctx); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("indexer failed")
	}

	if err := idx.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close index")
	}
	if err := b.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close bus connection")
	}
}
