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

	"github.com/mox-desktop/moxnotify/internal/api/handlers/search"
	"github.com/mox-desktop/moxnotify/internal/api/router"
	"github.com/mox-desktop/moxnotify/internal/api/server"
	"github.com/mox-desktop/moxnotify/internal/config"
	"github.com/mox-desktop/moxnotify/internal/index"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()

	idx, err := index.OpenReadOnly(cfg.Index.Path)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Str("path", cfg.Index.Path).Msg("failed to open index")
	}

	searchHandler := search.New(idx, val)
	r := router.New(searchHandler)
	s := server.New(cfg.Searcher.Address, r)

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Searcher.Address).Msg("searcher listening")
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

	if err := idx.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close index")
	}
}
