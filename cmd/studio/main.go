package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/gemini-image-studio/internal/config"
	"github.com/shouni/gemini-image-studio/internal/server"
	"github.com/shouni/gemini-image-studio/pkg/adapters"
	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/generator"
	"github.com/shouni/gemini-image-studio/pkg/session"
)

func main() {
	if err := run(); err != nil {
		slog.Error("起動に失敗しました", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	if !cfg.HasAPIKey() {
		slog.Warn("環境のAPIキーが設定されていません。利用者のキーが必要です")
	}

	gen, err := generator.NewGenerator(
		generator.NewGenAIClientFactory(http.DefaultClient),
		adapters.NewRegistry(adapters.DefaultStamper()),
		cfg.APIKey,
	)
	if err != nil {
		return err
	}

	hub := server.NewHub()
	var ctrl *session.Controller
	selector := server.NewKeySelector(hub, func(ctx context.Context) bool {
		return gen.HasCredential() || ctrl.Snapshot().Config.APIKey != ""
	})

	initial := domain.DefaultConfig()
	initial.Model = cfg.DefaultModel
	ctrl, err = session.NewController(gen,
		session.WithConfig(initial),
		session.WithNotifier(hub),
		session.WithKeySelector(selector),
	)
	if err != nil {
		return err
	}

	srv, err := server.New(ctrl, hub, cfg.BasePath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
