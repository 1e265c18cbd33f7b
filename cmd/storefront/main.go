package main

import (
	"context"
	"log/slog"

	"github.com/niksmo/luxe-storefront/config"
	"github.com/niksmo/luxe-storefront/internal/app"
	"github.com/niksmo/luxe-storefront/pkg/sigctx"
)

func main() {
	sigCtx, stop := sigctx.NotifyContext()
	defer stop()

	cfg := config.Load()
	cfg.Print()

	storefront := app.New(sigCtx, cfg)
	storefront.Run(stop)

	<-sigCtx.Done()
	slog.Info("shutting down", "timeout", cfg.ShutdownTimeout)

	// queued activities are flushed to the broker within the same deadline
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	storefront.Close(ctx)
}
