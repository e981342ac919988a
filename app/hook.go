package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
)

// WaitForShutdown blocks until SIGINT or SIGTERM arrives or ctx ends, then
// cancels ctx so Run returns.
func (app *App) WaitForShutdown(ctx context.Context, cancel context.CancelFunc) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	logger := app.Observability.Provider.Logger
	select {
	case sig := <-interrupt:
		logger.Info("Shutdown signal received", attr.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Application context cancelled")
	}
	cancel()
}
