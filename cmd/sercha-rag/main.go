// Command sercha-rag answers questions from a local document corpus.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-rag/internal/bootstrap"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// builder adapts bootstrap to the CLI.
type builder struct{}

func (builder) SettingsService(configDir string) (driving.SettingsService, error) {
	return bootstrap.OpenSettings(configDir)
}

func (builder) Services(ctx context.Context, configDir string) (*cli.Services, error) {
	app, err := bootstrap.New(ctx, configDir)
	if err != nil {
		return nil, err
	}
	return &cli.Services{
		Settings:     app.Settings,
		Conversation: app.Answer,
		Retrieval:    app.Retrieval,
		Ingester:     app.Ingest,
		Watcher:      app.Watch,
		StorePath:    app.StorePath,
		Close:        app.Close,
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetBuilder(builder{})
	err := cli.Execute(ctx)

	stop()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
