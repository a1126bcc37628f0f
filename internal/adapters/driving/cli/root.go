// Package cli provides the cobra command tree for sercha-rag.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services are the wired ports a command runs against.
type Services struct {
	// Settings are the effective settings after environment overrides.
	Settings *domain.AppSettings

	Conversation driving.Conversation
	Retrieval    driving.RetrievalService
	Ingester     driving.CorpusIngester
	Watcher      driving.Watcher

	// StorePath locates the chunk store, for display only.
	StorePath string

	// Close releases the store and other resources.
	Close func() error
}

// Builder constructs services for a config directory.
type Builder interface {
	// SettingsService opens the persisted settings only.
	SettingsService(configDir string) (driving.SettingsService, error)

	// Services wires the full pipeline.
	Services(ctx context.Context, configDir string) (*Services, error)
}

var (
	verbose   bool
	configDir string

	builder         Builder
	appServices     *Services
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Answer questions from a local document corpus",
	Long: `sercha-rag ingests a directory of documents into a chunk store and
answers questions with a language model grounded on the most relevant chunks.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.sercha-rag)")
}

// SetBuilder installs the builder used to construct services on demand.
func SetBuilder(b Builder) {
	builder = b
}

// Execute runs the root command and releases any services it opened.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// requireServices builds the services on first use.
func requireServices(cmd *cobra.Command) (*Services, error) {
	if appServices != nil {
		return appServices, nil
	}
	if builder == nil {
		return nil, errors.New("services not configured")
	}
	s, err := builder.Services(cmd.Context(), configDir)
	if err != nil {
		return nil, err
	}
	appServices = s
	return appServices, nil
}

// requireSettings opens the settings service on first use.
func requireSettings() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	if builder == nil {
		return nil, errors.New("settings service not configured")
	}
	s, err := builder.SettingsService(configDir)
	if err != nil {
		return nil, err
	}
	settingsService = s
	return settingsService, nil
}

func closeServices() {
	if appServices == nil || appServices.Close == nil {
		return
	}
	if err := appServices.Close(); err != nil {
		logger.Warn("Closing services: %v", err)
	}
	appServices = nil
}

// ingestOnStart ingests the configured corpus when ingest.on_start is set.
// A failure is logged; the command continues with whatever is stored.
func ingestOnStart(cmd *cobra.Command, s *Services) {
	if s.Settings == nil || !s.Settings.Ingest.OnStart || s.Ingester == nil {
		return
	}
	report, err := s.Ingester.Ingest(cmd.Context(), s.Settings.Ingest.Dir)
	if err != nil {
		logger.Warn("Startup ingest failed: %v", err)
		return
	}
	logger.Info("Startup ingest: %s", report)
}
