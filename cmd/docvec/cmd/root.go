// Package cmd provides the CLI commands for docvec.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docstackhq/docvec/internal/config"
	"github.com/docstackhq/docvec/internal/embed"
	"github.com/docstackhq/docvec/internal/logging"
	"github.com/docstackhq/docvec/internal/storage"
	"github.com/docstackhq/docvec/pkg/version"
)

var (
	debugMode      bool
	configDir      string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the docvec CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docvec",
		Short: "Checkpointed PDF ingest into a similarity-search index",
		Long: `docvec fetches PDF documents from object storage, embeds their text
page by page, and maintains a persistent similarity-search index that is
checkpointed back to object storage so interrupted runs resume where they
left off.

Configuration comes from .docvec.yaml in the working directory plus
DOCVEC_* environment variables (a .env file is honored if present).`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("docvec version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory containing .docvec.yaml")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
	}

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupLogging loads the optional .env file and installs the default logger.
func setupLogging(_ *cobra.Command, _ []string) error {
	// Missing .env is not an error
	_ = godotenv.Load()

	logCfg := logging.DefaultConfig()
	logCfg.WriteToStderr = false
	if debugMode {
		logCfg = logging.DebugConfig()
	}

	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup

	if debugMode {
		slog.Info("debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}
	return nil
}

// loadConfig reads configuration from the configured directory.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	if debugMode {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newPipeline builds the storage client and embedder a command needs.
// The returned cleanup closes the embedder.
func newPipeline(ctx context.Context, cfg *config.Config) (storage.Client, embed.Embedder, func(), error) {
	client, err := storage.NewS3Client(ctx, storage.S3Options{
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	embedder, err := embed.NewEmbedder(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return client, embedder, func() { _ = embedder.Close() }, nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
