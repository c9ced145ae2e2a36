package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docstackhq/docvec/internal/index"
)

func newIngestCmd() *cobra.Command {
	var every int
	var keepHistory bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch, embed, and index all source documents",
		Long: `Ingest runs the full pipeline: recover the newest index checkpoint,
list PDF documents under the source prefix, embed each page, and upload
a fresh checkpoint every N documents and after the last one.

Interrupted runs lose at most the work since the previous checkpoint.

Examples:
  docvec ingest
  docvec ingest --every 5
  docvec ingest --keep-history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("every") {
				cfg.Checkpoint.Every = every
			}
			if cmd.Flags().Changed("keep-history") {
				cfg.Checkpoint.KeepHistory = keepHistory
			}

			ctx := cmd.Context()
			client, embedder, cleanup, err := newPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			coordinator, err := index.New(cfg, client, embedder)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := coordinator.Run(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ingest complete in %s\n", time.Since(start).Round(time.Second))
			fmt.Fprintf(out, "  Documents indexed: %d\n", result.Processed)
			fmt.Fprintf(out, "  Documents skipped: %d\n", result.Skipped)
			fmt.Fprintf(out, "  Pages embedded:    %d\n", result.Units)
			fmt.Fprintf(out, "  Checkpoints:       %d\n", result.Checkpoints)
			fmt.Fprintf(out, "  Index size:        %d pages\n", result.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&every, "every", 0, "Checkpoint after this many documents (overrides config)")
	cmd.Flags().BoolVar(&keepHistory, "keep-history", false, "Upload checkpoints under a per-run prefix instead of overwriting")

	return cmd
}
