package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docstackhq/docvec/internal/store"
)

func newStatusCmd() *cobra.Command {
	var showRemote bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show local index and configuration status",
		Long: `Status reports the configured storage layout, the embedding provider,
and the state of the local index copy in the work directory. With
--remote it also lists the checkpoint files currently in object storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Storage:\n")
			fmt.Fprintf(out, "  Bucket:            %s\n", cfg.Storage.Bucket)
			fmt.Fprintf(out, "  Region:            %s\n", cfg.Storage.Region)
			fmt.Fprintf(out, "  Source prefix:     %s\n", cfg.Storage.SourcePrefix)
			fmt.Fprintf(out, "  Checkpoint prefix: %s\n", cfg.Storage.CheckpointPrefix)

			fmt.Fprintf(out, "Embeddings:\n")
			fmt.Fprintf(out, "  Provider:          %s\n", cfg.Embeddings.Provider)
			fmt.Fprintf(out, "  Model:             %s\n", cfg.Embeddings.Model)

			fmt.Fprintf(out, "Checkpoint:\n")
			fmt.Fprintf(out, "  Every:             %d documents\n", cfg.Checkpoint.Every)
			fmt.Fprintf(out, "  Work dir:          %s\n", cfg.Checkpoint.WorkDir)

			localDir := filepath.Join(cfg.Checkpoint.WorkDir, "current")
			artifact, err := store.Load(localDir)
			switch {
			case err != nil:
				fmt.Fprintf(out, "Local index:         corrupt (%v)\n", err)
			case artifact == nil:
				fmt.Fprintf(out, "Local index:         absent\n")
			default:
				fmt.Fprintf(out, "Local index:         %d pages (model %s, %d dimensions)\n",
					artifact.Count(), artifact.ModelName(), artifact.Dimensions())
			}

			if !showRemote {
				return nil
			}

			ctx := cmd.Context()
			client, _, cleanup, err := newPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			objects, err := client.List(ctx, cfg.Storage.Bucket, cfg.Storage.CheckpointPrefix)
			if err != nil {
				return fmt.Errorf("failed to list remote checkpoints: %w", err)
			}
			if len(objects) == 0 {
				fmt.Fprintf(out, "Remote checkpoint:   absent\n")
				return nil
			}
			fmt.Fprintf(out, "Remote checkpoint:\n")
			for _, obj := range objects {
				fmt.Fprintf(out, "  %s (%d bytes)\n", obj.Key, obj.Size)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showRemote, "remote", false, "Also list checkpoint objects in remote storage")

	return cmd
}
