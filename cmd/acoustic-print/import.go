package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/acoustic-print/internal/logging"
	"github.com/ewilliams-labs/acoustic-print/internal/worker"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Fetch audio features for every track that has none",
	Long: `Fetch audio features for every track that has none. Tracks with a Spotify
id are looked up when spotify.enabled is set; tracks without features there
fall back to an energy estimate from their MP3 preview.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		pool := worker.NewPool(featureProvider(ctx, cfg), store, cfg.Worker.Workers, cfg.Worker.QueueSize)
		pool.Start(ctx)

		n, err := pool.EnqueueMissing(ctx)
		pool.Stop()
		if err != nil {
			return err
		}

		logging.Info().Int("tracks", n).Msg("feature import finished")
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "processed %d tracks\n", n)
		return err
	},
}
