package main

import (
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/acoustic-print/internal/core/services"
)

var (
	recAlbum  int64
	recK      int
	recFormat string
	recFull   bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend albums similar to an album, per genre",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		svc := services.NewOrchestrator(store, serviceOptions(cfg))

		if recFull {
			view, err := svc.Album(cmd.Context(), recAlbum, recK)
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), recFormat, view)
		}

		recs, err := svc.Recommend(cmd.Context(), recAlbum, recK)
		if err != nil {
			return err
		}
		return writeValue(cmd.OutOrStdout(), recFormat, recs)
	},
}

func init() {
	recommendCmd.Flags().Int64Var(&recAlbum, "album", 0, "album id")
	recommendCmd.Flags().IntVar(&recK, "k", 0, "recommendations per genre (configured default when 0)")
	recommendCmd.Flags().StringVar(&recFormat, "format", formatJSON, "output format: json or yaml")
	recommendCmd.Flags().BoolVar(&recFull, "full", false, "print the whole album view")
	_ = recommendCmd.MarkFlagRequired("album")
}
