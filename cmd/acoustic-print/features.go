package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
)

var featuresFormat string

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Describe the audio features",
	RunE: func(cmd *cobra.Command, args []string) error {
		descriptions := domain.FeatureDescriptions()
		if !strings.EqualFold(featuresFormat, "table") {
			return writeValue(cmd.OutOrStdout(), featuresFormat, descriptions)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FEATURE\tDESCRIPTION")
		for _, d := range descriptions {
			fmt.Fprintf(tw, "%s\t%s\n", d.Feature, d.Description)
		}
		return tw.Flush()
	},
}

func init() {
	featuresCmd.Flags().StringVar(&featuresFormat, "format", "table", "output format: table, json or yaml")
}
