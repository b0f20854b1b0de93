// Command acoustic-print serves and queries the acoustic fingerprint catalogue.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/acoustic-print/internal/adapters/spotify"
	"github.com/ewilliams-labs/acoustic-print/internal/adapters/sqlite"
	"github.com/ewilliams-labs/acoustic-print/internal/config"
	"github.com/ewilliams-labs/acoustic-print/internal/core/ports"
	"github.com/ewilliams-labs/acoustic-print/internal/core/services"
	"github.com/ewilliams-labs/acoustic-print/internal/logging"
)

var (
	cfgFile string
	dbPath  string
	verbose bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "acoustic-print",
	Short: "Audio feature fingerprints, comparisons and album recommendations",
	Long: `acoustic-print renders parametric fingerprints of tracks from their audio
features, compares tracks and albums against their genres and recommends
similar albums. It runs as an HTTP service or as a one-shot CLI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default $CONFIG_PATH or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "database", "", "database file path (overrides database.path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fingerprintCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(loadCmd)
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: cfg.Logging.Format})
	return nil
}

func openStore() (*sqlite.Adapter, error) {
	store, err := sqlite.NewAdapter(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	logging.Debug().Str("path", cfg.Database.Path).Msg("database opened")
	return store, nil
}

func serviceOptions(c *config.Config) services.Options {
	return services.Options{
		DynamicsPoints:         c.Fingerprint.DynamicsPoints,
		ArticulationPoints:     c.Fingerprint.ArticulationPoints,
		HomeArticulationPoints: c.Fingerprint.HomeArticulationPoints,
		TempoMin:               c.Filter.TempoMin,
		TempoMax:               c.Filter.TempoMax,
		DurationMaxMinutes:     c.Filter.DurationMaxMinutes,
		K:                      c.Recommend.K,
	}
}

// featureProvider returns nil when Spotify is disabled, leaving preview
// analysis as the only import path.
func featureProvider(ctx context.Context, c *config.Config) ports.FeatureProvider {
	if !c.Spotify.Enabled {
		return nil
	}
	return spotify.New(ctx, spotify.Config{
		ClientID:     c.Spotify.ClientID,
		ClientSecret: c.Spotify.ClientSecret,
		TokenURL:     c.Spotify.TokenURL,
		BaseURL:      c.Spotify.BaseURL,
		MaxRetries:   c.Spotify.MaxRetries,
		RetryBackoff: c.Spotify.RetryBackoff,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
