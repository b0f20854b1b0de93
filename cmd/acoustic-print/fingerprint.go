package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
	"github.com/ewilliams-labs/acoustic-print/internal/core/fingerprint"
	"github.com/ewilliams-labs/acoustic-print/internal/core/services"
)

var (
	fpTrack    int64
	fpCategory string
	fpPoints   int
	fpFormat   string
	fpFeatures domain.FeatureVector
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Render the fingerprint curves of a track or a raw feature vector",
	Example: `  acoustic-print fingerprint --track 2 --points 500 --format csv
  acoustic-print fingerprint --valence 0.4 --energy 0.8 --danceability 0.6 \
      --acousticness 0.1 --instrumentalness 0 --speechiness 0.05 --tempo 128`,
	RunE: runFingerprint,
}

func init() {
	f := fingerprintCmd.Flags()
	f.Int64Var(&fpTrack, "track", 0, "catalogue track id")
	f.StringVar(&fpCategory, "category", "", "dynamics or articulation (both when empty)")
	f.IntVar(&fpPoints, "points", 0, "samples per attribute (configured default when 0)")
	f.StringVar(&fpFormat, "format", formatJSON, "output format: json, yaml or csv")

	f.Float64Var(&fpFeatures.Valence, "valence", 0, "valence in [0, 1]")
	f.Float64Var(&fpFeatures.Energy, "energy", 0, "energy in [0, 1]")
	f.Float64Var(&fpFeatures.Danceability, "danceability", 0, "danceability in [0, 1]")
	f.Float64Var(&fpFeatures.Acousticness, "acousticness", 0, "acousticness in [0, 1]")
	f.Float64Var(&fpFeatures.Instrumentalness, "instrumentalness", 0, "instrumentalness in [0, 1]")
	f.Float64Var(&fpFeatures.Speechiness, "speechiness", 0, "speechiness in [0, 1]")
	f.Float64Var(&fpFeatures.Liveness, "liveness", 0, "liveness in [0, 1]")
	f.Float64Var(&fpFeatures.Tempo, "tempo", 0, "tempo in BPM")

	fingerprintCmd.MarkFlagsMutuallyExclusive("track", "valence")
	fingerprintCmd.MarkFlagsMutuallyExclusive("track", "tempo")
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	if fpPoints < 0 {
		return domain.ErrInvalidPoints
	}

	var result any
	var p fingerprint.Print
	if cmd.Flags().Changed("track") {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		svc := services.NewOrchestrator(store, serviceOptions(cfg))
		tp, err := svc.Fingerprint(cmd.Context(), fpTrack, fpCategory, fpPoints)
		if err != nil {
			return err
		}
		result, p = tp, tp.Print
	} else {
		if !anyFeatureFlag(cmd) {
			return errors.New("either --track or feature flags are required")
		}
		// raw vectors never touch the catalogue
		svc := services.NewOrchestrator(nil, serviceOptions(cfg))
		var err error
		p, err = svc.FingerprintFeatures(cmd.Context(), fpFeatures, fpCategory, fpPoints)
		if err != nil {
			return err
		}
		result = p
	}

	if strings.EqualFold(fpFormat, formatCSV) {
		return writePrintCSV(cmd.OutOrStdout(), p)
	}
	return writeValue(cmd.OutOrStdout(), fpFormat, result)
}

func anyFeatureFlag(cmd *cobra.Command) bool {
	for _, name := range []string{"valence", "energy", "danceability", "acousticness", "instrumentalness", "speechiness", "liveness", "tempo"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
