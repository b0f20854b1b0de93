package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
	"github.com/ewilliams-labs/acoustic-print/internal/core/ports"
	"github.com/ewilliams-labs/acoustic-print/internal/logging"
)

// catalogueFile is the YAML seed format:
//
//	genres:
//	  - {id: 12, title: Rock}
//	albums:
//	  - {id: 1, title: First, artist: Band, release_date: 2019-05-17, tracks: 2}
//	tracks:
//	  - id: 2
//	    title: Opener
//	    album_id: 1
//	    explicit: "no"
//	    genres: [12]
//	    features: {valence: 0.4, energy: 0.8, tempo: 128, duration: 185}
type catalogueFile struct {
	Genres []domain.Genre `yaml:"genres"`
	Albums []albumEntry   `yaml:"albums"`
	Tracks []trackEntry   `yaml:"tracks"`
}

type albumEntry struct {
	ID          int64  `yaml:"id"`
	Title       string `yaml:"title"`
	Artist      string `yaml:"artist"`
	ReleaseDate string `yaml:"release_date"`
	Tracks      int    `yaml:"tracks"`
	Favorites   int    `yaml:"favorites"`
	Listens     int    `yaml:"listens"`
}

type featureEntry struct {
	Valence          float64 `yaml:"valence"`
	Energy           float64 `yaml:"energy"`
	Danceability     float64 `yaml:"danceability"`
	Acousticness     float64 `yaml:"acousticness"`
	Instrumentalness float64 `yaml:"instrumentalness"`
	Speechiness      float64 `yaml:"speechiness"`
	Liveness         float64 `yaml:"liveness"`
	Tempo            float64 `yaml:"tempo"`
	Duration         int     `yaml:"duration"`
}

type trackEntry struct {
	ID         int64        `yaml:"id"`
	Title      string       `yaml:"title"`
	Artist     string       `yaml:"artist"`
	AlbumID    int64        `yaml:"album_id"`
	Favorites  int          `yaml:"favorites"`
	Listens    int          `yaml:"listens"`
	Explicit   string       `yaml:"explicit"`
	Genres     []int64      `yaml:"genres"`
	Features   featureEntry `yaml:"features"`
	ExternalID string       `yaml:"external_id"`
	PreviewURL string       `yaml:"preview_url"`
}

var loadFile string

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load albums and tracks from a YAML catalogue file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(loadFile)
		if err != nil {
			return err
		}
		defer f.Close()

		albums, tracks, err := parseCatalogue(f)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", loadFile, err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := saveCatalogue(cmd.Context(), store, albums, tracks); err != nil {
			return err
		}
		logging.Info().Int("albums", len(albums)).Int("tracks", len(tracks)).Str("file", loadFile).Msg("catalogue loaded")
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "loaded %d albums and %d tracks\n", len(albums), len(tracks))
		return err
	},
}

func init() {
	loadCmd.Flags().StringVarP(&loadFile, "file", "f", "", "catalogue YAML file")
	_ = loadCmd.MarkFlagRequired("file")
}

// parseCatalogue decodes and validates a catalogue file. Tracks may only
// reference declared genres; tracks without a tempo are stored unanalysed.
func parseCatalogue(r io.Reader) ([]domain.Album, []domain.Track, error) {
	var file catalogueFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, nil, err
	}

	genres := make(map[int64]domain.Genre, len(file.Genres))
	for _, g := range file.Genres {
		genres[g.ID] = g
	}

	albums := make([]domain.Album, 0, len(file.Albums))
	for _, a := range file.Albums {
		al := domain.Album{
			ID:         a.ID,
			Title:      a.Title,
			Artist:     a.Artist,
			TrackCount: a.Tracks,
			Favorites:  a.Favorites,
			Listens:    a.Listens,
		}
		if a.ReleaseDate != "" {
			t, err := time.Parse("2006-01-02", a.ReleaseDate)
			if err != nil {
				return nil, nil, fmt.Errorf("album %d: invalid release_date %q", a.ID, a.ReleaseDate)
			}
			al.ReleaseDate = &t
		}
		albums = append(albums, al)
	}

	tracks := make([]domain.Track, 0, len(file.Tracks))
	for _, e := range file.Tracks {
		t := domain.Track{
			ID:         e.ID,
			Title:      e.Title,
			Artist:     e.Artist,
			AlbumID:    e.AlbumID,
			Favorites:  e.Favorites,
			Listens:    e.Listens,
			Explicit:   domain.ExplicitUnknown,
			ExternalID: e.ExternalID,
			PreviewURL: e.PreviewURL,
			Features: domain.FeatureVector{
				Valence:          e.Features.Valence,
				Energy:           e.Features.Energy,
				Danceability:     e.Features.Danceability,
				Acousticness:     e.Features.Acousticness,
				Instrumentalness: e.Features.Instrumentalness,
				Speechiness:      e.Features.Speechiness,
				Liveness:         e.Features.Liveness,
				Tempo:            e.Features.Tempo,
				DurationSeconds:  e.Features.Duration,
			},
		}
		if e.Explicit != "" {
			x, err := domain.ParseExplicit(e.Explicit)
			if err != nil {
				return nil, nil, fmt.Errorf("track %d: %w", e.ID, err)
			}
			t.Explicit = x
		}
		if t.Features.Tempo > 0 {
			if err := t.Features.Validate(); err != nil {
				return nil, nil, fmt.Errorf("track %d: %w", e.ID, err)
			}
		}
		for _, id := range e.Genres {
			g, ok := genres[id]
			if !ok {
				return nil, nil, fmt.Errorf("track %d: undeclared genre %d", e.ID, id)
			}
			t.Genres = append(t.Genres, g)
		}
		tracks = append(tracks, t)
	}

	return albums, tracks, nil
}

func saveCatalogue(ctx context.Context, store ports.FeatureStore, albums []domain.Album, tracks []domain.Track) error {
	for _, a := range albums {
		if err := store.SaveAlbum(ctx, a); err != nil {
			return err
		}
	}
	for _, t := range tracks {
		if err := store.SaveTrack(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
