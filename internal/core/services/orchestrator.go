package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ewilliams-labs/acoustic-print/internal/core/aggregate"
	"github.com/ewilliams-labs/acoustic-print/internal/core/catalogue"
	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
	"github.com/ewilliams-labs/acoustic-print/internal/core/fingerprint"
	"github.com/ewilliams-labs/acoustic-print/internal/core/ports"
	"github.com/ewilliams-labs/acoustic-print/internal/core/recommend"
	"github.com/ewilliams-labs/acoustic-print/internal/logging"
	"github.com/ewilliams-labs/acoustic-print/internal/metrics"
)

// Options carries the tunables the orchestrator reads from configuration.
type Options struct {
	DynamicsPoints         int
	ArticulationPoints     int
	HomeArticulationPoints int
	TempoMin               float64
	TempoMax               float64
	DurationMaxMinutes     float64
	K                      int
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		DynamicsPoints:         1500,
		ArticulationPoints:     1500,
		HomeArticulationPoints: 2000,
		TempoMin:               12.0,
		TempoMax:               275.0,
		DurationMaxMinutes:     60,
		K:                      recommend.DefaultK,
	}
}

// Orchestrator coordinates the catalogue repository and the core algorithms.
type Orchestrator struct {
	repo ports.CatalogueRepository
	opts Options
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(repo ports.CatalogueRepository, opts Options) *Orchestrator {
	return &Orchestrator{
		repo: repo,
		opts: opts,
	}
}

// DefaultFilter returns the filter that admits the whole catalogue.
func (o *Orchestrator) DefaultFilter() domain.FilterSpec {
	return domain.DefaultFilterSpec(o.opts.TempoMin, o.opts.TempoMax, o.opts.DurationMaxMinutes)
}

// Features returns the descriptions of every audio feature.
func (o *Orchestrator) Features() []domain.FeatureDescription {
	return domain.FeatureDescriptions()
}

// Songs filters the catalogue. No match is an empty result, not an error.
func (o *Orchestrator) Songs(ctx context.Context, spec domain.FilterSpec) (catalogue.TrackView, catalogue.GenreRowView, error) {
	if err := spec.Validate(); err != nil {
		return nil, nil, fmt.Errorf("service: %w", err)
	}
	rows, err := o.repo.ListCatalogueRows(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("service: failed to load catalogue: %w", err)
	}
	tracks, genreRows := catalogue.Filter(rows, spec)
	metrics.RecordFilter(len(tracks), len(genreRows))
	if len(tracks) == 0 {
		logging.Ctx(ctx).Debug().Str("component", "services").Msg("no tracks match filter")
	}
	return tracks, genreRows, nil
}

// Comparison is one comparison table in its two chart shapes.
type Comparison struct {
	Radar aggregate.Table `json:"radar"`
	Bar   aggregate.Table `json:"bar"`
}

// SongComparison compares a track against the means of its own genres over
// the filtered catalogue. The bar table adds the filtered and total catalogue
// means. A track outside the filtered view yields domain.ErrNotFound.
func (o *Orchestrator) SongComparison(ctx context.Context, trackID int64, spec domain.FilterSpec) (Comparison, error) {
	if err := spec.Validate(); err != nil {
		return Comparison{}, fmt.Errorf("service: %w", err)
	}
	rows, err := o.repo.ListCatalogueRows(ctx)
	if err != nil {
		return Comparison{}, fmt.Errorf("service: failed to load catalogue: %w", err)
	}

	tracks, genreRows := catalogue.Filter(rows, spec)
	metrics.RecordFilter(len(tracks), len(genreRows))
	row, ok := tracks.Find(trackID)
	if !ok {
		return Comparison{}, fmt.Errorf("service: track %d not in filtered catalogue: %w", trackID, domain.ErrNotFound)
	}

	radar := aggregate.Compare(
		aggregate.Target{Label: aggregate.CurrentSong, Features: row.Features},
		aggregate.SamplesFromRows(genreRows),
		genreRows.GenresOf(trackID),
	)

	bar := slices.Clone(radar)
	bar = append(bar, aggregate.CatalogueMean(aggregate.CatalogueFiltered, tracks.Features())...)
	bar = append(bar, aggregate.CatalogueMean(aggregate.CatalogueTotal, catalogue.Dedupe(rows).Features())...)

	return Comparison{Radar: radar, Bar: bar.SortedByGroup()}, nil
}

// TrackPrint is the fingerprint of a catalogue track.
type TrackPrint struct {
	TrackID int64             `json:"track_id" yaml:"track_id"`
	Title   string            `json:"title" yaml:"title"`
	Artist  string            `json:"artist" yaml:"artist"`
	Print   fingerprint.Print `json:"fingerprint" yaml:"fingerprint"`
}

// Fingerprint generates the curves of one track. An empty category yields
// both families; points <= 0 uses the configured resolution.
func (o *Orchestrator) Fingerprint(ctx context.Context, trackID int64, category string, points int) (TrackPrint, error) {
	track, err := o.repo.GetTrack(ctx, trackID)
	if err != nil {
		return TrackPrint{}, fmt.Errorf("service: failed to load track: %w", err)
	}
	p, err := o.FingerprintFeatures(ctx, track.Features, category, points)
	if err != nil {
		return TrackPrint{}, err
	}
	return TrackPrint{TrackID: track.ID, Title: track.Title, Artist: track.Artist, Print: p}, nil
}

// FingerprintFeatures generates curves for a raw feature vector.
func (o *Orchestrator) FingerprintFeatures(ctx context.Context, fv domain.FeatureVector, category string, points int) (fingerprint.Print, error) {
	opts := fingerprint.PrintOptions{
		DynamicsPoints:     o.opts.DynamicsPoints,
		ArticulationPoints: o.opts.ArticulationPoints,
	}
	if points > 0 {
		opts.DynamicsPoints, opts.ArticulationPoints = points, points
	}
	return o.generate(ctx, fv, category, opts)
}

// RandomFingerprint picks a random track and renders both families at the
// home page resolution.
func (o *Orchestrator) RandomFingerprint(ctx context.Context) (TrackPrint, error) {
	track, err := o.repo.RandomTrack(ctx)
	if err != nil {
		return TrackPrint{}, fmt.Errorf("service: failed to pick track: %w", err)
	}
	p, err := o.generate(ctx, track.Features, "", fingerprint.PrintOptions{
		DynamicsPoints:     o.opts.DynamicsPoints,
		ArticulationPoints: o.opts.HomeArticulationPoints,
	})
	if err != nil {
		return TrackPrint{}, err
	}
	return TrackPrint{TrackID: track.ID, Title: track.Title, Artist: track.Artist, Print: p}, nil
}

func (o *Orchestrator) generate(ctx context.Context, fv domain.FeatureVector, category string, opts fingerprint.PrintOptions) (fingerprint.Print, error) {
	if category == "" {
		p, err := fingerprint.GeneratePrint(ctx, fv, opts)
		if err != nil {
			return fingerprint.Print{}, fmt.Errorf("service: %w", err)
		}
		metrics.RecordFingerprint(string(fingerprint.Dynamics))
		metrics.RecordFingerprint(string(fingerprint.Articulation))
		return p, nil
	}

	c, err := fingerprint.ParseCategory(category)
	if err != nil {
		return fingerprint.Print{}, fmt.Errorf("service: %w", err)
	}
	points := opts.DynamicsPoints
	if c == fingerprint.Articulation {
		points = opts.ArticulationPoints
	}
	pts, err := fingerprint.Generate(fv, points, c)
	if err != nil {
		return fingerprint.Print{}, fmt.Errorf("service: %w", err)
	}
	metrics.RecordFingerprint(string(c))

	var p fingerprint.Print
	if c == fingerprint.Articulation {
		p.Articulation = pts
	} else {
		p.Dynamics = pts
	}
	return p, nil
}

// ListAlbums returns the albums that take part in catalogue operations.
func (o *Orchestrator) ListAlbums(ctx context.Context) ([]domain.Album, error) {
	albums, err := o.repo.ListAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list albums: %w", err)
	}
	return albums, nil
}

// AlbumTrack is one line of an album track list.
type AlbumTrack struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	Explicit  string `json:"explicit"`
	Favorites int    `json:"favorites"`
	Listens   int    `json:"listens"`
}

// RecommendedAlbum is a ranked similar album.
type RecommendedAlbum struct {
	ID       int64   `json:"id" yaml:"id"`
	Title    string  `json:"title" yaml:"title"`
	Artist   string  `json:"artist" yaml:"artist"`
	Distance float64 `json:"distance" yaml:"distance"`
}

// GenreRecommendations lists similar albums within one genre.
type GenreRecommendations struct {
	Genre  domain.Genre       `json:"genre" yaml:"genre"`
	Albums []RecommendedAlbum `json:"albums" yaml:"albums"`
}

// AlbumView is everything shown for one album.
type AlbumView struct {
	Album           domain.Album           `json:"album"`
	Features        domain.FeatureVector   `json:"features"`
	Genres          []domain.Genre         `json:"genres"`
	Comparison      aggregate.Table        `json:"comparison"`
	Recommendations []GenreRecommendations `json:"recommendations"`
	SessionID       string                 `json:"session_id"`
	Tracks          []AlbumTrack           `json:"tracks"`
}

// Album compares an album with the other albums of its genres and
// recommends up to k similar albums per genre, never repeating an album
// across genres. k <= 0 uses the configured default.
func (o *Orchestrator) Album(ctx context.Context, albumID int64, k int) (AlbumView, error) {
	album, rows, err := o.repo.GetAlbum(ctx, albumID)
	if err != nil {
		return AlbumView{}, fmt.Errorf("service: failed to load album: %w", err)
	}

	tracks := catalogue.Dedupe(rows)
	mean := domain.MeanFeatures(tracks.Features())
	genres := albumGenres(rows)

	profiles, err := o.repo.AlbumGenreProfiles(ctx, genreIDs(genres), 0)
	if err != nil {
		return AlbumView{}, fmt.Errorf("service: failed to load genre profiles: %w", err)
	}

	samples := make([]aggregate.Sample, len(profiles))
	for i, p := range profiles {
		samples[i] = aggregate.Sample{Genre: p.Genre, Features: p.Features}
	}
	comparison := aggregate.Compare(aggregate.Target{Label: aggregate.CurrentAlbum, Features: mean}, samples, genres)

	session := recommend.NewSession()
	recs, err := o.recommend(ctx, albumID, mean, genres, profiles, k, session)
	if err != nil {
		return AlbumView{}, err
	}

	list := make([]AlbumTrack, len(tracks))
	for i, t := range tracks {
		list[i] = AlbumTrack{
			ID:        t.TrackID,
			Title:     t.Title,
			Duration:  t.Duration,
			Explicit:  t.Explicit.String(),
			Favorites: t.Favorites,
			Listens:   t.Listens,
		}
	}

	album.Features = mean
	album.Genres = genres
	return AlbumView{
		Album:           album,
		Features:        mean,
		Genres:          genres,
		Comparison:      comparison,
		Recommendations: recs,
		SessionID:       session.ID.String(),
		Tracks:          list,
	}, nil
}

// Recommend returns only the per-genre recommendations of an album.
func (o *Orchestrator) Recommend(ctx context.Context, albumID int64, k int) ([]GenreRecommendations, error) {
	_, rows, err := o.repo.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load album: %w", err)
	}
	genres := albumGenres(rows)
	profiles, err := o.repo.AlbumGenreProfiles(ctx, genreIDs(genres), 0)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load genre profiles: %w", err)
	}
	mean := domain.MeanFeatures(catalogue.Dedupe(rows).Features())
	return o.recommend(ctx, albumID, mean, genres, profiles, k, recommend.NewSession())
}

func (o *Orchestrator) recommend(ctx context.Context, albumID int64, mean domain.FeatureVector, genres []domain.Genre, profiles []ports.AlbumProfile, k int, session *recommend.Session) ([]GenreRecommendations, error) {
	if k <= 0 {
		k = o.opts.K
	}
	start := time.Now()

	byID := make(map[int64]ports.AlbumProfile, len(profiles))
	partitions := make([]recommend.Partition, len(genres))
	for i, g := range genres {
		partitions[i].Genre = g
		for _, p := range profiles {
			if p.Genre.ID != g.ID {
				continue
			}
			byID[p.AlbumID] = p
			partitions[i].Candidates = append(partitions[i].Candidates, recommend.Candidate{ID: p.AlbumID, Features: p.Features})
		}
	}

	ranked, err := recommend.New(k).Recommend(ctx, recommend.Candidate{ID: albumID, Features: mean}, partitions, session)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	out := make([]GenreRecommendations, len(ranked))
	for i, r := range ranked {
		albums := make([]RecommendedAlbum, len(r.Matches))
		for j, m := range r.Matches {
			p := byID[m.ID]
			albums[j] = RecommendedAlbum{ID: m.ID, Title: p.Title, Artist: p.Artist, Distance: m.Distance}
		}
		out[i] = GenreRecommendations{Genre: r.Genre, Albums: albums}
		metrics.RecordRecommendation(len(albums), k)
	}

	logging.Ctx(ctx).Debug().
		Str("component", "services").
		Int64("album_id", albumID).
		Str("session_id", session.ID.String()).
		Int("genres", len(genres)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendations computed")
	return out, nil
}

func albumGenres(rows []domain.CatalogueRow) []domain.Genre {
	var out []domain.Genre
	seen := make(map[int64]struct{})
	for _, r := range rows {
		if _, ok := seen[r.GenreID]; ok {
			continue
		}
		seen[r.GenreID] = struct{}{}
		out = append(out, r.Genre())
	}
	return out
}

func genreIDs(genres []domain.Genre) []int64 {
	ids := make([]int64, len(genres))
	for i, g := range genres {
		ids[i] = g.ID
	}
	return ids
}
