package catalogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
)

func row(trackID, genreID int64, genre string, fv domain.FeatureVector, explicit domain.Explicit) domain.CatalogueRow {
	return domain.CatalogueRow{
		TrackID:    trackID,
		GenreID:    genreID,
		GenreTitle: genre,
		Features:   fv,
		Explicit:   explicit,
		Title:      "Track",
		Artist:     "Artist",
	}
}

func fixture() []domain.CatalogueRow {
	calm := domain.FeatureVector{Valence: 0.2, Energy: 0.1, Danceability: 0.3, Acousticness: 0.9, Tempo: 80, DurationSeconds: 245}
	loud := domain.FeatureVector{Valence: 0.8, Energy: 0.9, Danceability: 0.7, Acousticness: 0.1, Tempo: 140, DurationSeconds: 185}
	spoken := domain.FeatureVector{Valence: 0.5, Energy: 0.4, Speechiness: 0.9, Tempo: 100, DurationSeconds: 3700}

	return []domain.CatalogueRow{
		row(1, 10, "Folk", calm, domain.ExplicitNo),
		row(1, 11, "Ambient", calm, domain.ExplicitNo),
		row(1, 12, "Classical", calm, domain.ExplicitNo),
		row(2, 20, "Rock", loud, domain.ExplicitYes),
		row(3, 30, "Spoken", spoken, domain.ExplicitUnknown),
	}
}

func TestFilter_ManyToMany(t *testing.T) {
	tracks, genreRows := Filter(fixture(), domain.DefaultFilterSpec(12, 275, 60))

	count := 0
	for _, r := range genreRows {
		if r.TrackID == 1 {
			count++
		}
	}
	assert.Equal(t, 3, count, "genre view keeps one row per genre")

	count = 0
	for _, r := range tracks {
		if r.TrackID == 1 {
			count++
		}
	}
	assert.Equal(t, 1, count, "track view collapses genres")

	// track 3 is over an hour long
	require.Len(t, tracks, 2)
	assert.Len(t, genreRows, 4)
}

func TestFilter_Predicates(t *testing.T) {
	tests := []struct {
		name      string
		spec      func() domain.FilterSpec
		wantIDs   []int64
		wantGenre int
	}{
		{
			name: "energy range",
			spec: func() domain.FilterSpec {
				return domain.DefaultFilterSpec(12, 275, 60).SetDescriptor(domain.Energy, domain.Range{Min: 0.5, Max: 1})
			},
			wantIDs:   []int64{2},
			wantGenre: 1,
		},
		{
			name: "explicit set",
			spec: func() domain.FilterSpec {
				s := domain.DefaultFilterSpec(12, 275, 120)
				s.Explicit = []domain.Explicit{domain.ExplicitUnknown, domain.ExplicitNo}
				return s
			},
			wantIDs:   []int64{1, 3},
			wantGenre: 4,
		},
		{
			name: "tempo range",
			spec: func() domain.FilterSpec {
				return domain.DefaultFilterSpec(90, 275, 120)
			},
			wantIDs:   []int64{2, 3},
			wantGenre: 2,
		},
		{
			name: "duration given in minutes",
			spec: func() domain.FilterSpec {
				s := domain.DefaultFilterSpec(12, 275, 60)
				s.DurationMinutes = domain.Range{Min: 4, Max: 5}
				return s
			},
			wantIDs:   []int64{1},
			wantGenre: 3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tracks, genreRows := Filter(fixture(), tc.spec())
			ids := make([]int64, 0, len(tracks))
			for _, r := range tracks {
				ids = append(ids, r.TrackID)
			}
			assert.Equal(t, tc.wantIDs, ids)
			assert.Len(t, genreRows, tc.wantGenre)
		})
	}
}

func TestFilter_EmptyResult(t *testing.T) {
	spec := domain.DefaultFilterSpec(12, 275, 60).SetDescriptor(domain.Liveness, domain.Range{Min: 0.99, Max: 1})
	tracks, genreRows := Filter(fixture(), spec)
	assert.Empty(t, tracks)
	assert.Empty(t, genreRows)
	assert.NotNil(t, tracks)
}

func TestRefilter_Idempotent(t *testing.T) {
	spec := domain.DefaultFilterSpec(12, 275, 60).SetDescriptor(domain.Valence, domain.Range{Min: 0.1, Max: 0.9})
	tracks, _ := Filter(fixture(), spec)
	again := Refilter(tracks, spec)
	assert.Equal(t, tracks, again)
}

func TestTrackView_Duration(t *testing.T) {
	tracks, genreRows := Filter(fixture(), domain.DefaultFilterSpec(12, 275, 60))
	r, ok := tracks.Find(2)
	require.True(t, ok)
	assert.Equal(t, "3:05", r.Duration)
	// numeric duration is untouched in the genre view
	assert.Equal(t, 185, genreRows[3].Features.DurationSeconds)
}

func TestGenresOf(t *testing.T) {
	_, genreRows := Filter(fixture(), domain.DefaultFilterSpec(12, 275, 60))
	genres := genreRows.GenresOf(1)
	require.Len(t, genres, 3)
	assert.Equal(t, "Folk", genres[0].Title)
	assert.Equal(t, "Ambient", genres[1].Title)
	assert.Equal(t, "Classical", genres[2].Title)
}

func TestFormatDuration(t *testing.T) {
	tests := map[int]string{
		0:    "0:00",
		9:    "0:09",
		60:   "1:00",
		185:  "3:05",
		3700: "61:40",
		-5:   "0:00",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDuration(in), "seconds=%d", in)
	}
}
