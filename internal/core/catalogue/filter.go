// Package catalogue filters the track x genre join into a per-track view and
// a per-genre-row view.
package catalogue

import (
	"fmt"
	"time"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
)

// TrackRow is a catalogue row with the genre column dropped.
type TrackRow struct {
	TrackID     int64                `json:"track_id"`
	Title       string               `json:"title"`
	Artist      string               `json:"artist"`
	AlbumID     int64                `json:"album_id,omitempty"`
	AlbumTitle  string               `json:"album,omitempty"`
	ReleaseDate *time.Time           `json:"release_date,omitempty"`
	Favorites   int                  `json:"favorites"`
	Listens     int                  `json:"listens"`
	Explicit    domain.Explicit      `json:"explicit"`
	Features    domain.FeatureVector `json:"features"`
	Duration    string               `json:"duration"`
}

// TrackView holds one row per track id, in first-seen order.
type TrackView []TrackRow

// GenreRowView holds every retained join row. A track appears once per genre.
type GenreRowView []domain.CatalogueRow

// Filter keeps the rows that satisfy every predicate of spec and derives both
// views from the same retained set. An empty result is not an error.
func Filter(rows []domain.CatalogueRow, spec domain.FilterSpec) (TrackView, GenreRowView) {
	genreRows := make(GenreRowView, 0, len(rows))
	for _, r := range rows {
		if spec.Matches(r.Features, r.Explicit) {
			genreRows = append(genreRows, r)
		}
	}
	return Dedupe(genreRows), genreRows
}

// Refilter applies spec to an already filtered TrackView. Filtering a view
// with the filter that produced it returns an identical view.
func Refilter(view TrackView, spec domain.FilterSpec) TrackView {
	out := make(TrackView, 0, len(view))
	for _, r := range view {
		if spec.Matches(r.Features, r.Explicit) {
			out = append(out, r)
		}
	}
	return out
}

// Dedupe collapses rows to one per track id, keeping the first occurrence.
func Dedupe(rows []domain.CatalogueRow) TrackView {
	tracks := make(TrackView, 0)
	seen := make(map[int64]struct{})
	for _, r := range rows {
		if _, ok := seen[r.TrackID]; ok {
			continue
		}
		seen[r.TrackID] = struct{}{}
		tracks = append(tracks, trackRow(r))
	}
	return tracks
}

func trackRow(r domain.CatalogueRow) TrackRow {
	return TrackRow{
		TrackID:     r.TrackID,
		Title:       r.Title,
		Artist:      r.Artist,
		AlbumID:     r.AlbumID,
		AlbumTitle:  r.AlbumTitle,
		ReleaseDate: r.ReleaseDate,
		Favorites:   r.Favorites,
		Listens:     r.Listens,
		Explicit:    r.Explicit,
		Features:    r.Features,
		Duration:    FormatDuration(r.Features.DurationSeconds),
	}
}

// Find returns the row for trackID.
func (v TrackView) Find(trackID int64) (TrackRow, bool) {
	for _, r := range v {
		if r.TrackID == trackID {
			return r, true
		}
	}
	return TrackRow{}, false
}

// Features returns the feature vectors of the view in order.
func (v TrackView) Features() []domain.FeatureVector {
	out := make([]domain.FeatureVector, len(v))
	for i, r := range v {
		out[i] = r.Features
	}
	return out
}

// GenresOf returns the genres of trackID in first-appearance order.
func (v GenreRowView) GenresOf(trackID int64) []domain.Genre {
	var out []domain.Genre
	seen := make(map[int64]struct{})
	for _, r := range v {
		if r.TrackID != trackID {
			continue
		}
		if _, ok := seen[r.GenreID]; ok {
			continue
		}
		seen[r.GenreID] = struct{}{}
		out = append(out, r.Genre())
	}
	return out
}

// FormatDuration renders seconds as minutes:seconds with two-digit seconds.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
