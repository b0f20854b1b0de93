package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Explicit is the three-valued explicit-content flag of a track.
type Explicit int8

const (
	ExplicitUnknown Explicit = -1
	ExplicitNo      Explicit = 0
	ExplicitYes     Explicit = 1
)

// AllExplicit lists every admissible flag value.
var AllExplicit = []Explicit{ExplicitNo, ExplicitUnknown, ExplicitYes}

func (e Explicit) String() string {
	switch e {
	case ExplicitUnknown:
		return "Ambiguous"
	case ExplicitNo:
		return "No"
	case ExplicitYes:
		return "Yes"
	}
	return strconv.Itoa(int(e))
}

// Valid reports whether e is one of the three encoded values.
func (e Explicit) Valid() bool {
	return e >= ExplicitUnknown && e <= ExplicitYes
}

// ParseExplicit accepts the integer encoding or the display label.
func ParseExplicit(s string) (Explicit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "-1", "ambiguous", "unknown":
		return ExplicitUnknown, nil
	case "0", "no":
		return ExplicitNo, nil
	case "1", "yes":
		return ExplicitYes, nil
	}
	return 0, fmt.Errorf("%w: explicit value %q", ErrInvalidFilter, s)
}

// Genre is a grouping key. Tracks and albums refer to genres, never own them.
type Genre struct {
	ID    int64  `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Track represents a musical track in the catalogue.
type Track struct {
	ID         int64         `json:"id"`
	Title      string        `json:"title"`
	Artist     string        `json:"artist"`
	AlbumID    int64         `json:"album_id,omitempty"` // zero when the track has no album
	AlbumTitle string        `json:"album,omitempty"`
	Favorites  int           `json:"favorites"`
	Listens    int           `json:"listens"`
	Explicit   Explicit      `json:"explicit"`
	Features   FeatureVector `json:"features"`
	Genres     []Genre       `json:"genres"`
	ExternalID string        `json:"external_id,omitempty"` // feature provider identifier, optional
	PreviewURL string        `json:"preview_url,omitempty"`
}

// Album groups tracks. ReleaseDate is nil when undocumented.
type Album struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Artist      string        `json:"artist"`
	ReleaseDate *time.Time    `json:"release_date,omitempty"`
	TrackCount  int           `json:"track_count"`
	Favorites   int           `json:"favorites"`
	Listens     int           `json:"listens"`
	Features    FeatureVector `json:"features"` // mean over constituent tracks
	Genres      []Genre       `json:"genres,omitempty"`
}

// Listable reports whether the album may take part in catalogue operations.
func (a Album) Listable() bool {
	return a.ReleaseDate != nil && a.TrackCount > 0
}

// CatalogueRow is one row of the track x genre join. A track in three genres
// arrives as three rows.
type CatalogueRow struct {
	TrackID     int64         `json:"track_id"`
	GenreID     int64         `json:"genre_id"`
	GenreTitle  string        `json:"genre"`
	Features    FeatureVector `json:"features"`
	Explicit    Explicit      `json:"explicit"`
	Favorites   int           `json:"favorites"`
	Listens     int           `json:"listens"`
	Title       string        `json:"title"`
	Artist      string        `json:"artist"`
	AlbumID     int64         `json:"album_id,omitempty"`
	AlbumTitle  string        `json:"album,omitempty"`
	ReleaseDate *time.Time    `json:"release_date,omitempty"`
}

// Genre returns the genre reference carried by the row.
func (r CatalogueRow) Genre() Genre {
	return Genre{ID: r.GenreID, Title: r.GenreTitle}
}
