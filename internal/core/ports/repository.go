package ports

import (
	"context"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
)

// AlbumProfile is the mean feature vector of one album restricted to the
// tracks it has in one genre.
type AlbumProfile struct {
	AlbumID  int64
	Title    string
	Artist   string
	Genre    domain.Genre
	Features domain.FeatureVector
}

// CatalogueRepository reads the track, album and genre catalogue.
// Albums with no tracks or no release date are never returned.
type CatalogueRepository interface {
	ListCatalogueRows(ctx context.Context) ([]domain.CatalogueRow, error)
	GetTrack(ctx context.Context, id int64) (domain.Track, error)
	RandomTrack(ctx context.Context) (domain.Track, error)
	ListAlbums(ctx context.Context) ([]domain.Album, error)
	GetAlbum(ctx context.Context, id int64) (domain.Album, []domain.CatalogueRow, error)
	// AlbumGenreProfiles returns one profile per (album, genre) pair for the
	// given genres. A non-zero excludeAlbumID is left out.
	AlbumGenreProfiles(ctx context.Context, genreIDs []int64, excludeAlbumID int64) ([]AlbumProfile, error)
}

// FeatureStore persists tracks and the features imported for them.
type FeatureStore interface {
	SaveTrack(ctx context.Context, t domain.Track) error
	SaveAlbum(ctx context.Context, a domain.Album) error
	UpdateTrackFeatures(ctx context.Context, id int64, f domain.FeatureVector) error
	UpdateTrackEnergy(ctx context.Context, id int64, energy float64) error
	ListTracksMissingFeatures(ctx context.Context) ([]domain.Track, error)
}
