package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
	"github.com/ewilliams-labs/acoustic-print/internal/core/ports"
)

// catalogueSelect is the track x genre join. Tracks without features are
// left out; genre order within a track follows insertion order.
const catalogueSelect = `
	SELECT t.id, tg.genre_id, g.title,
		IFNULL(t.valence, 0), IFNULL(t.energy, 0), IFNULL(t.danceability, 0), IFNULL(t.acousticness, 0),
		IFNULL(t.instrumentalness, 0), IFNULL(t.speechiness, 0), IFNULL(t.liveness, 0), t.tempo, t.duration,
		t.explicit, t.favorites, t.listens, t.title, IFNULL(ar.name, ''),
		IFNULL(t.album_id, 0), IFNULL(ab.title, ''), ab.release_date
	FROM tracks t
	JOIN track_genres tg ON tg.track_id = t.id
	JOIN genres g ON g.id = tg.genre_id
	LEFT JOIN artists ar ON ar.id = t.artist_id
	LEFT JOIN albums ab ON ab.id = t.album_id
	WHERE t.tempo IS NOT NULL
`

// listable restricts albums to those with tracks and a release date.
const listable = "ab.num_tracks <> 0 AND ab.release_date IS NOT NULL"

// ListCatalogueRows returns the whole join, most listened tracks first.
func (a *Adapter) ListCatalogueRows(ctx context.Context) ([]domain.CatalogueRow, error) {
	rows, err := a.db.QueryContext(ctx, catalogueSelect+" ORDER BY t.listens DESC, t.id ASC, tg.rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query catalogue: %w", err)
	}
	defer rows.Close()
	return scanCatalogueRows(rows)
}

func scanCatalogueRows(rows *sql.Rows) ([]domain.CatalogueRow, error) {
	var out []domain.CatalogueRow
	for rows.Next() {
		var r domain.CatalogueRow
		var explicit int
		var release sql.NullString
		if err := rows.Scan(
			&r.TrackID,
			&r.GenreID,
			&r.GenreTitle,
			&r.Features.Valence,
			&r.Features.Energy,
			&r.Features.Danceability,
			&r.Features.Acousticness,
			&r.Features.Instrumentalness,
			&r.Features.Speechiness,
			&r.Features.Liveness,
			&r.Features.Tempo,
			&r.Features.DurationSeconds,
			&explicit,
			&r.Favorites,
			&r.Listens,
			&r.Title,
			&r.Artist,
			&r.AlbumID,
			&r.AlbumTitle,
			&release,
		); err != nil {
			return nil, fmt.Errorf("failed to scan catalogue row: %w", err)
		}
		r.Explicit = domain.Explicit(explicit)
		r.ReleaseDate = parseReleaseDate(release)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalogue rows: %w", err)
	}
	return out, nil
}

const trackSelect = `
	SELECT t.id, t.title, IFNULL(ar.name, ''), IFNULL(t.album_id, 0), IFNULL(ab.title, ''),
		t.favorites, t.listens, t.explicit,
		IFNULL(t.valence, 0), IFNULL(t.energy, 0), IFNULL(t.danceability, 0), IFNULL(t.acousticness, 0),
		IFNULL(t.instrumentalness, 0), IFNULL(t.speechiness, 0), IFNULL(t.liveness, 0), IFNULL(t.tempo, 0),
		t.duration, IFNULL(t.external_id, ''), IFNULL(t.preview_url, '')
	FROM tracks t
	LEFT JOIN artists ar ON ar.id = t.artist_id
	LEFT JOIN albums ab ON ab.id = t.album_id
`

func scanTrack(scan func(dest ...any) error) (domain.Track, error) {
	var t domain.Track
	var explicit int
	err := scan(
		&t.ID,
		&t.Title,
		&t.Artist,
		&t.AlbumID,
		&t.AlbumTitle,
		&t.Favorites,
		&t.Listens,
		&explicit,
		&t.Features.Valence,
		&t.Features.Energy,
		&t.Features.Danceability,
		&t.Features.Acousticness,
		&t.Features.Instrumentalness,
		&t.Features.Speechiness,
		&t.Features.Liveness,
		&t.Features.Tempo,
		&t.Features.DurationSeconds,
		&t.ExternalID,
		&t.PreviewURL,
	)
	t.Explicit = domain.Explicit(explicit)
	return t, err
}

// GetTrack returns a track with features and genres.
func (a *Adapter) GetTrack(ctx context.Context, id int64) (domain.Track, error) {
	row := a.db.QueryRowContext(ctx, trackSelect+" WHERE t.id = ? AND t.tempo IS NOT NULL", id)
	t, err := scanTrack(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Track{}, domain.ErrNotFound
		}
		return domain.Track{}, fmt.Errorf("failed to load track: %w", err)
	}
	if t.Genres, err = a.trackGenres(ctx, t.ID); err != nil {
		return domain.Track{}, err
	}
	return t, nil
}

// RandomTrack returns any track that has features.
func (a *Adapter) RandomTrack(ctx context.Context) (domain.Track, error) {
	var id int64
	err := a.db.QueryRowContext(ctx, "SELECT id FROM tracks WHERE tempo IS NOT NULL ORDER BY RANDOM() LIMIT 1").Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Track{}, domain.ErrNotFound
		}
		return domain.Track{}, fmt.Errorf("failed to pick random track: %w", err)
	}
	return a.GetTrack(ctx, id)
}

func (a *Adapter) trackGenres(ctx context.Context, trackID int64) ([]domain.Genre, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT g.id, g.title
		FROM track_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.track_id = ?
		ORDER BY tg.rowid ASC
	`, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to load track genres: %w", err)
	}
	defer rows.Close()

	var out []domain.Genre
	for rows.Next() {
		var g domain.Genre
		if err := rows.Scan(&g.ID, &g.Title); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate genres: %w", err)
	}
	return out, nil
}

const albumSelect = `
	SELECT ab.id, ab.title, IFNULL(ar.name, ''), ab.release_date, ab.num_tracks, ab.favorites, ab.listens
	FROM albums ab
	LEFT JOIN artists ar ON ar.id = ab.artist_id
`

func scanAlbum(scan func(dest ...any) error) (domain.Album, error) {
	var al domain.Album
	var release sql.NullString
	if err := scan(&al.ID, &al.Title, &al.Artist, &release, &al.TrackCount, &al.Favorites, &al.Listens); err != nil {
		return domain.Album{}, err
	}
	al.ReleaseDate = parseReleaseDate(release)
	return al, nil
}

// ListAlbums returns albums that have tracks and a release date.
func (a *Adapter) ListAlbums(ctx context.Context) ([]domain.Album, error) {
	rows, err := a.db.QueryContext(ctx, albumSelect+" WHERE "+listable+" ORDER BY ab.listens DESC, ab.id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var out []domain.Album
	for rows.Next() {
		al, err := scanAlbum(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		out = append(out, al)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate albums: %w", err)
	}
	return out, nil
}

// GetAlbum returns a listable album and the join rows of its tracks.
func (a *Adapter) GetAlbum(ctx context.Context, id int64) (domain.Album, []domain.CatalogueRow, error) {
	row := a.db.QueryRowContext(ctx, albumSelect+" WHERE ab.id = ? AND "+listable, id)
	al, err := scanAlbum(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Album{}, nil, domain.ErrNotFound
		}
		return domain.Album{}, nil, fmt.Errorf("failed to load album: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, catalogueSelect+" AND t.album_id = ? ORDER BY t.id ASC, tg.rowid ASC", id)
	if err != nil {
		return domain.Album{}, nil, fmt.Errorf("failed to query album tracks: %w", err)
	}
	defer rows.Close()

	tracks, err := scanCatalogueRows(rows)
	if err != nil {
		return domain.Album{}, nil, err
	}
	if len(tracks) == 0 {
		a.log.Warn().Int64("album_id", id).Msg("album has no analysed tracks")
		return domain.Album{}, nil, domain.ErrNotFound
	}
	return al, tracks, nil
}

// AlbumGenreProfiles averages each listable album's tracks per genre.
func (a *Adapter) AlbumGenreProfiles(ctx context.Context, genreIDs []int64, excludeAlbumID int64) ([]ports.AlbumProfile, error) {
	if len(genreIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(genreIDs)), ",")
	args := make([]any, 0, len(genreIDs)+1)
	for _, id := range genreIDs {
		args = append(args, id)
	}
	args = append(args, excludeAlbumID)

	query := `
		SELECT ab.id, ab.title, IFNULL(ar.name, ''), g.id, g.title,
			AVG(t.valence), AVG(t.energy), AVG(t.danceability), AVG(t.acousticness),
			AVG(t.instrumentalness), AVG(t.speechiness), AVG(t.liveness), AVG(t.tempo),
			CAST(AVG(t.duration) AS INTEGER)
		FROM albums ab
		JOIN tracks t ON t.album_id = ab.id
		JOIN track_genres tg ON tg.track_id = t.id
		JOIN genres g ON g.id = tg.genre_id
		LEFT JOIN artists ar ON ar.id = ab.artist_id
		WHERE ` + listable + ` AND t.tempo IS NOT NULL
			AND g.id IN (` + placeholders + `) AND ab.id <> ?
		GROUP BY ab.id, g.id
		ORDER BY g.id ASC, ab.id ASC
	`

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query genre profiles: %w", err)
	}
	defer rows.Close()

	var out []ports.AlbumProfile
	for rows.Next() {
		var p ports.AlbumProfile
		if err := rows.Scan(
			&p.AlbumID,
			&p.Title,
			&p.Artist,
			&p.Genre.ID,
			&p.Genre.Title,
			&p.Features.Valence,
			&p.Features.Energy,
			&p.Features.Danceability,
			&p.Features.Acousticness,
			&p.Features.Instrumentalness,
			&p.Features.Speechiness,
			&p.Features.Liveness,
			&p.Features.Tempo,
			&p.Features.DurationSeconds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan genre profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate genre profiles: %w", err)
	}
	return out, nil
}
