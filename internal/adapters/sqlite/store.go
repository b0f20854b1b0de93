package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
)

// hasFeatures treats a zero tempo as "not analysed yet".
func hasFeatures(f domain.FeatureVector) bool {
	return f.Tempo > 0
}

func nullable(f domain.FeatureVector, v float64) any {
	if !hasFeatures(f) {
		return nil
	}
	return v
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func upsertArtist(ctx context.Context, tx *sql.Tx, name string) (any, error) {
	if name == "" {
		return nil, nil
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO artists (name) VALUES (?) ON CONFLICT(name) DO NOTHING", name); err != nil {
		return nil, fmt.Errorf("failed to save artist %q: %w", name, err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM artists WHERE name = ?", name).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to load artist %q: %w", name, err)
	}
	return id, nil
}

// SaveAlbum upserts album metadata. Features and genres are derived from
// tracks and are not stored.
func (a *Adapter) SaveAlbum(ctx context.Context, al domain.Album) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safety net: auto-rollback if we error before commit

	artistID, err := upsertArtist(ctx, tx, al.Artist)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO albums (id, title, artist_id, release_date, num_tracks, favorites, listens)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			artist_id=excluded.artist_id,
			release_date=excluded.release_date,
			num_tracks=excluded.num_tracks,
			favorites=excluded.favorites,
			listens=excluded.listens;
	`, al.ID, al.Title, artistID, formatReleaseDate(al.ReleaseDate), al.TrackCount, al.Favorites, al.Listens); err != nil {
		return fmt.Errorf("failed to save album %d: %w", al.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// SaveTrack upserts a track, its artist and its genre links. A track with
// zero tempo is stored without features.
func (a *Adapter) SaveTrack(ctx context.Context, t domain.Track) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	artistID, err := upsertArtist(ctx, tx, t.Artist)
	if err != nil {
		return err
	}

	var albumID any
	if t.AlbumID != 0 {
		albumID = t.AlbumID
	}

	f := t.Features
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tracks (
			id, title, artist_id, album_id, duration, favorites, listens, explicit,
			valence, energy, danceability, acousticness, instrumentalness, speechiness, liveness, tempo,
			external_id, preview_url
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			artist_id=excluded.artist_id,
			album_id=excluded.album_id,
			duration=excluded.duration,
			favorites=excluded.favorites,
			listens=excluded.listens,
			explicit=excluded.explicit,
			valence=excluded.valence,
			energy=excluded.energy,
			danceability=excluded.danceability,
			acousticness=excluded.acousticness,
			instrumentalness=excluded.instrumentalness,
			speechiness=excluded.speechiness,
			liveness=excluded.liveness,
			tempo=excluded.tempo,
			external_id=excluded.external_id,
			preview_url=excluded.preview_url;
	`,
		t.ID,
		t.Title,
		artistID,
		albumID,
		f.DurationSeconds,
		t.Favorites,
		t.Listens,
		int(t.Explicit),
		nullable(f, f.Valence),
		nullable(f, f.Energy),
		nullable(f, f.Danceability),
		nullable(f, f.Acousticness),
		nullable(f, f.Instrumentalness),
		nullable(f, f.Speechiness),
		nullable(f, f.Liveness),
		nullable(f, f.Tempo),
		nullString(t.ExternalID),
		nullString(t.PreviewURL),
	); err != nil {
		return fmt.Errorf("failed to save track %d: %w", t.ID, err)
	}

	// Reset links, then re-link in the given order
	if _, err := tx.ExecContext(ctx, "DELETE FROM track_genres WHERE track_id = ?", t.ID); err != nil {
		return fmt.Errorf("failed to clear genres of track %d: %w", t.ID, err)
	}

	stmtGenre, err := tx.PrepareContext(ctx, `
		INSERT INTO genres (id, title) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET title=excluded.title
	`)
	if err != nil {
		return err
	}
	defer stmtGenre.Close()

	stmtLink, err := tx.PrepareContext(ctx, `
		INSERT INTO track_genres (track_id, genre_id) VALUES (?, ?)
		ON CONFLICT(track_id, genre_id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmtLink.Close()

	for _, g := range t.Genres {
		if _, err := stmtGenre.ExecContext(ctx, g.ID, g.Title); err != nil {
			return fmt.Errorf("failed to save genre %d: %w", g.ID, err)
		}
		if _, err := stmtLink.ExecContext(ctx, t.ID, g.ID); err != nil {
			return fmt.Errorf("failed to link genre %d to track %d: %w", g.ID, t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// UpdateTrackFeatures stores a full analysis. A non-zero duration replaces
// the stored one.
func (a *Adapter) UpdateTrackFeatures(ctx context.Context, id int64, f domain.FeatureVector) error {
	query := `
		UPDATE tracks
		SET
			valence = ?,
			energy = ?,
			danceability = ?,
			acousticness = ?,
			instrumentalness = ?,
			speechiness = ?,
			liveness = ?,
			tempo = ?,
			duration = CASE WHEN ? > 0 THEN ? ELSE duration END
		WHERE id = ?
	`
	res, err := a.db.ExecContext(
		ctx,
		query,
		f.Valence,
		f.Energy,
		f.Danceability,
		f.Acousticness,
		f.Instrumentalness,
		f.Speechiness,
		f.Liveness,
		f.Tempo,
		f.DurationSeconds,
		f.DurationSeconds,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update track features: %w", err)
	}
	return requireRow(res)
}

// UpdateTrackEnergy stores an energy estimate without marking the track as
// analysed.
func (a *Adapter) UpdateTrackEnergy(ctx context.Context, id int64, energy float64) error {
	res, err := a.db.ExecContext(ctx, "UPDATE tracks SET energy = ? WHERE id = ?", energy, id)
	if err != nil {
		return fmt.Errorf("failed to update track energy: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListTracksMissingFeatures returns unanalysed tracks that can still be
// imported. Tracks with an external id stay listed until the provider has
// analysed them; preview-only tracks drop out once they carry an energy
// estimate.
func (a *Adapter) ListTracksMissingFeatures(ctx context.Context) ([]domain.Track, error) {
	rows, err := a.db.QueryContext(ctx, trackSelect+`
		WHERE t.tempo IS NULL
			AND (t.external_id IS NOT NULL OR (t.energy IS NULL AND t.preview_url IS NOT NULL))
		ORDER BY t.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks missing features: %w", err)
	}
	defer rows.Close()

	var out []domain.Track
	for rows.Next() {
		t, err := scanTrack(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tracks: %w", err)
	}
	return out, nil
}
