package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/acoustic-print/internal/adapters/sqlite"
	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
	"github.com/ewilliams-labs/acoustic-print/internal/core/services"
	"github.com/ewilliams-labs/acoustic-print/internal/worker"
)

// We drive a real Orchestrator over an in-memory SQLite catalogue rather
// than mocking the service struct.

var (
	rock = domain.Genre{ID: 1, Title: "Rock"}
	jazz = domain.Genre{ID: 2, Title: "Jazz"}
)

func features(valence, energy float64) domain.FeatureVector {
	return domain.FeatureVector{
		Valence: valence, Energy: energy, Danceability: 0.5, Acousticness: 0.3,
		Instrumentalness: 0.1, Speechiness: 0.05, Liveness: 0.2, Tempo: 118, DurationSeconds: 210,
	}
}

func newTestStore(t *testing.T) *sqlite.Adapter {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.NewAdapter(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	released := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, al := range []domain.Album{
		{ID: 1, Title: "Target", Artist: "A", ReleaseDate: &released, TrackCount: 2},
		{ID: 2, Title: "Near", Artist: "B", ReleaseDate: &released, TrackCount: 1},
		{ID: 3, Title: "Far", Artist: "C", ReleaseDate: &released, TrackCount: 1},
	} {
		require.NoError(t, db.SaveAlbum(ctx, al))
	}
	for _, tr := range []domain.Track{
		{ID: 10, Title: "Ten", Artist: "A", AlbumID: 1, Listens: 40, Explicit: domain.ExplicitNo, Features: features(0.2, 0.9), Genres: []domain.Genre{rock, jazz}},
		{ID: 11, Title: "Eleven", Artist: "A", AlbumID: 1, Listens: 30, Explicit: domain.ExplicitYes, Features: features(0.3, 0.8), Genres: []domain.Genre{rock}},
		{ID: 20, Title: "Twenty", Artist: "B", AlbumID: 2, Listens: 20, Explicit: domain.ExplicitNo, Features: features(0.25, 0.85), Genres: []domain.Genre{rock}},
		{ID: 30, Title: "Thirty", Artist: "C", AlbumID: 3, Listens: 10, Explicit: domain.ExplicitUnknown, Features: features(0.9, 0.1), Genres: []domain.Genre{jazz}},
	} {
		require.NoError(t, db.SaveTrack(ctx, tr))
	}
	return db
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	svc := services.NewOrchestrator(newTestStore(t), services.DefaultOptions())
	return NewHandler(svc, nil)
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandler_Status(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
		wantErr  string
	}{
		{name: "health", method: http.MethodGet, target: "/health", wantCode: http.StatusOK},
		{name: "features", method: http.MethodGet, target: "/features", wantCode: http.StatusOK},
		{name: "tracks", method: http.MethodGet, target: "/tracks", wantCode: http.StatusOK},
		{name: "descriptor above one", method: http.MethodGet, target: "/tracks?energy_min=2", wantCode: http.StatusBadRequest, wantErr: errCodeInvalidArgument},
		{name: "inverted range", method: http.MethodGet, target: "/tracks?energy_min=0.8&energy_max=0.2", wantCode: http.StatusBadRequest, wantErr: errCodeInvalidArgument},
		{name: "non numeric bound", method: http.MethodGet, target: "/tracks?tempo_max=fast", wantCode: http.StatusBadRequest, wantErr: errCodeInvalidArgument},
		{name: "unknown explicit value", method: http.MethodGet, target: "/tracks?explicit=maybe", wantCode: http.StatusBadRequest, wantErr: errCodeInvalidArgument},
		{name: "fingerprint", method: http.MethodGet, target: "/tracks/10/fingerprint?points=10", wantCode: http.StatusOK},
		{name: "fingerprint unknown category", method: http.MethodGet, target: "/tracks/10/fingerprint?category=bogus", wantCode: http.StatusBadRequest, wantErr: errCodeInvalidArgument},
		{name: "fingerprint negative points", method: http.MethodGet, target: "/tracks/10/fingerprint?points=-3", wantCode: http.StatusBadRequest, wantErr: errCodeInvalidArgument},
		{name: "fingerprint missing track", method: http.MethodGet, target: "/tracks/999/fingerprint", wantCode: http.StatusNotFound, wantErr: errCodeNotFound},
		{name: "fingerprint bad id", method: http.MethodGet, target: "/tracks/abc/fingerprint", wantCode: http.StatusBadRequest, wantErr: errCodeInvalidArgument},
		{name: "comparison", method: http.MethodGet, target: "/tracks/10/comparison", wantCode: http.StatusOK},
		{name: "comparison filtered out", method: http.MethodGet, target: "/tracks/10/comparison?energy_max=0.5", wantCode: http.StatusNotFound, wantErr: errCodeNotFound},
		{name: "albums", method: http.MethodGet, target: "/albums", wantCode: http.StatusOK},
		{name: "album", method: http.MethodGet, target: "/albums/1", wantCode: http.StatusOK},
		{name: "album k too large", method: http.MethodGet, target: "/albums/1?k=500", wantCode: http.StatusBadRequest, wantErr: errCodeInvalidArgument},
		{name: "missing album", method: http.MethodGet, target: "/albums/99", wantCode: http.StatusNotFound, wantErr: errCodeNotFound},
		{name: "recommendations", method: http.MethodGet, target: "/albums/1/recommendations?k=1", wantCode: http.StatusOK},
		{name: "import without pool", method: http.MethodPost, target: "/import", wantCode: http.StatusNotImplemented, wantErr: errCodeNotImplemented},
		{name: "unknown route", method: http.MethodGet, target: "/genres", wantCode: http.StatusNotFound},
	}

	h := newTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.target)
			require.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantErr != "" {
				var body errorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, tt.wantErr, body.Code)
				assert.NotEmpty(t, body.Error)
			}
		})
	}
}

func TestHandler_ListTracks(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCount int
		wantRows  int
	}{
		{name: "everything", query: "", wantCount: 4, wantRows: 5},
		{name: "energetic", query: "?energy_min=0.5", wantCount: 3, wantRows: 4},
		{name: "explicit yes", query: "?explicit=yes", wantCount: 1, wantRows: 1},
		{name: "explicit repeated", query: "?explicit=no&explicit=ambiguous", wantCount: 3, wantRows: 4},
		{name: "explicit comma separated", query: "?explicit=1,-1", wantCount: 2, wantRows: 2},
		{name: "nothing matches", query: "?valence_min=0.95", wantCount: 0, wantRows: 0},
	}

	h := newTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, "/tracks"+tt.query)
			require.Equal(t, http.StatusOK, rr.Code)

			var body struct {
				Count     int               `json:"count"`
				Tracks    []json.RawMessage `json:"tracks"`
				GenreRows []json.RawMessage `json:"genre_rows"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCount, body.Count)
			assert.Len(t, body.Tracks, tt.wantCount)
			assert.Len(t, body.GenreRows, tt.wantRows)
		})
	}
}

func TestHandler_TrackFingerprint(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/tracks/10/fingerprint?points=10&category=Articulation")
	require.Equal(t, http.StatusOK, rr.Code)

	var body services.TrackPrint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, int64(10), body.TrackID)
	assert.Equal(t, "Ten", body.Title)
	assert.Len(t, body.Print.Articulation, 30)
	assert.Empty(t, body.Print.Dynamics)

	rr = do(t, h, http.MethodGet, "/tracks/10/fingerprint?points=4")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body.Print.Dynamics, 12)
	assert.Len(t, body.Print.Articulation, 12)
}

func TestHandler_AlbumRecommendations(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/albums/1/recommendations?k=1")
	require.Equal(t, http.StatusOK, rr.Code)

	var body recommendationsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Recommendations, 2)
	assert.Equal(t, rock, body.Recommendations[0].Genre)
	require.Len(t, body.Recommendations[0].Albums, 1)
	assert.Equal(t, int64(2), body.Recommendations[0].Albums[0].ID)
	assert.Equal(t, jazz, body.Recommendations[1].Genre)
	require.Len(t, body.Recommendations[1].Albums, 1)
	assert.Equal(t, int64(3), body.Recommendations[1].Albums[0].ID)
}

func TestHandler_Album(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/albums/1")
	require.Equal(t, http.StatusOK, rr.Code)

	var body services.AlbumView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Target", body.Album.Title)
	assert.Equal(t, []domain.Genre{rock, jazz}, body.Genres)
	require.Len(t, body.Tracks, 2)
	assert.Equal(t, "3:30", body.Tracks[0].Duration)
	assert.Equal(t, "No", body.Tracks[0].Explicit)
	assert.Equal(t, "Yes", body.Tracks[1].Explicit)
	assert.NotEmpty(t, body.SessionID)
	assert.NotEmpty(t, body.Comparison)
	assert.InDelta(t, 0.25, body.Features.Valence, 1e-9)
}

func TestHandler_RequestID(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "req-123", rr.Header().Get(requestIDHeader))

	rr = do(t, h, http.MethodGet, "/health")
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
}

func TestHandler_Metrics(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodGet, "/albums")

	rr := do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `acoustic_http_requests_total{route="/albums",status="200"}`), "route pattern label")
}

func TestHandler_Import(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.SaveTrack(ctx, domain.Track{ID: 40, Title: "Unanalysed", PreviewURL: "https://cdn.test/40.mp3"}))

	pool := worker.NewPool(nil, store, 1, 8)
	h := NewHandler(services.NewOrchestrator(store, services.DefaultOptions()), pool)

	rr := do(t, h, http.MethodPost, "/import")
	require.Equal(t, http.StatusAccepted, rr.Code)

	var body importResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, importResponse{Queued: 1, Dropped: 0}, body)
}
