package rest

import (
	"net/http"

	"github.com/ewilliams-labs/acoustic-print/internal/core/catalogue"
)

type listTracksResponse struct {
	Count     int                    `json:"count"`
	Tracks    catalogue.TrackView    `json:"tracks"`
	GenreRows catalogue.GenreRowView `json:"genre_rows"`
}

// ListTracks handles GET /tracks
func (h *Handler) ListTracks(w http.ResponseWriter, r *http.Request) {
	spec, err := parseFilter(r.URL.Query(), h.svc.DefaultFilter())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	tracks, genreRows, err := h.svc.Songs(r.Context(), spec)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if tracks == nil {
		tracks = catalogue.TrackView{}
	}
	if genreRows == nil {
		genreRows = catalogue.GenreRowView{}
	}
	writeJSON(w, http.StatusOK, listTracksResponse{Count: len(tracks), Tracks: tracks, GenreRows: genreRows})
}

// TrackComparison handles GET /tracks/{id}/comparison
func (h *Handler) TrackComparison(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	spec, err := parseFilter(r.URL.Query(), h.svc.DefaultFilter())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	cmp, err := h.svc.SongComparison(r.Context(), id, spec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// TrackFingerprint handles GET /tracks/{id}/fingerprint
func (h *Handler) TrackFingerprint(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := parseFingerprintQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	tp, err := h.svc.Fingerprint(r.Context(), id, q.Category, q.Points)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tp)
}

// RandomFingerprint handles GET /tracks/random/fingerprint
func (h *Handler) RandomFingerprint(w http.ResponseWriter, r *http.Request) {
	tp, err := h.svc.RandomFingerprint(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tp)
}
