package rest

import (
	"net/http"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
	"github.com/ewilliams-labs/acoustic-print/internal/core/services"
)

type listAlbumsResponse struct {
	Count  int            `json:"count"`
	Albums []domain.Album `json:"albums"`
}

type recommendationsResponse struct {
	AlbumID         int64                           `json:"album_id"`
	Recommendations []services.GenreRecommendations `json:"recommendations"`
}

// ListAlbums handles GET /albums
func (h *Handler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.svc.ListAlbums(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if albums == nil {
		albums = []domain.Album{}
	}
	writeJSON(w, http.StatusOK, listAlbumsResponse{Count: len(albums), Albums: albums})
}

// GetAlbum handles GET /albums/{id}
func (h *Handler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := parseAlbumQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.svc.Album(r.Context(), id, q.K)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AlbumRecommendations handles GET /albums/{id}/recommendations
func (h *Handler) AlbumRecommendations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := parseAlbumQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	recs, err := h.svc.Recommend(r.Context(), id, q.K)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{AlbumID: id, Recommendations: recs})
}
