package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mediatracker/mediatracker-go/internal/middleware"
	"github.com/mediatracker/mediatracker-go/internal/model"
	"github.com/mediatracker/mediatracker-go/internal/service"
)

const maxIDLength = 255

// MediaHandler handles HTTP requests for media record operations.
type MediaHandler struct {
	service      *service.MediaService
	exposeDetail bool
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(svc *service.MediaService, exposeDetail bool) *MediaHandler {
	return &MediaHandler{service: svc, exposeDetail: exposeDetail}
}

// HandleCreate handles POST /api/media requests.
func (h *MediaHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.CreateMediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	rec, err := h.service.Create(r.Context(), identity.ID, req)
	if err != nil {
		writeServiceError(w, r, err, h.exposeDetail)
		return
	}

	writeJSON(w, http.StatusCreated, model.MediaResponse{Message: "media item created", MediaItem: rec})
}

// HandleList handles GET /api/media requests.
func (h *MediaHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	q := r.URL.Query()
	filter := model.MediaFilter{
		Status:    model.Status(q.Get("status")),
		MediaType: q.Get("media_type"),
		Search:    q.Get("search"),
	}

	items, err := h.service.List(r.Context(), identity.ID, filter)
	if err != nil {
		writeServiceError(w, r, err, h.exposeDetail)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// HandleGet handles GET /api/media/{id} requests.
func (h *MediaHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := mediaID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.exposeDetail)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// HandleUpdate handles PUT /api/media/{id} requests.
func (h *MediaHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, ok := mediaID(w, r)
	if !ok {
		return
	}

	var patch model.MediaPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeDecodeError(w, err)
		return
	}

	rec, err := h.service.Update(r.Context(), id, identity.ID, patch)
	if err != nil {
		writeServiceError(w, r, err, h.exposeDetail)
		return
	}

	writeJSON(w, http.StatusOK, model.MediaResponse{Message: "media item updated", MediaItem: rec})
}

// HandleDelete handles DELETE /api/media/{id} requests.
func (h *MediaHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, ok := mediaID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id, identity.ID)
	if err != nil {
		writeServiceError(w, r, err, h.exposeDetail)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorResponse(service.ErrMediaNotFound.Message))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "media item deleted"})
}

func mediaID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > maxIDLength {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid media id"))
		return "", false
	}
	return id, true
}
