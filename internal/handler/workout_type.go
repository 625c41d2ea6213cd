package handler

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

// iconContentTypes lists the accepted icon formats.
var iconContentTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

func (h *Handler) CreateWorkoutType(w http.ResponseWriter, r *http.Request) {
	var in domain.WorkoutTypeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	wt, err := h.workoutTypes.CreateWorkoutType(r.Context(), currentUser(r).ID, in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, wt, h.logger)
}

func (h *Handler) ListWorkoutTypes(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	types, err := h.workoutTypes.ListWorkoutTypes(r.Context(), currentUser(r).ID, page)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, types, h.logger)
}

func (h *Handler) GetWorkoutType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	wt, err := h.workoutTypes.GetWorkoutType(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, wt, h.logger)
}

func (h *Handler) UpdateWorkoutType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	var in domain.WorkoutTypeUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	wt, err := h.workoutTypes.UpdateWorkoutType(r.Context(), currentUser(r).ID, id, in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, wt, h.logger)
}

func (h *Handler) DeleteWorkoutType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.workoutTypes.DeleteWorkoutType(r.Context(), currentUser(r).ID, id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadWorkoutTypeIcon stores the request body as the type's icon. The
// number of concurrent uploads is bounded by the upload limiter.
func (h *Handler) UploadWorkoutTypeIcon(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !iconContentTypes[contentType] {
		respondWithError(w, http.StatusUnsupportedMediaType, "icon must be a png, jpeg, gif, webp or svg image", h.logger)
		return
	}
	if r.ContentLength > h.maxIconBytes {
		respondWithError(w, http.StatusRequestEntityTooLarge, "icon is too large", h.logger)
		return
	}

	select {
	case h.uploadLimiter <- struct{}{}:
		defer func() { <-h.uploadLimiter }()
	case <-r.Context().Done():
		respondWithError(w, http.StatusServiceUnavailable, "upload slots are busy", h.logger)
		return
	}

	// read the whole body first so an oversized icon never reaches storage
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxIconBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "icon is too large", h.logger)
			return
		}
		respondWithError(w, http.StatusBadRequest, "failed to read icon", h.logger)
		return
	}
	if len(body) == 0 {
		writeError(w, r, domain.Invalid("icon body is empty"), h.logger)
		return
	}

	wt, err := h.workoutTypes.SetIcon(r.Context(), currentUser(r).ID, id, bytes.NewReader(body), contentType)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, wt, h.logger)
}

func (h *Handler) DeleteWorkoutTypeIcon(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	wt, err := h.workoutTypes.RemoveIcon(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, wt, h.logger)
}
