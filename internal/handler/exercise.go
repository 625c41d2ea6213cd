package handler

import (
	"net/http"
	"strings"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

func (h *Handler) CreateExercise(w http.ResponseWriter, r *http.Request) {
	var in domain.ExerciseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	e, err := h.exercises.CreateExercise(r.Context(), currentUser(r).ID, in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, e, h.logger)
}

// ListExercises accepts muscle_groups either repeated or comma separated.
func (h *Handler) ListExercises(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var groups []string
	for _, v := range r.URL.Query()["muscle_groups"] {
		groups = append(groups, strings.Split(v, ",")...)
	}

	list, err := h.exercises.ListExercises(r.Context(), currentUser(r).ID, groups, page)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, list, h.logger)
}

func (h *Handler) GetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	e, err := h.exercises.GetExercise(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, e, h.logger)
}

func (h *Handler) UpdateExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	var in domain.ExerciseUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	e, err := h.exercises.UpdateExercise(r.Context(), currentUser(r).ID, id, in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, e, h.logger)
}

func (h *Handler) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.exercises.DeleteExercise(r.Context(), currentUser(r).ID, id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
