package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

type exportResponse struct {
	JobID     uuid.UUID `json:"job_id"`
	ObjectKey string    `json:"object_key"`
}

func (h *Handler) CreateWorkout(w http.ResponseWriter, r *http.Request) {
	var in domain.WorkoutInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	workout, err := h.workouts.CreateWorkout(r.Context(), currentUser(r).ID, in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, workout, h.logger)
}

func (h *Handler) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	list, err := h.workouts.ListWorkouts(r.Context(), currentUser(r).ID, page)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, list, h.logger)
}

func (h *Handler) GetWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	workout, err := h.workouts.GetWorkout(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, workout, h.logger)
}

// ReplaceWorkout is PUT: every scalar is required.
func (h *Handler) ReplaceWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	var in domain.WorkoutReplace
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	workout, err := h.workouts.ReplaceWorkout(r.Context(), currentUser(r).ID, id, in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, workout, h.logger)
}

// PatchWorkout reconciles the workout against the desired nested state.
func (h *Handler) PatchWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	var patch domain.WorkoutPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	workout, err := h.workouts.ReconcileWorkout(r.Context(), currentUser(r).ID, id, patch)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, workout, h.logger)
}

func (h *Handler) DeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.workouts.DeleteWorkout(r.Context(), currentUser(r).ID, id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddWorkoutExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	var entry domain.WorkoutExercisePatch
	if err := decodeJSON(w, r, &entry); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	workout, err := h.workouts.AddWorkoutExercise(r.Context(), currentUser(r).ID, id, entry)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, workout, h.logger)
}

func (h *Handler) UpdateWorkoutExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	entryID, err := pathID(r, "exerciseId")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	var entry domain.WorkoutExercisePatch
	if err := decodeJSON(w, r, &entry); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	workout, err := h.workouts.UpdateWorkoutExercise(r.Context(), currentUser(r).ID, id, entryID, entry)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, workout, h.logger)
}

func (h *Handler) RemoveWorkoutExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	entryID, err := pathID(r, "exerciseId")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	workout, err := h.workouts.RemoveWorkoutExercise(r.Context(), currentUser(r).ID, id, entryID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, workout, h.logger)
}

// ExportWorkout queues a snapshot job and answers before it runs.
func (h *Handler) ExportWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	job, err := h.workouts.RequestExport(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusAccepted, exportResponse{JobID: job.JobID, ObjectKey: job.ObjectKey()}, h.logger)
}
