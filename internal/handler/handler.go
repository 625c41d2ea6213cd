package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
	"github.com/GoArmGo/WorkoutTracker/internal/usecase"
)

const maxJSONBodyBytes = 1 << 20

// Handler serves the HTTP API on top of the use cases.
type Handler struct {
	accounts      usecase.AccountUseCase
	workoutTypes  usecase.WorkoutTypeUseCase
	exercises     usecase.ExerciseUseCase
	workouts      usecase.WorkoutUseCase
	uploadLimiter chan struct{}
	maxIconBytes  int64
	logger        *slog.Logger
}

func NewHandler(
	accounts usecase.AccountUseCase,
	workoutTypes usecase.WorkoutTypeUseCase,
	exercises usecase.ExerciseUseCase,
	workouts usecase.WorkoutUseCase,
	uploadLimiter chan struct{},
	maxIconBytes int64,
	logger *slog.Logger,
) *Handler {
	if uploadLimiter == nil {
		uploadLimiter = make(chan struct{}, 1)
	}
	return &Handler{
		accounts:      accounts,
		workoutTypes:  workoutTypes,
		exercises:     exercises,
		workouts:      workouts,
		uploadLimiter: uploadLimiter,
		maxIconBytes:  maxIconBytes,
		logger:        logger,
	}
}

// respondWithJSON sends payload as a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError sends {"error": message}.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// writeError maps a domain error onto its status code. Anything that is not
// a known category is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error(), logger)
	case errors.Is(err, domain.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		respondWithError(w, http.StatusUnauthorized, "could not validate credentials", logger)
	case errors.Is(err, domain.ErrInactive):
		respondWithError(w, http.StatusForbidden, "inactive user", logger)
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), logger)
	case errors.Is(err, domain.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error(), logger)
	case errors.Is(err, domain.ErrUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, err.Error(), logger)
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		respondWithError(w, http.StatusInternalServerError, "internal server error", logger)
	}
}

// decodeJSON reads a JSON body into dst. Unknown fields are accepted so that
// a client can send back what it read.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Invalid("request body is empty")
		}
		return domain.Invalid("invalid JSON body: %v", err)
	}
	if dec.More() {
		return domain.Invalid("request body must be a single JSON value")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("invalid %s %q", name, raw)
	}
	return id, nil
}

// pageFromQuery reads skip and limit, clamping them to the accepted range.
func pageFromQuery(r *http.Request) (domain.Page, error) {
	q := r.URL.Query()
	var skip, limit int
	for _, p := range []struct {
		name string
		dst  *int
	}{{"skip", &skip}, {"limit", &limit}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return domain.Page{}, domain.Invalid("%s must be a non-negative integer", p.name)
		}
		*p.dst = v
	}
	return domain.NewPage(skip, limit), nil
}

// Health answers liveness probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("workout tracker API, see %s", apiPrefix),
	}, h.logger)
}
