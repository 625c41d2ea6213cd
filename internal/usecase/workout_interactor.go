package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/GoArmGo/WorkoutTracker/internal/core/ports"
	"github.com/GoArmGo/WorkoutTracker/internal/domain"
	"github.com/GoArmGo/WorkoutTracker/internal/messaging/payloads"
)

type workoutInteractor struct {
	workouts   ports.WorkoutStorage
	reconciler *Reconciler
	publisher  ports.WorkoutExportPublisher // nil when no broker is configured
	files      ports.FileStorage            // nil when object storage is not configured
	logger     *slog.Logger
}

func NewWorkoutUseCase(
	workouts ports.WorkoutStorage,
	reconciler *Reconciler,
	publisher ports.WorkoutExportPublisher,
	files ports.FileStorage,
	logger *slog.Logger,
) WorkoutUseCase {
	return &workoutInteractor{
		workouts:   workouts,
		reconciler: reconciler,
		publisher:  publisher,
		files:      files,
		logger:     logger,
	}
}

func (uc *workoutInteractor) CreateWorkout(ctx context.Context, ownerID int64, in domain.WorkoutInput) (*domain.Workout, error) {
	var (
		id  int64
		sum ReconcileSummary
	)
	err := uc.workouts.WithinTx(ctx, func(tx ports.WorkoutTx) error {
		var err error
		id, sum, err = uc.reconciler.CreateWorkout(ctx, tx, ownerID, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("workout created", append([]any{"workout_id", id}, sum.logAttrs()...)...)
	return uc.workouts.GetWorkout(ctx, id, ownerID)
}

func (uc *workoutInteractor) GetWorkout(ctx context.Context, ownerID, id int64) (*domain.Workout, error) {
	return uc.workouts.GetWorkout(ctx, id, ownerID)
}

func (uc *workoutInteractor) ListWorkouts(ctx context.Context, ownerID int64, page domain.Page) ([]domain.Workout, error) {
	return uc.workouts.ListWorkouts(ctx, ownerID, page)
}

// ReplaceWorkout requires every scalar; an absent exercises list keeps the
// nested state.
func (uc *workoutInteractor) ReplaceWorkout(ctx context.Context, ownerID, id int64, in domain.WorkoutReplace) (*domain.Workout, error) {
	if domain.NormalizeName(in.Name) == "" {
		return nil, domain.Invalid("name is required")
	}
	if in.WorkoutTypeID <= 0 {
		return nil, domain.Invalid("workout_type_id is required")
	}
	return uc.reconcile(ctx, ownerID, id, "workout replaced", func(tx ports.WorkoutTx) (ReconcileSummary, error) {
		return uc.reconciler.ReconcileWorkout(ctx, tx, ownerID, id, in.Patch())
	})
}

func (uc *workoutInteractor) ReconcileWorkout(ctx context.Context, ownerID, id int64, patch domain.WorkoutPatch) (*domain.Workout, error) {
	return uc.reconcile(ctx, ownerID, id, "workout reconciled", func(tx ports.WorkoutTx) (ReconcileSummary, error) {
		return uc.reconciler.ReconcileWorkout(ctx, tx, ownerID, id, patch)
	})
}

func (uc *workoutInteractor) DeleteWorkout(ctx context.Context, ownerID, id int64) error {
	if err := uc.workouts.DeleteWorkout(ctx, id, ownerID); err != nil {
		return err
	}
	uc.logger.Info("workout deleted", "workout_id", id)
	return nil
}

func (uc *workoutInteractor) AddWorkoutExercise(ctx context.Context, ownerID, workoutID int64, entry domain.WorkoutExercisePatch) (*domain.Workout, error) {
	return uc.reconcile(ctx, ownerID, workoutID, "workout exercise added", func(tx ports.WorkoutTx) (ReconcileSummary, error) {
		_, sum, err := uc.reconciler.AddExercise(ctx, tx, ownerID, workoutID, entry)
		return sum, err
	})
}

func (uc *workoutInteractor) UpdateWorkoutExercise(ctx context.Context, ownerID, workoutID, workoutExerciseID int64, entry domain.WorkoutExercisePatch) (*domain.Workout, error) {
	return uc.reconcile(ctx, ownerID, workoutID, "workout exercise updated", func(tx ports.WorkoutTx) (ReconcileSummary, error) {
		return uc.reconciler.UpdateExercise(ctx, tx, ownerID, workoutID, workoutExerciseID, entry)
	})
}

func (uc *workoutInteractor) RemoveWorkoutExercise(ctx context.Context, ownerID, workoutID, workoutExerciseID int64) (*domain.Workout, error) {
	return uc.reconcile(ctx, ownerID, workoutID, "workout exercise removed", func(tx ports.WorkoutTx) (ReconcileSummary, error) {
		return uc.reconciler.RemoveExercise(ctx, tx, ownerID, workoutID, workoutExerciseID)
	})
}

func (uc *workoutInteractor) RequestExport(ctx context.Context, ownerID, id int64) (*payloads.WorkoutExportPayload, error) {
	if uc.publisher == nil {
		return nil, fmt.Errorf("%w: export queue is not configured", domain.ErrUnavailable)
	}
	if _, err := uc.workouts.GetWorkout(ctx, id, ownerID); err != nil {
		return nil, err
	}

	payload := payloads.WorkoutExportPayload{
		JobID:       uuid.New(),
		WorkoutID:   id,
		OwnerID:     ownerID,
		RequestedAt: time.Now().UTC(),
	}
	if err := uc.publisher.PublishWorkoutExport(ctx, payload); err != nil {
		return nil, fmt.Errorf("publish export job: %w", err)
	}

	uc.logger.Info("workout export queued", "workout_id", id, "job_id", payload.JobID)
	return &payload, nil
}

// ExportWorkout writes the workout as JSON under payload.ObjectKey and
// returns the stored object's URL. A workout deleted since the request
// yields domain.ErrNotFound.
func (uc *workoutInteractor) ExportWorkout(ctx context.Context, payload payloads.WorkoutExportPayload) (string, error) {
	if uc.files == nil {
		return "", fmt.Errorf("%w: object storage is not configured", domain.ErrUnavailable)
	}
	w, err := uc.workouts.GetWorkout(ctx, payload.WorkoutID, payload.OwnerID)
	if err != nil {
		return "", err
	}

	body, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode workout %d: %w", w.ID, err)
	}

	start := time.Now()
	url, err := uc.files.UploadFile(ctx, payload.ObjectKey(), bytes.NewReader(body), "application/json")
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	uc.logger.Info("workout exported",
		"workout_id", w.ID,
		"job_id", payload.JobID,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return url, nil
}

// reconcile runs fn in a workout transaction and returns the reloaded workout.
func (uc *workoutInteractor) reconcile(ctx context.Context, ownerID, workoutID int64, msg string, fn func(tx ports.WorkoutTx) (ReconcileSummary, error)) (*domain.Workout, error) {
	var sum ReconcileSummary
	err := uc.workouts.WithinTx(ctx, func(tx ports.WorkoutTx) error {
		var err error
		sum, err = fn(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info(msg, append([]any{"workout_id", workoutID}, sum.logAttrs()...)...)
	return uc.workouts.GetWorkout(ctx, workoutID, ownerID)
}
