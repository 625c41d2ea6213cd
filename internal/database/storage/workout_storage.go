package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GoArmGo/WorkoutTracker/internal/core/ports"
	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

// WorkoutStorage implements ports.WorkoutStorage with sqlx.
type WorkoutStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewWorkoutStorage(db *sqlx.DB, logger *slog.Logger) *WorkoutStorage {
	return &WorkoutStorage{db: db, logger: logger}
}

func (s *WorkoutStorage) GetWorkout(ctx context.Context, id, ownerID int64) (*domain.Workout, error) {
	start := time.Now()

	w, err := workoutQueries{q: s.db}.GetWorkout(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("workout loaded",
		"id", id,
		"exercises", len(w.Exercises),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return w, nil
}

func (s *WorkoutStorage) ListWorkouts(ctx context.Context, ownerID int64, page domain.Page) ([]domain.Workout, error) {
	start := time.Now()
	q := workoutQueries{q: s.db}

	workouts := []domain.Workout{}
	err := s.db.SelectContext(ctx, &workouts, s.db.Rebind(`SELECT `+workoutColumns+` FROM workouts
		WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?`), ownerID, page.Limit, page.Skip)
	if err != nil {
		s.logger.Error("failed to list workouts", "user_id", ownerID, "error", err)
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	for i := range workouts {
		if err := q.attachNested(ctx, &workouts[i]); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("workouts listed",
		"user_id", ownerID,
		"count", len(workouts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return workouts, nil
}

// DeleteWorkout removes sets, then exercise entries, then the workout.
func (s *WorkoutStorage) DeleteWorkout(ctx context.Context, id, ownerID int64) error {
	start := time.Now()

	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := workoutQueries{q: tx}
		if _, err := q.workoutRow(ctx, id, ownerID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM workout_sets WHERE workout_exercise_id IN (
			SELECT id FROM workout_exercises WHERE workout_id = ?)`), id); err != nil {
			return fmt.Errorf("delete workout sets: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM workout_exercises WHERE workout_id = ?`), id); err != nil {
			return fmt.Errorf("delete workout exercises: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM workouts WHERE id = ?`), id); err != nil {
			return fmt.Errorf("delete workout: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("workout deleted",
		"id", id,
		"user_id", ownerID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *WorkoutStorage) WithinTx(ctx context.Context, fn func(tx ports.WorkoutTx) error) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(workoutQueries{q: tx})
	})
}
