package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

const workoutTypeColumns = `id, user_id, name, description, icon_url, created_at`

// WorkoutTypeStorage implements ports.WorkoutTypeStorage with sqlx.
type WorkoutTypeStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewWorkoutTypeStorage(db *sqlx.DB, logger *slog.Logger) *WorkoutTypeStorage {
	return &WorkoutTypeStorage{db: db, logger: logger}
}

func (s *WorkoutTypeStorage) CreateWorkoutType(ctx context.Context, wt *domain.WorkoutType) error {
	start := time.Now()
	wt.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	q := s.db.Rebind(`INSERT INTO workout_types (user_id, name, description, icon_url, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	if err := s.db.GetContext(ctx, &wt.ID, q, wt.UserID, wt.Name, wt.Description, wt.IconURL, wt.CreatedAt); err != nil {
		s.logger.Warn("failed to insert workout type", "name", wt.Name, "error", err)
		return translateWriteErr(err, "workout type")
	}

	s.logger.Info("workout type created",
		"id", wt.ID,
		"user_id", wt.UserID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *WorkoutTypeStorage) GetWorkoutType(ctx context.Context, id, ownerID int64) (*domain.WorkoutType, error) {
	return getWorkoutType(ctx, s.db, id, ownerID)
}

func getWorkoutType(ctx context.Context, q sqlx.ExtContext, id, ownerID int64) (*domain.WorkoutType, error) {
	var wt domain.WorkoutType
	err := sqlx.GetContext(ctx, q, &wt,
		q.Rebind(`SELECT `+workoutTypeColumns+` FROM workout_types WHERE id = ? AND user_id = ?`), id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("workout type", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select workout type %d: %w", id, err)
	}
	return &wt, nil
}

func (s *WorkoutTypeStorage) WorkoutTypeNameTaken(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	return exists(ctx, s.db,
		`SELECT 1 FROM workout_types WHERE user_id = ? AND name = ? AND id <> ?`, ownerID, name, excludeID)
}

func (s *WorkoutTypeStorage) ListWorkoutTypes(ctx context.Context, ownerID int64, page domain.Page) ([]domain.WorkoutType, error) {
	start := time.Now()

	types := []domain.WorkoutType{}
	q := s.db.Rebind(`SELECT ` + workoutTypeColumns + ` FROM workout_types
		WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &types, q, ownerID, page.Limit, page.Skip); err != nil {
		s.logger.Error("failed to list workout types", "user_id", ownerID, "error", err)
		return nil, fmt.Errorf("list workout types: %w", err)
	}

	s.logger.Debug("workout types listed",
		"user_id", ownerID,
		"count", len(types),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return types, nil
}

func (s *WorkoutTypeStorage) UpdateWorkoutType(ctx context.Context, wt *domain.WorkoutType) error {
	q := s.db.Rebind(`UPDATE workout_types SET name = ?, description = ?, icon_url = ? WHERE id = ? AND user_id = ?`)
	res, err := s.db.ExecContext(ctx, q, wt.Name, wt.Description, wt.IconURL, wt.ID, wt.UserID)
	if err != nil {
		return translateWriteErr(err, "workout type")
	}
	return expectOneRow(res, "workout type", wt.ID)
}

func (s *WorkoutTypeStorage) WorkoutTypeInUse(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, s.db, `SELECT 1 FROM workouts WHERE workout_type_id = ?`, id)
}

func (s *WorkoutTypeStorage) DeleteWorkoutType(ctx context.Context, id, ownerID int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM workout_types WHERE id = ? AND user_id = ?`), id, ownerID)
	if err != nil {
		return translateWriteErr(err, "workout type")
	}
	if err := expectOneRow(res, "workout type", id); err != nil {
		return err
	}
	s.logger.Info("workout type deleted", "id", id, "user_id", ownerID)
	return nil
}

// exists reports whether query returns at least one row.
func exists(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (bool, error) {
	var one int
	err := sqlx.GetContext(ctx, q, &one, q.Rebind(query+` LIMIT 1`), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists query: %w", err)
	}
	return true, nil
}

func expectOneRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.NotFound(entity, id)
	}
	return nil
}
