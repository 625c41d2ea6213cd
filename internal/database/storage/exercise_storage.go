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

const exerciseColumns = `id, user_id, name, description, created_at`

// ExerciseStorage implements ports.ExerciseStorage with sqlx. Muscle groups
// live in exercise_muscle_groups, one row per tag.
type ExerciseStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewExerciseStorage(db *sqlx.DB, logger *slog.Logger) *ExerciseStorage {
	return &ExerciseStorage{db: db, logger: logger}
}

func (s *ExerciseStorage) CreateExercise(ctx context.Context, e *domain.Exercise) error {
	start := time.Now()
	e.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`INSERT INTO exercises (user_id, name, description, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
		if err := tx.GetContext(ctx, &e.ID, q, e.UserID, e.Name, e.Description, e.CreatedAt); err != nil {
			return translateWriteErr(err, "exercise")
		}
		return insertMuscleGroups(ctx, tx, e.ID, e.MuscleGroups)
	})
	if err != nil {
		s.logger.Warn("failed to insert exercise", "name", e.Name, "error", err)
		return err
	}

	s.logger.Info("exercise created",
		"id", e.ID,
		"user_id", e.UserID,
		"muscle_groups", len(e.MuscleGroups),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *ExerciseStorage) GetExercise(ctx context.Context, id, ownerID int64) (*domain.Exercise, error) {
	var e domain.Exercise
	err := s.db.GetContext(ctx, &e,
		s.db.Rebind(`SELECT `+exerciseColumns+` FROM exercises WHERE id = ? AND user_id = ?`), id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("exercise", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select exercise %d: %w", id, err)
	}

	list := []domain.Exercise{e}
	if err := s.attachMuscleGroups(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *ExerciseStorage) ExerciseNameTaken(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	return exists(ctx, s.db,
		`SELECT 1 FROM exercises WHERE user_id = ? AND name = ? AND id <> ?`, ownerID, name, excludeID)
}

func (s *ExerciseStorage) ListExercises(ctx context.Context, ownerID int64, muscleGroups []string, page domain.Page) ([]domain.Exercise, error) {
	start := time.Now()

	var (
		query string
		args  []any
		err   error
	)
	if len(muscleGroups) == 0 {
		query = s.db.Rebind(`SELECT ` + exerciseColumns + ` FROM exercises
			WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?`)
		args = []any{ownerID, page.Limit, page.Skip}
	} else {
		query, args, err = inClause(s.db, `SELECT `+exerciseColumns+` FROM exercises
			WHERE user_id = ? AND EXISTS (
				SELECT 1 FROM exercise_muscle_groups mg
				WHERE mg.exercise_id = exercises.id AND mg.muscle_group IN (?))
			ORDER BY id LIMIT ? OFFSET ?`, ownerID, muscleGroups, page.Limit, page.Skip)
		if err != nil {
			return nil, err
		}
	}

	exercises := []domain.Exercise{}
	if err := s.db.SelectContext(ctx, &exercises, query, args...); err != nil {
		s.logger.Error("failed to list exercises", "user_id", ownerID, "error", err)
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	if err := s.attachMuscleGroups(ctx, exercises); err != nil {
		return nil, err
	}

	s.logger.Debug("exercises listed",
		"user_id", ownerID,
		"filter", muscleGroups,
		"count", len(exercises),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return exercises, nil
}

// UpdateExercise writes the scalar columns and replaces the tag set.
func (s *ExerciseStorage) UpdateExercise(ctx context.Context, e *domain.Exercise) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			tx.Rebind(`UPDATE exercises SET name = ?, description = ? WHERE id = ? AND user_id = ?`),
			e.Name, e.Description, e.ID, e.UserID)
		if err != nil {
			return translateWriteErr(err, "exercise")
		}
		if err := expectOneRow(res, "exercise", e.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM exercise_muscle_groups WHERE exercise_id = ?`), e.ID); err != nil {
			return fmt.Errorf("clear muscle groups: %w", err)
		}
		return insertMuscleGroups(ctx, tx, e.ID, e.MuscleGroups)
	})
}

func (s *ExerciseStorage) ExerciseInUse(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, s.db, `SELECT 1 FROM workout_exercises WHERE exercise_id = ?`, id)
}

func (s *ExerciseStorage) DeleteExercise(ctx context.Context, id, ownerID int64) error {
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := getExerciseRow(ctx, tx, id, ownerID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM exercise_muscle_groups WHERE exercise_id = ?`), id); err != nil {
			return fmt.Errorf("delete muscle groups: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM exercises WHERE id = ? AND user_id = ?`), id, ownerID); err != nil {
			return translateWriteErr(err, "exercise")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("exercise deleted", "id", id, "user_id", ownerID)
	return nil
}

func getExerciseRow(ctx context.Context, q sqlx.ExtContext, id, ownerID int64) (*domain.Exercise, error) {
	var e domain.Exercise
	err := sqlx.GetContext(ctx, q, &e,
		q.Rebind(`SELECT `+exerciseColumns+` FROM exercises WHERE id = ? AND user_id = ?`), id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("exercise", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select exercise %d: %w", id, err)
	}
	return &e, nil
}

func insertMuscleGroups(ctx context.Context, tx *sqlx.Tx, exerciseID int64, groups []string) error {
	q := tx.Rebind(`INSERT INTO exercise_muscle_groups (exercise_id, muscle_group) VALUES (?, ?)`)
	for _, g := range groups {
		if _, err := tx.ExecContext(ctx, q, exerciseID, g); err != nil {
			return translateWriteErr(err, "muscle group")
		}
	}
	return nil
}

type muscleGroupRow struct {
	ExerciseID  int64  `db:"exercise_id"`
	MuscleGroup string `db:"muscle_group"`
}

// attachMuscleGroups fills MuscleGroups for every exercise with one query.
func (s *ExerciseStorage) attachMuscleGroups(ctx context.Context, exercises []domain.Exercise) error {
	if len(exercises) == 0 {
		return nil
	}
	ids := make([]int64, len(exercises))
	index := make(map[int64]int, len(exercises))
	for i := range exercises {
		ids[i] = exercises[i].ID
		index[exercises[i].ID] = i
		exercises[i].MuscleGroups = []string{}
	}

	query, args, err := inClause(s.db, `SELECT exercise_id, muscle_group FROM exercise_muscle_groups
		WHERE exercise_id IN (?) ORDER BY muscle_group`, ids)
	if err != nil {
		return err
	}

	var rows []muscleGroupRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("select muscle groups: %w", err)
	}
	for _, r := range rows {
		i := index[r.ExerciseID]
		exercises[i].MuscleGroups = append(exercises[i].MuscleGroups, r.MuscleGroup)
	}
	return nil
}
