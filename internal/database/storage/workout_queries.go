package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

const (
	workoutColumns         = `id, user_id, name, description, workout_type_id, created_at`
	workoutExerciseColumns = `id, workout_id, exercise_id, notes, sort_order`
	workoutSetColumns      = `id, workout_exercise_id, set_number, weight, reps`
)

// workoutQueries runs the workout statements against either the pool or an
// open transaction. Inside WithinTx it is the ports.WorkoutTx.
type workoutQueries struct {
	q sqlx.ExtContext
}

func (w workoutQueries) workoutRow(ctx context.Context, id, ownerID int64) (*domain.Workout, error) {
	var workout domain.Workout
	err := sqlx.GetContext(ctx, w.q, &workout,
		w.q.Rebind(`SELECT `+workoutColumns+` FROM workouts WHERE id = ? AND user_id = ?`), id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("workout", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select workout %d: %w", id, err)
	}
	return &workout, nil
}

// GetWorkout loads the workout, its type, its exercises in order and every
// exercise's sets.
func (w workoutQueries) GetWorkout(ctx context.Context, id, ownerID int64) (*domain.Workout, error) {
	workout, err := w.workoutRow(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := w.attachNested(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

func (w workoutQueries) attachNested(ctx context.Context, workout *domain.Workout) error {
	wt, err := getWorkoutType(ctx, w.q, workout.WorkoutTypeID, workout.UserID)
	if err != nil {
		return fmt.Errorf("load type of workout %d: %w", workout.ID, err)
	}
	workout.WorkoutType = wt

	exercises := []domain.WorkoutExercise{}
	err = sqlx.SelectContext(ctx, w.q, &exercises, w.q.Rebind(`SELECT `+workoutExerciseColumns+`
		FROM workout_exercises WHERE workout_id = ? ORDER BY sort_order, id`), workout.ID)
	if err != nil {
		return fmt.Errorf("select workout exercises: %w", err)
	}
	workout.Exercises = exercises
	if len(exercises) == 0 {
		return nil
	}

	ids := make([]int64, len(exercises))
	index := make(map[int64]int, len(exercises))
	for i := range exercises {
		ids[i] = exercises[i].ID
		index[exercises[i].ID] = i
		exercises[i].Sets = []domain.WorkoutSet{}
	}

	query, args, err := inClause(w.q, `SELECT `+workoutSetColumns+` FROM workout_sets
		WHERE workout_exercise_id IN (?) ORDER BY set_number, id`, ids)
	if err != nil {
		return err
	}
	var sets []domain.WorkoutSet
	if err := sqlx.SelectContext(ctx, w.q, &sets, query, args...); err != nil {
		return fmt.Errorf("select workout sets: %w", err)
	}
	for _, s := range sets {
		i := index[s.WorkoutExerciseID]
		exercises[i].Sets = append(exercises[i].Sets, s)
	}
	return nil
}

func (w workoutQueries) WorkoutNameTaken(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	return exists(ctx, w.q, `SELECT 1 FROM workouts WHERE user_id = ? AND name = ? AND id <> ?`, ownerID, name, excludeID)
}

func (w workoutQueries) WorkoutTypeOwned(ctx context.Context, workoutTypeID, ownerID int64) (bool, error) {
	return exists(ctx, w.q, `SELECT 1 FROM workout_types WHERE id = ? AND user_id = ?`, workoutTypeID, ownerID)
}

func (w workoutQueries) ExerciseOwned(ctx context.Context, exerciseID, ownerID int64) (bool, error) {
	return exists(ctx, w.q, `SELECT 1 FROM exercises WHERE id = ? AND user_id = ?`, exerciseID, ownerID)
}

func (w workoutQueries) CreateWorkout(ctx context.Context, workout *domain.Workout) error {
	workout.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	q := w.q.Rebind(`INSERT INTO workouts (user_id, name, description, workout_type_id, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := sqlx.GetContext(ctx, w.q, &workout.ID, q,
		workout.UserID, workout.Name, workout.Description, workout.WorkoutTypeID, workout.CreatedAt)
	return translateWriteErr(err, "workout")
}

func (w workoutQueries) UpdateWorkout(ctx context.Context, workout *domain.Workout) error {
	res, err := w.q.ExecContext(ctx,
		w.q.Rebind(`UPDATE workouts SET name = ?, description = ?, workout_type_id = ? WHERE id = ? AND user_id = ?`),
		workout.Name, workout.Description, workout.WorkoutTypeID, workout.ID, workout.UserID)
	if err != nil {
		return translateWriteErr(err, "workout")
	}
	return expectOneRow(res, "workout", workout.ID)
}

func (w workoutQueries) CreateWorkoutExercise(ctx context.Context, we *domain.WorkoutExercise) error {
	q := w.q.Rebind(`INSERT INTO workout_exercises (workout_id, exercise_id, notes, sort_order)
		VALUES (?, ?, ?, ?) RETURNING id`)
	err := sqlx.GetContext(ctx, w.q, &we.ID, q, we.WorkoutID, we.ExerciseID, we.Notes, we.SortOrder)
	return translateWriteErr(err, "workout exercise")
}

func (w workoutQueries) UpdateWorkoutExercise(ctx context.Context, we *domain.WorkoutExercise) error {
	res, err := w.q.ExecContext(ctx,
		w.q.Rebind(`UPDATE workout_exercises SET exercise_id = ?, notes = ?, sort_order = ? WHERE id = ? AND workout_id = ?`),
		we.ExerciseID, we.Notes, we.SortOrder, we.ID, we.WorkoutID)
	if err != nil {
		return translateWriteErr(err, "workout exercise")
	}
	return expectOneRow(res, "workout exercise", we.ID)
}

func (w workoutQueries) DeleteWorkoutExercise(ctx context.Context, id int64) error {
	if _, err := w.q.ExecContext(ctx, w.q.Rebind(`DELETE FROM workout_sets WHERE workout_exercise_id = ?`), id); err != nil {
		return fmt.Errorf("delete sets of workout exercise %d: %w", id, err)
	}
	res, err := w.q.ExecContext(ctx, w.q.Rebind(`DELETE FROM workout_exercises WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete workout exercise %d: %w", id, err)
	}
	return expectOneRow(res, "workout exercise", id)
}

func (w workoutQueries) CreateWorkoutSet(ctx context.Context, s *domain.WorkoutSet) error {
	q := w.q.Rebind(`INSERT INTO workout_sets (workout_exercise_id, set_number, weight, reps)
		VALUES (?, ?, ?, ?) RETURNING id`)
	err := sqlx.GetContext(ctx, w.q, &s.ID, q, s.WorkoutExerciseID, s.SetNumber, s.Weight, s.Reps)
	return translateWriteErr(err, "workout set")
}

func (w workoutQueries) UpdateWorkoutSet(ctx context.Context, s *domain.WorkoutSet) error {
	res, err := w.q.ExecContext(ctx,
		w.q.Rebind(`UPDATE workout_sets SET set_number = ?, weight = ?, reps = ? WHERE id = ? AND workout_exercise_id = ?`),
		s.SetNumber, s.Weight, s.Reps, s.ID, s.WorkoutExerciseID)
	if err != nil {
		return translateWriteErr(err, "workout set")
	}
	return expectOneRow(res, "workout set", s.ID)
}

func (w workoutQueries) DeleteWorkoutSet(ctx context.Context, id int64) error {
	res, err := w.q.ExecContext(ctx, w.q.Rebind(`DELETE FROM workout_sets WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete workout set %d: %w", id, err)
	}
	return expectOneRow(res, "workout set", id)
}
