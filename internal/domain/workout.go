package domain

import "time"

// Workout is a named session owned by a user. Exercises are kept in
// SortOrder order; each carries its sets ordered by set number.
type Workout struct {
	ID            int64             `json:"id" db:"id"`
	UserID        int64             `json:"user_id" db:"user_id"`
	Name          string            `json:"name" db:"name"`
	Description   *string           `json:"description" db:"description"`
	WorkoutTypeID int64             `json:"workout_type_id" db:"workout_type_id"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	WorkoutType   *WorkoutType      `json:"workout_type,omitempty" db:"-"`
	Exercises     []WorkoutExercise `json:"exercises" db:"-"`
}

// WorkoutExercise places an Exercise inside a Workout.
type WorkoutExercise struct {
	ID         int64        `json:"id" db:"id"`
	WorkoutID  int64        `json:"workout_id" db:"workout_id"`
	ExerciseID int64        `json:"exercise_id" db:"exercise_id"`
	Notes      *string      `json:"notes" db:"notes"`
	SortOrder  int          `json:"sort_order" db:"sort_order"`
	Sets       []WorkoutSet `json:"sets" db:"-"`
}

type WorkoutSet struct {
	ID                int64 `json:"id" db:"id"`
	WorkoutExerciseID int64 `json:"workout_exercise_id" db:"workout_exercise_id"`
	SetNumber         int   `json:"set_number" db:"set_number"`
	Weight            int   `json:"weight" db:"weight"`
	Reps              int   `json:"reps" db:"reps"`
}

// FindExercise returns the entry with the given id, or nil.
func (w *Workout) FindExercise(id int64) *WorkoutExercise {
	for i := range w.Exercises {
		if w.Exercises[i].ID == id {
			return &w.Exercises[i]
		}
	}
	return nil
}

// WorkoutInput is the create payload. Exercises, when given, are all new.
type WorkoutInput struct {
	Name          string                 `json:"name"`
	Description   *string                `json:"description"`
	WorkoutTypeID int64                  `json:"workout_type_id"`
	Exercises     []WorkoutExercisePatch `json:"exercises"`
}

// WorkoutReplace is the full-update payload. An absent exercises list keeps
// the nested collection as it is.
type WorkoutReplace struct {
	Name          string                  `json:"name"`
	Description   *string                 `json:"description"`
	WorkoutTypeID int64                   `json:"workout_type_id"`
	Exercises     *[]WorkoutExercisePatch `json:"exercises"`
}

// Patch converts a full update into the equivalent partial one.
func (r WorkoutReplace) Patch() WorkoutPatch {
	p := WorkoutPatch{
		Name:          Some(r.Name),
		WorkoutTypeID: Some(r.WorkoutTypeID),
		Exercises:     r.Exercises,
	}
	if r.Description != nil {
		p.Description = Some(*r.Description)
	} else {
		p.Description = Null[string]()
	}
	return p
}
