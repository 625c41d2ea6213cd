package domain

import "time"

// Exercise is a reusable movement owned by a user, tagged with muscle groups.
type Exercise struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description" db:"description"`
	MuscleGroups []string  `json:"muscle_groups" db:"-"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type ExerciseInput struct {
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	MuscleGroups []string `json:"muscle_groups"`
}

// ExerciseUpdate is a partial update. A present muscle_groups list replaces
// the stored tags.
type ExerciseUpdate struct {
	Name         Optional[string] `json:"name"`
	Description  Optional[string] `json:"description"`
	MuscleGroups *[]string        `json:"muscle_groups"`
}
