package domain

import "time"

// WorkoutType is a user-defined category such as "Legs" or "Cardio".
type WorkoutType struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	IconURL     *string   `json:"icon_url" db:"icon_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// WorkoutTypeInput is the create payload.
type WorkoutTypeInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IconURL     *string `json:"icon_url"`
}

// WorkoutTypeUpdate is a partial update; absent fields are kept.
type WorkoutTypeUpdate struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
	IconURL     Optional[string] `json:"icon_url"`
}
