package domain

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent JSON field from an explicit null and from
// a value. The zero value means absent.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Set: true} }

func Null[T any]() Optional[T] { return Optional[T]{Set: true, Null: true} }

// Present reports whether the field carried a non-null value.
func (o Optional[T]) Present() bool { return o.Set && !o.Null }

// Ptr returns nil for absent or null, otherwise a pointer to a copy of Value.
func (o Optional[T]) Ptr() *T {
	if !o.Present() {
		return nil
	}
	v := o.Value
	return &v
}

// UnmarshalJSON is only called when the key is present in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON writes null for absent or null values.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// WorkoutPatch is a partial representation of a workout. A nil Exercises
// leaves the nested collection alone; a non-nil (even empty) list is the
// desired state of that collection.
type WorkoutPatch struct {
	Name          Optional[string]        `json:"name"`
	Description   Optional[string]        `json:"description"`
	WorkoutTypeID Optional[int64]         `json:"workout_type_id"`
	Exercises     *[]WorkoutExercisePatch `json:"exercises"`
}

// WorkoutExercisePatch addresses an existing entry when ID is set and
// describes a new one otherwise.
type WorkoutExercisePatch struct {
	ID         *int64             `json:"id"`
	ExerciseID Optional[int64]    `json:"exercise_id"`
	Notes      Optional[string]   `json:"notes"`
	Sets       *[]WorkoutSetPatch `json:"sets"`
}

type WorkoutSetPatch struct {
	ID        *int64        `json:"id"`
	SetNumber Optional[int] `json:"set_number"`
	Weight    Optional[int] `json:"weight"`
	Reps      Optional[int] `json:"reps"`
}
