package ports

import (
	"context"
	"io"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

// UserStorage persists accounts. Lookups return domain.ErrNotFound when
// nothing matches; unique violations come back as domain.ErrConflict.
type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	// DeleteUser removes the user and everything the user owns.
	DeleteUser(ctx context.Context, id int64) error
}

// WorkoutTypeStorage persists workout types. Every read and write is
// scoped by owner; a row owned by someone else is domain.ErrNotFound.
type WorkoutTypeStorage interface {
	CreateWorkoutType(ctx context.Context, wt *domain.WorkoutType) error
	GetWorkoutType(ctx context.Context, id, ownerID int64) (*domain.WorkoutType, error)
	WorkoutTypeNameTaken(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error)
	ListWorkoutTypes(ctx context.Context, ownerID int64, page domain.Page) ([]domain.WorkoutType, error)
	UpdateWorkoutType(ctx context.Context, wt *domain.WorkoutType) error
	WorkoutTypeInUse(ctx context.Context, id int64) (bool, error)
	DeleteWorkoutType(ctx context.Context, id, ownerID int64) error
}

// ExerciseStorage persists exercises together with their muscle group tags.
type ExerciseStorage interface {
	CreateExercise(ctx context.Context, e *domain.Exercise) error
	GetExercise(ctx context.Context, id, ownerID int64) (*domain.Exercise, error)
	ExerciseNameTaken(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error)
	// ListExercises returns exercises sharing at least one tag with
	// muscleGroups, or all of them when muscleGroups is empty.
	ListExercises(ctx context.Context, ownerID int64, muscleGroups []string, page domain.Page) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, e *domain.Exercise) error
	ExerciseInUse(ctx context.Context, id int64) (bool, error)
	DeleteExercise(ctx context.Context, id, ownerID int64) error
}

// WorkoutStorage reads workouts with their nested state and opens units of
// work for changing them.
type WorkoutStorage interface {
	// GetWorkout loads the workout with its type, exercises and sets.
	GetWorkout(ctx context.Context, id, ownerID int64) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, ownerID int64, page domain.Page) ([]domain.Workout, error)
	// DeleteWorkout removes the workout, its exercises and their sets.
	DeleteWorkout(ctx context.Context, id, ownerID int64) error
	// WithinTx runs fn in one transaction, committing only if fn returns nil.
	WithinTx(ctx context.Context, fn func(tx WorkoutTx) error) error
}

// WorkoutTx is the write surface available inside a workout transaction.
type WorkoutTx interface {
	GetWorkout(ctx context.Context, id, ownerID int64) (*domain.Workout, error)
	WorkoutNameTaken(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error)
	WorkoutTypeOwned(ctx context.Context, workoutTypeID, ownerID int64) (bool, error)
	ExerciseOwned(ctx context.Context, exerciseID, ownerID int64) (bool, error)

	CreateWorkout(ctx context.Context, w *domain.Workout) error
	UpdateWorkout(ctx context.Context, w *domain.Workout) error

	CreateWorkoutExercise(ctx context.Context, we *domain.WorkoutExercise) error
	UpdateWorkoutExercise(ctx context.Context, we *domain.WorkoutExercise) error
	// DeleteWorkoutExercise removes the entry and its sets.
	DeleteWorkoutExercise(ctx context.Context, id int64) error

	CreateWorkoutSet(ctx context.Context, s *domain.WorkoutSet) error
	UpdateWorkoutSet(ctx context.Context, s *domain.WorkoutSet) error
	DeleteWorkoutSet(ctx context.Context, id int64) error
}

// FileStorage is an object store for icons and exports.
type FileStorage interface {
	UploadFile(ctx context.Context, objectKey string, content io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, objectKey string) error
}
