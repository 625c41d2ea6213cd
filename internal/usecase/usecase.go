package usecase

import (
	"context"
	"io"
	"time"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
	"github.com/GoArmGo/WorkoutTracker/internal/messaging/payloads"
)

// Credentials is the part of the credential store the account flows use.
type Credentials interface {
	CheckPassword(password string) error
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	Issue(subject string, userID int64, ttl time.Duration) (string, time.Time, error)
}

// AccountUseCase covers registration, login and the caller's own profile.
type AccountUseCase interface {
	Register(ctx context.Context, email, username, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.AccessToken, error)
	UpdateProfile(ctx context.Context, user *domain.User, in domain.UserUpdate) (*domain.User, error)
	DeleteAccount(ctx context.Context, userID int64) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// WorkoutTypeUseCase manages workout types and their icons.
type WorkoutTypeUseCase interface {
	CreateWorkoutType(ctx context.Context, ownerID int64, in domain.WorkoutTypeInput) (*domain.WorkoutType, error)
	GetWorkoutType(ctx context.Context, ownerID, id int64) (*domain.WorkoutType, error)
	ListWorkoutTypes(ctx context.Context, ownerID int64, page domain.Page) ([]domain.WorkoutType, error)
	UpdateWorkoutType(ctx context.Context, ownerID, id int64, in domain.WorkoutTypeUpdate) (*domain.WorkoutType, error)
	DeleteWorkoutType(ctx context.Context, ownerID, id int64) error
	SetIcon(ctx context.Context, ownerID, id int64, content io.Reader, contentType string) (*domain.WorkoutType, error)
	RemoveIcon(ctx context.Context, ownerID, id int64) (*domain.WorkoutType, error)
}

type ExerciseUseCase interface {
	CreateExercise(ctx context.Context, ownerID int64, in domain.ExerciseInput) (*domain.Exercise, error)
	GetExercise(ctx context.Context, ownerID, id int64) (*domain.Exercise, error)
	ListExercises(ctx context.Context, ownerID int64, muscleGroups []string, page domain.Page) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, ownerID, id int64, in domain.ExerciseUpdate) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, ownerID, id int64) error
}

// WorkoutUseCase manages workouts and their nested exercises and sets.
// Every mutation runs in one transaction and returns the reloaded workout.
type WorkoutUseCase interface {
	CreateWorkout(ctx context.Context, ownerID int64, in domain.WorkoutInput) (*domain.Workout, error)
	GetWorkout(ctx context.Context, ownerID, id int64) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, ownerID int64, page domain.Page) ([]domain.Workout, error)
	ReplaceWorkout(ctx context.Context, ownerID, id int64, in domain.WorkoutReplace) (*domain.Workout, error)
	ReconcileWorkout(ctx context.Context, ownerID, id int64, patch domain.WorkoutPatch) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, ownerID, id int64) error

	AddWorkoutExercise(ctx context.Context, ownerID, workoutID int64, entry domain.WorkoutExercisePatch) (*domain.Workout, error)
	UpdateWorkoutExercise(ctx context.Context, ownerID, workoutID, workoutExerciseID int64, entry domain.WorkoutExercisePatch) (*domain.Workout, error)
	RemoveWorkoutExercise(ctx context.Context, ownerID, workoutID, workoutExerciseID int64) (*domain.Workout, error)

	// RequestExport queues a snapshot of the workout for the worker.
	RequestExport(ctx context.Context, ownerID, id int64) (*payloads.WorkoutExportPayload, error)
	// ExportWorkout writes the snapshot described by payload. Run by the worker.
	ExportWorkout(ctx context.Context, payload payloads.WorkoutExportPayload) (string, error)
}
