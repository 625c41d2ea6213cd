package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/WorkoutTracker/internal/core/ports"
	"github.com/GoArmGo/WorkoutTracker/internal/database/storage"
	"github.com/GoArmGo/WorkoutTracker/internal/domain"
	"github.com/GoArmGo/WorkoutTracker/internal/logger"
	"github.com/GoArmGo/WorkoutTracker/internal/testutil"
)

type stores struct {
	users     *storage.GormUserStorage
	types     *storage.WorkoutTypeStorage
	exercises *storage.ExerciseStorage
	workouts  *storage.WorkoutStorage
}

func setup(t *testing.T) stores {
	t.Helper()
	c := testutil.SetupTestDB(t)
	log := logger.Discard()
	return stores{
		users:     storage.NewGormUserStorage(c.Gorm, log),
		types:     storage.NewWorkoutTypeStorage(c.DB, log),
		exercises: storage.NewExerciseStorage(c.DB, log),
		workouts:  storage.NewWorkoutStorage(c.DB, log),
	}
}

func createUser(t *testing.T, s stores, username string) *domain.User {
	t.Helper()
	u := &domain.User{Email: username + "@example.com", Username: username, PasswordHash: "x", IsActive: true}
	require.NoError(t, s.users.CreateUser(context.Background(), u))
	return u
}

func TestUserStorageRoundTrip(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	u := createUser(t, s, "alice")
	assert.NotZero(t, u.ID)

	byEmail, err := s.users.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.True(t, byEmail.IsActive)

	_, err = s.users.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	dup := &domain.User{Email: "alice@example.com", Username: "alice2", PasswordHash: "x"}
	assert.ErrorIs(t, s.users.CreateUser(ctx, dup), domain.ErrConflict)

	u.IsActive = false
	u.Username = "alice_renamed"
	require.NoError(t, s.users.UpdateUser(ctx, u))

	got, err := s.users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "alice_renamed", got.Username)
}

func TestWorkoutTypeStorageScopesByOwner(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")

	legs := &domain.WorkoutType{UserID: alice.ID, Name: "Legs"}
	require.NoError(t, s.types.CreateWorkoutType(ctx, legs))

	_, err := s.types.GetWorkoutType(ctx, legs.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	taken, err := s.types.WorkoutTypeNameTaken(ctx, alice.ID, "Legs", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.types.WorkoutTypeNameTaken(ctx, bob.ID, "Legs", 0)
	require.NoError(t, err)
	assert.False(t, taken)

	// same name is fine for another owner
	require.NoError(t, s.types.CreateWorkoutType(ctx, &domain.WorkoutType{UserID: bob.ID, Name: "Legs"}))

	// the unique index backs up the read-then-decide check
	err = s.types.CreateWorkoutType(ctx, &domain.WorkoutType{UserID: alice.ID, Name: "Legs"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.ErrorIs(t, s.types.DeleteWorkoutType(ctx, legs.ID, bob.ID), domain.ErrNotFound)
	require.NoError(t, s.types.DeleteWorkoutType(ctx, legs.ID, alice.ID))
}

func TestExerciseStorageMuscleGroupFilter(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")

	squat := &domain.Exercise{UserID: alice.ID, Name: "Squat", MuscleGroups: []string{"glutes", "quads"}}
	bench := &domain.Exercise{UserID: alice.ID, Name: "Bench", MuscleGroups: []string{"chest", "triceps"}}
	plank := &domain.Exercise{UserID: alice.ID, Name: "Plank"}
	for _, e := range []*domain.Exercise{squat, bench, plank} {
		require.NoError(t, s.exercises.CreateExercise(ctx, e))
	}

	all, err := s.exercises.ListExercises(ctx, alice.ID, nil, domain.NewPage(0, 0))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"glutes", "quads"}, all[0].MuscleGroups)
	assert.Equal(t, []string{}, all[2].MuscleGroups)

	filtered, err := s.exercises.ListExercises(ctx, alice.ID, []string{"quads", "triceps"}, domain.NewPage(0, 0))
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "Squat", filtered[0].Name)
	assert.Equal(t, "Bench", filtered[1].Name)

	paged, err := s.exercises.ListExercises(ctx, alice.ID, nil, domain.NewPage(1, 1))
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "Bench", paged[0].Name)

	squat.MuscleGroups = []string{"hamstrings"}
	require.NoError(t, s.exercises.UpdateExercise(ctx, squat))
	got, err := s.exercises.GetExercise(ctx, squat.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hamstrings"}, got.MuscleGroups)

	require.NoError(t, s.exercises.DeleteExercise(ctx, squat.ID, alice.ID))
	_, err = s.exercises.GetExercise(ctx, squat.ID, alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkoutStorageNestedLoadAndCascade(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")

	legs := &domain.WorkoutType{UserID: alice.ID, Name: "Legs"}
	require.NoError(t, s.types.CreateWorkoutType(ctx, legs))
	squat := &domain.Exercise{UserID: alice.ID, Name: "Squat"}
	require.NoError(t, s.exercises.CreateExercise(ctx, squat))

	var workoutID int64
	err := s.workouts.WithinTx(ctx, func(tx ports.WorkoutTx) error {
		w := &domain.Workout{UserID: alice.ID, Name: "Leg Day", WorkoutTypeID: legs.ID}
		if err := tx.CreateWorkout(ctx, w); err != nil {
			return err
		}
		workoutID = w.ID
		we := &domain.WorkoutExercise{WorkoutID: w.ID, ExerciseID: squat.ID}
		if err := tx.CreateWorkoutExercise(ctx, we); err != nil {
			return err
		}
		for _, n := range []int{2, 1} {
			if err := tx.CreateWorkoutSet(ctx, &domain.WorkoutSet{WorkoutExerciseID: we.ID, SetNumber: n, Weight: 100, Reps: 5}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	w, err := s.workouts.GetWorkout(ctx, workoutID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, w.WorkoutType)
	assert.Equal(t, "Legs", w.WorkoutType.Name)
	require.Len(t, w.Exercises, 1)
	require.Len(t, w.Exercises[0].Sets, 2)
	assert.Equal(t, 1, w.Exercises[0].Sets[0].SetNumber)

	inUse, err := s.types.WorkoutTypeInUse(ctx, legs.ID)
	require.NoError(t, err)
	assert.True(t, inUse)

	require.NoError(t, s.workouts.DeleteWorkout(ctx, workoutID, alice.ID))
	_, err = s.workouts.GetWorkout(ctx, workoutID, alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	inUse, err = s.exercises.ExerciseInUse(ctx, squat.ID)
	require.NoError(t, err)
	assert.False(t, inUse)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	legs := &domain.WorkoutType{UserID: alice.ID, Name: "Legs"}
	require.NoError(t, s.types.CreateWorkoutType(ctx, legs))

	err := s.workouts.WithinTx(ctx, func(tx ports.WorkoutTx) error {
		if err := tx.CreateWorkout(ctx, &domain.Workout{UserID: alice.ID, Name: "Leg Day", WorkoutTypeID: legs.ID}); err != nil {
			return err
		}
		return domain.ErrMissingSetNumber
	})
	require.ErrorIs(t, err, domain.ErrMissingSetNumber)

	list, err := s.workouts.ListWorkouts(ctx, alice.ID, domain.NewPage(0, 0))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteUserRemovesOwnedRows(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")

	legs := &domain.WorkoutType{UserID: alice.ID, Name: "Legs"}
	require.NoError(t, s.types.CreateWorkoutType(ctx, legs))
	squat := &domain.Exercise{UserID: alice.ID, Name: "Squat", MuscleGroups: []string{"quads"}}
	require.NoError(t, s.exercises.CreateExercise(ctx, squat))
	require.NoError(t, s.workouts.WithinTx(ctx, func(tx ports.WorkoutTx) error {
		w := &domain.Workout{UserID: alice.ID, Name: "Leg Day", WorkoutTypeID: legs.ID}
		if err := tx.CreateWorkout(ctx, w); err != nil {
			return err
		}
		we := &domain.WorkoutExercise{WorkoutID: w.ID, ExerciseID: squat.ID}
		if err := tx.CreateWorkoutExercise(ctx, we); err != nil {
			return err
		}
		return tx.CreateWorkoutSet(ctx, &domain.WorkoutSet{WorkoutExerciseID: we.ID, SetNumber: 1})
	}))

	require.NoError(t, s.users.DeleteUser(ctx, alice.ID))

	_, err := s.users.GetUserByID(ctx, alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.types.GetWorkoutType(ctx, legs.ID, alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, s.users.DeleteUser(ctx, alice.ID), domain.ErrNotFound)
}
