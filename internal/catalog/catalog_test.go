package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/WorkoutTracker/internal/catalog"
	"github.com/GoArmGo/WorkoutTracker/internal/database/storage"
	"github.com/GoArmGo/WorkoutTracker/internal/domain"
	"github.com/GoArmGo/WorkoutTracker/internal/logger"
	"github.com/GoArmGo/WorkoutTracker/internal/testutil"
	"github.com/GoArmGo/WorkoutTracker/internal/usecase"
)

const sample = `
workout_types:
  - name: Legs
    description: lower body
  - name: Cardio
exercises:
  - name: Squat
    muscle_groups: [quads, glutes]
  - name: Rowing
    description: machine
`

func TestDecode(t *testing.T) {
	c, err := catalog.Decode(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, c.WorkoutTypes, 2)
	require.Len(t, c.Exercises, 2)
	assert.Equal(t, []string{"quads", "glutes"}, c.Exercises[0].MuscleGroups)

	empty, err := catalog.Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Exercises)
}

func TestDecodeRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":  "workout_types:\n  - name: Legs\n    colour: red\n",
		"missing name": "exercises:\n  - description: nameless\n",
		"bad yaml":     "exercises: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestSeedIsRepeatable(t *testing.T) {
	c := testutil.SetupTestDB(t)
	log := logger.Discard()
	ctx := context.Background()

	users := storage.NewGormUserStorage(c.Gorm, log)
	owner := &domain.User{Email: "a@example.com", Username: "alice", PasswordHash: "x", IsActive: true}
	require.NoError(t, users.CreateUser(ctx, owner))

	types := usecase.NewWorkoutTypeUseCase(storage.NewWorkoutTypeStorage(c.DB, log), nil, log)
	exercises := usecase.NewExerciseUseCase(storage.NewExerciseStorage(c.DB, log), log)
	seeder := catalog.NewSeeder(types, exercises, log)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	cat, err := catalog.Load(path)
	require.NoError(t, err)

	res, err := seeder.Seed(ctx, owner.ID, cat)
	require.NoError(t, err)
	assert.Equal(t, catalog.Result{WorkoutTypesCreated: 2, ExercisesCreated: 2}, res)

	res, err = seeder.Seed(ctx, owner.ID, cat)
	require.NoError(t, err)
	assert.Equal(t, catalog.Result{Skipped: 4}, res)

	list, err := exercises.ListExercises(ctx, owner.ID, []string{"glutes"}, domain.NewPage(0, 0))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Squat", list[0].Name)
}
