package usecase_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GoArmGo/WorkoutTracker/internal/auth"
	"github.com/GoArmGo/WorkoutTracker/internal/database/storage"
	"github.com/GoArmGo/WorkoutTracker/internal/domain"
	"github.com/GoArmGo/WorkoutTracker/internal/logger"
	"github.com/GoArmGo/WorkoutTracker/internal/messaging/payloads"
	"github.com/GoArmGo/WorkoutTracker/internal/testutil"
	"github.com/GoArmGo/WorkoutTracker/internal/usecase"
)

type memFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemFiles() *memFiles { return &memFiles{objects: map[string][]byte{}} }

func (m *memFiles) UploadFile(_ context.Context, key string, content io.Reader, _ string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, content); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return "http://files.test/" + key, nil
}

func (m *memFiles) DeleteFile(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memFiles) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

type memPublisher struct {
	published []payloads.WorkoutExportPayload
}

func (p *memPublisher) PublishWorkoutExport(_ context.Context, payload payloads.WorkoutExportPayload) error {
	p.published = append(p.published, payload)
	return nil
}

type env struct {
	workoutStore *storage.WorkoutStorage
	accounts     usecase.AccountUseCase
	types        usecase.WorkoutTypeUseCase
	exercises    usecase.ExerciseUseCase
	workouts     usecase.WorkoutUseCase
	files        *memFiles
	publisher    *memPublisher
	users        *storage.GormUserStorage
	resolver     *auth.Resolver
}

func setup(t *testing.T, policy usecase.UnknownIDPolicy) *env {
	t.Helper()
	c := testutil.SetupTestDB(t)
	log := logger.Discard()

	creds, err := auth.NewCredentialStore(auth.Config{
		SigningKey: []byte("test-signing-key"),
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	e := &env{
		workoutStore: storage.NewWorkoutStorage(c.DB, log),
		users:        storage.NewGormUserStorage(c.Gorm, log),
		files:        newMemFiles(),
		publisher:    &memPublisher{},
	}
	e.accounts = usecase.NewAccountUseCase(e.users, creds, log)
	e.resolver = auth.NewResolver(creds, e.users)
	e.types = usecase.NewWorkoutTypeUseCase(storage.NewWorkoutTypeStorage(c.DB, log), e.files, log)
	e.exercises = usecase.NewExerciseUseCase(storage.NewExerciseStorage(c.DB, log), log)
	e.workouts = usecase.NewWorkoutUseCase(e.workoutStore, usecase.NewReconciler(policy), e.publisher, e.files, log)
	return e
}

func (e *env) user(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := e.accounts.Register(context.Background(), username+"@example.com", username, "Str0ng!pass")
	require.NoError(t, err)
	return u
}

func (e *env) workoutType(t *testing.T, ownerID int64, name string) int64 {
	t.Helper()
	wt, err := e.types.CreateWorkoutType(context.Background(), ownerID, domain.WorkoutTypeInput{Name: name})
	require.NoError(t, err)
	return wt.ID
}

func (e *env) exercise(t *testing.T, ownerID int64, name string, groups ...string) int64 {
	t.Helper()
	ex, err := e.exercises.CreateExercise(context.Background(), ownerID, domain.ExerciseInput{Name: name, MuscleGroups: groups})
	require.NoError(t, err)
	return ex.ID
}

func ptr[T any](v T) *T { return &v }
