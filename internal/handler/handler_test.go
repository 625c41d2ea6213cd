package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GoArmGo/WorkoutTracker/internal/auth"
	"github.com/GoArmGo/WorkoutTracker/internal/database/storage"
	"github.com/GoArmGo/WorkoutTracker/internal/handler"
	"github.com/GoArmGo/WorkoutTracker/internal/logger"
	"github.com/GoArmGo/WorkoutTracker/internal/testutil"
	"github.com/GoArmGo/WorkoutTracker/internal/usecase"
)

type api struct {
	t      *testing.T
	server *httptest.Server
	users  *storage.GormUserStorage
}

// newAPI serves the full router over a fresh SQLite database. Object storage
// and the export queue are left unconfigured.
func newAPI(t *testing.T) *api {
	t.Helper()
	c := testutil.SetupTestDB(t)
	log := logger.Discard()

	creds, err := auth.NewCredentialStore(auth.Config{
		SigningKey: []byte("handler-test-key"),
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	users := storage.NewGormUserStorage(c.Gorm, log)
	h := handler.NewHandler(
		usecase.NewAccountUseCase(users, creds, log),
		usecase.NewWorkoutTypeUseCase(storage.NewWorkoutTypeStorage(c.DB, log), nil, log),
		usecase.NewExerciseUseCase(storage.NewExerciseStorage(c.DB, log), log),
		usecase.NewWorkoutUseCase(storage.NewWorkoutStorage(c.DB, log), usecase.NewReconciler(usecase.UnknownIDIgnore), nil, nil, log),
		make(chan struct{}, 2),
		1024,
		log,
	)

	srv := httptest.NewServer(handler.NewRouter(h, auth.NewResolver(creds, users), 0))
	t.Cleanup(srv.Close)
	return &api{t: t, server: srv, users: users}
}

func (a *api) do(method, path, token string, body any) *http.Response {
	a.t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.server.URL+path, rdr)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// signup registers username and logs in with a form body.
func (a *api) signup(username string) string {
	a.t.Helper()
	resp := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "Str0ng!pass",
	})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)

	form := url.Values{"username": {username + "@example.com"}, "password": {"Str0ng!pass"}}
	login, err := a.server.Client().PostForm(a.server.URL+"/api/v1/auth/login", form)
	require.NoError(a.t, err)
	defer login.Body.Close()
	require.Equal(a.t, http.StatusOK, login.StatusCode)

	tok := decode[map[string]any](a.t, login)
	assert.Equal(a.t, "bearer", tok["token_type"])
	return tok["access_token"].(string)
}

func (a *api) create(path, token string, body any) int64 {
	a.t.Helper()
	resp := a.do(http.MethodPost, path, token, body)
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)
	return int64(decode[map[string]any](a.t, resp)["id"].(float64))
}

func TestRegisterLoginMe(t *testing.T) {
	a := newAPI(t)
	token := a.signup("alice")

	resp := a.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[map[string]any](t, resp)
	assert.Equal(t, "alice", me["username"])
	assert.Equal(t, "alice@example.com", me["email"])
	assert.NotContains(t, me, "password_hash")

	resp = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "Str0ng!pass",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "JSON login")
}

func TestRegisterErrors(t *testing.T) {
	a := newAPI(t)
	a.signup("alice")

	resp := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "alice@example.com", "username": "alice2", "password": "Str0ng!pass",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "bob@example.com", "username": "bob", "password": "abc",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Contains(t, body["error"], "at least 8 characters")

	resp = a.do(http.MethodPost, "/api/v1/auth/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginFailures(t *testing.T) {
	a := newAPI(t)
	a.signup("alice")

	resp := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))

	u, err := a.users.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	u.IsActive = false
	require.NoError(t, a.users.UpdateUser(context.Background(), u))

	resp = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice@example.com", "password": "Str0ng!pass",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newAPI(t)
	token := a.signup("alice")

	for _, tok := range []string{"", "garbage"} {
		resp := a.do(http.MethodGet, "/api/v1/workouts", tok, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	}

	// a token for a deactivated account is refused with 403
	u, err := a.users.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	u.IsActive = false
	require.NoError(t, a.users.UpdateUser(context.Background(), u))

	resp := a.do(http.MethodGet, "/api/v1/workouts", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	resp := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
}

func TestWorkoutReconcileOverHTTP(t *testing.T) {
	a := newAPI(t)
	token := a.signup("alice")

	typeID := a.create("/api/v1/workout-types", token, map[string]any{"name": "Legs"})
	squat := a.create("/api/v1/exercises", token, map[string]any{"name": "Squat", "muscle_groups": []string{"quads"}})
	lunge := a.create("/api/v1/exercises", token, map[string]any{"name": "Lunge"})

	workoutID := a.create("/api/v1/workouts", token, map[string]any{
		"name":            "Leg Day",
		"workout_type_id": typeID,
		"exercises": []any{
			map[string]any{"exercise_id": squat, "sets": []any{
				map[string]any{"set_number": 1, "weight": 100, "reps": 5},
				map[string]any{"set_number": 2, "weight": 110, "reps": 3},
			}},
		},
	})

	patch := `{
		"description": "heavy",
		"exercises": [
			{"exercise_id": ` + jsonInt(lunge) + `, "sets": [{"set_number": 1, "weight": 40, "reps": 12}]},
			{"id": 1, "notes": "low bar", "sets": [
				{"id": 1, "weight": 105},
				{"set_number": 3, "weight": 120, "reps": 1}
			]}
		]
	}`
	resp := a.do(http.MethodPatch, "/api/v1/workouts/"+jsonInt(workoutID), token, patch)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "leg_day_after_patch", withoutTimestamps(t, resp))

	// sending the same payload again changes nothing
	resp = a.do(http.MethodPatch, "/api/v1/workouts/"+jsonInt(workoutID), token, patch)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	again := decode[map[string]any](t, resp)
	assert.Len(t, again["exercises"], 2)

	resp = a.do(http.MethodPatch, "/api/v1/workouts/"+jsonInt(workoutID), token,
		`{"exercises": [{"exercise_id": `+jsonInt(squat)+`, "sets": [{"weight": 1}]}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWorkoutCrossOwnerIsNotFound(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	bob := a.signup("bob")

	typeID := a.create("/api/v1/workout-types", alice, map[string]any{"name": "Legs"})
	workoutID := a.create("/api/v1/workouts", alice, map[string]any{"name": "Leg Day", "workout_type_id": typeID})
	path := "/api/v1/workouts/" + jsonInt(workoutID)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, path, bob, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPatch, path, bob, `{"name": "mine"}`).StatusCode)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, path, bob, nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, path, alice, nil).StatusCode)
}

func TestSingleExerciseRoutes(t *testing.T) {
	a := newAPI(t)
	token := a.signup("alice")
	typeID := a.create("/api/v1/workout-types", token, map[string]any{"name": "Legs"})
	squat := a.create("/api/v1/exercises", token, map[string]any{"name": "Squat"})
	workoutID := a.create("/api/v1/workouts", token, map[string]any{"name": "Leg Day", "workout_type_id": typeID})
	base := "/api/v1/workouts/" + jsonInt(workoutID) + "/exercises"

	resp := a.do(http.MethodPost, base, token, map[string]any{
		"exercise_id": squat,
		"sets":        []any{map[string]any{"set_number": 1, "reps": 5}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	w := decode[map[string]any](t, resp)
	entries := w["exercises"].([]any)
	require.Len(t, entries, 1)
	entryID := jsonInt(int64(entries[0].(map[string]any)["id"].(float64)))

	resp = a.do(http.MethodPut, base+"/"+entryID, token, `{"notes": "pause"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(http.MethodDelete, base+"/"+entryID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[map[string]any](t, resp)["exercises"])

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, base+"/"+entryID, token, nil).StatusCode)
}

func TestCatalogRoutes(t *testing.T) {
	a := newAPI(t)
	token := a.signup("alice")

	a.create("/api/v1/exercises", token, map[string]any{"name": "Squat", "muscle_groups": []string{"quads", "glutes"}})
	a.create("/api/v1/exercises", token, map[string]any{"name": "Bench", "muscle_groups": []string{"chest"}})

	resp := a.do(http.MethodGet, "/api/v1/exercises?muscle_groups=glutes,calves", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]map[string]any](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Squat", list[0]["name"])

	resp = a.do(http.MethodGet, "/api/v1/exercises?limit=1&skip=1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, resp), 1)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/v1/exercises?limit=x", token, nil).StatusCode)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/v1/exercises", token, map[string]any{"name": "Bench"}).StatusCode)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/v1/exercises/abc", token, nil).StatusCode)
}

func TestOptionalBackendsAnswer503(t *testing.T) {
	a := newAPI(t)
	token := a.signup("alice")
	typeID := a.create("/api/v1/workout-types", token, map[string]any{"name": "Legs"})
	workoutID := a.create("/api/v1/workouts", token, map[string]any{"name": "Leg Day", "workout_type_id": typeID})

	resp := a.do(http.MethodPost, "/api/v1/workouts/"+jsonInt(workoutID)+"/export", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPut, a.server.URL+"/api/v1/workout-types/"+jsonInt(typeID)+"/icon", strings.NewReader("png"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "image/png")
	icon, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer icon.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, icon.StatusCode)
}

func TestIconUploadValidation(t *testing.T) {
	a := newAPI(t)
	token := a.signup("alice")
	typeID := a.create("/api/v1/workout-types", token, map[string]any{"name": "Legs"})
	path := a.server.URL + "/api/v1/workout-types/" + jsonInt(typeID) + "/icon"

	for name, tc := range map[string]struct {
		contentType string
		body        string
		want        int
	}{
		"wrong type": {"text/plain", "hello", http.StatusUnsupportedMediaType},
		"too large":  {"image/png", strings.Repeat("x", 2048), http.StatusRequestEntityTooLarge},
	} {
		t.Run(name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPut, path, strings.NewReader(tc.body))
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", tc.contentType)
			resp, err := a.server.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func jsonInt(v int64) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}

// withoutTimestamps drops created_at fields so the golden file is stable.
func withoutTimestamps(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	var v any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	var strip func(any)
	strip = func(v any) {
		switch x := v.(type) {
		case map[string]any:
			delete(x, "created_at")
			for _, child := range x {
				strip(child)
			}
		case []any:
			for _, child := range x {
				strip(child)
			}
		}
	}
	strip(v)

	out, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	return append(out, '\n')
}
