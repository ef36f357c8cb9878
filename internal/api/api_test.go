package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/fitmin/internal/catalog"
	"github.com/joescharf/fitmin/internal/coach"
	"github.com/joescharf/fitmin/internal/models"
	"github.com/joescharf/fitmin/internal/stats"
	"github.com/joescharf/fitmin/internal/store"
	"github.com/joescharf/fitmin/internal/workout"
)

type advisorFunc func(ctx context.Context, prompt string, history []models.Turn) (string, error)

func (f advisorFunc) Advise(ctx context.Context, prompt string, history []models.Turn) (string, error) {
	return f(ctx, prompt, history)
}

func setupTestServer(t *testing.T, advisor coach.Advisor) (*Server, store.Store) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })

	agg := stats.Load(context.Background(), s, nil)
	workouts := workout.NewManager(agg, nil)
	t.Cleanup(func() { _ = workouts.Close() })

	srv := NewServer(catalog.Default(), agg, workouts, coach.NewTranscript(advisor, nil), nil)
	return srv, s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetStats_Seed(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	w := do(t, srv.Router(), "GET", "/api/v1/stats", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	var got models.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, stats.Seed(), got)
}

func TestRequestID_Propagated(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORS_Preflight(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	w := do(t, srv.Router(), "OPTIONS", "/api/v1/stats", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListCategories(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	w := do(t, srv.Router(), "GET", "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []categoryEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, len(models.Categories))
	assert.Equal(t, models.CategoryAll, got[0].ID)
	assert.NotEmpty(t, got[0].Label)
}

func TestListExercises(t *testing.T) {
	srv, _ := setupTestServer(t, nil)
	router := srv.Router()

	w := do(t, router, "GET", "/api/v1/exercises", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []exerciseEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, len(catalog.Default().All()))

	w = do(t, router, "GET", "/api/v1/exercises?category=legs", "")
	require.Equal(t, http.StatusOK, w.Code)
	var legs []exerciseEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &legs))
	require.NotEmpty(t, legs)
	for _, ex := range legs {
		assert.Equal(t, models.CategoryLegs, ex.Category)
		assert.NotEmpty(t, ex.Badge)
	}

	w = do(t, router, "GET", "/api/v1/exercises?category=yoga", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetExercise(t *testing.T) {
	srv, _ := setupTestServer(t, nil)
	router := srv.Router()

	w := do(t, router, "GET", "/api/v1/exercises/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var ex exerciseEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ex))
	assert.Equal(t, "2", ex.ID)
	assert.Equal(t, "15ت", ex.Badge)

	w = do(t, router, "GET", "/api/v1/exercises/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, "GET", "/api/v1/exercises/daily", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWorkoutLifecycle_RepBased(t *testing.T) {
	srv, s := setupTestServer(t, nil)
	router := srv.Router()

	w := do(t, router, "GET", "/api/v1/workout", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, "POST", "/api/v1/workout", `{"exercise_id":"2"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var snap workout.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, workout.ModeReps, snap.Mode)
	assert.Equal(t, workout.StateActive, snap.State)

	// A second start is refused while the first is live.
	w = do(t, router, "POST", "/api/v1/workout", `{"exercise_id":"3"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, "POST", "/api/v1/workout/finish", "")
	require.Equal(t, http.StatusOK, w.Code)
	var fin finishResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fin))
	assert.Equal(t, workout.StateFinished, fin.Workout.State)
	assert.Equal(t, 25, fin.Stats.TotalWorkouts)
	assert.Equal(t, 88, fin.Stats.TotalMinutes)

	// Persisted through the store.
	data, err := s.Get(context.Background(), stats.Key)
	require.NoError(t, err)
	persisted, err := stats.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 25, persisted.TotalWorkouts)

	// Finished sessions are replaced on the next start.
	w = do(t, router, "POST", "/api/v1/workout", `{"exercise_id":"3"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, "DELETE", "/api/v1/workout", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, "DELETE", "/api/v1/workout", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkoutPauseToggle(t *testing.T) {
	srv, _ := setupTestServer(t, nil)
	router := srv.Router()

	w := do(t, router, "POST", "/api/v1/workout", `{"exercise_id":"1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, "POST", "/api/v1/workout/pause", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap workout.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, workout.StatePaused, snap.State)

	w = do(t, router, "POST", "/api/v1/workout/pause", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, workout.StateRunning, snap.State)
}

func TestStartWorkout_BadRequests(t *testing.T) {
	srv, _ := setupTestServer(t, nil)
	router := srv.Router()

	assert.Equal(t, http.StatusBadRequest, do(t, router, "POST", "/api/v1/workout", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, "POST", "/api/v1/workout", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, "POST", "/api/v1/workout", `{"exercise_id":"99"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, "POST", "/api/v1/workout/pause", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, "POST", "/api/v1/workout/finish", "").Code)
}

func TestResetStats(t *testing.T) {
	srv, _ := setupTestServer(t, nil)
	router := srv.Router()

	require.Equal(t, http.StatusCreated, do(t, router, "POST", "/api/v1/workout", `{"exercise_id":"2"}`).Code)
	require.Equal(t, http.StatusOK, do(t, router, "POST", "/api/v1/workout/finish", "").Code)

	w := do(t, router, "DELETE", "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, stats.Seed(), got)
}

func TestChat(t *testing.T) {
	srv, _ := setupTestServer(t, advisorFunc(func(_ context.Context, prompt string, _ []models.Turn) (string, error) {
		return "جواب: " + prompt, nil
	}))
	router := srv.Router()

	w := do(t, router, "GET", "/api/v1/chat", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"turns":[],"busy":false}`, w.Body.String())

	w = do(t, router, "POST", "/api/v1/chat", `{"message":"كيف أبدأ؟"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var reply models.Turn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, models.RoleModel, reply.Role)
	assert.Equal(t, "جواب: كيف أبدأ؟", reply.Text)

	w = do(t, router, "GET", "/api/v1/chat", "")
	var conv chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
	assert.Len(t, conv.Turns, 2)
	assert.False(t, conv.Busy)

	assert.Equal(t, http.StatusBadRequest, do(t, router, "POST", "/api/v1/chat", `{"message":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, "POST", "/api/v1/chat", `nope`).Code)
}

func TestChat_AdvisorFailure(t *testing.T) {
	srv, _ := setupTestServer(t, advisorFunc(func(context.Context, string, []models.Turn) (string, error) {
		return "", errors.New("network down")
	}))

	w := do(t, srv.Router(), "POST", "/api/v1/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var reply models.Turn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, coach.FallbackError, reply.Text)
}

func TestChat_Busy(t *testing.T) {
	release := make(chan struct{})
	srv, _ := setupTestServer(t, advisorFunc(func(context.Context, string, []models.Turn) (string, error) {
		<-release
		return "ok", nil
	}))
	router := srv.Router()

	_, err := srv.transcript.SendAsync(context.Background(), "first")
	require.NoError(t, err)

	w := do(t, router, "POST", "/api/v1/chat", `{"message":"second"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	close(release)
}
