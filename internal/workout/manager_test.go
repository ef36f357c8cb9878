package workout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/fitmin/internal/models"
)

type fakeRecorder struct {
	mu      sync.Mutex
	minutes []float64
	err     error
}

func (r *fakeRecorder) RecordCompletion(_ context.Context, minutes float64) (models.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.minutes = append(r.minutes, minutes)
	return models.Stats{}, r.err
}

func (r *fakeRecorder) recorded() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.minutes...)
}

func newTestManager(t *testing.T) (*Manager, *fakeRecorder) {
	t.Helper()
	rec := &fakeRecorder{}
	m := NewManager(rec, nil, WithClock(&fakeClock{}))
	t.Cleanup(func() { _ = m.Close() })
	return m, rec
}

func TestManager_StartAndFinish(t *testing.T) {
	m, rec := newTestManager(t)

	s, err := m.Start(timedExercise(30))
	require.NoError(t, err)

	cur, err := m.Current()
	require.NoError(t, err)
	assert.Same(t, s, cur)

	s.Finish()
	assert.Equal(t, []float64{0.5}, rec.recorded())
}

func TestManager_StartWhileInProgress(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Start(repExercise(10))
	require.NoError(t, err)

	_, err = m.Start(timedExercise(30))
	assert.ErrorIs(t, err, ErrSessionInProgress)
}

func TestManager_StartAfterFinishDismissesPrevious(t *testing.T) {
	m, rec := newTestManager(t)

	first, err := m.Start(repExercise(10))
	require.NoError(t, err)
	first.Finish()

	second, err := m.Start(timedExercise(30))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, StateClosed, first.State())
	assert.Len(t, rec.recorded(), 1)
}

func TestManager_CloseAbandons(t *testing.T) {
	m, rec := newTestManager(t)

	s, err := m.Start(timedExercise(30))
	require.NoError(t, err)
	s.Tick()

	require.NoError(t, m.Close())
	assert.Equal(t, StateClosed, s.State())
	assert.Empty(t, rec.recorded())

	_, err = m.Current()
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, m.Close(), ErrNoSession)
}

func TestManager_RecorderErrorIsNotFatal(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	m := NewManager(rec, nil, WithClock(&fakeClock{}))

	s, err := m.Start(repExercise(5))
	require.NoError(t, err)
	s.Finish()

	assert.Equal(t, StateFinished, s.State())
	assert.Len(t, rec.recorded(), 1)
}

func TestManager_NilRecorder(t *testing.T) {
	m := NewManager(nil, nil)
	s, err := m.Start(repExercise(5))
	require.NoError(t, err)
	assert.NotPanics(t, s.Finish)
}
