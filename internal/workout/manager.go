package workout

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/joescharf/fitmin/internal/models"
)

var (
	ErrSessionInProgress = errors.New("workout session already in progress")
	ErrNoSession         = errors.New("no workout session")
)

// Recorder receives completed-session effort. stats.Aggregator implements it.
type Recorder interface {
	RecordCompletion(ctx context.Context, minutes float64) (models.Stats, error)
}

// Manager owns the single live session and routes its completion to the
// recorder.
type Manager struct {
	mu       sync.Mutex
	current  *Session
	recorder Recorder
	opts     []Option
	log      *slog.Logger
}

// NewManager creates a Manager. Extra options are applied to every session
// it starts.
func NewManager(recorder Recorder, log *slog.Logger, opts ...Option) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		recorder: recorder,
		opts:     opts,
		log:      log,
	}
}

// Start begins a session for ex. A finished session that was never dismissed
// is closed first; an unfinished one blocks the start.
func (m *Manager) Start(ex models.Exercise, opts ...Option) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		if m.current.State() != StateFinished {
			return nil, ErrSessionInProgress
		}
		m.current.Close()
		m.current = nil
	}

	all := make([]Option, 0, len(m.opts)+len(opts)+1)
	all = append(all, m.opts...)
	all = append(all, opts...)
	all = append(all, WithCompletion(m.completion(ex)))

	s := New(ex, all...)
	m.current = s
	m.log.Debug("workout started", "session_id", s.ID(), "exercise", ex.ID, "mode", s.Snapshot().Mode)
	return s, nil
}

// Current returns the live session.
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, ErrNoSession
	}
	return m.current, nil
}

// Close discards the live session regardless of its state.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ErrNoSession
	}
	if m.current.State() != StateFinished {
		m.log.Info("workout abandoned", "session_id", m.current.ID())
	}
	m.current.Close()
	m.current = nil
	return nil
}

func (m *Manager) completion(ex models.Exercise) CompletionFunc {
	return func(minutes float64) {
		m.log.Info("workout completed", "exercise", ex.ID, "minutes", minutes)
		if m.recorder == nil {
			return
		}
		if _, err := m.recorder.RecordCompletion(context.Background(), minutes); err != nil {
			m.log.Warn("failed to record workout", "exercise", ex.ID, "error", err)
		}
	}
}
