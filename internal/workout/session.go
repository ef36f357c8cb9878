package workout

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/fitmin/internal/models"
)

// Mode is fixed when a session is created.
type Mode string

const (
	ModeTimed Mode = "timed"
	ModeReps  Mode = "rep-based"
)

// State is the lifecycle state of a session.
type State string

const (
	StateRunning  State = "running"
	StateActive   State = "active"
	StatePaused   State = "paused"
	StateFinished State = "finished"
	StateClosed   State = "closed"
)

// RepMinutes is the flat effort estimate reported for rep-based exercises.
const RepMinutes = 1.0

// tickInterval is the countdown cadence.
const tickInterval = time.Second

// CompletionFunc receives the elapsed-minutes estimate when a session finishes.
type CompletionFunc func(minutes float64)

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock that drives the countdown.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithCompletion registers the completion callback. It runs at most once.
func WithCompletion(fn CompletionFunc) Option {
	return func(s *Session) { s.onComplete = fn }
}

// WithTickHook registers a callback invoked after every applied tick.
func WithTickHook(fn func(Snapshot)) Option {
	return func(s *Session) { s.onTick = fn }
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	ID        string          `json:"id"`
	Exercise  models.Exercise `json:"exercise"`
	Mode      Mode            `json:"mode"`
	State     State           `json:"state"`
	Remaining int             `json:"remaining"`
	Progress  float64         `json:"progress"`
	Minutes   float64         `json:"minutes,omitempty"`
}

// cadence is the acquired countdown handle. It exists only while Running.
type cadence struct {
	ticker Ticker
	cancel context.CancelFunc
}

// Session is a single exercise attempt.
type Session struct {
	mu sync.Mutex

	id        string
	exercise  models.Exercise
	mode      Mode
	state     State
	remaining int
	minutes   float64

	clock      Clock
	onComplete CompletionFunc
	onTick     func(Snapshot)
	cadence    *cadence

	done    chan struct{}
	endOnce sync.Once
}

// New creates a session for ex. Timed exercises start Running with the
// countdown already ticking; rep-based exercises start Active.
func New(ex models.Exercise, opts ...Option) *Session {
	s := &Session{
		id:       ulid.Make().String(),
		exercise: ex,
		clock:    realClock{},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if ex.Timed() {
		s.mode = ModeTimed
		s.state = StateRunning
		s.remaining = ex.Duration
		s.acquireCadenceLocked()
	} else {
		s.mode = ModeReps
		s.state = StateActive
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Done is closed once the session is finished or closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:        s.id,
		Exercise:  s.exercise,
		Mode:      s.mode,
		State:     s.state,
		Remaining: s.remaining,
		Progress:  s.progressLocked(),
		Minutes:   s.minutes,
	}
}

// progressLocked is the circular indicator percentage.
func (s *Session) progressLocked() float64 {
	if s.mode != ModeTimed || s.exercise.Duration == 0 {
		return 100
	}
	return float64(s.remaining) / float64(s.exercise.Duration) * 100
}

// Tick advances the countdown by one second. It is a no-op unless Running.
func (s *Session) Tick() {
	s.mu.Lock()
	snap, ticked, finished := s.tickLocked()
	s.mu.Unlock()
	s.notify(snap, ticked, finished)
}

func (s *Session) tickLocked() (snap Snapshot, ticked, finished bool) {
	if s.state != StateRunning {
		return Snapshot{}, false, false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		finished = s.finishLocked()
	}
	return s.snapshotLocked(), true, finished
}

// TogglePause flips Running and Paused. Rep-based sessions have no countdown
// and ignore it.
func (s *Session) TogglePause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		s.releaseCadenceLocked()
		s.state = StatePaused
	case StatePaused:
		s.state = StateRunning
		s.acquireCadenceLocked()
	}
}

// Finish ends the session immediately and reports the elapsed-minutes
// estimate. Calling it again is a no-op.
func (s *Session) Finish() {
	s.mu.Lock()
	finished := s.finishLocked()
	s.mu.Unlock()
	if finished {
		s.report()
	}
}

func (s *Session) finishLocked() bool {
	switch s.state {
	case StateRunning, StatePaused, StateActive:
	default:
		return false
	}

	s.releaseCadenceLocked()
	s.state = StateFinished
	if s.mode == ModeTimed {
		s.minutes = float64(s.exercise.Duration) / 60
	} else {
		s.minutes = RepMinutes
	}
	s.end()
	return true
}

// Close discards the session in any state. Closing before Finished is an
// abandonment and reports nothing.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseCadenceLocked()
	s.state = StateClosed
	s.end()
}

func (s *Session) end() {
	s.endOnce.Do(func() { close(s.done) })
}

func (s *Session) notify(snap Snapshot, ticked, finished bool) {
	if ticked && s.onTick != nil {
		s.onTick(snap)
	}
	if finished {
		s.report()
	}
}

func (s *Session) report() {
	if s.onComplete == nil {
		return
	}
	s.mu.Lock()
	minutes := s.minutes
	s.mu.Unlock()
	s.onComplete(minutes)
}

// acquireCadenceLocked starts the one-second countdown. Callers hold s.mu.
func (s *Session) acquireCadenceLocked() {
	if s.cadence != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &cadence{ticker: s.clock.NewTicker(tickInterval), cancel: cancel}
	s.cadence = c

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.ticker.C():
				s.cadenceTick(ctx)
			}
		}
	}()
}

// releaseCadenceLocked stops the ticker and cancels its goroutine. Callers hold s.mu.
func (s *Session) releaseCadenceLocked() {
	if s.cadence == nil {
		return
	}
	s.cadence.cancel()
	s.cadence.ticker.Stop()
	s.cadence = nil
}

// cadenceTick applies a tick delivered by the cadence goroutine unless the
// cadence was released while the tick was in flight.
func (s *Session) cadenceTick(ctx context.Context) {
	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	snap, ticked, finished := s.tickLocked()
	s.mu.Unlock()
	s.notify(snap, ticked, finished)
}
