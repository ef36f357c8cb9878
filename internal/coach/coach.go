package coach

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/fitmin/internal/models"
)

// User-visible replies substituted when the advice service gives nothing usable.
const (
	FallbackEmpty = "عذراً، لم أتمكن من الحصول على رد مفيد."
	FallbackError = "عذراً، واجهت مشكلة في الاتصال بمدربك الذكي. حاول مرة أخرى لاحقاً."
)

var (
	ErrBusy         = errors.New("coach is still answering the previous message")
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoAdvisor    = errors.New("no advice service configured")
)

// Advisor is the remote advice service. history holds the turns before
// prompt; an empty reply with a nil error means the service had nothing to say.
type Advisor interface {
	Advise(ctx context.Context, prompt string, history []models.Turn) (string, error)
}

// Option configures a Transcript.
type Option func(*Transcript)

// WithTimeout bounds each advice request. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(t *Transcript) { t.timeout = d }
}

// Transcript is the append-only coaching conversation for one process.
type Transcript struct {
	mu    sync.Mutex
	turns []models.Turn
	busy  bool

	advisor Advisor
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time
}

// NewTranscript creates an empty transcript. advisor may be nil, in which
// case every message is answered with FallbackError.
func NewTranscript(advisor Advisor, log *slog.Logger, opts ...Option) *Transcript {
	if log == nil {
		log = slog.Default()
	}
	t := &Transcript{
		advisor: advisor,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Turns returns a copy of the transcript.
func (t *Transcript) Turns() []models.Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Turn(nil), t.turns...)
}

// Busy reports whether an advice request is in flight.
func (t *Transcript) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy
}

// Send appends text as a user turn, asks the advisor and appends its reply.
// It returns the reply turn.
func (t *Transcript) Send(ctx context.Context, text string) (models.Turn, error) {
	ch, err := t.SendAsync(ctx, text)
	if err != nil {
		return models.Turn{}, err
	}
	return <-ch, nil
}

// SendAsync appends the user turn and marks the transcript busy before it
// returns; the reply turn is appended and delivered on the channel once the
// advisor answers. Blank text returns ErrEmptyMessage and a request already
// in flight returns ErrBusy, both without touching the transcript.
func (t *Transcript) SendAsync(ctx context.Context, text string) (<-chan models.Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	t.mu.Lock()
	if t.busy {
		t.mu.Unlock()
		return nil, ErrBusy
	}
	history := append([]models.Turn(nil), t.turns...)
	t.turns = append(t.turns, t.newTurn(models.RoleUser, text))
	t.busy = true
	t.mu.Unlock()

	// The request is never cancelled by the caller; a late reply still lands.
	ctx = context.WithoutCancel(ctx)

	ch := make(chan models.Turn, 1)
	go func() {
		defer close(ch)
		reply := t.advise(ctx, text, history)

		t.mu.Lock()
		turn := t.newTurn(models.RoleModel, reply)
		t.turns = append(t.turns, turn)
		t.busy = false
		t.mu.Unlock()

		ch <- turn
	}()
	return ch, nil
}

// advise calls the advisor and applies the fallback contract.
func (t *Transcript) advise(ctx context.Context, prompt string, history []models.Turn) string {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	reply, err := Ask(ctx, t.advisor, prompt, history)
	if err != nil {
		t.log.Warn("advice request failed", "error", err)
	}
	return reply
}

// Ask queries advisor and always yields displayable text: FallbackError on
// failure, FallbackEmpty on a blank reply. The error is returned for logging.
func Ask(ctx context.Context, advisor Advisor, prompt string, history []models.Turn) (string, error) {
	if advisor == nil {
		return FallbackError, ErrNoAdvisor
	}
	reply, err := advisor.Advise(ctx, prompt, history)
	if err != nil {
		return FallbackError, err
	}
	if strings.TrimSpace(reply) == "" {
		return FallbackEmpty, nil
	}
	return reply, nil
}

func (t *Transcript) newTurn(role models.Role, text string) models.Turn {
	return models.Turn{
		ID:        ulid.Make().String(),
		Role:      role,
		Text:      text,
		CreatedAt: t.now().UTC(),
	}
}
