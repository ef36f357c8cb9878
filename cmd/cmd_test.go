package cmd

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/joescharf/fitmin/internal/models"
	"github.com/joescharf/fitmin/internal/output"
)

// syncBuffer is a bytes.Buffer safe for the cadence goroutine and the
// command loop to write concurrently.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureUI points the shared UI at a buffer and returns it.
func captureUI(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	ui = &output.UI{Out: buf, ErrOut: buf}
	return buf
}

type advisorFunc func(ctx context.Context, prompt string, history []models.Turn) (string, error)

func (f advisorFunc) Advise(ctx context.Context, prompt string, history []models.Turn) (string, error) {
	return f(ctx, prompt, history)
}
