package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/joescharf/fitmin/internal/models"
	"github.com/joescharf/fitmin/internal/store"
)

const (
	// Key is the store key holding the serialized aggregate.
	Key = "fitness_stats"

	// WindowSize is the fixed length of the rolling history.
	WindowSize = 7

	// TodayLabel marks history points appended by completed workouts.
	TodayLabel = "اليوم"
)

// Seed returns the snapshot used when no valid state has been stored.
func Seed() models.Stats {
	return models.Stats{
		Streak:        7,
		TotalWorkouts: 24,
		TotalMinutes:  87,
		History: []models.HistoryPoint{
			{Date: "السبت", Value: 10},
			{Date: "الأحد", Value: 25},
			{Date: "الاثنين", Value: 15},
			{Date: "الثلاثاء", Value: 30},
			{Date: "الأربعاء", Value: 12},
			{Date: "الخميس", Value: 20},
			{Date: "الجمعة", Value: 35},
		},
	}
}

// Decode parses a stored snapshot. Anything that does not describe a full
// rolling window is rejected.
func Decode(data []byte) (models.Stats, error) {
	var s models.Stats
	if err := json.Unmarshal(data, &s); err != nil {
		return models.Stats{}, fmt.Errorf("parse stats: %w", err)
	}
	if len(s.History) != WindowSize {
		return models.Stats{}, fmt.Errorf("history has %d entries, want %d", len(s.History), WindowSize)
	}
	if s.Streak < 0 || s.TotalWorkouts < 0 || s.TotalMinutes < 0 {
		return models.Stats{}, fmt.Errorf("negative counters")
	}
	return s, nil
}

// Apply returns s updated with one completed workout of the given minutes.
// History values keep the unrounded sum; TotalMinutes rounds half up.
func Apply(s models.Stats, minutes float64) models.Stats {
	out := s.Clone()
	out.TotalWorkouts++
	out.TotalMinutes = int(math.Floor(float64(s.TotalMinutes) + minutes + 0.5))

	var last float64
	if n := len(s.History); n > 0 {
		last = s.History[n-1].Value
		out.History = out.History[1:]
	}
	out.History = append(out.History, models.HistoryPoint{Date: TodayLabel, Value: last + minutes})
	return out
}

// Aggregator is the process-wide owner of the stats snapshot. Every mutation
// is serialized and persisted as a whole.
type Aggregator struct {
	mu    sync.Mutex
	stats models.Stats
	store store.Store
	log   *slog.Logger
}

// Load reads the stored snapshot once. Missing or malformed data falls back
// to Seed; Load never fails.
func Load(ctx context.Context, st store.Store, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	a := &Aggregator{stats: Seed(), store: st, log: log}
	if st == nil {
		return a
	}

	data, err := st.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn("failed to read stats, using defaults", "error", err)
		}
		return a
	}

	s, err := Decode(data)
	if err != nil {
		log.Warn("stored stats are malformed, using defaults", "error", err)
		return a
	}
	a.stats = s
	return a
}

// Snapshot returns a copy of the current stats.
func (a *Aggregator) Snapshot() models.Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats.Clone()
}

// RecordCompletion folds one completed workout into the aggregate and
// persists it. The in-memory update stands even if persisting fails.
func (a *Aggregator) RecordCompletion(ctx context.Context, minutes float64) (models.Stats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats = Apply(a.stats, minutes)
	return a.stats.Clone(), a.persistLocked(ctx)
}

// Reset restores the seed snapshot.
func (a *Aggregator) Reset(ctx context.Context) (models.Stats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats = Seed()
	return a.stats.Clone(), a.persistLocked(ctx)
}

func (a *Aggregator) persistLocked(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	data, err := json.Marshal(a.stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := a.store.Put(ctx, Key, data); err != nil {
		return fmt.Errorf("persist stats: %w", err)
	}
	return nil
}
