package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// Memory is an in-process key-value store with the same surface as Store.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
	rounds []model.RoundAggregate
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: map[string][]byte{}}
}

// Bytes returns a copy of the value stored under key.
func (m *Memory) Bytes(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// SetBytes stores a copy of value under key.
func (m *Memory) SetBytes(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Int returns the integer stored under key. A missing key reads as zero.
func (m *Memory) Int(ctx context.Context, key string) (int, error) {
	raw, ok, err := m.Bytes(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q: %w", key, err)
	}
	return n, nil
}

// SetInt stores an integer under key.
func (m *Memory) SetInt(ctx context.Context, key string, value int) error {
	return m.SetBytes(ctx, key, []byte(strconv.Itoa(value)))
}

// UpdateBytes applies fn to the value under key while holding the lock.
func (m *Memory) UpdateBytes(_ context.Context, key string, fn func(current []byte, ok bool) ([]byte, bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.values[key]
	next, changed, err := fn(append([]byte(nil), current...), ok)
	if err != nil || !changed {
		return err
	}
	m.values[key] = append([]byte(nil), next...)
	return nil
}

// Add increments the integer stored under key. A missing key starts from zero.
func (m *Memory) Add(_ context.Context, key string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := 0
	if raw, ok := m.values[key]; ok {
		n, err := strconv.Atoi(string(raw))
		if err != nil {
			return fmt.Errorf("failed to parse %q: %w", key, err)
		}
		current = n
	}
	m.values[key] = []byte(strconv.Itoa(current + delta))
	return nil
}

// InsertRound appends a completed round to the history.
func (m *Memory) InsertRound(_ context.Context, record model.GameRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := int64(len(m.rounds) + 1)
	m.rounds = append(m.rounds, model.RoundAggregate{
		RoundID:     id,
		CompletedAt: record.Date,
		Correct:     record.Correct,
		Total:       record.Total,
	})
	return id, nil
}

// ListRounds returns stored rounds filtered by stats config, oldest first.
func (m *Memory) ListRounds(_ context.Context, cfg model.StatsConfig) ([]model.RoundAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RoundAggregate, 0, len(m.rounds))
	for _, r := range m.rounds {
		if cfg.Since != nil && r.CompletedAt.Before(*cfg.Since) {
			continue
		}
		out = append(out, r)
	}
	if cfg.Last > 0 && len(out) > cfg.Last {
		out = out[len(out)-cfg.Last:]
	}
	return out, nil
}
