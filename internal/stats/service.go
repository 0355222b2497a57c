package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// Persisted keys. Each one is written independently.
const (
	KeyCorrect    = "correct"
	KeyTotal      = "total"
	KeyGamesCount = "gamesCount"
	KeyBestGame   = "bestGame"
)

// ErrPersistenceEncode marks a best-game record that could not be serialized.
var ErrPersistenceEncode = errors.New("failed to encode best game")

// KV is the durable backend the service writes through. Add and UpdateBytes
// must be atomic with respect to other writers of the same backend.
type KV interface {
	Int(ctx context.Context, key string) (int, error)
	Add(ctx context.Context, key string, delta int) error
	Bytes(ctx context.Context, key string) ([]byte, bool, error)
	UpdateBytes(ctx context.Context, key string, fn func(current []byte, ok bool) ([]byte, bool, error)) error
}

// RoundRecorder keeps a history of finished rounds.
type RoundRecorder interface {
	InsertRound(ctx context.Context, record model.GameRecord) (int64, error)
}

// Codec serializes the best-game record.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Service aggregates cross-round statistics.
type Service struct {
	mu      sync.Mutex
	kv      KV
	history RoundRecorder
	codec   Codec
	now     func() time.Time
	logger  *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithHistory appends every stored round to r.
func WithHistory(r RoundRecorder) Option {
	return func(s *Service) { s.history = r }
}

// WithCodec replaces the JSON codec used for the best game.
func WithCodec(c Codec) Option {
	return func(s *Service) { s.codec = c }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used for non-fatal warnings.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a statistics service backed by kv.
func NewService(kv KV, opts ...Option) *Service {
	s := &Service{
		kv:     kv,
		codec:  jsonCodec{},
		now:    time.Now,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store records one finished round. Counters are updated even when the best
// game cannot be encoded.
func (s *Service) Store(ctx context.Context, correct, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Add(ctx, KeyCorrect, correct); err != nil {
		return err
	}
	if err := s.kv.Add(ctx, KeyTotal, total); err != nil {
		return err
	}
	if err := s.kv.Add(ctx, KeyGamesCount, 1); err != nil {
		return err
	}

	record := model.GameRecord{Correct: correct, Total: total, Date: s.now()}
	if err := s.promote(ctx, record); err != nil {
		if !errors.Is(err, ErrPersistenceEncode) {
			return err
		}
		s.logger.Printf("warning: %v", err)
	}

	if s.history != nil {
		if _, err := s.history.InsertRound(ctx, record); err != nil {
			s.logger.Printf("failed to record round history: %v", err)
		}
	}
	return nil
}

// Snapshot returns the statistics as of now.
func (s *Service) Snapshot(ctx context.Context) (model.StatisticsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	correct, err := s.kv.Int(ctx, KeyCorrect)
	if err != nil {
		return model.StatisticsSnapshot{}, err
	}
	total, err := s.kv.Int(ctx, KeyTotal)
	if err != nil {
		return model.StatisticsSnapshot{}, err
	}
	games, err := s.kv.Int(ctx, KeyGamesCount)
	if err != nil {
		return model.StatisticsSnapshot{}, err
	}
	best, err := s.bestGame(ctx)
	if err != nil {
		return model.StatisticsSnapshot{}, err
	}
	return model.StatisticsSnapshot{
		TotalAccuracy: Accuracy(correct, total),
		GamesPlayed:   games,
		BestGame:      best,
		Correct:       correct,
		Total:         total,
	}, nil
}

// bestGame always reads the persisted record so other writers are seen.
func (s *Service) bestGame(ctx context.Context) (model.GameRecord, error) {
	raw, ok, err := s.kv.Bytes(ctx, KeyBestGame)
	if err != nil {
		return model.GameRecord{}, err
	}
	return s.decodeBest(raw, ok), nil
}

func (s *Service) decodeBest(raw []byte, ok bool) model.GameRecord {
	if !ok || len(raw) == 0 {
		return model.GameRecord{}
	}
	var record model.GameRecord
	if err := s.codec.Unmarshal(raw, &record); err != nil {
		s.logger.Printf("warning: failed to decode best game, treating as empty: %v", err)
		return model.GameRecord{}
	}
	return record
}

// promote replaces the persisted best game with record when it is strictly
// better. The comparison and the write happen in one update.
func (s *Service) promote(ctx context.Context, record model.GameRecord) error {
	return s.kv.UpdateBytes(ctx, KeyBestGame, func(raw []byte, ok bool) ([]byte, bool, error) {
		if !record.IsBetterThan(s.decodeBest(raw, ok)) {
			return nil, false, nil
		}
		data, err := s.codec.Marshal(record)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrPersistenceEncode, err)
		}
		return data, true, nil
	})
}
