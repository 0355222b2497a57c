// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"time"
)

// QuestionsPerRound is the fixed length of a round.
const QuestionsPerRound = 10

// Config defines play settings.
type Config struct {
	APIKey      string
	Endpoint    string
	CatalogPath string
	DBPath      string
	LogPath     string
	LockDelay   time.Duration
	Timeout     time.Duration
	ImageRPS    float64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Image is an opaque poster reference carried with a question.
type Image struct {
	URL  string
	Data []byte
}

// Question is a single yes/no question about a movie.
type Question struct {
	Image         Image
	Caption       string
	Text          string
	CorrectAnswer bool
}

// Step is the display model for a presented question.
type Step struct {
	Image    Image
	Caption  string
	Question string
	Position string
}

// Movie is one catalog entry.
type Movie struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Year     string `json:"year"`
	ImageURL string `json:"image"`
	Rating   string `json:"imDbRating"`
}

// GameRecord stores the result of one completed round.
type GameRecord struct {
	Correct int       `json:"correct"`
	Total   int       `json:"total"`
	Date    time.Time `json:"date"`
}

// IsBetterThan reports whether r beats other. Equal scores keep other.
func (r GameRecord) IsBetterThan(other GameRecord) bool {
	return r.Correct > other.Correct
}

// StatisticsSnapshot is a read-only view of the aggregated statistics.
type StatisticsSnapshot struct {
	TotalAccuracy float64
	GamesPlayed   int
	BestGame      GameRecord
	Correct       int
	Total         int
}

// RoundSummary describes a finished round for the result dialog.
type RoundSummary struct {
	Title           string
	ResultLine      string
	ButtonText      string
	GamesPlayed     int
	BestGame        GameRecord
	AccuracyPercent float64
}

// Message renders the dialog body.
func (s RoundSummary) Message() string {
	date := "-"
	if !s.BestGame.Date.IsZero() {
		date = s.BestGame.Date.Local().Format("02.01.06 15:04")
	}
	return fmt.Sprintf("%s\nQuizzes played: %d\nRecord: %d/%d (%s)\nAverage accuracy: %.2f%%",
		s.ResultLine,
		s.GamesPlayed,
		s.BestGame.Correct,
		s.BestGame.Total,
		date,
		s.AccuracyPercent,
	)
}

// RoundAggregate is a stored round used for reporting.
type RoundAggregate struct {
	RoundID     int64
	CompletedAt time.Time
	Correct     int
	Total       int
}

// LoadErrorKind identifies where a question source failed.
type LoadErrorKind int

const (
	KindCatalogLoad LoadErrorKind = iota
	KindQuestionLoad
)

func (k LoadErrorKind) String() string {
	switch k {
	case KindCatalogLoad:
		return "catalog"
	case KindQuestionLoad:
		return "question"
	default:
		return "unknown"
	}
}

// ErrEmptyCatalog is returned when no usable movies were loaded.
var ErrEmptyCatalog = errors.New("catalog is empty")

// LoadError reports a question source failure.
type LoadError struct {
	Kind LoadErrorKind
	Err  error
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case KindCatalogLoad:
		return fmt.Sprintf("failed to load catalog: %v", e.Err)
	case KindQuestionLoad:
		return fmt.Sprintf("failed to load question: %v", e.Err)
	default:
		return fmt.Sprintf("load failed: %v", e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
