package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGameRecordIsBetterThan(t *testing.T) {
	base := GameRecord{Correct: 7, Total: 10}
	if !(GameRecord{Correct: 8, Total: 10}).IsBetterThan(base) {
		t.Fatalf("expected 8/10 to beat 7/10")
	}
	if (GameRecord{Correct: 7, Total: 10, Date: time.Now()}).IsBetterThan(base) {
		t.Fatalf("expected tie to keep the existing record")
	}
	if (GameRecord{Correct: 3, Total: 10}).IsBetterThan(base) {
		t.Fatalf("expected 3/10 not to beat 7/10")
	}
}

func TestRoundSummaryMessage(t *testing.T) {
	s := RoundSummary{
		ResultLine:      "Your result: 9/10",
		GamesPlayed:     2,
		BestGame:        GameRecord{Correct: 9, Total: 10, Date: time.Date(2024, 1, 2, 3, 4, 0, 0, time.Local)},
		AccuracyPercent: 80,
	}
	out := s.Message()
	for _, want := range []string{"Your result: 9/10", "Quizzes played: 2", "Record: 9/10 (02.01.24 03:04)", "Average accuracy: 80.00%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("message missing %q: %s", want, out)
		}
	}
}

func TestLoadErrorUnwrap(t *testing.T) {
	err := &LoadError{Kind: KindCatalogLoad, Err: ErrEmptyCatalog}
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected errors.Is to match ErrEmptyCatalog")
	}
	if !strings.Contains(err.Error(), "failed to load catalog") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
