package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tuiquiz.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	start := time.Unix(0, 0).UTC()
	svc := NewService(st, WithHistory(st), WithClock(func() time.Time {
		start = start.Add(time.Minute)
		return start
	}))
	for _, correct := range []int{4, 6, 9} {
		if err := svc.Store(ctx, correct, model.QuestionsPerRound); err != nil {
			t.Fatalf("store round: %v", err)
		}
	}

	cfg := model.StatsConfig{Last: 2, CurveWindow: 2}
	report, err := BuildReport(ctx, svc, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(report.Rounds))
	}
	if report.Rounds[0].Correct != 6 || report.Rounds[1].Correct != 9 {
		t.Fatalf("unexpected rounds: %+v", report.Rounds)
	}
	if report.Snapshot.GamesPlayed != 3 {
		t.Fatalf("expected 3 games in snapshot, got %d", report.Snapshot.GamesPlayed)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 40); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Rounds played: 3", "Best round: 9/10", "Accuracy: 63.33%", "History", "Accuracy trend"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, model.StatisticsSnapshot{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No rounds played yet.") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
