package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/stats"
)

func fixedReport() stats.Report {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return stats.Report{
		Snapshot: model.StatisticsSnapshot{
			TotalAccuracy: 65,
			GamesPlayed:   2,
			BestGame:      model.GameRecord{Correct: 8, Total: 10, Date: base.Add(time.Hour)},
			Correct:       13,
			Total:         20,
		},
		Rounds: []model.RoundAggregate{
			{RoundID: 1, CompletedAt: base, Correct: 5, Total: 10},
			{RoundID: 2, CompletedAt: base.Add(time.Hour), Correct: 8, Total: 10},
		},
		Window: 1,
	}
}

func TestModelRendersOverview(t *testing.T) {
	var gotCfg model.StatsConfig
	load := func(_ context.Context, cfg model.StatsConfig) (stats.Report, error) {
		gotCfg = cfg
		return fixedReport(), nil
	}
	m := NewModel(load, model.StatsConfig{CurveWindow: 3})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	out := m.View()
	for _, want := range []string{"Overview", "Rounds", "8/10", "65.00%", "window=3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
	if gotCfg.CurveWindow != 3 {
		t.Fatalf("expected loader to receive window 3, got %d", gotCfg.CurveWindow)
	}
}

func TestModelRoundsTabNewestFirst(t *testing.T) {
	load := func(context.Context, model.StatsConfig) (stats.Report, error) {
		return fixedReport(), nil
	}
	m := NewModel(load, model.StatsConfig{CurveWindow: 1})
	rows := roundRows(m.report.Rounds)
	if len(rows) != 2 || rows[0][0] != "2" || rows[1][2] != "5/10" {
		t.Fatalf("unexpected rows %v", rows)
	}
	m.moveTab(1)
	if m.activeTab != tabRounds {
		t.Fatalf("expected rounds tab")
	}
	m.moveTab(1)
	if m.activeTab != tabOverview {
		t.Fatalf("expected wrap to overview")
	}
}

func TestModelLoadError(t *testing.T) {
	load := func(context.Context, model.StatsConfig) (stats.Report, error) {
		return stats.Report{}, errors.New("db locked")
	}
	m := NewModel(load, model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	if out := m.View(); !strings.Contains(out, "db locked") {
		t.Fatalf("expected error in footer:\n%s", out)
	}
}

func TestApplyFilter(t *testing.T) {
	load := func(context.Context, model.StatsConfig) (stats.Report, error) {
		return stats.Report{}, nil
	}
	m := NewModel(load, model.StatsConfig{CurveWindow: 1})
	m.filterInputs[0].SetValue("2024-01-02")
	m.filterInputs[1].SetValue("5")
	m.filterInputs[2].SetValue("4")
	if err := m.applyFilter(); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if m.cfg.Since == nil || m.cfg.Since.Day() != 2 || m.cfg.Last != 5 || m.cfg.CurveWindow != 4 {
		t.Fatalf("unexpected cfg %+v", m.cfg)
	}
	m.filterInputs[2].SetValue("0")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected window error")
	}
	m.filterInputs[2].SetValue("1")
	m.filterInputs[1].SetValue("-1")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected last error")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if nextCurveWindow(1) != 5 || nextCurveWindow(5) != 10 || nextCurveWindow(7) != 10 {
		t.Fatalf("unexpected next steps")
	}
	if prevCurveWindow(5) != 1 || prevCurveWindow(10) != 5 || prevCurveWindow(7) != 5 {
		t.Fatalf("unexpected prev steps")
	}
}
