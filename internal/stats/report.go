package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// RoundLister reads stored round history.
type RoundLister interface {
	ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.RoundAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Snapshot model.StatisticsSnapshot
	Rounds   []model.RoundAggregate
	Window   int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, svc *Service, rounds RoundLister, cfg model.StatsConfig) (Report, error) {
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return Report{}, err
	}
	list, err := rounds.ListRounds(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Snapshot: snap,
		Rounds:   list,
		Window:   cfg.CurveWindow,
	}, nil
}

// Render writes the full report. width bounds the trend line.
func (r Report) Render(w io.Writer, width int) error {
	if err := RenderSummary(w, r.Snapshot); err != nil {
		return err
	}
	if err := RenderHistory(w, r.Rounds); err != nil {
		return err
	}
	return RenderCurve(w, r.Rounds, r.Window, width)
}
