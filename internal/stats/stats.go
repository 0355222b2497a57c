// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Accuracy returns correct/total as a percentage, or 0 when total is 0.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	acc := float64(correct) / float64(total) * 100
	if math.IsNaN(acc) || math.IsInf(acc, 0) {
		return 0
	}
	return acc
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for values in [0,100].
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round(v / 100 * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample averages values into at most width buckets.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// RenderSummary prints the all-time statistics.
func RenderSummary(w io.Writer, snap model.StatisticsSnapshot) error {
	if snap.GamesPlayed == 0 {
		_, err := fmt.Fprintln(w, "No rounds played yet.")
		return err
	}
	best := fmt.Sprintf("%d/%d", snap.BestGame.Correct, snap.BestGame.Total)
	if !snap.BestGame.Date.IsZero() {
		best += " (" + snap.BestGame.Date.Local().Format("2006-01-02 15:04") + ")"
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Rounds played: %d", snap.GamesPlayed),
		fmt.Sprintf("Best round: %s", best),
		fmt.Sprintf("Answers: %d/%d", snap.Correct, snap.Total),
		fmt.Sprintf("Accuracy: %.2f%%", snap.TotalAccuracy),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints a table of stored rounds.
func RenderHistory(w io.Writer, rounds []model.RoundAggregate) error {
	if len(rounds) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "History"); err != nil {
		return err
	}
	headers := []string{"#", "Completed", "Result", "Accuracy"}
	rows := make([][]string, 0, len(rounds))
	for _, r := range rounds {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.RoundID),
			r.CompletedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d/%d", r.Correct, r.Total),
			fmt.Sprintf("%.0f%%", Accuracy(r.Correct, r.Total)),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurve prints a moving-average accuracy sparkline.
func RenderCurve(w io.Writer, rounds []model.RoundAggregate, window, width int) error {
	if len(rounds) == 0 {
		return nil
	}
	accs := Resample(accuracySeries(rounds, window), width)
	if _, err := fmt.Fprintf(w, "Accuracy trend (window %d)\n", window); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "0%% |%s| 100%%\n", Sparkline(accs)); err != nil {
		return err
	}
	return nil
}

// RenderCurvePlot draws the moving-average accuracy as a line chart.
func RenderCurvePlot(w io.Writer, rounds []model.RoundAggregate, window, width, height int) error {
	if len(rounds) == 0 {
		return nil
	}
	title := fmt.Sprintf("Accuracy trend (window %d)", window)
	return PlotAccuracy(w, title, accuracySeries(rounds, window), width, height)
}

func accuracySeries(rounds []model.RoundAggregate, window int) []float64 {
	accs := make([]float64, len(rounds))
	for i, r := range rounds {
		accs[i] = Accuracy(r.Correct, r.Total)
	}
	return MovingAverage(accs, window)
}
