package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotAccuracyAxis(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotAccuracy(&buf, "Accuracy", []float64{0, 50, 100}, 30, 4); err != nil {
		t.Fatalf("plot: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected title and 4 rows, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Accuracy" {
		t.Fatalf("unexpected title %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "100% │ ") || !strings.HasPrefix(lines[4], "  0% │ ") {
		t.Fatalf("unexpected axis labels:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[3], "     │ ") && !strings.HasPrefix(lines[3], " 50% │ ") {
		t.Fatalf("unexpected middle row %q", lines[3])
	}
}

func TestPlotAccuracyEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotAccuracy(&buf, "x", nil, 30, 4); err != nil {
		t.Fatalf("plot: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty series")
	}
}

func TestValueToRow(t *testing.T) {
	if valueToRow(100, 8) != 0 || valueToRow(0, 8) != 7 {
		t.Fatalf("unexpected extremes")
	}
	if valueToRow(150, 8) != 0 || valueToRow(-5, 8) != 7 {
		t.Fatalf("expected clamping")
	}
}

func TestBrailleDots(t *testing.T) {
	cells := makeCells(1, 1)
	setBrailleDot(cells, 0, 0)
	setBrailleDot(cells, 1, 3)
	if got := brailleFromMask(cells[0][0]); got != '⢁' {
		t.Fatalf("unexpected braille rune %q", got)
	}
	setBrailleDot(cells, 5, 5)
	if cells[0][0] != 0x81 {
		t.Fatalf("out of range dots must be ignored")
	}
}
