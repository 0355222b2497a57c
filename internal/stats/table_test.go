package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"#", "Result", "Accuracy"}
	rows := [][]string{
		{"1", "7/10", "70%"},
		{"12", "10/10", "100%"},
	}
	rightAlign := map[int]bool{0: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != " # Result Accuracy" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != " 1 7/10        70%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "12 10/10      100%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
