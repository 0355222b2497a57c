package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
)

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	axisLabelTop      = "100%"
	axisLabelMid      = "50%"
	axisLabelBottom   = "0%"
	axisSeparator     = " │ "
)

// PlotAccuracy draws percentages in [0,100] as a braille line chart. width
// is the total line width including the axis.
func PlotAccuracy(w io.Writer, title string, values []float64, width, height int) error {
	if len(values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	plotWidth := width - len(axisLabelTop) - len([]rune(axisSeparator))
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	// Each braille cell holds two dots horizontally.
	dots := plotWidth * 2
	values = Resample(values, dots)

	cells := makeCells(height, plotWidth)
	prevX, prevY := -1, -1
	for i, v := range values {
		x := 0
		if len(values) > 1 {
			x = i * (dots - 1) / (len(values) - 1)
		}
		y := valueToRow(v, height*4)
		if prevX >= 0 {
			drawLine(prevX, prevY, x, y, func(dx, dy int) {
				setBrailleDot(cells, dx, dy)
			})
		} else {
			setBrailleDot(cells, x, y)
		}
		prevX, prevY = x, y
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	labels := makeAxisLabels(height)
	for y := 0; y < height; y++ {
		var row strings.Builder
		fmt.Fprintf(&row, "%*s%s", len(axisLabelTop), labels[y], axisSeparator)
		for x := 0; x < plotWidth; x++ {
			row.WriteRune(brailleFromMask(cells[y][x]))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(row.String(), string(brailleFromMask(0)))); err != nil {
			return err
		}
	}
	return nil
}

func makeAxisLabels(height int) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = axisLabelTop
	if height > 2 {
		labels[height/2] = axisLabelMid
	}
	if height > 1 {
		labels[height-1] = axisLabelBottom
	}
	return labels
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// valueToRow maps a percentage to a dot row, 0 being the top.
func valueToRow(v float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	row := int(math.Round((1 - v/100) * float64(rows-1)))
	if row < 0 {
		return 0
	}
	if row >= rows {
		return rows - 1
	}
	return row
}

// drawLine plots a Bresenham line between two dots.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func setBrailleDot(cells [][]uint8, x, y int) {
	cellY, cellX := y/4, x/2
	if y < 0 || x < 0 || cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

// brailleDotMask returns the Unicode braille bit for a dot in a 2x4 cell.
func brailleDotMask(x, y int) uint8 {
	if x == 0 {
		return [4]uint8{0x01, 0x02, 0x04, 0x40}[y]
	}
	return [4]uint8{0x08, 0x10, 0x20, 0x80}[y]
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
