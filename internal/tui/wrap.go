package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText breaks text into lines no wider than width cells. Words longer
// than width are split.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		out = append(out, wrapParagraph(paragraph, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapParagraph(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, word := range words {
		for _, part := range splitWord(word, width) {
			partWidth := runewidth.StringWidth(part)
			if lineWidth > 0 && lineWidth+1+partWidth > width {
				lines = append(lines, line.String())
				line.Reset()
				lineWidth = 0
			}
			if lineWidth > 0 {
				line.WriteByte(' ')
				lineWidth++
			}
			line.WriteString(part)
			lineWidth += partWidth
		}
	}
	return append(lines, line.String())
}

func splitWord(word string, width int) []string {
	if runewidth.StringWidth(word) <= width {
		return []string{word}
	}
	var parts []string
	var cur strings.Builder
	curWidth := 0
	for _, r := range word {
		w := runewidth.RuneWidth(r)
		if curWidth+w > width && curWidth > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curWidth = 0
		}
		cur.WriteRune(r)
		curWidth += w
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}
