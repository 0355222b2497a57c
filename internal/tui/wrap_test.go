package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapTextBreaksOnSpaces(t *testing.T) {
	got := wrapText("Is the rating of this movie greater than 7?", 16)
	want := "Is the rating of\nthis movie\ngreater than 7?"
	if got != want {
		t.Fatalf("unexpected wrap:\n%q\nwant\n%q", got, want)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	got := wrapText("abcdefghij kl", 4)
	want := "abcd\nefgh\nij\nkl"
	if got != want {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapTextWideRunes(t *testing.T) {
	got := wrapText("日本語の映画", 4)
	for _, line := range strings.Split(got, "\n") {
		if w := runewidth.StringWidth(line); w > 4 {
			t.Fatalf("line %q is %d cells wide", line, w)
		}
	}
}

func TestWrapTextNoWidth(t *testing.T) {
	if got := wrapText("a b", 0); got != "a b" {
		t.Fatalf("unexpected wrap %q", got)
	}
}
