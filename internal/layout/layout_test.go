package layout

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func TestBreakLinesNeverSplitsWords(t *testing.T) {
	words := strings.Fields("the quick brown fox jumps over the lazy dog")
	lines := BreakLines(words, 15)

	for li, line := range lines {
		if line.Width() > 15 {
			t.Errorf("Line %d exceeds width: %d > 15 (%q)", li, line.Width(), line.Text())
		}
		for _, seg := range line.Segments {
			// No word in this input is oversized, so every segment must
			// carry a whole word.
			if seg.WordOffset != 0 || len(seg.Runes) != len([]rune(words[seg.WordIndex])) {
				t.Errorf("Line %d splits word %q", li, words[seg.WordIndex])
			}
		}
	}

	// Every word appears exactly once, in order.
	var seen []int
	for _, line := range lines {
		for _, seg := range line.Segments {
			seen = append(seen, seg.WordIndex)
		}
	}
	if len(seen) != len(words) {
		t.Fatalf("Expected %d segments, got %d", len(words), len(seen))
	}
	for i, wi := range seen {
		if wi != i {
			t.Errorf("Word order broken at position %d: got word %d", i, wi)
		}
	}
}

func TestBreakLinesForcedBreak(t *testing.T) {
	// A word wider than the whole line is hard-broken at the width
	// boundary instead of failing.
	words := []string{"short", "supercalifragilistic", "end"}
	lines := BreakLines(words, 8)

	for li, line := range lines {
		if line.Width() > 8 {
			t.Errorf("Line %d exceeds width after forced break: %d (%q)", li, line.Width(), line.Text())
		}
	}

	// Reassembling the fragments of word 1 must give back the word.
	var rebuilt strings.Builder
	for _, line := range lines {
		for _, seg := range line.Segments {
			if seg.WordIndex == 1 {
				rebuilt.WriteString(string(seg.Runes))
			}
		}
	}
	if rebuilt.String() != "supercalifragilistic" {
		t.Errorf("Fragments reassemble to %q", rebuilt.String())
	}
}

func TestBreakLinesGreedyFill(t *testing.T) {
	words := []string{"aa", "bb", "cc"}
	lines := BreakLines(words, 5)
	// "aa bb" fits in 5, "cc" starts line 2.
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text() != "aa bb" || lines[1].Text() != "cc" {
		t.Errorf("Unexpected fill: %q / %q", lines[0].Text(), lines[1].Text())
	}
}

func TestPaginateContiguous(t *testing.T) {
	words := strings.Fields("one two three four five six seven eight nine ten")
	lines := BreakLines(words, 10)
	pages := Paginate(lines, 3)

	next := 0
	total := 0
	for pi, page := range pages {
		if page.Index != pi {
			t.Errorf("Page %d has index %d", pi, page.Index)
		}
		if page.FirstLine != next {
			t.Errorf("Page %d starts at line %d, expected %d", pi, page.FirstLine, next)
		}
		if pi < len(pages)-1 && len(page.Lines) != 3 {
			t.Errorf("Non-final page %d has %d lines", pi, len(page.Lines))
		}
		next += len(page.Lines)
		total += len(page.Lines)
	}
	if total != len(lines) {
		t.Errorf("Pages cover %d lines, expected %d", total, len(lines))
	}
}

func TestPaginateIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	var words []string
	for i := 0; i < 120; i++ {
		n := 1 + r.Intn(12)
		words = append(words, strings.Repeat("x", n))
	}

	first := Paginate(BreakLines(words, 40), 3)
	second := Paginate(BreakLines(words, 40), 3)
	if !reflect.DeepEqual(first, second) {
		t.Error("Re-running segmentation changed page boundaries")
	}
}

func TestLastWordIndex(t *testing.T) {
	lines := BreakLines([]string{"a", "b", "c", "d"}, 3)
	pages := Paginate(lines, 2)
	if got := pages[len(pages)-1].LastWordIndex(); got != 3 {
		t.Errorf("Expected last word 3, got %d", got)
	}
	if (Page{}).LastWordIndex() != -1 {
		t.Error("Empty page should report -1")
	}
}
