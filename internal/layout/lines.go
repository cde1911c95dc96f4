package layout

import "strings"

// Segment is a run of characters from a single word placed on one line.
// Normal lines hold one segment per word; a word wider than the whole line
// is hard-broken and contributes a segment to several lines.
type Segment struct {
	WordIndex  int
	Runes      []rune
	WordOffset int // rune offset of Runes[0] within the word
}

// Line is one display line. Derived purely from text; timing never moves a
// line break.
type Line struct {
	Segments []Segment
}

// Text reconstructs the display text of the line, words separated by a
// single space. Hard-broken word fragments join without a space.
func (l Line) Text() string {
	var b strings.Builder
	prevWord := -1
	for _, seg := range l.Segments {
		if prevWord >= 0 && seg.WordIndex != prevWord {
			b.WriteByte(' ')
		}
		b.WriteString(string(seg.Runes))
		prevWord = seg.WordIndex
	}
	return b.String()
}

// Width returns the line width in runes, counting inter-word spaces.
func (l Line) Width() int {
	n := 0
	prevWord := -1
	for _, seg := range l.Segments {
		if prevWord >= 0 && seg.WordIndex != prevWord {
			n++
		}
		n += len(seg.Runes)
		prevWord = seg.WordIndex
	}
	return n
}

// BreakLines partitions words into lines no wider than maxWidth runes using
// greedy filling. Words are never split mid-word, with one exception: a
// single word wider than maxWidth is hard-broken at the width boundary
// rather than failing segmentation.
func BreakLines(words []string, maxWidth int) []Line {
	var lines []Line
	var current Line
	width := 0

	flush := func() {
		if len(current.Segments) > 0 {
			lines = append(lines, current)
			current = Line{}
			width = 0
		}
	}

	for wi, word := range words {
		runes := []rune(word)

		if len(runes) > maxWidth {
			// Oversized word: finish the current line, then emit
			// full-width fragments.
			flush()
			offset := 0
			for offset < len(runes) {
				end := offset + maxWidth
				if end > len(runes) {
					end = len(runes)
				}
				current.Segments = append(current.Segments, Segment{
					WordIndex:  wi,
					Runes:      runes[offset:end],
					WordOffset: offset,
				})
				width = end - offset
				if end < len(runes) {
					flush()
				}
				offset = end
			}
			continue
		}

		needed := len(runes)
		if width > 0 {
			needed++ // leading space
		}
		if width+needed > maxWidth {
			flush()
		}
		current.Segments = append(current.Segments, Segment{
			WordIndex: wi,
			Runes:     runes,
		})
		if width > 0 {
			width++
		}
		width += len(runes)
	}
	flush()
	return lines
}
