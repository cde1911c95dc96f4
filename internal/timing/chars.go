package timing

import "unicode"

// visualWeight controls how much of a word's span a character consumes.
// Letters and digits carry full weight; punctuation and other marks are
// quick to "type", so they get less. This makes the reveal rate feel like
// typing rather than a metronome.
func visualWeight(r rune) float64 {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return 1.0
	}
	return 0.4
}

// ExpandChars turns the word timing sequence into per-character reveal
// times. Within a word, reveal times are strictly increasing and the last
// character reveals exactly at the word's end. Words are clamped forward
// first (see Normalize), so the first character of word i+1 never reveals
// before the last character of word i.
func ExpandChars(words []WordTiming) []CharTiming {
	var chars []CharTiming

	for wi, word := range words {
		runes := []rune(word.Text)
		if len(runes) == 0 {
			continue
		}

		total := 0.0
		for _, r := range runes {
			total += visualWeight(r)
		}

		span := word.Duration()
		cum := 0.0
		for _, r := range runes {
			cum += visualWeight(r)
			chars = append(chars, CharTiming{
				Char:      r,
				RevealAt:  word.Start + span*cum/total,
				WordIndex: wi,
			})
		}
	}
	return chars
}

// RevealOffsets returns, for every word, the reveal times of its characters
// keyed by rune offset within the word. Convenient for layout code that
// addresses characters as (word, offset) pairs.
func RevealOffsets(words []WordTiming) [][]float64 {
	chars := ExpandChars(words)
	out := make([][]float64, len(words))
	for _, c := range chars {
		out[c.WordIndex] = append(out[c.WordIndex], c.RevealAt)
	}
	return out
}
