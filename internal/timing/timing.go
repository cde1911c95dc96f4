package timing

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidAudio is returned when the audio duration is zero or
	// unknown. The job must not proceed to scheduling in that case.
	ErrInvalidAudio = errors.New("audio duration is zero or unknown")

	// ErrAlignmentUnavailable signals that the alignment service could not
	// be reached or returned unusable data. Recoverable: the extractor
	// falls back to proportional estimation.
	ErrAlignmentUnavailable = errors.New("alignment service unavailable")
)

// EstimateConfidence is the fixed confidence watermark assigned to words
// timed by the proportional estimator. Deliberately low so diagnostics can
// tell estimated timing apart from real alignment.
const EstimateConfidence = 0.25

// WordTiming is one word of the narration with the interval during which it
// is spoken. The sequence produced by the extractor is immutable for the
// rest of the job.
type WordTiming struct {
	Text       string
	Start      float64
	End        float64
	Confidence float64
}

// Duration returns the spoken span of the word in seconds.
func (w WordTiming) Duration() float64 {
	return w.End - w.Start
}

// CharTiming is the reveal instant of a single character. Derived from
// WordTiming, never persisted.
type CharTiming struct {
	Char      rune
	RevealAt  float64
	WordIndex int
}

// Tokenize splits narration text into words. The narration is an opaque
// whitespace-segmentable string; punctuation stays attached to its word.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Normalize enforces the timing invariants on an extracted sequence:
// starts are non-decreasing, every word has start < end, overlapping words
// are clamped forward (word i+1 starts no earlier than word i ends), and
// the whole span is clamped to the audio duration.
func Normalize(words []WordTiming, audioDuration float64) []WordTiming {
	const minSpan = 0.01

	out := make([]WordTiming, len(words))
	copy(out, words)

	prevEnd := 0.0
	for i := range out {
		if out[i].Start < prevEnd {
			out[i].Start = prevEnd
		}
		if out[i].End <= out[i].Start {
			out[i].End = out[i].Start + minSpan
		}
		if out[i].End > audioDuration {
			out[i].End = audioDuration
			if out[i].Start >= out[i].End {
				out[i].Start = out[i].End - minSpan
				if out[i].Start < 0 {
					out[i].Start = 0
				}
			}
		}
		prevEnd = out[i].End
	}
	return out
}
