package timing

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"
)

// Aligner matches a known transcript against its audio track and returns
// word-level timestamps. Implementations are capability-checked: the
// extractor probes Available once at job start and commits to one path.
type Aligner interface {
	Name() string
	Available(ctx context.Context) bool
	Align(ctx context.Context, audioPath, transcript string) ([]WordTiming, error)
}

// Extractor produces the immutable WordTiming sequence for a render job.
// Primary path is the configured aligner; on repeated failure it falls back
// to proportional estimation instead of failing the job.
type Extractor struct {
	Aligner   Aligner
	Estimator *ProportionalEstimator
	// RetryDelay separates the single retry from the first attempt.
	RetryDelay time.Duration
}

// NewExtractor builds an extractor. aligner may be nil, in which case every
// job uses the proportional estimator.
func NewExtractor(aligner Aligner) *Extractor {
	return &Extractor{
		Aligner:    aligner,
		Estimator:  &ProportionalEstimator{},
		RetryDelay: 2 * time.Second,
	}
}

// Extract returns one WordTiming per word of the narration text, covering
// every word, normalized so the span never exceeds the audio duration.
// Fails only on invalid audio; alignment trouble degrades to estimation.
func (e *Extractor) Extract(ctx context.Context, audioPath, text string, audioDuration float64) ([]WordTiming, error) {
	if audioDuration <= 0 {
		return nil, fmt.Errorf("%w: %.3fs", ErrInvalidAudio, audioDuration)
	}

	words := Tokenize(text)
	if len(words) == 0 {
		return nil, fmt.Errorf("narration text contains no words")
	}

	if e.Aligner == nil || !e.Aligner.Available(ctx) {
		if e.Aligner != nil {
			log.Printf("[!] Aligner %q unavailable, using proportional estimate", e.Aligner.Name())
		}
		return e.Estimator.Estimate(words, audioDuration), nil
	}

	aligned, err := e.alignWithRetry(ctx, audioPath, text)
	if err != nil {
		log.Printf("[!] Alignment failed (%v), using proportional estimate", err)
		return e.Estimator.Estimate(words, audioDuration), nil
	}

	matched, interpolated := matchTranscript(words, aligned, audioDuration)
	if interpolated > 0 {
		log.Printf("[!] %d/%d words did not align and were interpolated", interpolated, len(words))
	}
	return Normalize(matched, audioDuration), nil
}

// alignWithRetry runs the aligner, retrying once after RetryDelay on a
// transient failure.
func (e *Extractor) alignWithRetry(ctx context.Context, audioPath, text string) ([]WordTiming, error) {
	aligned, err := e.Aligner.Align(ctx, audioPath, text)
	if err == nil {
		return aligned, nil
	}

	log.Printf("[!] Alignment attempt failed: %v, retrying once", err)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(e.RetryDelay):
	}
	return e.Aligner.Align(ctx, audioPath, text)
}

// normalizeToken lowercases a word and strips everything but letters and
// digits, the same canonical form alignment engines report words in.
func normalizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matchTranscript maps aligned words back onto the exact transcript tokens.
// Tokens the aligner missed keep zero timestamps here and are filled by
// interpolateGaps. Returns the full sequence plus the interpolated count.
func matchTranscript(transcript []string, aligned []WordTiming, audioDuration float64) ([]WordTiming, int) {
	const lookahead = 3

	out := make([]WordTiming, len(transcript))
	matched := make([]bool, len(transcript))

	j := 0
	for i, word := range transcript {
		out[i] = WordTiming{Text: word}

		token := normalizeToken(word)
		if token == "" {
			continue
		}
		// Scan a short window of aligned words for the token; alignment
		// engines occasionally merge or drop words, so exact lockstep
		// cannot be assumed.
		for k := j; k < len(aligned) && k < j+lookahead; k++ {
			if normalizeToken(aligned[k].Text) == token {
				out[i].Start = aligned[k].Start
				out[i].End = aligned[k].End
				out[i].Confidence = aligned[k].Confidence
				matched[i] = true
				j = k + 1
				break
			}
		}
	}

	interpolated := interpolateGaps(out, matched, audioDuration)
	return out, interpolated
}

// interpolateGaps assigns timestamps to unmatched words by distributing the
// gap between their nearest matched neighbors proportionally to word
// length. Interpolated words carry zero confidence.
func interpolateGaps(words []WordTiming, matched []bool, audioDuration float64) int {
	interpolated := 0
	i := 0
	for i < len(words) {
		if matched[i] {
			i++
			continue
		}

		// Find the run [i, j) of unmatched words.
		j := i
		for j < len(words) && !matched[j] {
			j++
		}

		gapStart := 0.0
		if i > 0 {
			gapStart = words[i-1].End
		}
		gapEnd := audioDuration
		if j < len(words) {
			gapEnd = words[j].Start
		}
		if gapEnd < gapStart {
			gapEnd = gapStart
		}

		total := 0.0
		for k := i; k < j; k++ {
			total += wordWeight(words[k].Text)
		}

		cum := 0.0
		prev := gapStart
		for k := i; k < j; k++ {
			cum += wordWeight(words[k].Text)
			end := gapStart + (gapEnd-gapStart)*cum/total
			words[k].Start = prev
			words[k].End = end
			words[k].Confidence = 0
			prev = end
			interpolated++
		}
		i = j
	}
	return interpolated
}

func wordWeight(w string) float64 {
	weight := float64(len([]rune(w)))
	if weight < 1 {
		weight = 1
	}
	return weight
}
