package scheduler

import (
	"github.com/ivlev/code2vid/internal/layout"
)

// Phase is the page state machine phase at a given instant.
type Phase int

const (
	Displaying Phase = iota
	Transitioning
)

// Schedule holds the precomputed page timeline for one render job. It is
// built once from the immutable timing and layout data; evaluation at any
// instant is a pure lookup, so frames can be computed in any order.
type Schedule struct {
	Pages         []layout.Page
	FadeDuration  float64
	AudioDuration float64

	// revealDone[p] is when page p hands over to the next: normally the
	// reveal time of its last character, clamped so the sequence is
	// non-decreasing, every fade finishes inside the track, and the
	// final page completes within the audio.
	revealDone []float64
}

// New builds the schedule. reveals is the per-word character reveal table
// from timing.RevealOffsets.
func New(pages []layout.Page, reveals [][]float64, fadeDuration, audioDuration float64) *Schedule {
	s := &Schedule{
		Pages:         pages,
		FadeDuration:  fadeDuration,
		AudioDuration: audioDuration,
		revealDone:    make([]float64, len(pages)),
	}

	displayFrom := 0.0
	for p, page := range pages {
		done := displayFrom
		for _, line := range page.Lines {
			for _, seg := range line.Segments {
				if len(seg.Runes) == 0 {
					continue
				}
				wordReveals := reveals[seg.WordIndex]
				last := seg.WordOffset + len(seg.Runes) - 1
				if last >= len(wordReveals) {
					last = len(wordReveals) - 1
				}
				if last >= 0 && wordReveals[last] > done {
					done = wordReveals[last]
				}
			}
		}
		if p == len(pages)-1 && done > audioDuration {
			// Rounding can push the last reveal past the track; the
			// final frame must still show the page fully revealed.
			done = audioDuration
		}
		if p < len(pages)-1 && done+fadeDuration > audioDuration {
			// The fade must finish inside the track, so a page that
			// completes near the end starts its transition early.
			done = audioDuration - fadeDuration
			if done < displayFrom {
				done = displayFrom
			}
		}
		s.revealDone[p] = done
		displayFrom = done + fadeDuration
	}
	return s
}

// PageCompleteAt returns the instant page p hands over, normally when it is
// fully revealed.
func (s *Schedule) PageCompleteAt(p int) float64 {
	return s.revealDone[p]
}

// At evaluates the state machine at time t without replaying prior frames.
// During Transitioning, progress runs 0..1 across the fade; during
// Displaying it is meaningless and returned as 0.
func (s *Schedule) At(t float64) (page int, phase Phase, progress float64) {
	if len(s.Pages) == 0 {
		return 0, Displaying, 0
	}

	for p := range s.Pages {
		if t < s.revealDone[p] {
			return p, Displaying, 0
		}
		if p == len(s.Pages)-1 {
			break
		}
		if s.FadeDuration > 0 && t < s.revealDone[p]+s.FadeDuration {
			return p, Transitioning, (t - s.revealDone[p]) / s.FadeDuration
		}
	}
	// Past the last page's completion: terminal state, fully revealed.
	return len(s.Pages) - 1, Displaying, 0
}
