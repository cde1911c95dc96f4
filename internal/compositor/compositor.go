package compositor

import (
	"github.com/ivlev/code2vid/internal/scheduler"
	"github.com/ivlev/code2vid/internal/timing"
)

// RuneState is the visual state of one character cell.
type RuneState struct {
	R       rune
	Visible bool
	Bold    bool
}

// LineState is the visual state of one display line.
type LineState struct {
	Runes []RuneState
}

// RenderState is the complete declarative description of one frame:
// which page is shown, which characters are revealed, which word is
// highlighted, and the current fade opacity. It is recomputed fresh for
// every frame and discarded after rasterization; no animation state is
// carried between frames.
type RenderState struct {
	Page          int
	Transitioning bool
	FadeAlpha     float64
	ActiveWord    int
	Lines         []LineState
}

// Compositor derives RenderState at any instant from the immutable timing,
// layout and schedule data. StateAt is a pure function of t, so frames can
// be computed out of order and in parallel.
type Compositor struct {
	Words    []timing.WordTiming
	Reveals  [][]float64
	Schedule *scheduler.Schedule
	Policy   scheduler.FadePolicy
}

// New wires a compositor over one job's immutable data.
func New(words []timing.WordTiming, reveals [][]float64, sched *scheduler.Schedule, policy scheduler.FadePolicy) *Compositor {
	if policy == nil {
		policy = scheduler.SequentialFade{}
	}
	return &Compositor{Words: words, Reveals: reveals, Schedule: sched, Policy: policy}
}

// StateAt computes the frame state for render time t.
func (c *Compositor) StateAt(t float64) RenderState {
	page, phase, progress := c.Schedule.At(t)

	state := RenderState{
		Page:       page,
		FadeAlpha:  1.0,
		ActiveWord: c.activeWordAt(t),
	}

	if phase == scheduler.Transitioning {
		offset, alpha := c.Policy.Evaluate(progress)
		state.Page = page + offset
		if state.Page >= len(c.Schedule.Pages) {
			state.Page = len(c.Schedule.Pages) - 1
		}
		state.FadeAlpha = alpha
		state.Transitioning = true
	}

	state.Lines = c.buildLines(state.Page, t)
	return state
}

// activeWordAt returns the word being spoken at t, or -1 during silence.
func (c *Compositor) activeWordAt(t float64) int {
	for i, w := range c.Words {
		if t < w.Start {
			return -1
		}
		if t <= w.End {
			return i
		}
	}
	return -1
}

// buildLines marks every character of the page visible or hidden at t.
// Inter-word spaces follow the preceding word's last character.
func (c *Compositor) buildLines(page int, t float64) []LineState {
	if page < 0 || page >= len(c.Schedule.Pages) {
		return nil
	}

	lines := make([]LineState, 0, len(c.Schedule.Pages[page].Lines))
	active := c.activeWordAt(t)

	for _, line := range c.Schedule.Pages[page].Lines {
		var ls LineState
		prevWord := -1
		prevRevealed := false

		for _, seg := range line.Segments {
			if prevWord >= 0 && seg.WordIndex != prevWord {
				ls.Runes = append(ls.Runes, RuneState{R: ' ', Visible: prevRevealed})
			}
			reveals := c.Reveals[seg.WordIndex]
			for i, r := range seg.Runes {
				idx := seg.WordOffset + i
				visible := idx < len(reveals) && reveals[idx] <= t
				ls.Runes = append(ls.Runes, RuneState{
					R:       r,
					Visible: visible,
					Bold:    seg.WordIndex == active,
				})
				prevRevealed = visible
			}
			prevWord = seg.WordIndex
		}
		lines = append(lines, ls)
	}
	return lines
}
