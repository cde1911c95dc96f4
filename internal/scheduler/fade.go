package scheduler

// FadePolicy maps transition progress (0..1) to the page that should be on
// screen and its opacity. Swappable so the transition style is a policy
// choice rather than a hard-coded algorithm.
type FadePolicy interface {
	Name() string
	// Evaluate returns which page of the pair is shown (0 = outgoing,
	// 1 = incoming) and its alpha in [0,1].
	Evaluate(progress float64) (pageOffset int, alpha float64)
}

// SequentialFade fades the outgoing page out over the first half of the
// transition, then the incoming page in over the second half. The default.
type SequentialFade struct{}

func (SequentialFade) Name() string { return "sequential" }

func (SequentialFade) Evaluate(progress float64) (int, float64) {
	progress = clamp01(progress)
	if progress < 0.5 {
		return 0, 1 - progress*2
	}
	return 1, progress*2 - 1
}

// CrossFade shows the incoming page for the whole transition, ramping its
// opacity from 0 to 1. With an opaque backdrop this reads as a cross-fade
// without compositing two text layers.
type CrossFade struct{}

func (CrossFade) Name() string { return "crossfade" }

func (CrossFade) Evaluate(progress float64) (int, float64) {
	return 1, clamp01(progress)
}

// PolicyByName resolves a policy name from configuration, defaulting to
// sequential for unknown or empty names.
func PolicyByName(name string) FadePolicy {
	if name == "crossfade" {
		return CrossFade{}
	}
	return SequentialFade{}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
