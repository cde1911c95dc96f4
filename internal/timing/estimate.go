package timing

// ProportionalEstimator distributes the audio duration across words in
// proportion to their length. It is the fallback used when no alignment
// service is reachable: timing is approximate but the renderer stays
// correct, just less precise.
type ProportionalEstimator struct{}

func (e *ProportionalEstimator) Name() string { return "proportional" }

// Estimate assigns each word a span weighted by max(1, len(word)), with the
// spans summing to audioDuration exactly. Boundaries are computed from
// cumulative weight fractions so rounding never drifts the total.
func (e *ProportionalEstimator) Estimate(words []string, audioDuration float64) []WordTiming {
	if len(words) == 0 {
		return nil
	}

	weights := make([]float64, len(words))
	total := 0.0
	for i, w := range words {
		weight := float64(len([]rune(w)))
		if weight < 1 {
			weight = 1
		}
		weights[i] = weight
		total += weight
	}

	timings := make([]WordTiming, len(words))
	cum := 0.0
	prevEnd := 0.0
	for i, w := range words {
		cum += weights[i]
		end := audioDuration * cum / total
		timings[i] = WordTiming{
			Text:       w,
			Start:      prevEnd,
			End:        end,
			Confidence: EstimateConfidence,
		}
		prevEnd = end
	}
	// Guard against float accumulation on the last boundary.
	timings[len(timings)-1].End = audioDuration
	return timings
}
