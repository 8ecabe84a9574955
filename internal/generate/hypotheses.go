package generate

import "math"

// hypothesis is a finished beam and its length-normalized score.
type hypothesis struct {
	score  float64
	tokens []int32
}

// beamHypotheses holds the best finished beams for a single input item
// during beam search. The pool never grows past numBeams entries.
type beamHypotheses struct {
	maxLength     int
	lengthPenalty float64
	earlyStopping bool
	numBeams      int
	beams         []hypothesis
	worstScore    float64
}

func newBeamHypotheses(numBeams, maxLength int, lengthPenalty float64, earlyStopping bool) *beamHypotheses {
	return &beamHypotheses{
		maxLength:     maxLength - 1,
		lengthPenalty: lengthPenalty,
		earlyStopping: earlyStopping,
		numBeams:      numBeams,
		beams:         make([]hypothesis, 0, numBeams),
		worstScore:    math.Inf(1),
	}
}

func (h *beamHypotheses) len() int {
	return len(h.beams)
}

// add records a finished beam under its length-normalized score. When
// the pool is full, the candidate is only admitted if it beats the
// current worst hypothesis, which gets evicted.
func (h *beamHypotheses) add(tokens []int32, sumLogProbs float64) {
	score := sumLogProbs / math.Pow(float64(len(tokens)), h.lengthPenalty)
	if len(h.beams) >= h.numBeams && score <= h.worstScore {
		return
	}

	h.beams = append(h.beams, hypothesis{score: score, tokens: tokens})
	if len(h.beams) > h.numBeams {
		worst := 0
		for i, b := range h.beams {
			if b.score < h.beams[worst].score {
				worst = i
			}
		}
		h.beams = append(h.beams[:worst], h.beams[worst+1:]...)
	}

	h.worstScore = math.Inf(1)
	for _, b := range h.beams {
		if b.score < h.worstScore {
			h.worstScore = b.score
		}
	}
}

// isDone reports whether the search can stop for this item. With early
// stopping the pool being full is enough; otherwise the best still-open
// candidate must be unable to beat the worst finished hypothesis.
func (h *beamHypotheses) isDone(bestSumLogProbs float64, curLen int) bool {
	switch {
	case len(h.beams) < h.numBeams:
		return false
	case h.earlyStopping:
		return true
	default:
		return h.worstScore >= bestSumLogProbs/math.Pow(float64(curLen), h.lengthPenalty)
	}
}
