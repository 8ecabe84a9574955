// Package generate implements autoregressive sequence generation.
//
// Given a language model that scores the next token for a batch of
// token histories, the package produces complete output sequences under
// greedy decoding, stochastic sampling or beam search, enforcing
// length, repetition and termination constraints.
package generate

import (
	"math"
	"math/rand"
	"sort"
)

// newRNG builds the sampling RNG. Seeds below zero pick a random seed.
func newRNG(seed int64) *rand.Rand {
	if seed >= 0 {
		return rand.New(rand.NewSource(seed)) //nolint:gosec // Intentional deterministic seed for reproducibility
	}
	return rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // User requested random seed
}

// argmax returns the index of the maximum value.
// Ties resolve to the lowest index.
func argmax(scores []float32) int32 {
	maxIdx := 0
	maxVal := scores[0]
	for i, v := range scores[1:] {
		if v > maxVal {
			maxVal = v
			maxIdx = i + 1
		}
	}
	return int32(maxIdx) //nolint:gosec // vocab size is bounded by model architecture
}

// softmax converts scores to probabilities. Negative infinity maps to
// zero probability.
func softmax(scores []float32) []float32 {
	maxVal := scores[0]
	for _, v := range scores[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	probs := make([]float32, len(scores))
	sum := float32(0)
	for i, v := range scores {
		if math.IsInf(float64(v), -1) {
			probs[i] = 0
		} else {
			probs[i] = float32(math.Exp(float64(v - maxVal)))
			sum += probs[i]
		}
	}

	if sum > 0 {
		for i := range probs {
			probs[i] /= sum
		}
	}

	return probs
}

// logSoftmax converts scores to log-probabilities.
// Negative infinity stays negative infinity.
func logSoftmax(scores []float32) []float32 {
	maxVal := scores[0]
	for _, v := range scores[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	sum := 0.0
	for _, v := range scores {
		if !math.IsInf(float64(v), -1) {
			sum += math.Exp(float64(v - maxVal))
		}
	}
	logSum := math.Log(sum)

	out := make([]float32, len(scores))
	for i, v := range scores {
		if math.IsInf(float64(v), -1) {
			out[i] = v
		} else {
			out[i] = float32(float64(v-maxVal) - logSum)
		}
	}
	return out
}

// logSoftmaxRows applies logSoftmax to every row.
func logSoftmaxRows(scores *ScoreMatrix) *ScoreMatrix {
	out := NewScoreMatrix(scores.Rows(), scores.Cols())
	for i := 0; i < scores.Rows(); i++ {
		copy(out.Row(i), logSoftmax(scores.Row(i)))
	}
	return out
}

// multinomial draws one index from a categorical distribution.
func multinomial(rng *rand.Rand, probs []float32) int32 {
	r := rng.Float32()

	cumSum := float32(0)
	for i, p := range probs {
		cumSum += p
		if r < cumSum {
			return int32(i) //nolint:gosec // vocab size is bounded by model architecture
		}
	}

	// Rounding errors can leave a sliver of unassigned mass.
	return int32(len(probs) - 1) //nolint:gosec // vocab size is bounded by model architecture
}

// multinomialNoReplacement draws n distinct indices. Drawn indices lose
// their mass for subsequent draws. If the distribution runs out of mass
// early, the remaining draws fall back to the lowest undrawn indices.
func multinomialNoReplacement(rng *rand.Rand, probs []float32, n int) []int {
	weights := make([]float64, len(probs))
	total := 0.0
	for i, p := range probs {
		weights[i] = float64(p)
		total += weights[i]
	}

	drawn := make([]int, 0, n)
	taken := make([]bool, len(probs))
	for len(drawn) < n && len(drawn) < len(probs) {
		if total <= 0 {
			for i := range weights {
				if !taken[i] {
					taken[i] = true
					drawn = append(drawn, i)
					if len(drawn) == n {
						break
					}
				}
			}
			break
		}

		r := rng.Float64() * total
		cumSum := 0.0
		pick := -1
		for i, w := range weights {
			if taken[i] {
				continue
			}
			cumSum += w
			if r < cumSum {
				pick = i
				break
			}
		}
		if pick < 0 {
			// Rounding errors: take the last undrawn index.
			for i := len(weights) - 1; i >= 0; i-- {
				if !taken[i] {
					pick = i
					break
				}
			}
		}

		taken[pick] = true
		total -= weights[pick]
		drawn = append(drawn, pick)
	}

	return drawn
}

// topIndices returns the n highest-scoring indices in descending score
// order. Ties resolve to the lowest index first.
func topIndices(scores []float32, n int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		va, vb := scores[idx[a]], scores[idx[b]]
		if va != vb {
			return va > vb
		}
		return idx[a] < idx[b]
	})
	if n > len(idx) {
		n = len(idx)
	}
	return idx[:n]
}
