package generate

import (
	"encoding/binary"
	"math"
	"runtime"
	"sort"

	"github.com/Vincent-Xiao/rust-bert/internal/parallel"
)

var negInf = float32(math.Inf(-1))

// Filters touch every vocabulary entry of every row. Rows are
// independent (row i only reads row i's history), so filtering
// parallelizes across the batch dimension.
var rowParallel = parallel.Config{
	Enabled:      runtime.NumCPU() > 1,
	NumWorkers:   runtime.NumCPU(),
	MinChunkSize: 2,
}

// applyRepetitionPenalty rescales the score of every token already
// present in a row's history: negative scores are multiplied by the
// penalty, non-negative scores divided. Repeated occurrences compound.
// Returns the input unchanged when the penalty is 1.
func applyRepetitionPenalty(scores *ScoreMatrix, history *TokenMatrix, penalty float64) *ScoreMatrix {
	if penalty == 1 {
		return scores
	}

	out := scores.Clone()
	p := float32(penalty)
	parallel.For(out.Rows(), func(i int) {
		row := out.Row(i)
		for _, tok := range history.Row(i) {
			if tok < 0 || int(tok) >= len(row) {
				continue
			}
			if row[tok] < 0 {
				row[tok] *= p
			} else {
				row[tok] /= p
			}
		}
	}, rowParallel)
	return out
}

// bannedNgramTokens computes, per row, the tokens that would repeat an
// n-gram already present in that row's history. It maps every
// (ngramSize-1)-token prefix to its observed successors and returns the
// successors of the row's most recent prefix. No bans are produced when
// the history is too short or banning is disabled.
func bannedNgramTokens(history *TokenMatrix, ngramSize, curLen int) [][]int32 {
	if ngramSize == 0 || curLen+1 < ngramSize {
		return nil
	}

	banned := make([][]int32, history.Rows())
	parallel.For(history.Rows(), func(i int) {
		row := history.Row(i)
		seen := make(map[string][]int32)
		for start := 0; start+ngramSize <= len(row); start++ {
			gram := row[start : start+ngramSize]
			key := ngramKey(gram[:ngramSize-1])
			seen[key] = append(seen[key], gram[ngramSize-1])
		}
		banned[i] = seen[ngramKey(row[len(row)-(ngramSize-1):])]
	}, rowParallel)
	return banned
}

// ngramKey encodes a token prefix as a map key.
func ngramKey(tokens []int32) string {
	b := make([]byte, len(tokens)*4)
	for i, t := range tokens {
		binary.LittleEndian.PutUint32(b[i*4:], uint32(t)) //nolint:gosec // token ids are non-negative
	}
	return string(b)
}

// banTokens sets the scores of the per-row banned tokens to negative
// infinity. A nil ban list returns the input unchanged.
func banTokens(scores *ScoreMatrix, banned [][]int32) *ScoreMatrix {
	if banned == nil {
		return scores
	}

	out := scores.Clone()
	for i, tokens := range banned {
		row := out.Row(i)
		for _, tok := range tokens {
			if tok >= 0 && int(tok) < len(row) {
				row[tok] = negInf
			}
		}
	}
	return out
}

// maskTokenIDs sets the given token ids to negative infinity in every
// row, used to keep end-of-sequence tokens out of reach below the
// minimum length.
func maskTokenIDs(scores *ScoreMatrix, ids []int32) *ScoreMatrix {
	out := scores.Clone()
	for i := 0; i < out.Rows(); i++ {
		row := out.Row(i)
		for _, id := range ids {
			if id >= 0 && int(id) < len(row) {
				row[id] = negInf
			}
		}
	}
	return out
}

// applyTemperature divides all scores by the temperature. Flattening
// only applies for temperatures above 1; anything else returns the
// input unchanged.
func applyTemperature(scores *ScoreMatrix, temperature float64) *ScoreMatrix {
	if temperature <= 1 {
		return scores
	}

	out := scores.Clone()
	t := float32(temperature)
	for i := range out.data {
		out.data[i] /= t
	}
	return out
}

// topKTopPFilter truncates each row's scores to the top-k entries and
// the top-p (nucleus) probability mass. Both truncations are
// independent and composable; k = 0 and p = 1 each disable their stage.
// At least minTokensToKeep tokens survive per row.
func topKTopPFilter(scores *ScoreMatrix, topK int, topP float64, minTokensToKeep int) *ScoreMatrix {
	if topK <= 0 && topP >= 1 {
		return scores
	}

	out := scores.Clone()
	parallel.For(out.Rows(), func(i int) {
		row := out.Row(i)
		if topK > 0 {
			topKRow(row, topK, minTokensToKeep)
		}
		if topP < 1 {
			topPRow(row, topP, minTokensToKeep)
		}
	}, rowParallel)
	return out
}

// topKRow keeps the max(k, minKeep) highest scores, setting the rest to
// negative infinity. Ties at the cutoff are all retained.
func topKRow(row []float32, k, minKeep int) {
	keep := k
	if keep < minKeep {
		keep = minKeep
	}
	if keep >= len(row) {
		return
	}

	sorted := append([]float32{}, row...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a] > sorted[b] })
	threshold := sorted[keep-1]

	for i := range row {
		if row[i] < threshold {
			row[i] = negInf
		}
	}
}

// topPRow keeps the smallest set of top tokens whose cumulative
// probability covers p. The exclusion mask is shifted right by one
// before applying so the token that crosses the threshold survives, and
// the minKeep head tokens always survive.
func topPRow(row []float32, p float64, minKeep int) {
	n := len(row)
	idx := topIndices(row, n)

	sortedScores := make([]float32, n)
	for j, src := range idx {
		sortedScores[j] = row[src]
	}
	probs := softmax(sortedScores)

	remove := make([]bool, n)
	cum := 0.0
	for j := range probs {
		cum += float64(probs[j])
		remove[j] = cum > p
	}

	copy(remove[1:], remove[:n-1])
	remove[0] = false
	for j := 0; j < minKeep && j < n; j++ {
		remove[j] = false
	}

	for j, r := range remove {
		if r {
			row[idx[j]] = negInf
		}
	}
}
