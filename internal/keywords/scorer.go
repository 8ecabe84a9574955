package keywords

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/combin"
)

// rankedWord is a scored candidate index. The score is always the
// cosine similarity to the document, whatever strategy picked it.
type rankedWord struct {
	index int
	score float64
}

// scoreKeywords ranks the candidate embeddings of one document and
// returns the numKeywords picks of the strategy. numKeywords must not
// exceed len(words) and must be at least 1.
func (s ScorerType) scoreKeywords(doc []float64, words [][]float64, numKeywords int, diversity float64, maxSumCandidates int) []rankedWord {
	unitDoc := unit(doc)
	unitWords := make([][]float64, len(words))
	docSims := make([]float64, len(words))
	for i, w := range words {
		unitWords[i] = unit(w)
		docSims[i] = floats.Dot(unitDoc, unitWords[i])
	}

	switch s {
	case MaximalMarginRelevance:
		return maximalMarginRelevanceScore(docSims, unitWords, numKeywords, diversity)
	case MaxSum:
		return maxSumScore(docSims, unitWords, numKeywords, maxSumCandidates)
	default:
		return cosineSimilarityScore(docSims, numKeywords)
	}
}

// unit returns a unit-norm copy of v. Zero vectors stay zero, making
// their similarity to anything 0.
func unit(v []float64) []float64 {
	out := make([]float64, len(v))
	n := floats.Norm(v, 2)
	if n == 0 {
		return out
	}
	copy(out, v)
	floats.Scale(1/n, out)
	return out
}

// cosineSimilarityScore returns the numKeywords most document-similar
// candidates, best first.
func cosineSimilarityScore(docSims []float64, numKeywords int) []rankedWord {
	order := topSimilarIndices(docSims, numKeywords)
	out := make([]rankedWord, len(order))
	for i, idx := range order {
		out[i] = rankedWord{index: idx, score: docSims[idx]}
	}
	return out
}

// maximalMarginRelevanceScore picks the most document-similar candidate
// first, then repeatedly picks the candidate maximizing
// (1-diversity)*docSim - diversity*maxSimToSelected.
func maximalMarginRelevanceScore(docSims []float64, unitWords [][]float64, numKeywords int, diversity float64) []rankedWord {
	best := 0
	for i, s := range docSims {
		if s > docSims[best] {
			best = i
		}
	}
	selected := []int{best}
	remaining := make([]int, 0, len(docSims)-1)
	for i := range docSims {
		if i != best {
			remaining = append(remaining, i)
		}
	}

	for len(selected) < numKeywords && len(remaining) > 0 {
		bestAt := 0
		bestMMR := math.Inf(-1)
		for at, cand := range remaining {
			redundancy := math.Inf(-1)
			for _, sel := range selected {
				if sim := floats.Dot(unitWords[cand], unitWords[sel]); sim > redundancy {
					redundancy = sim
				}
			}
			mmr := (1-diversity)*docSims[cand] - diversity*redundancy
			if mmr > bestMMR {
				bestMMR = mmr
				bestAt = at
			}
		}
		selected = append(selected, remaining[bestAt])
		remaining = append(remaining[:bestAt], remaining[bestAt+1:]...)
	}

	out := make([]rankedWord, len(selected))
	for i, idx := range selected {
		out[i] = rankedWord{index: idx, score: docSims[idx]}
	}
	return out
}

// maxSumScore shortlists the maxSumCandidates most document-similar
// candidates, then returns the numKeywords-sized combination with the
// lowest pairwise similarity sum.
func maxSumScore(docSims []float64, unitWords [][]float64, numKeywords int, maxSumCandidates int) []rankedWord {
	pool := maxSumCandidates
	if pool > len(docSims) {
		pool = len(docSims)
	}
	if pool < numKeywords {
		pool = numKeywords
	}
	shortlist := topSimilarIndices(docSims, pool)

	// Pairwise similarities within the shortlist. Combinations come out
	// with ascending elements, so the upper triangle suffices.
	pairwise := make([][]float64, len(shortlist))
	for i := range shortlist {
		pairwise[i] = make([]float64, len(shortlist))
		for j := i + 1; j < len(shortlist); j++ {
			pairwise[i][j] = floats.Dot(unitWords[shortlist[i]], unitWords[shortlist[j]])
		}
	}

	bestSum := math.Inf(1)
	var best []int
	for _, combo := range combin.Combinations(len(shortlist), numKeywords) {
		sum := 0.0
		for a := 0; a < len(combo); a++ {
			for b := a + 1; b < len(combo); b++ {
				sum += pairwise[combo[a]][combo[b]]
			}
		}
		if sum < bestSum {
			bestSum = sum
			best = combo
		}
	}

	out := make([]rankedWord, len(best))
	for i, at := range best {
		idx := shortlist[at]
		out[i] = rankedWord{index: idx, score: docSims[idx]}
	}
	return out
}

// topSimilarIndices returns the indices of the n highest similarities,
// best first, lower index winning ties.
func topSimilarIndices(sims []float64, n int) []int {
	idx := make([]int, len(sims))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		if sims[idx[a]] != sims[idx[b]] {
			return sims[idx[a]] > sims[idx[b]]
		}
		return idx[a] < idx[b]
	})
	if n > len(idx) {
		n = len(idx)
	}
	return idx[:n]
}
