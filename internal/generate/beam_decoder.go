package generate

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"
)

// beamCandidate is one (score, token, source row) continuation
// candidate competing for a beam slot.
type beamCandidate struct {
	score float64
	token int32
	row   int
}

// generateBeamSearch decodes with num_beams parallel beams per item.
// Each step shortlists 2*numBeams candidates per item from the combined
// beam scores; candidates hitting an end-of-sequence token move to the
// item's hypothesis pool while open ones claim the beam slots for the
// next step.
func (g *TextGenerator) generateBeamSearch(tokens, mask *TokenMatrix, eosTokens []int32, padToken int32, rng *rand.Rand) (*TokenMatrix, error) {
	cfg := g.config
	numBeams := cfg.NumBeams
	rows := tokens.Rows()
	items := rows / numBeams
	vocab := g.model.VocabSize()
	curLen := tokens.Cols()

	hyps := make([]*beamHypotheses, items)
	for i := range hyps {
		hyps[i] = newBeamHypotheses(numBeams, cfg.MaxLength, cfg.LengthPenalty, cfg.EarlyStopping)
	}

	// Greedy search starts every item from its first beam only, so the
	// initial step cannot shortlist numBeams copies of the same token.
	beamScores := make([]float32, rows)
	if !cfg.DoSample {
		for r := range beamScores {
			if r%numBeams != 0 {
				beamScores[r] = negInf
			}
		}
	}

	fillToken := padToken
	if fillToken < 0 {
		fillToken = 0
	}

	done := make([]bool, items)
	var cache Cache

	for curLen < cfg.MaxLength {
		input := prepareInput(tokens, cache)
		logits, newCache, err := g.model.Forward(input, mask, cache)
		if err != nil {
			return nil, fmt.Errorf("forward pass at length %d: %w", curLen, err)
		}
		if logits.Rows() != rows || logits.Cols() != vocab {
			return nil, fmt.Errorf("model returned scores of shape [%d %d], want [%d %d]",
				logits.Rows(), logits.Cols(), rows, vocab)
		}
		cache = newCache

		// 1. Penalize repeats, flatten with temperature, move to log space.
		logits = applyRepetitionPenalty(logits, tokens, cfg.RepetitionPenalty)
		if cfg.DoSample {
			logits = applyTemperature(logits, cfg.Temperature)
		}
		scores := logSoftmaxRows(logits)

		// 2. Keep end-of-sequence out of reach below the minimum length.
		if len(eosTokens) > 0 && curLen < cfg.MinLength {
			scores = maskTokenIDs(scores, eosTokens)
		}

		// 3. Ban tokens that would repeat an n-gram.
		banned := bannedNgramTokens(tokens, cfg.NoRepeatNgramSize, curLen)
		scores = banTokens(scores, banned)

		// 4. Fold the running beam scores into every row.
		combined := NewScoreMatrix(rows, vocab)
		for r := 0; r < rows; r++ {
			src := scores.Row(r)
			dst := combined.Row(r)
			for j, v := range src {
				dst[j] = v + beamScores[r]
			}
		}

		// 5. Shortlist 2*numBeams candidates per item, best first.
		var candTokens [][]int
		var candScores [][]float64
		if cfg.DoSample {
			filtered := topKTopPFilter(combined, cfg.TopK, cfg.TopP, 2)
			candTokens, candScores = sampleCandidates(filtered, items, numBeams, rng)
		} else {
			candTokens, candScores = topCandidates(combined, items, numBeams)
		}

		// 6. Walk the shortlists: finished candidates feed the
		// hypothesis pools, open ones claim the item's beam slots.
		nextScores := make([]float32, 0, rows)
		nextTokens := make([]int32, 0, rows)
		nextRows := make([]int, 0, rows)
		for item := 0; item < items; item++ {
			if done[item] {
				if padToken < 0 {
					return nil, fmt.Errorf("pad and end-of-sequence tokens must be defined once an item completes")
				}
				for b := 0; b < numBeams; b++ {
					nextScores = append(nextScores, 0)
					nextTokens = append(nextTokens, padToken)
					nextRows = append(nextRows, item*numBeams)
				}
				continue
			}

			slots := make([]beamCandidate, 0, numBeams)
			for rank := 0; rank < len(candTokens[item]); rank++ {
				flat := candTokens[item][rank]
				score := candScores[item][rank]
				beamID := flat / vocab
				tokenID := int32(flat % vocab)
				srcRow := item*numBeams + beamID

				if len(eosTokens) > 0 && slices.Contains(eosTokens, tokenID) {
					// Worse-ranked finished candidates cannot improve the pool.
					if rank > numBeams {
						continue
					}
					hyps[item].add(slices.Clone(tokens.Row(srcRow)), score)
				} else {
					slots = append(slots, beamCandidate{score: score, token: tokenID, row: srcRow})
				}
				if len(slots) == numBeams {
					break
				}
			}
			for len(slots) < numBeams {
				slots = append(slots, beamCandidate{score: math.Inf(-1), token: fillToken, row: item * numBeams})
			}

			done[item] = done[item] || hyps[item].isDone(candScores[item][0], curLen)

			for _, c := range slots {
				nextScores = append(nextScores, float32(c.score))
				nextTokens = append(nextTokens, c.token)
				nextRows = append(nextRows, c.row)
			}
		}

		allDone := true
		for _, d := range done {
			if !d {
				allDone = false
				break
			}
		}
		if allDone {
			break
		}

		// 7. Reindex every stateful structure to the surviving beams.
		beamScores = nextScores
		tokens, mask, cache = reindexDecodingState(tokens, mask, cache, nextRows, nextTokens)
		curLen++
	}

	// Items that never completed keep their live beams as hypotheses.
	for item := 0; item < items; item++ {
		if done[item] {
			continue
		}
		for b := 0; b < numBeams; b++ {
			row := item*numBeams + b
			hyps[item].add(slices.Clone(tokens.Row(row)), float64(beamScores[row]))
		}
	}

	return g.collectBeamOutputs(hyps, eosTokens, padToken)
}

// topCandidates takes the 2*numBeams highest-scoring flat indices per
// item from the combined beam-vocabulary grid. Ties go to the lower
// index.
func topCandidates(combined *ScoreMatrix, items, numBeams int) ([][]int, [][]float64) {
	width := numBeams * combined.Cols()
	n := 2 * numBeams
	tokens := make([][]int, items)
	scores := make([][]float64, items)
	for item := 0; item < items; item++ {
		grid := combined.data[item*width : (item+1)*width]
		top := topIndices(grid, n)
		s := make([]float64, len(top))
		for j, flat := range top {
			s[j] = float64(grid[flat])
		}
		tokens[item] = top
		scores[item] = s
	}
	return tokens, scores
}

// sampleCandidates draws 2*numBeams distinct flat indices per item from
// the filtered distribution and orders them by score, best first. Ties
// keep their draw order.
func sampleCandidates(filtered *ScoreMatrix, items, numBeams int, rng *rand.Rand) ([][]int, [][]float64) {
	width := numBeams * filtered.Cols()
	n := 2 * numBeams
	tokens := make([][]int, items)
	scores := make([][]float64, items)
	type draw struct {
		flat  int
		score float64
	}
	for item := 0; item < items; item++ {
		grid := filtered.data[item*width : (item+1)*width]
		drawn := multinomialNoReplacement(rng, softmax(grid), n)

		cands := make([]draw, len(drawn))
		for j, flat := range drawn {
			cands[j] = draw{flat: flat, score: float64(grid[flat])}
		}
		sort.SliceStable(cands, func(a, b int) bool { return cands[a].score > cands[b].score })

		t := make([]int, len(cands))
		s := make([]float64, len(cands))
		for j, c := range cands {
			t[j] = c.flat
			s[j] = c.score
		}
		tokens[item] = t
		scores[item] = s
	}
	return tokens, scores
}

// reindexDecodingState permutes the token matrix, attention mask and
// cache in lockstep so row i continues from source row beamIdx[i], then
// appends the chosen tokens as a new column.
func reindexDecodingState(tokens, mask *TokenMatrix, cache Cache, beamIdx []int, beamTokens []int32) (*TokenMatrix, *TokenMatrix, Cache) {
	tokens = tokens.SelectRows(beamIdx)
	tokens = tokens.AppendColumn(beamTokens)

	ones := make([]int32, len(beamIdx))
	for i := range ones {
		ones[i] = 1
	}
	mask = mask.SelectRows(beamIdx)
	mask = mask.AppendColumn(ones)

	if cache != nil {
		cache = cache.Reorder(beamIdx)
	}
	return tokens, mask, cache
}

// collectBeamOutputs pops the best hypotheses per item and stacks them
// into the output matrix, padding rows of unequal length and closing
// each padded row with an end-of-sequence token.
func (g *TextGenerator) collectBeamOutputs(hyps []*beamHypotheses, eosTokens []int32, padToken int32) (*TokenMatrix, error) {
	cfg := g.config
	returnsPerItem := 1
	if !cfg.DoSample {
		returnsPerItem = cfg.NumReturnSequences
	}

	best := make([][]int32, 0, len(hyps)*returnsPerItem)
	for _, h := range hyps {
		pool := append([]hypothesis{}, h.beams...)
		sort.SliceStable(pool, func(a, b int) bool { return pool[a].score < pool[b].score })
		for j := 0; j < returnsPerItem; j++ {
			top := pool[len(pool)-1]
			pool = pool[:len(pool)-1]
			best = append(best, top.tokens)
		}
	}

	minLen, maxLen := len(best[0]), len(best[0])
	for _, hyp := range best[1:] {
		if len(hyp) < minLen {
			minLen = len(hyp)
		}
		if len(hyp) > maxLen {
			maxLen = len(hyp)
		}
	}

	if minLen == maxLen {
		out := NewTokenMatrix(len(best), maxLen)
		for i, hyp := range best {
			copy(out.Row(i), hyp)
		}
		return out, nil
	}

	if padToken < 0 {
		return nil, fmt.Errorf("outputs have unequal lengths and no pad token is defined")
	}
	cols := maxLen + 1
	if cols > cfg.MaxLength {
		cols = cfg.MaxLength
	}

	out := NewTokenMatrix(len(best), cols)
	out.Fill(padToken)
	for i, hyp := range best {
		copy(out.Row(i)[:len(hyp)], hyp)
		if len(hyp) < cfg.MaxLength && len(eosTokens) > 0 {
			out.Row(i)[len(hyp)] = eosTokens[0]
		}
	}
	return out, nil
}
