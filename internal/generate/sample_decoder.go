package generate

import (
	"fmt"
	"math/rand"
)

// generateNoBeamSearch decodes one token per step for every row, either
// greedily or by sampling from the filtered distribution. Rows that hit
// an end-of-sequence token keep emitting padding until every row is
// finished or the maximum length is reached.
func (g *TextGenerator) generateNoBeamSearch(tokens, mask *TokenMatrix, eosTokens []int32, padToken int32, rng *rand.Rand) (*TokenMatrix, error) {
	cfg := g.config
	batch := tokens.Rows()
	curLen := tokens.Cols()

	unfinished := make([]bool, batch)
	sentenceLengths := make([]int, batch)
	for i := range unfinished {
		unfinished[i] = true
		sentenceLengths[i] = cfg.MaxLength
	}
	maskColumn := make([]int32, batch)
	for i := range maskColumn {
		maskColumn[i] = 1
	}

	var cache Cache
	for curLen < cfg.MaxLength {
		input := prepareInput(tokens, cache)
		scores, newCache, err := g.model.Forward(input, mask, cache)
		if err != nil {
			return nil, fmt.Errorf("forward pass at length %d: %w", curLen, err)
		}
		if scores.Rows() != batch {
			return nil, fmt.Errorf("model returned %d score rows, want %d", scores.Rows(), batch)
		}
		cache = newCache

		// 1. Penalize tokens already present in each row's history.
		scores = applyRepetitionPenalty(scores, tokens, cfg.RepetitionPenalty)

		// 2. Ban tokens that would repeat an n-gram.
		banned := bannedNgramTokens(tokens, cfg.NoRepeatNgramSize, curLen)
		scores = banTokens(scores, banned)

		// 3. Keep end-of-sequence out of reach below the minimum length.
		if len(eosTokens) > 0 && curLen < cfg.MinLength {
			scores = maskTokenIDs(scores, eosTokens)
		}

		// 4. Pick the next token for every row.
		chosen := make([]int32, batch)
		if cfg.DoSample {
			scores = applyTemperature(scores, cfg.Temperature)
			scores = topKTopPFilter(scores, cfg.TopK, cfg.TopP, 1)
			for i := 0; i < batch; i++ {
				chosen[i] = multinomial(rng, softmax(scores.Row(i)))
			}
		} else {
			for i := 0; i < batch; i++ {
				chosen[i] = argmax(scores.Row(i))
			}
		}

		// 5. Finished rows emit padding instead of their pick.
		tokensToAdd := chosen
		if len(eosTokens) > 0 {
			tokensToAdd = make([]int32, batch)
			for i, tok := range chosen {
				if unfinished[i] {
					tokensToAdd[i] = tok
				} else {
					tokensToAdd[i] = padToken
				}
			}
		}
		tokens = tokens.AppendColumn(tokensToAdd)

		// 6. Record rows that just finished; stop once all rows are done.
		if len(eosTokens) > 0 {
			for i, tok := range tokensToAdd {
				if !unfinished[i] {
					continue
				}
				for _, eos := range eosTokens {
					if tok == eos {
						sentenceLengths[i] = curLen + 1
						unfinished[i] = false
						break
					}
				}
			}
			allDone := true
			for _, open := range unfinished {
				if open {
					allDone = false
					break
				}
			}
			if allDone {
				break
			}
		}

		mask = mask.AppendColumn(maskColumn)
		curLen++
	}

	// 7. Re-pad when rows finished at different lengths.
	minLen, maxLen := sentenceLengths[0], sentenceLengths[0]
	for _, n := range sentenceLengths[1:] {
		if n < minLen {
			minLen = n
		}
		if n > maxLen {
			maxLen = n
		}
	}
	if minLen == maxLen {
		return tokens, nil
	}
	if padToken < 0 {
		return nil, fmt.Errorf("outputs have unequal lengths and no pad token is defined")
	}

	out := NewTokenMatrix(batch, maxLen)
	out.Fill(padToken)
	for i := 0; i < batch; i++ {
		n := sentenceLengths[i]
		copy(out.Row(i)[:n], tokens.Row(i)[:n])
	}
	return out, nil
}
