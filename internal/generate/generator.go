package generate

import (
	"fmt"

	"github.com/Vincent-Xiao/rust-bert/internal/tokenizer"
)

// Cache carries model-specific decoding state (typically key/value
// attention caches) between forward passes.
type Cache interface {
	// Reorder permutes the cache's batch rows so row i holds what row
	// beamIdx[i] held, matching a reindexing of the token matrix.
	// It returns the reordered cache.
	Reorder(beamIdx []int) Cache
}

// LLMModel is the interface for language models used in generation.
type LLMModel interface {
	// Forward runs a forward pass and returns next-token scores for the
	// last position of every row.
	// Input shape: [batch, seq_len]; output shape: [batch, vocab_size].
	// The first call receives the full token history and a nil cache;
	// subsequent calls receive only the newest column together with the
	// cache returned by the previous call.
	Forward(input, attentionMask *TokenMatrix, cache Cache) (*ScoreMatrix, Cache, error)

	// VocabSize returns the vocabulary size.
	VocabSize() int
}

// TextGenerator generates token sequences from text prompts.
type TextGenerator struct {
	model     LLMModel
	tokenizer tokenizer.Tokenizer
	config    GenerateConfig
}

// NewTextGenerator creates a text generator. The configuration is
// validated once here and reused unchanged by every Generate call.
func NewTextGenerator(model LLMModel, tok tokenizer.Tokenizer, config GenerateConfig) (*TextGenerator, error) {
	if model == nil {
		return nil, fmt.Errorf("model must not be nil")
	}
	if tok == nil {
		return nil, fmt.Errorf("tokenizer must not be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generate config: %w", err)
	}
	return &TextGenerator{model: model, tokenizer: tok, config: config}, nil
}

// Generate produces continuations for the prompts and decodes them,
// skipping special tokens and cleaning up tokenization spaces. It
// returns len(prompts) * NumReturnSequences outputs grouped by prompt.
// Without prompts, generation starts from the beginning-of-sequence
// token.
func (g *TextGenerator) Generate(prompts []string) ([]string, error) {
	output, err := g.generate(prompts)
	if err != nil {
		return nil, err
	}

	texts := make([]string, output.Rows())
	for i := range texts {
		text, err := g.tokenizer.Decode(output.Row(i), true, true)
		if err != nil {
			return nil, fmt.Errorf("decode output %d: %w", i, err)
		}
		texts[i] = text
	}
	return texts, nil
}

// GenerateIDs is Generate without the decoding step, returning one
// token id row per output sequence.
func (g *TextGenerator) GenerateIDs(prompts []string) ([][]int32, error) {
	output, err := g.generate(prompts)
	if err != nil {
		return nil, err
	}
	return output.ToRows(), nil
}

// generate runs the full pipeline: prompt encoding, row expansion and
// the decoding loop.
func (g *TextGenerator) generate(prompts []string) (*TokenMatrix, error) {
	cfg := g.config

	// 1. Encode prompts into a left-padded batch.
	var tokens, mask *TokenMatrix
	if len(prompts) > 0 {
		var err error
		tokens, mask, err = encodePrompts(g.tokenizer, prompts, cfg.MaxLength)
		if err != nil {
			return nil, err
		}
	} else {
		bos := g.tokenizer.BosToken()
		if bos < 0 {
			return nil, fmt.Errorf("no prompts given and the tokenizer has no beginning-of-sequence token")
		}
		tokens = NewTokenMatrix(1, 1)
		tokens.Set(0, 0, bos)
		mask = NewTokenMatrix(1, 1)
		mask.Set(0, 0, 1)
	}

	// 2. Resolve the tokens driving termination and padding.
	eosTokens := g.tokenizer.EosTokens()
	padToken := g.tokenizer.PadToken()
	if padToken < 0 && len(eosTokens) > 0 {
		padToken = eosTokens[0]
	}

	// 3. Expand rows for multiple return sequences and beams.
	mult := 1
	if cfg.DoSample && cfg.NumReturnSequences > 1 {
		mult = cfg.NumReturnSequences
	}
	if expand := mult * cfg.NumBeams; expand > 1 {
		tokens = tokens.RepeatRows(expand)
		mask = mask.RepeatRows(expand)
	}

	// 4. Decode.
	rng := newRNG(cfg.Seed)
	if cfg.NumBeams > 1 {
		return g.generateBeamSearch(tokens, mask, eosTokens, padToken, rng)
	}
	return g.generateNoBeamSearch(tokens, mask, eosTokens, padToken, rng)
}

// prepareInput selects what the model sees on a step: the full history
// on the first call, only the newest column once a cache exists.
func prepareInput(tokens *TokenMatrix, cache Cache) *TokenMatrix {
	if cache == nil {
		return tokens
	}
	return tokens.TailColumns(1)
}
