// Package generate provides autoregressive text generation for language
// models.
//
// This package wraps the internal generate implementation and provides
// a clean public API for decoding tasks.
//
// Components:
//   - GenerateConfig: decoding parameters (lengths, sampling, beams,
//     repetition constraints)
//   - LLMModel / Cache: the model interface generation drives
//   - TextGenerator: high-level generation over text prompts
//
// Example usage:
//
//	import (
//	    "github.com/Vincent-Xiao/rust-bert/generate"
//	    "github.com/Vincent-Xiao/rust-bert/tokenizer"
//	)
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	config := generate.DefaultGenerateConfig()
//	config.NumBeams = 3
//	config.DoSample = false
//
//	gen, err := generate.NewTextGenerator(model, tok, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outputs, err := gen.Generate([]string{"The dog"})
package generate

import (
	"github.com/Vincent-Xiao/rust-bert/internal/generate"
	"github.com/Vincent-Xiao/rust-bert/internal/tokenizer"
)

// Generation Configuration

// GenerateConfig configures the decoding strategy.
//
// Parameters:
//   - MinLength / MaxLength: total sequence length bounds in tokens,
//     prompt included
//   - DoSample: stochastic sampling (false = greedy/deterministic)
//   - EarlyStopping: stop beam search once NumBeams hypotheses finished
//   - NumBeams: beam count, 1 disables beam search
//   - Temperature: logit scaling before sampling (> 0)
//   - TopK / TopP: top-k and nucleus filtering (0 / 1.0 = disabled)
//   - RepetitionPenalty: rescales logits of already-seen tokens (>= 1)
//   - LengthPenalty: beam score length normalization exponent (> 0)
//   - NoRepeatNgramSize: bans repeating n-grams (0 = disabled)
//   - NumReturnSequences: outputs per input prompt
//   - Seed: sampling RNG seed (-1 = nondeterministic)
//
//nolint:revive // GenerateConfig is clearer than Config
type GenerateConfig = generate.GenerateConfig

// DefaultGenerateConfig returns the reference decoding defaults.
//
// Defaults:
//   - MaxLength: 20, MinLength: 0
//   - DoSample: true, Temperature: 1.0, TopK: 0, TopP: 0.9
//   - NumBeams: 5, EarlyStopping: false, LengthPenalty: 1.0
//   - RepetitionPenalty: 1.0, NoRepeatNgramSize: 3
//   - NumReturnSequences: 1, Seed: -1
func DefaultGenerateConfig() GenerateConfig {
	return generate.DefaultGenerateConfig()
}

// Matrices

// Matrix is a rectangular, row-major batch matrix. Token histories,
// attention masks and score matrices share this one representation.
type Matrix[T int32 | float32] = generate.Matrix[T]

// TokenMatrix holds token ids or 0/1 attention-mask values.
type TokenMatrix = generate.TokenMatrix

// ScoreMatrix holds per-token scores for one decoding step.
type ScoreMatrix = generate.ScoreMatrix

// NewTokenMatrix creates a zeroed rows x cols token matrix.
func NewTokenMatrix(rows, cols int) *TokenMatrix {
	return generate.NewTokenMatrix(rows, cols)
}

// NewScoreMatrix creates a zeroed rows x cols score matrix.
func NewScoreMatrix(rows, cols int) *ScoreMatrix {
	return generate.NewScoreMatrix(rows, cols)
}

// MatrixFromRows builds a matrix from equally sized rows.
// Rows are copied; the input slices stay owned by the caller.
func MatrixFromRows[T int32 | float32](rows [][]T) *Matrix[T] {
	return generate.MatrixFromRows(rows)
}

// TextGenerator

// Cache carries model-specific decoding state (typically key/value
// attention caches) between forward passes.
type Cache = generate.Cache

// LLMModel is the interface for language models used in generation.
//
// Forward receives the full token history and a nil cache on the first
// call; subsequent calls receive only the newest column together with
// the cache returned by the previous call.
type LLMModel = generate.LLMModel

// TextGenerator generates token sequences from text prompts.
type TextGenerator = generate.TextGenerator

// NewTextGenerator creates a text generator. The configuration is
// validated here and reused unchanged by every Generate call.
//
// Example:
//
//	tok, _ := tokenizer.NewTikToken("cl100k_base")
//	config := generate.DefaultGenerateConfig()
//	config.DoSample = false
//	config.NumBeams = 1
//
//	gen, err := generate.NewTextGenerator(model, tok, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outputs, err := gen.Generate([]string{"The dog"})
func NewTextGenerator(model LLMModel, tok tokenizer.Tokenizer, config GenerateConfig) (*TextGenerator, error) {
	return generate.NewTextGenerator(model, tok, config)
}
