package generate

import "fmt"

// GenerateConfig configures the decoding strategy for text generation.
//
// MinLength and MaxLength are counted in tokens and include the prompt.
//
//nolint:revive // GenerateConfig is clearer than Config
type GenerateConfig struct {
	// MinLength is the minimum total sequence length before an
	// end-of-sequence token may be emitted.
	MinLength int

	// MaxLength is the maximum total sequence length.
	MaxLength int

	// DoSample enables stochastic sampling. false = greedy/deterministic.
	DoSample bool

	// EarlyStopping stops beam search as soon as NumBeams hypotheses
	// are complete, without waiting for a provably optimal result.
	EarlyStopping bool

	// NumBeams sets the number of beams for beam search. 1 disables it.
	NumBeams int

	// Temperature scales logits before sampling. Must be > 0.
	// Values > 1 flatten the distribution; applied only when sampling.
	Temperature float64

	// TopK limits sampling to the K highest-scoring tokens. 0 = disabled.
	TopK int

	// TopP (nucleus sampling) limits sampling to the smallest token set
	// with cumulative probability above P. 1.0 = disabled.
	TopP float64

	// RepetitionPenalty rescales logits of previously seen tokens.
	// 1.0 = no penalty. Must be >= 1.
	RepetitionPenalty float64

	// LengthPenalty is the exponent applied to sequence length when
	// normalizing beam scores. > 1 favors longer sequences. Must be > 0.
	LengthPenalty float64

	// NoRepeatNgramSize bans n-grams that already occurred in a row's
	// history from being repeated. 0 = disabled.
	NoRepeatNgramSize int

	// NumReturnSequences is the number of sequences returned per input.
	NumReturnSequences int

	// Seed for the sampling RNG. -1 = nondeterministic.
	Seed int64
}

// DefaultGenerateConfig returns the reference decoding defaults.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		MinLength:          0,
		MaxLength:          20,
		DoSample:           true,
		EarlyStopping:      false,
		NumBeams:           5,
		Temperature:        1.0,
		TopK:               0,
		TopP:               0.9,
		RepetitionPenalty:  1.0,
		LengthPenalty:      1.0,
		NoRepeatNgramSize:  3,
		NumReturnSequences: 1,
		Seed:               -1,
	}
}

// Validate checks the configuration for out-of-range values and
// inconsistent strategy combinations. Invalid configurations are
// rejected outright, never clamped.
func (c GenerateConfig) Validate() error {
	if c.Temperature <= 0 {
		return fmt.Errorf("temperature must be strictly positive, got %v", c.Temperature)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("top_p must be between 0 and 1, got %v", c.TopP)
	}
	if c.RepetitionPenalty < 1 {
		return fmt.Errorf("repetition_penalty must be at least 1, got %v", c.RepetitionPenalty)
	}
	if c.LengthPenalty <= 0 {
		return fmt.Errorf("length_penalty must be strictly positive, got %v", c.LengthPenalty)
	}
	if c.NumReturnSequences < 1 {
		return fmt.Errorf("num_return_sequences must be at least 1, got %d", c.NumReturnSequences)
	}
	if c.NumBeams < 1 {
		return fmt.Errorf("num_beams must be at least 1, got %d", c.NumBeams)
	}
	if c.MaxLength < 1 {
		return fmt.Errorf("max_length must be at least 1, got %d", c.MaxLength)
	}

	if !c.DoSample {
		if c.NumBeams == 1 && c.NumReturnSequences != 1 {
			return fmt.Errorf("greedy decoding cannot return %d sequences per input, set num_beams > 1 or num_return_sequences = 1", c.NumReturnSequences)
		}
		if c.NumBeams > 1 && c.NumReturnSequences > c.NumBeams {
			return fmt.Errorf("num_return_sequences (%d) cannot exceed num_beams (%d) for deterministic beam search", c.NumReturnSequences, c.NumBeams)
		}
	}

	return nil
}
