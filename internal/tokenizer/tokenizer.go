package tokenizer

import "strings"

// Tokenizer is the core interface for text tokenization.
//
// All tokenizer implementations (tiktoken, BPE, etc.) must implement this interface.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text. skipSpecialTokens drops
	// special tokens from the output; cleanUpSpaces removes spacing
	// artifacts around punctuation and contractions.
	Decode(tokens []int32, skipSpecialTokens, cleanUpSpaces bool) (string, error)

	// VocabSize returns the total vocabulary size.
	VocabSize() int

	// BosToken returns the beginning-of-sequence token ID.
	// Returns -1 if not applicable.
	BosToken() int32

	// EosTokens returns the end-of-sequence token IDs.
	// Returns nil if the vocabulary defines none.
	EosTokens() []int32

	// PadToken returns the padding token ID.
	// Returns -1 if not applicable.
	PadToken() int32

	// UnkToken returns the unknown token ID.
	// Returns -1 if not applicable.
	UnkToken() int32

	// IsSpecialToken checks if a token ID is a special token.
	IsSpecialToken(token int32) bool
}

// CleanUpSpaces removes the spaces tokenization inserts before
// punctuation and inside English contractions. Replacements apply in
// order, matching the reference decoding behavior.
func CleanUpSpaces(text string) string {
	text = strings.ReplaceAll(text, " .", ".")
	text = strings.ReplaceAll(text, " !", "!")
	text = strings.ReplaceAll(text, " ?", "?")
	text = strings.ReplaceAll(text, " ,", ",")
	text = strings.ReplaceAll(text, " ' ", "' ")
	text = strings.ReplaceAll(text, " n't", "n't")
	text = strings.ReplaceAll(text, " 'm", "'m")
	text = strings.ReplaceAll(text, " do not", " don't")
	text = strings.ReplaceAll(text, " 's", "'s")
	text = strings.ReplaceAll(text, " 've", "'ve")
	text = strings.ReplaceAll(text, " 're", "'re")
	return text
}
