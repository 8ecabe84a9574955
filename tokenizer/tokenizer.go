// Package tokenizer provides text tokenization for sequence generation.
//
// This package wraps the internal tokenizer implementations and provides
// a clean public API for tokenization tasks.
//
// Supported tokenizers:
//   - TikToken: OpenAI BPE tokenizers (GPT-3, GPT-4)
//   - BPE: Byte-Pair Encoding from HuggingFace tokenizer.json
//
// Example usage:
//
//	import "github.com/Vincent-Xiao/rust-bert/tokenizer"
//
//	// Load tiktoken
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Encode text
//	tokens, err := tok.Encode("Hello, world!")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Decode tokens, dropping special tokens and cleaning up spaces
//	text, err := tok.Decode(tokens, true, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
package tokenizer

import (
	"github.com/Vincent-Xiao/rust-bert/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
//
// All tokenizer implementations must implement this interface. Beyond
// encoding and decoding, it exposes the special token ids generation
// needs: beginning-of-sequence, end-of-sequence (zero or more), padding
// and unknown, each -1 (or empty) when the vocabulary defines none.
type Tokenizer = tokenizer.Tokenizer

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
//
// Supported encodings: "cl100k_base" (GPT-4), "p50k_base" (GPT-3).
func NewTikToken(encodingName string) (Tokenizer, error) {
	return tokenizer.NewTikToken(encodingName)
}

// NewTikTokenForModel creates a TikToken tokenizer for a specific model.
//
// Example models: "gpt-4", "gpt-3.5-turbo", "text-embedding-ada-002".
func NewTikTokenForModel(modelName string) (Tokenizer, error) {
	return tokenizer.NewTikTokenForModel(modelName)
}

// LoadFromHuggingFace loads a tokenizer from a HuggingFace model directory.
//
// The directory should contain tokenizer.json.
func LoadFromHuggingFace(modelPath string) (Tokenizer, error) {
	return tokenizer.LoadFromHuggingFace(modelPath)
}

// AutoLoad attempts to automatically load the correct tokenizer.
//
// It tries multiple strategies:
//  1. Load from HuggingFace model directory (tokenizer.json)
//  2. Load tiktoken by model name
//  3. Load tiktoken by encoding name
func AutoLoad(pathOrName string) (Tokenizer, error) {
	return tokenizer.AutoLoadTokenizer(pathOrName)
}

// CleanUpSpaces removes the spaces tokenization inserts before
// punctuation and inside English contractions.
func CleanUpSpaces(text string) string {
	return tokenizer.CleanUpSpaces(text)
}

// ExampleBPE creates a minimal BPE tokenizer for testing and examples.
func ExampleBPE() Tokenizer {
	return tokenizer.ExampleBPEVocab()
}
