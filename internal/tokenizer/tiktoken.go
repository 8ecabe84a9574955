package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// encodingCL100kBase is the encoding name for GPT-4 and GPT-3.5-turbo.
	encodingCL100kBase = "cl100k_base"
	// encodingP50kBase is the encoding name for GPT-3.
	encodingP50kBase = "p50k_base"
	// encodingR50kBase is the encoding name for older GPT-3 models.
	encodingR50kBase = "r50k_base"
)

// encodingTraits carries the per-encoding constants tiktoken-go does
// not expose: the vocabulary size and the end-of-text token id.
type encodingTraits struct {
	vocabSize int
	endOfText int32
}

var knownEncodings = map[string]encodingTraits{
	encodingCL100kBase: {vocabSize: 100256, endOfText: 100257},
	encodingP50kBase:   {vocabSize: 50257, endOfText: 50256},
	encodingR50kBase:   {vocabSize: 50257, endOfText: 50256},
}

// TikToken adapts pkoukk/tiktoken-go encodings to the Tokenizer
// interface.
//
// Supported encodings:
//   - cl100k_base: GPT-4, GPT-3.5-turbo, text-embedding-ada-002
//   - p50k_base: GPT-3, Codex
//   - r50k_base: older GPT-3 models
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken creates a TikToken tokenizer for a named encoding, such
// as "cl100k_base" or "p50k_base".
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
	}, nil
}

// NewTikTokenForModel creates a TikToken tokenizer for a model name,
// such as "gpt-4" or "gpt-3.5-turbo".
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	encoding, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken for model %q: %w", modelName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     modelName,
	}, nil
}

// Encode converts text to token IDs.
func (t *TikToken) Encode(text string) ([]int32, error) {
	ids := t.encoding.Encode(text, nil, nil)

	tokens := make([]int32, len(ids))
	for i, id := range ids {
		tokens[i] = int32(id) //nolint:gosec // G115: vocabulary ids stay far below 2^31
	}
	return tokens, nil
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(tokens []int32, skipSpecialTokens, cleanUpSpaces bool) (string, error) {
	ids := make([]int, 0, len(tokens))
	for _, token := range tokens {
		if skipSpecialTokens && t.IsSpecialToken(token) {
			continue
		}
		ids = append(ids, int(token))
	}

	text := t.encoding.Decode(ids)
	if cleanUpSpaces {
		text = CleanUpSpaces(text)
	}
	return text, nil
}

// VocabSize returns the total vocabulary size. Unrecognized encoding
// names report a conservative default.
func (t *TikToken) VocabSize() int {
	if traits, ok := knownEncodings[t.name]; ok {
		return traits.vocabSize
	}
	return 100000
}

// BosToken returns -1; tiktoken encodings define no
// beginning-of-sequence token.
func (t *TikToken) BosToken() int32 {
	return -1
}

// EosTokens returns the end-of-text token id for known encodings.
func (t *TikToken) EosTokens() []int32 {
	if traits, ok := knownEncodings[t.name]; ok {
		return []int32{traits.endOfText}
	}
	return nil
}

// PadToken returns -1; tiktoken encodings define no padding token.
func (t *TikToken) PadToken() int32 {
	return -1
}

// UnkToken returns -1; tiktoken falls back to byte-level pieces instead
// of an unknown token.
func (t *TikToken) UnkToken() int32 {
	return -1
}

// IsSpecialToken checks if a token ID is a special token.
func (t *TikToken) IsSpecialToken(token int32) bool {
	traits, ok := knownEncodings[t.name]
	if !ok {
		return false
	}
	if token == traits.endOfText {
		return true
	}

	// cl100k_base reserves 100256-100276 for ChatML markers.
	return t.name == encodingCL100kBase && token >= 100256 && token <= 100276
}

// Name returns the encoding or model name the tokenizer was built from.
func (t *TikToken) Name() string {
	return t.name
}
