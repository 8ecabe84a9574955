// Package tokenizer provides text tokenization for sequence generation.
//
// The tokenizer package implements various tokenization strategies:
//   - tiktoken: BPE tokenizer used by GPT-3/GPT-4 (cl100k_base, p50k_base)
//   - BPE: Byte-Pair Encoding from HuggingFace tokenizer.json
//
// Decoding can optionally drop special tokens (end-of-sequence, padding)
// and clean up the spacing artifacts tokenization leaves around
// punctuation, which is what generation pipelines want for final output.
//
// Example usage:
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
