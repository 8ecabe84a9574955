package generate

import (
	"fmt"
	"log/slog"

	"github.com/Vincent-Xiao/rust-bert/internal/tokenizer"
)

// encodePrompts tokenizes prompts into a left-padded token matrix plus
// the matching attention mask (1 for real tokens, 0 for padding).
// Prompts longer than maxLength are truncated from the end. Padding
// uses the tokenizer's pad token, falling back to the unknown token;
// with neither, rows are zero-filled and the mask is all ones.
func encodePrompts(tok tokenizer.Tokenizer, prompts []string, maxLength int) (*TokenMatrix, *TokenMatrix, error) {
	encoded := make([][]int32, len(prompts))
	width := 0
	for i, p := range prompts {
		ids, err := tok.Encode(p)
		if err != nil {
			return nil, nil, fmt.Errorf("encode prompt %d: %w", i, err)
		}
		if len(ids) > maxLength {
			slog.Warn("prompt exceeds max length, truncating",
				"prompt", i, "tokens", len(ids), "max_length", maxLength)
			ids = ids[:maxLength]
		}
		encoded[i] = ids
		if len(ids) > width {
			width = len(ids)
		}
	}

	pad := tok.PadToken()
	if pad < 0 {
		pad = tok.UnkToken()
	}

	tokens := NewTokenMatrix(len(prompts), width)
	mask := NewTokenMatrix(len(prompts), width)
	for i, ids := range encoded {
		row := tokens.Row(i)
		maskRow := mask.Row(i)
		offset := width - len(ids)
		if pad >= 0 {
			for j := 0; j < offset; j++ {
				row[j] = pad
			}
		}
		copy(row[offset:], ids)

		if pad < 0 {
			for j := range maskRow {
				maskRow[j] = 1
			}
			continue
		}
		for j, t := range row {
			if t != pad {
				maskRow[j] = 1
			}
		}
	}
	return tokens, mask, nil
}
