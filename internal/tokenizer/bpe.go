package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// BPETokenizer is a pure Go byte-pair encoder. It loads HuggingFace
// tokenizer.json vocabularies and supports the special token registry
// generation needs, including multiple end-of-sequence ids.
type BPETokenizer struct {
	vocab         map[string]int32
	reverseVocab  map[int32]string
	mergeRanks    map[pair]int
	bosToken      int32
	eosTokens     []int32
	padToken      int32
	unkToken      int32
	specialTokens map[int32]bool
}

type pair struct {
	first  string
	second string
}

// NewBPETokenizer creates a BPE tokenizer from a vocabulary and an
// ordered merge list. Earlier merges take priority.
func NewBPETokenizer(vocab map[string]int32, merges []pair) *BPETokenizer {
	reverseVocab := make(map[int32]string, len(vocab))
	for token, id := range vocab {
		reverseVocab[id] = token
	}

	mergeRanks := make(map[pair]int, len(merges))
	for rank, p := range merges {
		if _, ok := mergeRanks[p]; !ok {
			mergeRanks[p] = rank
		}
	}

	return &BPETokenizer{
		vocab:         vocab,
		reverseVocab:  reverseVocab,
		mergeRanks:    mergeRanks,
		bosToken:      -1,
		eosTokens:     nil,
		padToken:      -1,
		unkToken:      -1,
		specialTokens: make(map[int32]bool),
	}
}

// SetSpecialTokens configures special token IDs. Negative IDs mark the
// token as absent.
func (b *BPETokenizer) SetSpecialTokens(bos, eos, pad, unk int32) {
	b.bosToken = bos
	b.padToken = pad
	b.unkToken = unk

	if bos >= 0 {
		b.specialTokens[bos] = true
	}
	if eos >= 0 {
		b.addEosToken(eos)
	}
	if pad >= 0 {
		b.specialTokens[pad] = true
	}
	if unk >= 0 {
		b.specialTokens[unk] = true
	}
}

// addEosToken registers an additional end-of-sequence token ID.
func (b *BPETokenizer) addEosToken(id int32) {
	for _, eos := range b.eosTokens {
		if eos == id {
			return
		}
	}
	b.eosTokens = append(b.eosTokens, id)
	b.specialTokens[id] = true
}

// Encode converts text to token IDs. Words are split on whitespace and
// merged independently; pieces missing from the vocabulary fall back to
// the unknown token when one is configured.
func (b *BPETokenizer) Encode(text string) ([]int32, error) {
	if text == "" {
		return []int32{}, nil
	}

	var tokens []int32
	for _, word := range strings.Fields(text) {
		for _, piece := range b.mergeWord(word) {
			if id, ok := b.vocab[piece]; ok {
				tokens = append(tokens, id)
			} else if b.unkToken >= 0 {
				tokens = append(tokens, b.unkToken)
			}
		}
	}
	return tokens, nil
}

// mergeWord splits a word into single runes and repeatedly applies the
// lowest-ranked merge until none applies.
func (b *BPETokenizer) mergeWord(word string) []string {
	pieces := make([]string, 0, len(word))
	for _, r := range word {
		pieces = append(pieces, string(r))
	}

	for len(pieces) > 1 {
		bestIdx := -1
		bestRank := len(b.mergeRanks) + 1
		for i := 0; i < len(pieces)-1; i++ {
			if rank := b.mergeRank(pair{pieces[i], pieces[i+1]}); rank < bestRank {
				bestIdx, bestRank = i, rank
			}
		}
		if bestIdx < 0 {
			break
		}

		pieces[bestIdx] += pieces[bestIdx+1]
		pieces = append(pieces[:bestIdx+1], pieces[bestIdx+2:]...)
	}
	return pieces
}

// mergeRank returns a pair's merge priority, lower being earlier. Pairs
// with no merge rule rank below every real rule.
func (b *BPETokenizer) mergeRank(p pair) int {
	if rank, ok := b.mergeRanks[p]; ok {
		return rank
	}
	return len(b.mergeRanks) + 1
}

// Decode converts token IDs back to text. Unknown ids decode to the
// Unicode replacement character.
func (b *BPETokenizer) Decode(tokens []int32, skipSpecialTokens, cleanUpSpaces bool) (string, error) {
	var sb strings.Builder
	for _, token := range tokens {
		if skipSpecialTokens && b.specialTokens[token] {
			continue
		}
		if text, ok := b.reverseVocab[token]; ok {
			sb.WriteString(text)
		} else {
			sb.WriteString("�")
		}
	}

	text := sb.String()
	if cleanUpSpaces {
		text = CleanUpSpaces(text)
	}
	return text, nil
}

// VocabSize returns the total vocabulary size.
func (b *BPETokenizer) VocabSize() int {
	return len(b.vocab)
}

// BosToken returns the beginning-of-sequence token ID.
func (b *BPETokenizer) BosToken() int32 {
	return b.bosToken
}

// EosTokens returns the end-of-sequence token IDs.
func (b *BPETokenizer) EosTokens() []int32 {
	return b.eosTokens
}

// PadToken returns the padding token ID.
func (b *BPETokenizer) PadToken() int32 {
	return b.padToken
}

// UnkToken returns the unknown token ID.
func (b *BPETokenizer) UnkToken() int32 {
	return b.unkToken
}

// IsSpecialToken checks if a token ID is a special token.
func (b *BPETokenizer) IsSpecialToken(token int32) bool {
	return b.specialTokens[token]
}

// bpeFile mirrors the BPE portions of tokenizer.json.
type bpeFile struct {
	Model struct {
		Vocab  map[string]int32 `json:"vocab"`
		Merges []string         `json:"merges"`
	} `json:"model"`
	AddedTokens []struct {
		ID      int32  `json:"id"`
		Content string `json:"content"`
		Special bool   `json:"special"`
	} `json:"added_tokens"`
}

// LoadBPEFromHuggingFace loads a BPE tokenizer from a tokenizer.json
// file. Added tokens marked special register under the role their
// content suggests.
func LoadBPEFromHuggingFace(path string) (*BPETokenizer, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path comes from trusted caller
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer.json: %w", err)
	}

	var file bpeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tokenizer.json: %w", err)
	}

	merges := make([]pair, 0, len(file.Model.Merges))
	for _, merge := range file.Model.Merges {
		if parts := strings.Fields(merge); len(parts) == 2 {
			merges = append(merges, pair{parts[0], parts[1]})
		}
	}

	tok := NewBPETokenizer(file.Model.Vocab, merges)

	for _, added := range file.AddedTokens {
		if !added.Special {
			continue
		}
		tok.specialTokens[added.ID] = true

		switch classifyTokenRole(added.Content) {
		case roleBOS:
			tok.bosToken = added.ID
		case roleEOS:
			tok.addEosToken(added.ID)
		case rolePAD:
			tok.padToken = added.ID
		case roleUNK:
			tok.unkToken = added.ID
		}
	}

	return tok, nil
}

// ExampleBPEVocab creates a minimal BPE tokenizer for tests and
// examples. It covers "hello world" and nothing else.
func ExampleBPEVocab() *BPETokenizer {
	vocab := map[string]int32{
		"h":   0,
		"e":   1,
		"l":   2,
		"o":   3,
		"w":   4,
		"r":   5,
		"d":   6,
		" ":   7,
		"he":  8,
		"ll":  9,
		"o ":  10,
		"wor": 11,
		"ld":  12,
	}

	merges := []pair{
		{"h", "e"},
		{"l", "l"},
		{"o", " "},
		{"w", "o"},
		{"l", "d"},
	}

	tokenizer := NewBPETokenizer(vocab, merges)
	tokenizer.SetSpecialTokens(-1, -1, -1, -1)

	return tokenizer
}
