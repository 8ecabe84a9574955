package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ModelFormat identifies the subword scheme a pretrained tokenizer.json
// file declares.
type ModelFormat string

const (
	// FormatBPE is byte-pair encoding (GPT-2 style vocabularies).
	FormatBPE ModelFormat = "BPE"

	// FormatWordPiece is the BERT-style subword scheme.
	FormatWordPiece ModelFormat = "WordPiece"

	// FormatUnigram is the SentencePiece unigram scheme.
	FormatUnigram ModelFormat = "Unigram"

	// FormatUnknown marks files declaring a scheme this package does not recognize.
	FormatUnknown ModelFormat = "Unknown"
)

// PretrainedMetadata summarizes a tokenizer.json file: the subword
// scheme it declares, its vocabulary size, and the special token ids a
// generation pipeline needs. Absent ids are -1; EosIDs is empty when
// the file defines no end-of-sequence token.
type PretrainedMetadata struct {
	Format    ModelFormat
	ModelType string
	VocabSize int
	BosID     int32
	EosIDs    []int32
	PadID     int32
	UnkID     int32
}

// pretrainedFile mirrors the parts of tokenizer.json the inspector
// reads. The vocab stays raw: BPE and WordPiece store it as an object
// while Unigram stores an array of [token, score] pairs.
type pretrainedFile struct {
	Model struct {
		Type  string          `json:"type"`
		Vocab json.RawMessage `json:"vocab"`
	} `json:"model"`
	AddedTokens []struct {
		ID      int32  `json:"id"`
		Content string `json:"content"`
		Special bool   `json:"special"`
	} `json:"added_tokens"`
}

// InspectPretrained reads a tokenizer.json file and reports its format
// and special tokens without constructing the tokenizer itself.
func InspectPretrained(path string) (*PretrainedMetadata, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path comes from trusted caller
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer.json: %w", err)
	}

	var file pretrainedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tokenizer.json: %w", err)
	}

	meta := &PretrainedMetadata{
		Format:    FormatUnknown,
		ModelType: file.Model.Type,
		VocabSize: countVocabEntries(file.Model.Vocab),
		BosID:     -1,
		PadID:     -1,
		UnkID:     -1,
	}

	switch file.Model.Type {
	case "BPE":
		meta.Format = FormatBPE
	case "WordPiece":
		meta.Format = FormatWordPiece
	case "Unigram":
		meta.Format = FormatUnigram
	}

	for _, token := range file.AddedTokens {
		if !token.Special {
			continue
		}
		switch classifyTokenRole(token.Content) {
		case roleBOS:
			meta.BosID = token.ID
		case roleEOS:
			meta.EosIDs = append(meta.EosIDs, token.ID)
		case rolePAD:
			meta.PadID = token.ID
		case roleUNK:
			meta.UnkID = token.ID
		}
	}

	return meta, nil
}

// countVocabEntries reports how many entries a raw vocab value holds.
// BPE and WordPiece store an object, Unigram an array; anything else
// counts as zero.
func countVocabEntries(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err == nil {
		return len(object)
	}

	var array []json.RawMessage
	if err := json.Unmarshal(raw, &array); err == nil {
		return len(array)
	}

	return 0
}

// tokenRole is the generation role a special token plays.
type tokenRole int

const (
	roleNone tokenRole = iota
	roleBOS
	roleEOS
	rolePAD
	roleUNK
)

// classifyTokenRole guesses a special token's role from its content.
// Both BERT-style markers ([CLS], [SEP]) and GPT-style markers (<s>,
// </s>, <|endoftext|>) are recognized.
func classifyTokenRole(content string) tokenRole {
	c := strings.ToLower(content)
	switch {
	case c == "<s>" || c == "[cls]" || strings.Contains(c, "bos"):
		return roleBOS
	case c == "</s>" || c == "[sep]" || c == "<|endoftext|>" || strings.Contains(c, "eos"):
		return roleEOS
	case strings.Contains(c, "pad"):
		return rolePAD
	case strings.Contains(c, "unk"):
		return roleUNK
	default:
		return roleNone
	}
}

// LoadFromHuggingFace loads a tokenizer from a HuggingFace model directory.
//
// The directory must contain tokenizer.json. Only BPE vocabularies are
// supported; WordPiece and Unigram files are recognized but rejected.
func LoadFromHuggingFace(modelPath string) (Tokenizer, error) {
	tokenizerPath := filepath.Join(modelPath, "tokenizer.json")

	meta, err := InspectPretrained(tokenizerPath)
	if err != nil {
		return nil, err
	}

	switch meta.Format {
	case FormatBPE:
		return LoadBPEFromHuggingFace(tokenizerPath)
	case FormatWordPiece:
		return nil, fmt.Errorf("wordpiece tokenizers are not supported")
	case FormatUnigram:
		return nil, fmt.Errorf("unigram tokenizers are not supported")
	default:
		return nil, fmt.Errorf("unrecognized tokenizer model type %q", meta.ModelType)
	}
}

// AutoLoadTokenizer resolves pathOrName into a tokenizer.
//
// A directory containing tokenizer.json loads as a HuggingFace model
// directory. Any other value goes to tiktoken, first as a model name
// ("gpt-4"), then as an encoding name ("cl100k_base").
func AutoLoadTokenizer(pathOrName string) (Tokenizer, error) {
	if info, err := os.Stat(pathOrName); err == nil && info.IsDir() {
		if _, err := os.Stat(filepath.Join(pathOrName, "tokenizer.json")); err == nil {
			return LoadFromHuggingFace(pathOrName)
		}
	}

	if tok, err := NewTikTokenForModel(pathOrName); err == nil {
		return tok, nil
	}

	if tok, err := NewTikToken(pathOrName); err == nil {
		return tok, nil
	}

	return nil, fmt.Errorf("no tokenizer found for %q", pathOrName)
}
