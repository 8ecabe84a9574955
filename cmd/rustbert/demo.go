package main

import (
	"strings"

	"github.com/Vincent-Xiao/rust-bert/generate"
	"github.com/Vincent-Xiao/rust-bert/tokenizer"
)

// The demo pipeline pairs a word-level tokenizer with a deterministic
// bigram model so the CLI runs without downloading model weights. Every
// word scores a fixed list of successors; everything else is strongly
// penalized, and the end-of-sequence score ramps up with sequence
// length so generation terminates on its own.

const (
	demoPad = iota
	demoBos
	demoEos
	demoUnk
)

// demoWords is the demo vocabulary. Token ids follow slice order, with
// the four special tokens first.
var demoWords = []string{
	"<pad>", "<bos>", "<eos>", "<unk>",
	"the", "a", "quick", "brown", "fox", "jumps", "runs", "over",
	"through", "lazy", "dog", "barks", "sleeps", "quietly", "at",
	"model", "writes", "write", "short", "stories", "about", "machines",
	"that", "dream", "dreams", "of", "electric", "sheep", "and", "code",
	"learn", "learns",
}

// demoTransitions lists the successors of each word, best first.
var demoTransitions = map[string][]string{
	"<pad>":    {"the"},
	"<bos>":    {"the", "a", "machines", "code"},
	"<eos>":    {"the"},
	"<unk>":    {"the", "a"},
	"the":      {"quick", "lazy", "model", "machines", "code"},
	"a":        {"model", "dog", "fox", "dream"},
	"quick":    {"brown", "fox", "model"},
	"brown":    {"fox", "dog"},
	"fox":      {"jumps", "runs", "dreams"},
	"jumps":    {"over"},
	"runs":     {"over", "through"},
	"over":     {"the", "a"},
	"through":  {"the"},
	"lazy":     {"dog", "model"},
	"dog":      {"barks", "sleeps", "dreams"},
	"barks":    {"at"},
	"sleeps":   {"and", "quietly"},
	"quietly":  {"and"},
	"at":       {"the", "machines"},
	"model":    {"writes", "dreams", "learns"},
	"writes":   {"short", "about", "code"},
	"write":    {"short", "code", "stories"},
	"short":    {"stories"},
	"stories":  {"about", "and"},
	"about":    {"machines", "the", "a"},
	"machines": {"that", "dream", "learn"},
	"that":     {"dream", "learn", "write"},
	"dream":    {"of", "and"},
	"dreams":   {"of", "about", "and"},
	"of":       {"electric", "code", "the"},
	"electric": {"sheep", "code"},
	"sheep":    {"and", "dream"},
	"and":      {"the", "a", "machines", "code"},
	"code":     {"that", "runs", "and"},
	"learn":    {"about", "the"},
	"learns":   {"about", "the"},
}

const (
	demoTopScore      = 2.0
	demoRankStep      = 0.25
	demoUnlistedScore = -8.0
	demoEosRamp       = 0.35
	demoEosBase       = 4.0
)

// demoTokenizer is a lowercasing word-level tokenizer over demoWords.
type demoTokenizer struct {
	vocab map[string]int32
	words []string
}

var _ tokenizer.Tokenizer = (*demoTokenizer)(nil)

func newDemoTokenizer() *demoTokenizer {
	vocab := make(map[string]int32, len(demoWords))
	for id, word := range demoWords {
		vocab[word] = int32(id)
	}
	return &demoTokenizer{vocab: vocab, words: demoWords}
}

func (t *demoTokenizer) Encode(text string) ([]int32, error) {
	words := strings.Fields(strings.ToLower(text))
	tokens := make([]int32, 0, len(words))
	for _, word := range words {
		if id, ok := t.vocab[word]; ok {
			tokens = append(tokens, id)
		} else {
			tokens = append(tokens, demoUnk)
		}
	}
	if len(tokens) == 0 {
		tokens = append(tokens, demoUnk)
	}
	return tokens, nil
}

func (t *demoTokenizer) Decode(tokens []int32, skipSpecialTokens, cleanUpSpaces bool) (string, error) {
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if skipSpecialTokens && t.IsSpecialToken(tok) {
			continue
		}
		if int(tok) >= 0 && int(tok) < len(t.words) {
			words = append(words, t.words[tok])
		}
	}
	text := strings.Join(words, " ")
	if cleanUpSpaces {
		text = tokenizer.CleanUpSpaces(text)
	}
	return text, nil
}

func (t *demoTokenizer) VocabSize() int     { return len(t.words) }
func (t *demoTokenizer) BosToken() int32    { return demoBos }
func (t *demoTokenizer) EosTokens() []int32 { return []int32{demoEos} }
func (t *demoTokenizer) PadToken() int32    { return demoPad }
func (t *demoTokenizer) UnkToken() int32    { return demoUnk }

func (t *demoTokenizer) IsSpecialToken(token int32) bool {
	return token >= demoPad && token <= demoUnk
}

// demoCache tracks the running sequence length per row so the
// end-of-sequence ramp keeps growing once the model only sees the
// newest column.
type demoCache struct {
	lengths []int
}

var _ generate.Cache = (*demoCache)(nil)

func (c *demoCache) Reorder(beamIdx []int) generate.Cache {
	next := make([]int, len(beamIdx))
	for i, src := range beamIdx {
		next[i] = c.lengths[src]
	}
	return &demoCache{lengths: next}
}

// demoModel scores successors from demoTransitions keyed by the last
// token of each row.
type demoModel struct {
	successors map[int32][]int32
	vocabSize  int
}

var _ generate.LLMModel = (*demoModel)(nil)

func newDemoModel(tok *demoTokenizer) *demoModel {
	successors := make(map[int32][]int32, len(demoTransitions))
	for word, nexts := range demoTransitions {
		ids := make([]int32, len(nexts))
		for i, next := range nexts {
			ids[i] = tok.vocab[next]
		}
		successors[tok.vocab[word]] = ids
	}
	return &demoModel{successors: successors, vocabSize: tok.VocabSize()}
}

func (m *demoModel) VocabSize() int { return m.vocabSize }

func (m *demoModel) Forward(input, _ *generate.TokenMatrix, cache generate.Cache) (*generate.ScoreMatrix, generate.Cache, error) {
	rows := input.Rows()

	state, _ := cache.(*demoCache)
	if state == nil {
		state = &demoCache{lengths: make([]int, rows)}
		for i := range state.lengths {
			state.lengths[i] = input.Cols()
		}
	} else {
		for i := range state.lengths {
			state.lengths[i] += input.Cols()
		}
	}

	scores := generate.NewScoreMatrix(rows, m.vocabSize)
	scores.Fill(demoUnlistedScore)
	for i := 0; i < rows; i++ {
		last := input.At(i, input.Cols()-1)
		for rank, succ := range m.successors[last] {
			scores.Set(i, int(succ), float32(demoTopScore-demoRankStep*float64(rank)))
		}
		scores.Set(i, demoEos, float32(demoEosRamp*float64(state.lengths[i])-demoEosBase))
	}
	return scores, state, nil
}
