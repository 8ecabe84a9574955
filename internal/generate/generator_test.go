package generate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Vincent-Xiao/rust-bert/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// specialTokens holds special token IDs for testing.
type specialTokens struct {
	BOS int32
	EOS int32
	PAD int32
	UNK int32
}

// mockTokenizer is a word-level tokenizer for testing.
type mockTokenizer struct {
	vocab     map[string]int32
	invVocab  map[int32]string
	special   specialTokens
	encodeErr error
}

func newMockTokenizer() *mockTokenizer {
	return buildMockTokenizer(map[string]int32{
		"<pad>":  0,
		"<bos>":  1,
		"<eos>":  2,
		"<unk>":  3,
		"hello":  4,
		"world":  5,
		"test":   6,
		"the":    7,
		"a":      8,
		"dog":    9,
		"answer": 10,
		"is":     11,
		"42":     12,
	}, specialTokens{BOS: 1, EOS: 2, PAD: 0, UNK: 3})
}

// newTinyTokenizer returns a five-letter vocabulary with an
// end-of-sequence token but no padding, beginning-of-sequence or
// unknown tokens, matching minimal generative vocabularies.
func newTinyTokenizer() *mockTokenizer {
	return buildMockTokenizer(map[string]int32{
		"a":     0,
		"b":     1,
		"c":     2,
		"d":     3,
		"<eos>": 4,
		"f":     5,
		"g":     6,
		"h":     7,
		"i":     8,
		"j":     9,
	}, specialTokens{BOS: -1, EOS: 4, PAD: -1, UNK: -1})
}

func buildMockTokenizer(vocab map[string]int32, special specialTokens) *mockTokenizer {
	invVocab := make(map[int32]string)
	for k, v := range vocab {
		invVocab[v] = k
	}
	return &mockTokenizer{vocab: vocab, invVocab: invVocab, special: special}
}

func (t *mockTokenizer) Encode(text string) ([]int32, error) {
	if t.encodeErr != nil {
		return nil, t.encodeErr
	}
	tokens := []int32{}
	for _, word := range strings.Fields(text) {
		if id, ok := t.vocab[word]; ok {
			tokens = append(tokens, id)
		} else {
			tokens = append(tokens, t.special.UNK)
		}
	}
	if len(tokens) == 0 {
		tokens = append(tokens, t.special.UNK)
	}
	return tokens, nil
}

func (t *mockTokenizer) Decode(tokens []int32, skipSpecialTokens, cleanUpSpaces bool) (string, error) {
	words := []string{}
	for _, tok := range tokens {
		if skipSpecialTokens && t.IsSpecialToken(tok) {
			continue
		}
		if w, ok := t.invVocab[tok]; ok {
			words = append(words, w)
		}
	}
	text := strings.Join(words, " ")
	if cleanUpSpaces {
		text = tokenizer.CleanUpSpaces(text)
	}
	return text, nil
}

func (t *mockTokenizer) VocabSize() int  { return len(t.vocab) }
func (t *mockTokenizer) BosToken() int32 { return t.special.BOS }
func (t *mockTokenizer) PadToken() int32 { return t.special.PAD }
func (t *mockTokenizer) UnkToken() int32 { return t.special.UNK }

func (t *mockTokenizer) EosTokens() []int32 {
	if t.special.EOS < 0 {
		return nil
	}
	return []int32{t.special.EOS}
}

func (t *mockTokenizer) IsSpecialToken(token int32) bool {
	if token < 0 {
		return false
	}
	return token == t.special.BOS || token == t.special.EOS ||
		token == t.special.PAD || token == t.special.UNK
}

// mockModel scores successors from a fixed transition table keyed by
// the last token of each row. Unlisted successors score -10.
type mockModel struct {
	vocabSize int
	rules     map[int32]map[int32]float32
	calls     int
}

func newMockModel(vocabSize int) *mockModel {
	return &mockModel{vocabSize: vocabSize, rules: map[int32]map[int32]float32{}}
}

// learn makes `to` the preferred successor of `from`.
func (m *mockModel) learn(from, to int32) *mockModel {
	return m.learnScored(from, map[int32]float32{to: 10})
}

// learnScored sets the full successor score map of `from`.
func (m *mockModel) learnScored(from int32, scores map[int32]float32) *mockModel {
	m.rules[from] = scores
	return m
}

func (m *mockModel) scoresFor(lastTokens []int32) *ScoreMatrix {
	scores := NewScoreMatrix(len(lastTokens), m.vocabSize)
	scores.Fill(-10)
	for i, last := range lastTokens {
		for tok, s := range m.rules[last] {
			scores.Set(i, int(tok), s)
		}
	}
	return scores
}

func (m *mockModel) Forward(input, _ *TokenMatrix, _ Cache) (*ScoreMatrix, Cache, error) {
	m.calls++
	last := make([]int32, input.Rows())
	for i := range last {
		last[i] = input.At(i, input.Cols()-1)
	}
	return m.scoresFor(last), nil, nil
}

func (m *mockModel) VocabSize() int { return m.vocabSize }

// mockCache keeps every row's token history so cached calls can score
// from the newest column alone.
type mockCache struct {
	rows [][]int32
}

func (c *mockCache) Reorder(beamIdx []int) Cache {
	out := &mockCache{rows: make([][]int32, len(beamIdx))}
	for i, src := range beamIdx {
		out.rows[i] = append([]int32{}, c.rows[src]...)
	}
	return out
}

// cachingMockModel wraps mockModel behind the incremental decoding
// contract: the full history arrives on the first call, later calls
// only carry the newest column and rely on the reordered cache.
type cachingMockModel struct {
	inner *mockModel
}

func (m *cachingMockModel) Forward(input, _ *TokenMatrix, cache Cache) (*ScoreMatrix, Cache, error) {
	var state *mockCache
	if cache == nil {
		state = &mockCache{rows: input.ToRows()}
	} else {
		prev, ok := cache.(*mockCache)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected cache type %T", cache)
		}
		if input.Cols() != 1 {
			return nil, nil, fmt.Errorf("cached call got %d columns, want 1", input.Cols())
		}
		if input.Rows() != len(prev.rows) {
			return nil, nil, fmt.Errorf("cached call got %d rows, cache has %d", input.Rows(), len(prev.rows))
		}
		state = &mockCache{rows: make([][]int32, input.Rows())}
		for i := range state.rows {
			state.rows[i] = append(append([]int32{}, prev.rows[i]...), input.At(i, 0))
		}
	}

	last := make([]int32, len(state.rows))
	for i, row := range state.rows {
		last[i] = row[len(row)-1]
	}
	return m.inner.scoresFor(last), state, nil
}

func (m *cachingMockModel) VocabSize() int { return m.inner.vocabSize }

// greedyConfig is the base configuration for deterministic tests: all
// stochastic and penalty stages disabled.
func greedyConfig() GenerateConfig {
	cfg := DefaultGenerateConfig()
	cfg.DoSample = false
	cfg.NumBeams = 1
	cfg.TopK = 0
	cfg.TopP = 1.0
	cfg.RepetitionPenalty = 1.0
	cfg.NoRepeatNgramSize = 0
	cfg.MaxLength = 10
	return cfg
}

func TestNewTextGenerator(t *testing.T) {
	tok := newMockTokenizer()
	model := newMockModel(tok.VocabSize())

	t.Run("valid", func(t *testing.T) {
		gen, err := NewTextGenerator(model, tok, greedyConfig())
		require.NoError(t, err)
		assert.NotNil(t, gen)
	})

	t.Run("nil model", func(t *testing.T) {
		_, err := NewTextGenerator(nil, tok, greedyConfig())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model")
	})

	t.Run("nil tokenizer", func(t *testing.T) {
		_, err := NewTextGenerator(model, nil, greedyConfig())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tokenizer")
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := greedyConfig()
		cfg.Temperature = 0
		_, err := NewTextGenerator(model, tok, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid generate config")
	})
}

func TestTextGenerator_Greedy(t *testing.T) {
	tok := newMockTokenizer()
	model := newMockModel(tok.VocabSize()).
		learn(7, 10).  // the -> answer
		learn(10, 11). // answer -> is
		learn(11, 12). // is -> 42
		learn(12, 2)   // 42 -> <eos>

	gen, err := NewTextGenerator(model, tok, greedyConfig())
	require.NoError(t, err)

	t.Run("token ids", func(t *testing.T) {
		ids, err := gen.GenerateIDs([]string{"the"})
		require.NoError(t, err)
		assert.Equal(t, [][]int32{{7, 10, 11, 12, 2}}, ids)
	})

	t.Run("decoded text", func(t *testing.T) {
		texts, err := gen.Generate([]string{"the"})
		require.NoError(t, err)
		assert.Equal(t, []string{"the answer is 42"}, texts)
	})
}

func TestTextGenerator_RowsFinishIndependently(t *testing.T) {
	tok := newMockTokenizer()
	model := newMockModel(tok.VocabSize()).
		learn(7, 10).learn(10, 11).learn(11, 12).learn(12, 2).
		learn(8, 4).learn(4, 5).learn(5, 4)

	cfg := greedyConfig()
	cfg.MaxLength = 6
	gen, err := NewTextGenerator(model, tok, cfg)
	require.NoError(t, err)

	ids, err := gen.GenerateIDs([]string{"the", "a"})
	require.NoError(t, err)

	// The first row finishes on <eos> and is padded out; the second
	// runs to the maximum length.
	assert.Equal(t, [][]int32{
		{7, 10, 11, 12, 2, 0},
		{8, 4, 5, 4, 5, 4},
	}, ids)

	texts, err := gen.Generate([]string{"the", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"the answer is 42",
		"a hello world hello world hello",
	}, texts)
}

func TestTextGenerator_StartsFromBOSWithoutPrompts(t *testing.T) {
	tok := newMockTokenizer()
	model := newMockModel(tok.VocabSize()).
		learn(1, 4).learn(4, 5).learn(5, 2)

	gen, err := NewTextGenerator(model, tok, greedyConfig())
	require.NoError(t, err)

	ids, err := gen.GenerateIDs(nil)
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{1, 4, 5, 2}}, ids)

	texts, err := gen.Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world"}, texts)
}

func TestTextGenerator_NoPromptsWithoutBOSFails(t *testing.T) {
	tok := newMockTokenizer()
	tok.special.BOS = -1
	model := newMockModel(tok.VocabSize())

	gen, err := NewTextGenerator(model, tok, greedyConfig())
	require.NoError(t, err)

	_, err = gen.GenerateIDs(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beginning-of-sequence")
}

func TestTextGenerator_MinLengthDelaysEos(t *testing.T) {
	tok := newMockTokenizer()
	// <eos> is always the preferred successor, with a fallback token.
	model := newMockModel(tok.VocabSize()).
		learnScored(1, map[int32]float32{2: 10, 4: 8}).
		learnScored(4, map[int32]float32{2: 10, 5: 8}).
		learnScored(5, map[int32]float32{2: 10, 4: 8})

	cfg := greedyConfig()
	cfg.MinLength = 4
	gen, err := NewTextGenerator(model, tok, cfg)
	require.NoError(t, err)

	ids, err := gen.GenerateIDs(nil)
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{1, 4, 5, 4, 2}}, ids)
}

func TestTextGenerator_TruncatesPromptAtMaxLength(t *testing.T) {
	tok := newMockTokenizer()
	model := newMockModel(tok.VocabSize())

	cfg := greedyConfig()
	cfg.MaxLength = 2
	gen, err := NewTextGenerator(model, tok, cfg)
	require.NoError(t, err)

	ids, err := gen.GenerateIDs([]string{"the answer is"})
	require.NoError(t, err)

	assert.Equal(t, [][]int32{{7, 10}}, ids)
	assert.Equal(t, 0, model.calls, "a full-length prompt leaves no room to decode")
}

func TestTextGenerator_RepetitionPenaltyBreaksLoops(t *testing.T) {
	rules := func() *mockModel {
		return newMockModel(13).
			learnScored(4, map[int32]float32{4: 10, 5: 9}).
			learn(5, 2)
	}
	tok := newMockTokenizer()

	cfg := greedyConfig()
	cfg.MaxLength = 5

	t.Run("without penalty the model loops", func(t *testing.T) {
		gen, err := NewTextGenerator(rules(), tok, cfg)
		require.NoError(t, err)

		ids, err := gen.GenerateIDs([]string{"hello"})
		require.NoError(t, err)
		assert.Equal(t, [][]int32{{4, 4, 4, 4, 4}}, ids)
	})

	t.Run("with penalty the repeat loses", func(t *testing.T) {
		penalized := cfg
		penalized.RepetitionPenalty = 2.0
		gen, err := NewTextGenerator(rules(), tok, penalized)
		require.NoError(t, err)

		ids, err := gen.GenerateIDs([]string{"hello"})
		require.NoError(t, err)
		assert.Equal(t, [][]int32{{4, 5, 2}}, ids)
	})
}

func TestTextGenerator_NgramBanBlocksRepeats(t *testing.T) {
	tok := newMockTokenizer()
	model := newMockModel(tok.VocabSize()).
		learn(7, 8).
		learn(8, 7)

	cfg := greedyConfig()
	cfg.NoRepeatNgramSize = 2
	cfg.MaxLength = 5
	gen, err := NewTextGenerator(model, tok, cfg)
	require.NoError(t, err)

	ids, err := gen.GenerateIDs([]string{"the"})
	require.NoError(t, err)

	// The bigram (7 8) may not repeat: after the second 7 the ban
	// forces the decoder off the loop.
	assert.Equal(t, [][]int32{{7, 8, 7, 0, 0}}, ids)
}

func TestTextGenerator_SamplingWithTopK1MatchesGreedy(t *testing.T) {
	tok := newMockTokenizer()
	model := newMockModel(tok.VocabSize()).
		learn(7, 10).learn(10, 11).learn(11, 12).learn(12, 2)

	cfg := greedyConfig()
	cfg.DoSample = true
	cfg.TopK = 1
	gen, err := NewTextGenerator(model, tok, cfg)
	require.NoError(t, err)

	ids, err := gen.GenerateIDs([]string{"the"})
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{7, 10, 11, 12, 2}}, ids)
}

func TestTextGenerator_SamplingIsReproducibleWithSeed(t *testing.T) {
	rules := func() *mockModel {
		return newMockModel(13).
			learnScored(7, map[int32]float32{8: 2, 9: 2, 4: 2}).
			learnScored(8, map[int32]float32{7: 2, 5: 2}).
			learnScored(9, map[int32]float32{4: 2, 7: 2}).
			learnScored(4, map[int32]float32{5: 2, 9: 2})
	}
	tok := newMockTokenizer()

	cfg := greedyConfig()
	cfg.DoSample = true
	cfg.Temperature = 1.2
	cfg.TopP = 0.9
	cfg.MaxLength = 6
	cfg.Seed = 123

	a, err := NewTextGenerator(rules(), tok, cfg)
	require.NoError(t, err)
	b, err := NewTextGenerator(rules(), tok, cfg)
	require.NoError(t, err)

	idsA, err := a.GenerateIDs([]string{"the"})
	require.NoError(t, err)
	idsB, err := b.GenerateIDs([]string{"the"})
	require.NoError(t, err)

	assert.Equal(t, idsA, idsB)
}

func TestTextGenerator_SamplingExpandsReturnSequences(t *testing.T) {
	tok := newMockTokenizer()
	model := newMockModel(tok.VocabSize()).
		learn(7, 10).learn(10, 11).learn(11, 12).learn(12, 2)

	cfg := greedyConfig()
	cfg.DoSample = true
	cfg.TopK = 1
	cfg.NumReturnSequences = 3
	gen, err := NewTextGenerator(model, tok, cfg)
	require.NoError(t, err)

	ids, err := gen.GenerateIDs([]string{"the"})
	require.NoError(t, err)

	require.Len(t, ids, 3)
	for _, row := range ids {
		assert.Equal(t, []int32{7, 10, 11, 12, 2}, row)
	}
}

func TestTextGenerator_EncodeErrorPropagates(t *testing.T) {
	tok := newMockTokenizer()
	tok.encodeErr = fmt.Errorf("boom")
	model := newMockModel(tok.VocabSize())

	gen, err := NewTextGenerator(model, tok, greedyConfig())
	require.NoError(t, err)

	_, err = gen.GenerateIDs([]string{"the"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode prompt 0")
}

func TestTextGenerator_CachedModelMatchesUncached(t *testing.T) {
	rules := func() *mockModel {
		return newMockModel(13).
			learn(7, 10).learn(10, 11).learn(11, 12).learn(12, 2)
	}
	tok := newMockTokenizer()

	plain, err := NewTextGenerator(rules(), tok, greedyConfig())
	require.NoError(t, err)
	cached, err := NewTextGenerator(&cachingMockModel{inner: rules()}, tok, greedyConfig())
	require.NoError(t, err)

	wantIDs, err := plain.GenerateIDs([]string{"the"})
	require.NoError(t, err)
	gotIDs, err := cached.GenerateIDs([]string{"the"})
	require.NoError(t, err)

	assert.Equal(t, wantIDs, gotIDs)
	assert.Equal(t, [][]int32{{7, 10, 11, 12, 2}}, gotIDs)
}

func BenchmarkTextGenerator_Greedy(b *testing.B) {
	tok := newMockTokenizer()
	model := newMockModel(tok.VocabSize()).
		learn(4, 5).learn(5, 4)

	cfg := greedyConfig()
	cfg.MaxLength = 20
	gen, err := NewTextGenerator(model, tok, cfg)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = gen.GenerateIDs([]string{"hello"})
	}
}
