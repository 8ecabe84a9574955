package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vincent-Xiao/rust-bert/generate"
)

func TestDemoTokenizer(t *testing.T) {
	tok := newDemoTokenizer()

	t.Run("EncodeLowercases", func(t *testing.T) {
		tokens, err := tok.Encode("The quick")
		require.NoError(t, err)
		assert.Equal(t, []int32{4, 6}, tokens)
	})

	t.Run("UnknownWordsMapToUnk", func(t *testing.T) {
		tokens, err := tok.Encode("xyzzy")
		require.NoError(t, err)
		assert.Equal(t, []int32{demoUnk}, tokens)
	})

	t.Run("EmptyTextMapsToUnk", func(t *testing.T) {
		tokens, err := tok.Encode("")
		require.NoError(t, err)
		assert.Equal(t, []int32{demoUnk}, tokens)
	})

	t.Run("DecodeSkipsSpecialTokens", func(t *testing.T) {
		text, err := tok.Decode([]int32{demoBos, 4, 6, demoEos}, true, true)
		require.NoError(t, err)
		assert.Equal(t, "the quick", text)
	})

	t.Run("SpecialTokens", func(t *testing.T) {
		assert.Equal(t, int32(demoBos), tok.BosToken())
		assert.Equal(t, []int32{demoEos}, tok.EosTokens())
		assert.Equal(t, int32(demoPad), tok.PadToken())
		assert.Equal(t, int32(demoUnk), tok.UnkToken())
		for id := int32(demoPad); id <= demoUnk; id++ {
			assert.True(t, tok.IsSpecialToken(id))
		}
		assert.False(t, tok.IsSpecialToken(4))
		assert.False(t, tok.IsSpecialToken(-1))
	})

	t.Run("EveryTransitionTargetInVocab", func(t *testing.T) {
		for word, nexts := range demoTransitions {
			_, ok := tok.vocab[word]
			require.True(t, ok, "word %q missing from vocabulary", word)
			require.NotEmpty(t, nexts, "word %q has no successors", word)
			for _, next := range nexts {
				_, ok := tok.vocab[next]
				assert.True(t, ok, "successor %q of %q missing from vocabulary", next, word)
			}
		}
	})
}

func TestDemoModel_Forward(t *testing.T) {
	tok := newDemoTokenizer()
	model := newDemoModel(tok)

	input := generate.NewTokenMatrix(1, 1)
	input.Set(0, 0, tok.vocab["the"])

	scores, cache, err := model.Forward(input, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, scores.Rows())
	require.Equal(t, model.VocabSize(), scores.Cols())

	// Successors of "the" score best first, everything else is penalized.
	assert.InDelta(t, 2.0, float64(scores.At(0, int(tok.vocab["quick"]))), 1e-6)
	assert.InDelta(t, 1.75, float64(scores.At(0, int(tok.vocab["lazy"]))), 1e-6)
	assert.InDelta(t, 1.0, float64(scores.At(0, int(tok.vocab["code"]))), 1e-6)
	assert.InDelta(t, demoUnlistedScore, float64(scores.At(0, int(tok.vocab["barks"]))), 1e-6)
	assert.InDelta(t, 0.35*1-4.0, float64(scores.At(0, demoEos)), 1e-6)

	// The cached length keeps the end-of-sequence ramp growing when only
	// the newest column is passed.
	next := generate.NewTokenMatrix(1, 1)
	next.Set(0, 0, tok.vocab["quick"])
	scores, _, err = model.Forward(next, nil, cache)
	require.NoError(t, err)
	assert.InDelta(t, 0.35*2-4.0, float64(scores.At(0, demoEos)), 1e-6)
}

func TestDemoCache_Reorder(t *testing.T) {
	cache := &demoCache{lengths: []int{3, 7}}
	reordered := cache.Reorder([]int{1, 0, 1})

	state, ok := reordered.(*demoCache)
	require.True(t, ok)
	assert.Equal(t, []int{7, 3, 7}, state.lengths)
	assert.Equal(t, []int{3, 7}, cache.lengths)
}

func TestDemoPipeline_Greedy(t *testing.T) {
	cfg := generate.DefaultGenerateConfig()
	cfg.DoSample = false
	cfg.NumBeams = 1

	tok := newDemoTokenizer()
	gen, err := generate.NewTextGenerator(newDemoModel(tok), tok, cfg)
	require.NoError(t, err)

	outputs, err := gen.Generate([]string{"the"})
	require.NoError(t, err)
	require.Len(t, outputs, 1)

	// Greedy walks the top successors until the repeated-trigram ban
	// exhausts them and the end-of-sequence ramp wins.
	assert.Equal(t, "the quick brown fox jumps over the quick fox jumps", outputs[0])
}

func TestDemoPipeline_BeamSearch(t *testing.T) {
	cfg := generate.DefaultGenerateConfig()
	cfg.DoSample = false
	cfg.NumBeams = 3
	cfg.NumReturnSequences = 2

	tok := newDemoTokenizer()
	gen, err := generate.NewTextGenerator(newDemoModel(tok), tok, cfg)
	require.NoError(t, err)

	outputs, err := gen.Generate([]string{"a model"})
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	for _, text := range outputs {
		require.NotEmpty(t, text)
		for _, word := range strings.Fields(text) {
			assert.Contains(t, tok.vocab, word)
			assert.False(t, tok.IsSpecialToken(tok.vocab[word]), "special token %q in output", word)
		}
	}
}

func TestDemoPipeline_SamplingSeedIsReproducible(t *testing.T) {
	cfg := generate.DefaultGenerateConfig()
	cfg.NumBeams = 1
	cfg.Seed = 42

	tok := newDemoTokenizer()
	gen, err := generate.NewTextGenerator(newDemoModel(tok), tok, cfg)
	require.NoError(t, err)

	first, err := gen.Generate([]string{"machines"})
	require.NoError(t, err)
	second, err := gen.Generate([]string{"machines"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHashingEmbedder(t *testing.T) {
	embedder := hashingEmbedder{dim: 128}

	t.Run("Deterministic", func(t *testing.T) {
		first, err := embedder.Encode([]string{"machines dream of code"})
		require.NoError(t, err)
		second, err := embedder.Encode([]string{"machines dream of code"})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Shape", func(t *testing.T) {
		vectors, err := embedder.Encode([]string{"one", "two", "three"})
		require.NoError(t, err)
		require.Len(t, vectors, 3)
		for _, vec := range vectors {
			assert.Len(t, vec, 128)
		}
	})

	t.Run("WordCountsAdd", func(t *testing.T) {
		single, err := embedder.Encode([]string{"machine"})
		require.NoError(t, err)
		double, err := embedder.Encode([]string{"machine machine"})
		require.NoError(t, err)
		for i := range single[0] {
			assert.InDelta(t, 2*single[0][i], double[0][i], 1e-12)
		}
	})

	t.Run("CaseAndPunctuationFold", func(t *testing.T) {
		clean, err := embedder.Encode([]string{"machine learning"})
		require.NoError(t, err)
		noisy, err := embedder.Encode([]string{"Machine, learning!"})
		require.NoError(t, err)
		assert.Equal(t, clean[0], noisy[0])
	})
}

func TestNewCLI(t *testing.T) {
	root := newCLI()
	assert.Equal(t, "rustbert", root.Name())

	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "generate")
	assert.Contains(t, names, "keywords")
	assert.Contains(t, names, "version")
}

func TestGenerateCmdFlags(t *testing.T) {
	cmd := newGenerateCmd()
	for _, name := range []string{
		"min-length", "max-length", "sample", "early-stopping",
		"num-beams", "temperature", "top-k", "top-p",
		"repetition-penalty", "length-penalty", "no-repeat-ngram-size",
		"num-return-sequences", "seed",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestKeywordsCmdFlags(t *testing.T) {
	cmd := newKeywordsCmd()
	for _, name := range []string{
		"scorer", "num-keywords", "ngram-min", "ngram-max",
		"diversity", "max-sum-candidates",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}
