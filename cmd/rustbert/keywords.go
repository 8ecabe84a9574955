package main

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/Vincent-Xiao/rust-bert/keywords"
)

// newKeywordsCmd creates the keywords command.
func newKeywordsCmd() *cobra.Command {
	cfg := keywords.DefaultKeywordExtractionConfig()
	scorerName := cfg.ScorerType.String()

	cmd := &cobra.Command{
		Use:   "keywords TEXT...",
		Short: "Extract keywords from documents",
		Long: `Extract keywords from documents using a deterministic hashing embedder.

Each argument is treated as one document.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			scorer, err := keywords.ParseScorerType(scorerName)
			if err != nil {
				return err
			}
			cfg.ScorerType = scorer
			return runKeywords(cfg, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&scorerName, "scorer", scorerName, "Ranking scorer: cosine, mmr or maxsum")
	flags.IntVar(&cfg.NumKeywords, "num-keywords", cfg.NumKeywords, "Keywords returned per document")
	flags.IntVar(&cfg.NgramRange.Min, "ngram-min", cfg.NgramRange.Min, "Smallest candidate n-gram")
	flags.IntVar(&cfg.NgramRange.Max, "ngram-max", cfg.NgramRange.Max, "Largest candidate n-gram")
	flags.Float64Var(&cfg.Diversity, "diversity", cfg.Diversity, "Diversity weight for the mmr scorer (0 to 1)")
	flags.IntVar(&cfg.MaxSumCandidates, "max-sum-candidates", cfg.MaxSumCandidates, "Candidate pool for the maxsum scorer (0 = twice num-keywords)")

	return cmd
}

// runKeywords extracts keywords from each document and prints them with
// their similarity scores.
func runKeywords(cfg keywords.KeywordExtractionConfig, docs []string) error {
	model, err := keywords.NewKeywordExtractionModel(hashingEmbedder{dim: 128}, cfg)
	if err != nil {
		return err
	}

	predictions, err := model.Predict(docs)
	if err != nil {
		return err
	}

	for i, docKeywords := range predictions {
		fmt.Printf("document %d:\n", i+1)
		for _, kw := range docKeywords {
			fmt.Printf("  %-24s %.4f\n", kw.Text, kw.Score)
		}
	}
	return nil
}

// hashingEmbedder embeds text as a signed bag-of-words hash vector, a
// deterministic stand-in for a sentence embedding model. Texts sharing
// frequent words land close together under cosine similarity.
type hashingEmbedder struct {
	dim int
}

var _ keywords.EmbeddingModel = hashingEmbedder{}

func (e hashingEmbedder) Encode(texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec := make([]float64, e.dim)
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, word := range words {
			h := fnv.New64a()
			_, _ = h.Write([]byte(word))
			sum := h.Sum64()
			sign := 1.0
			if sum&(1<<63) != 0 {
				sign = -1.0
			}
			vec[int(sum%uint64(e.dim))] += sign
		}
		vectors[i] = vec
	}
	return vectors, nil
}
