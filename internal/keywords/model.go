package keywords

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"
)

// EmbeddingModel maps texts to dense embeddings in a shared vector
// space. All returned embeddings must have the same dimension.
type EmbeddingModel interface {
	Encode(texts []string) ([][]float64, error)
}

// Keyword is one extracted keyword with its document similarity and
// every offset it occurs at.
type Keyword struct {
	Text    string
	Score   float64
	Offsets []Offset
}

// KeywordExtractionModel extracts keywords from documents using an
// embedding model, a candidate tokenizer and a ranking strategy.
//
//nolint:revive // KeywordExtractionModel is clearer than Model
type KeywordExtractionModel struct {
	embedder  EmbeddingModel
	tokenizer *CandidateTokenizer
	config    KeywordExtractionConfig
}

// NewKeywordExtractionModel validates the configuration and builds the
// candidate tokenizer.
func NewKeywordExtractionModel(embedder EmbeddingModel, config KeywordExtractionConfig) (*KeywordExtractionModel, error) {
	if embedder == nil {
		return nil, errors.New("embedding model must not be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid keyword extraction config: %w", err)
	}
	tok, err := NewCandidateTokenizer(config.TokenizerPattern, config.Stopwords, config.LowerCase)
	if err != nil {
		return nil, err
	}
	return &KeywordExtractionModel{embedder: embedder, tokenizer: tok, config: config}, nil
}

// Tokenizer exposes the candidate tokenizer, letting callers preview
// the candidate list a document produces.
func (m *KeywordExtractionModel) Tokenizer() *CandidateTokenizer {
	return m.tokenizer
}

// Predict extracts keywords from each input text. Documents and the
// flattened candidate list are embedded concurrently, then each
// document's candidates are ranked against it. Results come back
// sorted by descending score, at most NumKeywords per document.
func (m *KeywordExtractionModel) Predict(texts []string) ([][]Keyword, error) {
	if len(texts) == 0 {
		return [][]Keyword{}, nil
	}

	candidates, err := m.tokenizer.TokenizeList(texts, m.config.NgramRange)
	if err != nil {
		return nil, err
	}
	flatWords, bounds := flattenCandidates(candidates)

	var docEmbeddings, wordEmbeddings [][]float64
	var g errgroup.Group
	g.Go(func() error {
		var err error
		docEmbeddings, err = m.embedder.Encode(texts)
		if err != nil {
			return fmt.Errorf("embed documents: %w", err)
		}
		return nil
	})
	if len(flatWords) > 0 {
		g.Go(func() error {
			var err error
			wordEmbeddings, err = m.embedder.Encode(flatWords)
			if err != nil {
				return fmt.Errorf("embed candidates: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(docEmbeddings) != len(texts) {
		return nil, fmt.Errorf("model returned %d document embeddings, want %d", len(docEmbeddings), len(texts))
	}
	if len(wordEmbeddings) != len(flatWords) {
		return nil, fmt.Errorf("model returned %d candidate embeddings, want %d", len(wordEmbeddings), len(flatWords))
	}
	if err := checkDimensions(docEmbeddings, wordEmbeddings); err != nil {
		return nil, err
	}

	maxSum := m.config.MaxSumCandidates
	if maxSum == 0 {
		maxSum = 2 * m.config.NumKeywords
	}

	out := make([][]Keyword, 0, len(texts))
	for docIdx, b := range bounds {
		docCands := candidates[docIdx]
		numKeywords := min(m.config.NumKeywords, len(docCands))
		if numKeywords == 0 {
			out = append(out, []Keyword{})
			continue
		}
		ranked := m.config.ScorerType.scoreKeywords(
			docEmbeddings[docIdx],
			wordEmbeddings[b.start:b.end],
			numKeywords,
			m.config.Diversity,
			maxSum,
		)
		kws := make([]Keyword, 0, len(ranked))
		for _, r := range ranked {
			cand := docCands[r.index]
			kws = append(kws, Keyword{
				Text:    cand.Text,
				Score:   r.score,
				Offsets: slices.Clone(cand.Offsets),
			})
		}
		sort.SliceStable(kws, func(i, j int) bool { return kws[i].Score > kws[j].Score })
		out = append(out, kws)
	}
	return out, nil
}

// docBounds is one document's [start, end) slice of the flattened
// candidate list.
type docBounds struct {
	start int
	end   int
}

func flattenCandidates(candidates [][]Candidate) ([]string, []docBounds) {
	var flat []string
	bounds := make([]docBounds, 0, len(candidates))
	for _, docCands := range candidates {
		start := len(flat)
		for _, c := range docCands {
			flat = append(flat, c.Text)
		}
		bounds = append(bounds, docBounds{start: start, end: len(flat)})
	}
	return flat, bounds
}

func checkDimensions(docEmbeddings, wordEmbeddings [][]float64) error {
	dim := -1
	for _, e := range docEmbeddings {
		if dim < 0 {
			dim = len(e)
			continue
		}
		if len(e) != dim {
			return fmt.Errorf("model returned embeddings of dimension %d, want %d", len(e), dim)
		}
	}
	for _, e := range wordEmbeddings {
		if len(e) != dim {
			return fmt.Errorf("model returned embeddings of dimension %d, want %d", len(e), dim)
		}
	}
	return nil
}
