// Package keywords provides keyword and keyphrase extraction from
// documents.
//
// This package wraps the internal keywords implementation and provides
// a clean public API for extraction tasks.
//
// Components:
//   - KeywordExtractionConfig: candidate tokenization and ranking knobs
//   - EmbeddingModel: collaborator interface producing dense embeddings
//   - KeywordExtractionModel: end-to-end extraction over input texts
//
// Example usage:
//
//	import "github.com/Vincent-Xiao/rust-bert/keywords"
//
//	model, err := keywords.NewKeywordExtractionModel(embedder,
//	    keywords.DefaultKeywordExtractionConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	results, err := model.Predict([]string{
//	    "This is a first sentence to extract keywords from.",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, kw := range results[0] {
//	    fmt.Printf("%s (%.3f)\n", kw.Text, kw.Score)
//	}
package keywords

import (
	"github.com/Vincent-Xiao/rust-bert/internal/keywords"
)

// Scorers

// ScorerType selects the strategy used to rank keyword candidates.
type ScorerType = keywords.ScorerType

const (
	// CosineSimilarity ranks candidates by the cosine similarity between
	// the candidate and document embeddings.
	CosineSimilarity = keywords.CosineSimilarity

	// MaximalMarginRelevance balances document similarity against
	// similarity to the keywords already chosen, controlled by the
	// diversity parameter.
	MaximalMarginRelevance = keywords.MaximalMarginRelevance

	// MaxSum shortlists the most document-similar candidates and returns
	// the combination with the largest internal distance.
	MaxSum = keywords.MaxSum
)

// ParseScorerType converts a scorer name to its ScorerType.
// Recognized names are "cosine", "mmr" and "maxsum".
func ParseScorerType(name string) (ScorerType, error) {
	return keywords.ParseScorerType(name)
}

// Configuration

// NgramRange bounds the candidate keyphrase length in words, inclusive
// on both ends.
type NgramRange = keywords.NgramRange

// KeywordExtractionConfig configures a KeywordExtractionModel.
//
// Parameters:
//   - ScorerType: candidate ranking strategy
//   - NgramRange: inclusive candidate length range in words
//   - NumKeywords: keywords returned per document
//   - Diversity: relevance/redundancy trade-off for MaximalMarginRelevance
//   - MaxSumCandidates: shortlist size for MaxSum (0 = 2*NumKeywords)
//   - Stopwords: candidate filter (nil = bundled English list)
//   - TokenizerPattern: word-matching regex
//   - LowerCase: lowercase documents before tokenization
//
//nolint:revive // KeywordExtractionConfig is clearer than Config
type KeywordExtractionConfig = keywords.KeywordExtractionConfig

// DefaultKeywordExtractionConfig returns the reference extraction
// defaults: 5 keywords, single-word candidates, cosine scorer.
func DefaultKeywordExtractionConfig() KeywordExtractionConfig {
	return keywords.DefaultKeywordExtractionConfig()
}

// DefaultTokenizerPattern matches runs of two or more word characters.
const DefaultTokenizerPattern = keywords.DefaultTokenizerPattern

// DefaultStopwords returns a copy of the bundled English stop word list,
// for callers that want to extend rather than replace it.
func DefaultStopwords() []string {
	return keywords.DefaultStopwords()
}

// Extraction

// EmbeddingModel maps texts to dense embeddings in a shared vector
// space. All returned embeddings must have the same dimension.
type EmbeddingModel = keywords.EmbeddingModel

// Keyword is one extracted keyword with its document similarity and
// every offset it occurs at.
type Keyword = keywords.Keyword

// Offset is a candidate occurrence as [Begin, End) rune positions into
// the tokenized document.
type Offset = keywords.Offset

// Candidate is a keyword candidate with every position it occurs at.
type Candidate = keywords.Candidate

// CandidateTokenizer produces keyword candidates from raw documents.
type CandidateTokenizer = keywords.CandidateTokenizer

// NewCandidateTokenizer compiles the word-matching pattern and indexes
// the stopword list. An empty pattern uses DefaultTokenizerPattern, a
// nil stopword slice uses the bundled English list.
func NewCandidateTokenizer(pattern string, stopwords []string, lowerCase bool) (*CandidateTokenizer, error) {
	return keywords.NewCandidateTokenizer(pattern, stopwords, lowerCase)
}

// KeywordExtractionModel extracts keywords from documents using an
// embedding model, a candidate tokenizer and a ranking strategy.
//
//nolint:revive // KeywordExtractionModel is clearer than Model
type KeywordExtractionModel = keywords.KeywordExtractionModel

// NewKeywordExtractionModel validates the configuration and builds the
// candidate tokenizer.
//
// Example:
//
//	cfg := keywords.DefaultKeywordExtractionConfig()
//	cfg.ScorerType = keywords.MaximalMarginRelevance
//	cfg.NumKeywords = 3
//
//	model, err := keywords.NewKeywordExtractionModel(embedder, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewKeywordExtractionModel(embedder EmbeddingModel, config KeywordExtractionConfig) (*KeywordExtractionModel, error) {
	return keywords.NewKeywordExtractionModel(embedder, config)
}
