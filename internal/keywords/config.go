package keywords

import "fmt"

// ScorerType selects the strategy used to rank keyword candidates.
type ScorerType int

const (
	// CosineSimilarity ranks candidates by the cosine similarity between
	// the candidate and document embeddings.
	CosineSimilarity ScorerType = iota

	// MaximalMarginRelevance picks the candidate closest to the document
	// first, then incrementally picks candidates that balance document
	// similarity against similarity to the keywords already chosen. The
	// trade-off is controlled by the diversity parameter.
	MaximalMarginRelevance

	// MaxSum shortlists the top candidates by document similarity, then
	// among all k-sized combinations returns the one with the lowest
	// pairwise similarity, maximizing internal distance. The shortlist
	// size is quadratic in cost, so keep MaxSumCandidates moderate.
	MaxSum
)

// String returns the flag-friendly name of the scorer.
func (s ScorerType) String() string {
	switch s {
	case CosineSimilarity:
		return "cosine"
	case MaximalMarginRelevance:
		return "mmr"
	case MaxSum:
		return "maxsum"
	default:
		return fmt.Sprintf("ScorerType(%d)", int(s))
	}
}

// ParseScorerType converts a scorer name to its ScorerType.
// Recognized names are "cosine", "mmr" and "maxsum".
func ParseScorerType(name string) (ScorerType, error) {
	switch name {
	case "cosine":
		return CosineSimilarity, nil
	case "mmr":
		return MaximalMarginRelevance, nil
	case "maxsum":
		return MaxSum, nil
	default:
		return 0, fmt.Errorf("unknown scorer type %q (want cosine, mmr or maxsum)", name)
	}
}

// NgramRange bounds the candidate keyphrase length in words, inclusive
// on both ends. {1, 1} considers single words only, {1, 2} additionally
// considers two-word phrases.
type NgramRange struct {
	Min int
	Max int
}

// KeywordExtractionConfig configures a KeywordExtractionModel.
//
//nolint:revive // KeywordExtractionConfig is clearer than Config
type KeywordExtractionConfig struct {
	// ScorerType ranks the keyword candidates.
	ScorerType ScorerType

	// NgramRange is the inclusive range of candidate lengths in words.
	NgramRange NgramRange

	// NumKeywords is the number of keywords returned per document.
	NumKeywords int

	// Diversity weighs relevance against redundancy for the
	// MaximalMarginRelevance scorer. 0 ranks purely by document
	// similarity, values toward 1 favor varied keywords.
	Diversity float64

	// MaxSumCandidates is the shortlist size for the MaxSum scorer.
	// 0 derives 2*NumKeywords.
	MaxSumCandidates int

	// Stopwords are excluded from the candidate list. A candidate is
	// dropped when any of its words matches. nil uses the bundled
	// English list, an empty non-nil slice disables filtering.
	// Matching is exact, so pair custom lists with LowerCase.
	Stopwords []string

	// TokenizerPattern is the word-matching regex for candidate
	// tokenization. Empty uses DefaultTokenizerPattern.
	TokenizerPattern string

	// LowerCase lowercases documents before tokenization.
	LowerCase bool
}

// DefaultKeywordExtractionConfig returns the reference extraction defaults.
func DefaultKeywordExtractionConfig() KeywordExtractionConfig {
	return KeywordExtractionConfig{
		ScorerType:       CosineSimilarity,
		NgramRange:       NgramRange{Min: 1, Max: 1},
		NumKeywords:      5,
		Diversity:        0.5,
		MaxSumCandidates: 0,
		Stopwords:        nil,
		TokenizerPattern: DefaultTokenizerPattern,
		LowerCase:        true,
	}
}

// Validate checks the configuration for out-of-range values. Invalid
// configurations are rejected outright, never clamped.
func (c KeywordExtractionConfig) Validate() error {
	switch c.ScorerType {
	case CosineSimilarity, MaximalMarginRelevance, MaxSum:
	default:
		return fmt.Errorf("unknown scorer type %d", int(c.ScorerType))
	}
	if c.NumKeywords < 1 {
		return fmt.Errorf("num_keywords must be at least 1, got %d", c.NumKeywords)
	}
	if c.NgramRange.Min < 1 {
		return fmt.Errorf("ngram range minimum must be at least 1, got %d", c.NgramRange.Min)
	}
	if c.NgramRange.Max < c.NgramRange.Min {
		return fmt.Errorf("ngram range maximum (%d) cannot be smaller than minimum (%d)", c.NgramRange.Max, c.NgramRange.Min)
	}
	if c.Diversity < 0 || c.Diversity > 1 {
		return fmt.Errorf("diversity must be between 0 and 1, got %v", c.Diversity)
	}
	if c.MaxSumCandidates < 0 {
		return fmt.Errorf("max_sum_candidates cannot be negative, got %d", c.MaxSumCandidates)
	}
	if c.MaxSumCandidates > 0 && c.MaxSumCandidates < c.NumKeywords {
		return fmt.Errorf("max_sum_candidates (%d) cannot be smaller than num_keywords (%d)", c.MaxSumCandidates, c.NumKeywords)
	}
	return nil
}
