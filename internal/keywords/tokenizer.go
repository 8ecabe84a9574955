package keywords

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// DefaultTokenizerPattern matches runs of two or more word characters,
// so single-letter tokens and punctuation never become candidates.
const DefaultTokenizerPattern = `\b\w\w+\b`

// Offset is a candidate occurrence as [Begin, End) rune positions into
// the tokenized document (the lowercased document when LowerCase is set).
type Offset struct {
	Begin int
	End   int
}

// Candidate is a keyword candidate with every position it occurs at.
type Candidate struct {
	Text    string
	Offsets []Offset
}

// CandidateTokenizer produces keyword candidates from raw documents:
// regex word matching, stopword filtering and n-gram expansion.
type CandidateTokenizer struct {
	pattern   *regexp2.Regexp
	stopwords map[string]struct{}
	lowerCase bool
}

// NewCandidateTokenizer compiles the word-matching pattern and indexes
// the stopword list. An empty pattern uses DefaultTokenizerPattern, a
// nil stopword slice uses the bundled English list.
func NewCandidateTokenizer(pattern string, stopwords []string, lowerCase bool) (*CandidateTokenizer, error) {
	if pattern == "" {
		pattern = DefaultTokenizerPattern
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile tokenizer pattern: %w", err)
	}
	if stopwords == nil {
		stopwords = defaultStopwords
	}
	index := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		index[w] = struct{}{}
	}
	return &CandidateTokenizer{pattern: re, stopwords: index, lowerCase: lowerCase}, nil
}

// wordSpan is a single regex word match in rune coordinates.
type wordSpan struct {
	text  string
	begin int
	end   int
}

// Tokenize returns the candidates of one document in first-occurrence
// order. Candidates are n-grams of consecutive matched words within the
// inclusive range; an n-gram containing a stopword is dropped. Repeated
// candidates share one entry with all their offsets.
func (t *CandidateTokenizer) Tokenize(text string, ngrams NgramRange) ([]Candidate, error) {
	if ngrams.Min < 1 || ngrams.Max < ngrams.Min {
		return nil, fmt.Errorf("invalid ngram range [%d, %d]", ngrams.Min, ngrams.Max)
	}
	if t.lowerCase {
		text = strings.ToLower(text)
	}
	runes := []rune(text)

	var spans []wordSpan
	m, err := t.pattern.FindRunesMatch(runes)
	for m != nil {
		spans = append(spans, wordSpan{
			text:  m.String(),
			begin: m.Index,
			end:   m.Index + m.Length,
		})
		m, err = t.pattern.FindNextMatch(m)
	}
	if err != nil {
		return nil, fmt.Errorf("match tokenizer pattern: %w", err)
	}

	var candidates []Candidate
	seen := make(map[string]int)
	for n := ngrams.Min; n <= ngrams.Max; n++ {
		for i := 0; i+n <= len(spans); i++ {
			window := spans[i : i+n]
			if t.containsStopword(window) {
				continue
			}
			candText := string(runes[window[0].begin:window[n-1].end])
			offset := Offset{Begin: window[0].begin, End: window[n-1].end}
			if at, ok := seen[candText]; ok {
				candidates[at].Offsets = append(candidates[at].Offsets, offset)
				continue
			}
			seen[candText] = len(candidates)
			candidates = append(candidates, Candidate{Text: candText, Offsets: []Offset{offset}})
		}
	}
	return candidates, nil
}

// TokenizeList tokenizes every document, preserving input order.
func (t *CandidateTokenizer) TokenizeList(texts []string, ngrams NgramRange) ([][]Candidate, error) {
	out := make([][]Candidate, len(texts))
	for i, text := range texts {
		cands, err := t.Tokenize(text, ngrams)
		if err != nil {
			return nil, fmt.Errorf("tokenize text %d: %w", i, err)
		}
		out[i] = cands
	}
	return out, nil
}

func (t *CandidateTokenizer) containsStopword(window []wordSpan) bool {
	for _, w := range window {
		if _, ok := t.stopwords[w.text]; ok {
			return true
		}
	}
	return false
}
