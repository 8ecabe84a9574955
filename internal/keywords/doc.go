// Package keywords extracts keywords and keyphrases from documents.
//
// The pipeline follows the KeyBERT approach: a candidate tokenizer turns
// each document into lowercased n-gram candidates with stopwords removed,
// an embedding model maps the document and every candidate into a shared
// vector space, and a scorer ranks candidates by how well they represent
// the document.
//
// Components:
//   - CandidateTokenizer: regex word tokenizer with stopword filtering
//     and n-gram expansion, tracking candidate offsets
//   - EmbeddingModel: collaborator interface producing dense embeddings
//   - ScorerType: cosine similarity, maximal margin relevance, or max sum
//   - KeywordExtractionModel: end-to-end extraction over input texts
//
// Example usage:
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
