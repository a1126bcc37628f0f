// Package ranking holds helpers shared by the relevance strategies that
// back ChunkStore.SimilaritySearch.
//
// Each strategy lives in its own subpackage and implements driven.Ranker:
//
//   - substring: whole-query containment, case-insensitive
//   - lexical: Ochiai token overlap with stopword filtering
//   - semantic: cosine similarity of cached embeddings
package ranking
