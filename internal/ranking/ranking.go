package ranking

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Scored pairs a candidate with its relevance score.
type Scored struct {
	Chunk domain.Chunk
	Score float64
}

// Top returns the chunks of the topK highest positive scores, best first.
// Equal scores keep their input order. Non-positive scores are dropped.
func Top(scored []Scored, topK int) []domain.Chunk {
	if topK <= 0 {
		return []domain.Chunk{}
	}

	kept := make([]Scored, 0, len(scored))
	for _, s := range scored {
		if s.Score > 0 {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	if topK > len(kept) {
		topK = len(kept)
	}
	out := make([]domain.Chunk, 0, topK)
	for _, s := range kept[:topK] {
		out = append(out, s.Chunk)
	}
	return out
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// Tokens returns the lower-cased Unicode word tokens of text.
func Tokens(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// TokenSet returns the distinct tokens of text that are not in stop.
func TokenSet(text string, stop map[string]struct{}) map[string]struct{} {
	tokens := Tokens(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, isStop := stop[t]; isStop {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

// EnglishStopwords returns a fresh set of common English function words.
func EnglishStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at",
		"by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such",
		"into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off",
		"own", "same", "too", "very", "can", "will", "just", "don", "should", "now", "do", "does", "did",
		"what", "when", "where", "which", "who", "whom", "why", "how", "i", "me", "my", "we", "our", "you",
		"your", "he", "she", "they", "them", "their", "there", "here", "has", "have", "had", "not", "no",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
