package quiz

import (
	"strings"
	"unicode"
)

// Keywords tokenizes text for overlap scoring. Punctuation is replaced
// with spaces, tokens are lowercased, and tokens of length <= 1 are
// dropped (articles, stray letters, list markers).
func Keywords(text string) map[string]bool {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	words := make(map[string]bool)
	for _, w := range strings.Fields(cleaned) {
		if len([]rune(w)) > 1 {
			words[w] = true
		}
	}
	return words
}

// OverlapRatio computes the keyword recall of submitted against
// reference: |submitted ∩ reference| / |reference|. This is asymmetric
// on purpose: extra correct material in the submission is not
// penalized, omissions are. An empty reference keyword set yields 0.
func OverlapRatio(submitted, reference string) float64 {
	refWords := Keywords(reference)
	if len(refWords) == 0 {
		return 0
	}
	subWords := Keywords(submitted)

	matched := 0
	for w := range refWords {
		if subWords[w] {
			matched++
		}
	}
	return float64(matched) / float64(len(refWords))
}
