package lexicon

import (
	"math"
	"strings"
	"unicode"
)

// Scorer computes sentiment in [-1,1] from term matching. With a learned
// vocabulary attached it scores against that first and falls back to the
// static vocabulary when no learned term matches; without one it scores
// statically. Scoring is pure: same text, same score.
type Scorer struct {
	vocab *Vocabulary
}

// NewScorer creates a scorer using only the static vocabularies.
func NewScorer() *Scorer {
	return &Scorer{}
}

// NewDynamicScorer creates a scorer that prefers the learned vocabulary.
func NewDynamicScorer(vocab *Vocabulary) *Scorer {
	return &Scorer{vocab: vocab}
}

// Score rates the text. Empty or whitespace-only text scores 0.
func (s *Scorer) Score(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}
	if s.vocab != nil {
		if score, matched := s.dynamicScore(tokens); matched {
			return score
		}
	}
	return s.staticScore(tokens)
}

// staticScore counts weighted occurrences of the curated terms:
// (positive - negative) / max(positive + negative, 1). Words weigh 1,
// phrases 2.
func (s *Scorer) staticScore(tokens []string) float64 {
	neg := flatSide(tokens, staticVocab.Negative)
	pos := flatSide(tokens, staticVocab.Positive)
	return Clamp((pos - neg) / math.Max(pos+neg, 1))
}

func flatSide(tokens []string, terms map[string]int) float64 {
	var total float64
	for term := range terms {
		count := countTerm(tokens, term)
		if count == 0 {
			continue
		}
		weight := 1.0
		if strings.Contains(term, " ") {
			weight = 2
		}
		total += float64(count) * weight
	}
	return total
}

// dynamicScore weights each learned term by log(frequency+1) so dataset
// buzzwords do not linearly dominate; phrases get a further 2x multiplier.
// The second return is false when no learned term matched at all.
func (s *Scorer) dynamicScore(tokens []string) (float64, bool) {
	neg := s.vocabSide(tokens, s.vocab.Negative)
	pos := s.vocabSide(tokens, s.vocab.Positive)
	if pos+neg == 0 {
		return 0, false
	}
	return Clamp((pos - neg) / math.Max(pos+neg, 1)), true
}

func (s *Scorer) vocabSide(tokens []string, terms map[string]int) float64 {
	var total float64
	for term, freq := range terms {
		count := countTerm(tokens, term)
		if count == 0 {
			continue
		}
		weight := math.Log(float64(freq) + 1)
		if strings.Contains(term, " ") {
			weight *= 2
		}
		total += float64(count) * weight
	}
	return total
}

// Clamp bounds a score to [-1,1].
func Clamp(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

// tokenize lowercases text and splits it into alphanumeric runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// countTerm counts occurrences of a word or phrase in the token stream.
// The term is tokenized the same way as the text, so hyphenated terms
// match their split form.
func countTerm(tokens []string, term string) int {
	parts := tokenize(term)
	n := len(parts)
	if n == 0 {
		return 0
	}
	count := 0
	for i := 0; i+n <= len(tokens); i++ {
		match := true
		for j, p := range parts {
			if tokens[i+j] != p {
				match = false
				break
			}
		}
		if match {
			count++
		}
	}
	return count
}
