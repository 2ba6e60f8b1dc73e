package lexicon

import "strings"

const (
	defaultMinFrequency = 2
	maxNgram            = 3
	maxContexts         = 10
	contextVoteMargin   = 1.5
)

// Vocabulary groups dataset-specific terms by polarity, each mapped to its
// occurrence count. A learned vocabulary is a read-only snapshot scoped to
// the run that produced it.
type Vocabulary struct {
	Negative map[string]int
	Positive map[string]int
	Neutral  map[string]int
}

// NewVocabulary returns an empty vocabulary with initialized maps.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		Negative: make(map[string]int),
		Positive: make(map[string]int),
		Neutral:  make(map[string]int),
	}
}

// Size reports the total number of retained terms.
func (v *Vocabulary) Size() int {
	return len(v.Negative) + len(v.Positive) + len(v.Neutral)
}

// Learner extracts frequent terms from a batch of comments and classifies
// each by polarity. This is frequency counting, not model training.
type Learner struct {
	minFrequency int
}

// NewLearner creates a learner retaining terms seen at least minFrequency
// times; values below 1 fall back to the default threshold.
func NewLearner(minFrequency int) *Learner {
	if minFrequency < 1 {
		minFrequency = defaultMinFrequency
	}
	return &Learner{minFrequency: minFrequency}
}

// Learn tokenizes the comments into 1-, 2-, and 3-grams, counts frequency,
// and classifies every term at or above the threshold. Terms containing a
// stop word or shorter than 3 characters are discarded.
func (l *Learner) Learn(comments []string) *Vocabulary {
	freq := make(map[string]int)
	contexts := make(map[string][]string)

	for _, comment := range comments {
		tokens := tokenize(comment)
		lower := strings.ToLower(comment)
		for n := 1; n <= maxNgram; n++ {
			for i := 0; i+n <= len(tokens); i++ {
				term := strings.Join(tokens[i:i+n], " ")
				if !validTerm(tokens[i:i+n], term) {
					continue
				}
				freq[term]++
				if len(contexts[term]) < maxContexts {
					contexts[term] = append(contexts[term], lower)
				}
			}
		}
	}

	vocab := NewVocabulary()
	for term, count := range freq {
		if count < l.minFrequency {
			continue
		}
		switch classifyTerm(term, contexts[term]) {
		case polarityNegative:
			vocab.Negative[term] = count
		case polarityPositive:
			vocab.Positive[term] = count
		default:
			vocab.Neutral[term] = count
		}
	}
	return vocab
}

type polarity int

const (
	polarityNeutral polarity = iota
	polarityNegative
	polarityPositive
)

func validTerm(parts []string, term string) bool {
	if len(term) < 3 {
		return false
	}
	for _, p := range parts {
		if stopWords[p] {
			return false
		}
	}
	return true
}

// classifyTerm assigns polarity by root pattern first, then by majority
// vote over the contexts the term appeared in. The vote needs a 1.5x
// margin; anything closer stays neutral.
func classifyTerm(term string, contexts []string) polarity {
	for _, root := range negativeRoots {
		if strings.Contains(term, root) {
			return polarityNegative
		}
	}
	for _, root := range positiveRoots {
		if strings.Contains(term, root) {
			return polarityPositive
		}
	}

	var neg, pos int
	for _, ctx := range contexts {
		for _, phrase := range negativeIndicators {
			if strings.Contains(ctx, phrase) {
				neg++
			}
		}
		for _, phrase := range positiveIndicators {
			if strings.Contains(ctx, phrase) {
				pos++
			}
		}
	}

	switch {
	case neg > 0 && float64(neg) >= contextVoteMargin*float64(pos):
		return polarityNegative
	case pos > 0 && float64(pos) >= contextVoteMargin*float64(neg):
		return polarityPositive
	default:
		return polarityNeutral
	}
}
