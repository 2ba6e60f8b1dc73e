package lexicon

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStaticScore(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "all positive",
			text: "Project completed successfully",
			want: 1.0, // completed + successfully, no negatives
		},
		{
			name: "all negative",
			text: "Severe delays and budget overrun",
			want: -1.0, // severe + delays + overrun + phrase
		},
		{
			name: "mixed leans positive",
			text: "Good progress but some issues remain",
			want: 0.6, // pos: good + progress + "good progress"x2 = 4, neg: issues = 1
		},
		{
			name: "no matches is neutral",
			text: "Quarterly report attached",
			want: 0,
		},
		{
			name: "empty text",
			text: "",
			want: 0,
		},
		{
			name: "whitespace only",
			text: "   \t  ",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.text)
			if !almostEqual(got, tt.want) {
				t.Errorf("Score(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestScoreIdempotentAndBounded(t *testing.T) {
	scorer := NewScorer()
	texts := []string{
		"The grant is blocked due to budget overrun",
		"Training completed and milestone achieved ahead of schedule",
		"Waiting on ministry approval, staff turnover remains a concern",
		"",
		"Neutral update with no loaded language",
	}

	for _, text := range texts {
		first := scorer.Score(text)
		for i := 0; i < 3; i++ {
			if got := scorer.Score(text); got != first {
				t.Errorf("Score(%q) not idempotent: %v then %v", text, first, got)
			}
		}
		if first < -1 || first > 1 {
			t.Errorf("Score(%q) = %v out of [-1,1]", text, first)
		}
	}
}

func TestDynamicScoreLogWeighting(t *testing.T) {
	vocab := NewVocabulary()
	vocab.Negative["blocked"] = 5
	vocab.Positive["progress"] = 3
	scorer := NewDynamicScorer(vocab)

	// "blocked" twice contributes 2*log(6); "progress" once contributes log(4).
	text := "Work blocked again, blocked until progress resumes"
	neg := 2 * math.Log(6)
	pos := math.Log(4)
	want := (pos - neg) / (pos + neg)

	got := scorer.Score(text)
	if !almostEqual(got, want) {
		t.Errorf("Score(%q) = %v, want %v", text, got, want)
	}
	if got <= -1 {
		t.Errorf("log weighting should keep score above -1 when positives exist, got %v", got)
	}
}

func TestDynamicScoreSingleTerm(t *testing.T) {
	vocab := NewVocabulary()
	vocab.Negative["blocked"] = 5
	scorer := NewDynamicScorer(vocab)

	if got := scorer.Score("blocked and blocked again"); !almostEqual(got, -1) {
		t.Errorf("only negative matches should score -1, got %v", got)
	}
}

func TestDynamicFallsBackToStatic(t *testing.T) {
	vocab := NewVocabulary()
	vocab.Negative["quux"] = 7
	scorer := NewDynamicScorer(vocab)

	// No learned term matches, so the static vocabulary decides.
	if got := scorer.Score("Project completed successfully"); !almostEqual(got, 1.0) {
		t.Errorf("fallback static score = %v, want 1.0", got)
	}
}

func TestDynamicPhraseMultiplier(t *testing.T) {
	vocab := NewVocabulary()
	vocab.Negative["budget overrun"] = 2
	vocab.Positive["completed"] = 2
	scorer := NewDynamicScorer(vocab)

	// Phrase weight is 2*log(3), word weight log(3).
	neg := 2 * math.Log(3)
	pos := math.Log(3)
	want := (pos - neg) / (pos + neg)

	got := scorer.Score("budget overrun but completed")
	if !almostEqual(got, want) {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.5, 1},
		{-2, -1},
		{0.25, 0.25},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCountTerm(t *testing.T) {
	tokens := tokenize("The show-stopper blocked the budget overrun review")

	tests := []struct {
		term string
		want int
	}{
		{"blocked", 1},
		{"budget overrun", 1},
		{"show-stopper", 1}, // hyphen splits like the text does
		{"absent", 0},
		{"overrun review", 1},
	}
	for _, tt := range tests {
		if got := countTerm(tokens, tt.term); got != tt.want {
			t.Errorf("countTerm(%q) = %d, want %d", tt.term, got, tt.want)
		}
	}
}
