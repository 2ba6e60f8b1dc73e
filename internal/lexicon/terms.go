// Package lexicon provides deterministic, network-free text classification:
// tiered keyword risk grading, static sentiment scoring, and per-dataset
// vocabulary learning. It is the fallback behind every AI-backed operation.
package lexicon

// Risk tiers are checked in severity order; the first tier containing a
// matching term decides the level. All terms are lowercase.
var (
	criticalTerms = []string{
		"blocked", "blocker", "critical", "severe", "crisis", "emergency",
		"halt", "stopped", "cannot continue", "show-stopper", "showstopper",
	}
	highTerms = []string{
		"budget overrun", "overrun", "delay", "delayed", "behind schedule",
		"at risk", "shortfall", "understaffed", "resign", "attrition",
		"major issue", "escalat",
	}
	mediumTerms = []string{
		"concern", "issue", "problem", "challenge", "difficult", "struggle",
		"pending", "slower", "limited", "constraint", "gap",
	}
)

// Static sentiment vocabularies. Single words carry weight 1, phrases
// weight 2 when scoring.
var (
	negativeWords = []string{
		"delayed", "delays", "delay", "blocked", "blocker", "issue", "issues",
		"problem", "problems", "concern", "concerns", "risk", "risks",
		"failed", "failure", "behind", "shortage", "shortfall", "unable",
		"difficult", "difficulty", "challenge", "challenges", "missing",
		"lost", "cancelled", "canceled", "stuck", "waiting", "overrun",
		"understaffed", "attrition", "resigned", "crisis", "severe",
		"halted", "stopped", "slower", "incomplete", "unresolved",
		"overdue", "gap", "gaps",
	}
	negativePhrases = []string{
		"behind schedule", "budget overrun", "at risk", "cannot proceed",
		"no progress", "not completed", "off track", "lack of",
		"waiting on", "staff turnover", "cost overrun", "major issue",
		"not started", "fell short", "ran out",
	}
	positiveWords = []string{
		"completed", "complete", "success", "successful", "successfully",
		"achieved", "achievement", "improved", "improvement", "improving",
		"progress", "progressing", "good", "great", "excellent", "strong",
		"effective", "delivered", "finished", "launched", "trained",
		"milestone", "milestones", "ahead", "resolved", "expanded",
		"exceeded", "positive", "smooth", "stable", "engaged", "productive",
	}
	positivePhrases = []string{
		"on track", "on schedule", "ahead of schedule", "well received",
		"no issues", "as planned", "going well", "good progress",
		"successfully completed", "under budget", "fully staffed",
		"exceeded expectations", "on time", "in place",
	}
	neutralWords = []string{
		"ongoing", "pending", "planned", "scheduled", "meeting", "meetings",
		"report", "reporting", "review", "reviewed", "update", "updated",
		"continue", "continuing", "regular", "monthly", "quarterly",
		"routine", "standard", "normal",
	}
	neutralPhrases = []string{
		"in progress", "under review", "to be determined", "next quarter",
		"next month",
	}
)

// Root patterns give a retained dynamic term its polarity before the
// context vote runs. Matched by substring.
var (
	negativeRoots = []string{
		"block", "delay", "fail", "lack", "shortage", "concern", "risk",
		"cancel", "lost", "problem", "issue", "miss", "wait", "stuck",
		"overrun", "cut", "short",
	}
	positiveRoots = []string{
		"complet", "success", "achiev", "improv", "progress", "good",
		"well", "excellent", "finish", "deliver", "train", "launch",
		"support", "effect", "milestone",
	}
)

// Indicator phrases drive the context majority vote for terms no root
// pattern covers.
var (
	negativeIndicators = []string{
		"delay", "problem", "issue", "concern", "fail", "lack",
		"behind schedule", "blocked", "unable", "risk", "unfortunately",
		"not yet",
	}
	positiveIndicators = []string{
		"completed", "success", "on track", "achieved", "improved",
		"good progress", "well", "delivered", "effective", "finished",
	}
)

// staticVocab materializes the curated lists as a vocabulary. Counts are 1;
// static scoring weights by word count, not frequency.
var staticVocab = buildStaticVocabulary()

func buildStaticVocabulary() *Vocabulary {
	v := NewVocabulary()
	for _, w := range negativeWords {
		v.Negative[w] = 1
	}
	for _, p := range negativePhrases {
		v.Negative[p] = 1
	}
	for _, w := range positiveWords {
		v.Positive[w] = 1
	}
	for _, p := range positivePhrases {
		v.Positive[p] = 1
	}
	for _, w := range neutralWords {
		v.Neutral[w] = 1
	}
	for _, p := range neutralPhrases {
		v.Neutral[p] = 1
	}
	return v
}

// stopWords are dropped during vocabulary learning.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"as": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "should": true, "may": true,
	"might": true, "that": true, "this": true, "these": true,
	"those": true, "it": true, "its": true, "we": true, "our": true,
	"they": true, "their": true, "you": true, "your": true, "he": true,
	"she": true, "his": true, "her": true, "not": true, "no": true,
	"yes": true, "so": true, "if": true, "then": true, "than": true,
	"there": true, "here": true, "when": true, "where": true,
	"which": true, "who": true, "what": true, "why": true, "how": true,
	"all": true, "each": true, "some": true, "such": true, "only": true,
	"own": true, "same": true, "too": true, "very": true, "can": true,
	"just": true, "also": true, "into": true, "about": true,
	"after": true, "before": true, "between": true, "during": true,
	"through": true, "up": true, "down": true, "out": true, "off": true,
	"again": true, "once": true, "per": true,
}
