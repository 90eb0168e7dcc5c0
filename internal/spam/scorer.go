// Package spam scores quick-post submissions with an additive, rule-based
// classifier whose every point can be traced back to a named rule.
package spam

import "strings"

const (
	// DefaultThreshold is the score from which a submission is spam.
	DefaultThreshold = 50
	maxScore         = 100
	reasonSeparator  = "; "
)

// Result is the verdict for one submission.
type Result struct {
	IsSpam bool   `json:"is_spam"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Scorer applies an ordered rule table. It holds no mutable state.
type Scorer struct {
	rules     []Rule
	threshold int
}

// NewScorer creates a scorer with custom rules and threshold.
func NewScorer(rules []Rule, threshold int) *Scorer {
	return &Scorer{rules: rules, threshold: threshold}
}

// NewDefaultScorer creates a scorer with DefaultRules and DefaultThreshold.
func NewDefaultScorer() *Scorer {
	return NewScorer(DefaultRules(), DefaultThreshold)
}

// Score evaluates every rule and sums the weights of those that match.
func (s *Scorer) Score(sub Submission) Result {
	var score int
	var reasons []string

	for _, rule := range s.rules {
		if rule.Match == nil || !rule.Match(sub) {
			continue
		}
		score += rule.Weight
		reasons = append(reasons, rule.Name)
	}

	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}

	return Result{
		IsSpam: score >= s.threshold,
		Score:  score,
		Reason: strings.Join(reasons, reasonSeparator),
	}
}

// Threshold returns the spam cut-off.
func (s *Scorer) Threshold() int {
	return s.threshold
}
