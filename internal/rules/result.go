package rules

import (
	"fmt"
	"math"
)

const (
	NoMatchDescription = "no matching rule"
	NoRulesDescription = "no rules loaded"
)

// Result is one evaluation of a selection. FinalScore = BaseScore * Multiplier.
type Result struct {
	BaseScore          float64  `json:"base_score"`
	Multiplier         float64  `json:"multiplier"`
	FinalScore         float64  `json:"final_score"`
	MatchedDescription string   `json:"matched_description"`
	MatchedRules       []string `json:"matched_rules,omitempty"`
}

// ZeroResult is the published result for an empty selection
func ZeroResult() Result {
	return Result{Multiplier: 1, MatchedDescription: NoMatchDescription}
}

// NoRulesResult is returned for any selection when no rule table is loaded
func NoRulesResult() Result {
	return Result{Multiplier: 1, MatchedDescription: NoRulesDescription}
}

// Display returns a copy rounded to one decimal place
func (r Result) Display() Result {
	out := r
	out.BaseScore = round1(r.BaseScore)
	out.Multiplier = round1(r.Multiplier)
	out.FinalScore = round1(r.FinalScore)
	if r.MatchedRules != nil {
		out.MatchedRules = append([]string(nil), r.MatchedRules...)
	}
	return out
}

func (r Result) String() string {
	return fmt.Sprintf("%.1f x %.1f = %.1f (%s)", r.BaseScore, r.Multiplier, r.FinalScore, r.MatchedDescription)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
