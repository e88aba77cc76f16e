package model

// RuleResult is the outcome of evaluating a single validation rule.
type RuleResult struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Columns  []string `json:"columns,omitempty"`
	Passed   bool     `json:"passed"`
	Observed float64  `json:"observed"`
	Detail   string   `json:"detail,omitempty"`
}

// ValidationReport is the immutable result of evaluating a rule set
// against one dataset snapshot. It is serializable independent of the
// dataset it was computed from.
type ValidationReport struct {
	RulesEvaluated int          `json:"rules_evaluated"`
	RulesPassed    int          `json:"rules_passed"`
	RulesFailed    int          `json:"rules_failed"`
	SuccessPercent float64      `json:"success_percent"`
	Results        []RuleResult `json:"results"`
}

// NewValidationReport aggregates per-rule results into a report. Results
// keep the order of the rule set they were evaluated from.
func NewValidationReport(results []RuleResult) *ValidationReport {
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	total := len(results)
	return &ValidationReport{
		RulesEvaluated: total,
		RulesPassed:    passed,
		RulesFailed:    total - passed,
		SuccessPercent: 100 * float64(passed) / float64(total),
		Results:        results,
	}
}

// Failed returns the results of rules that did not pass, in rule order.
func (r *ValidationReport) Failed() []RuleResult {
	var out []RuleResult
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res)
		}
	}
	return out
}

// Result returns the per-rule breakdown for the given rule id.
func (r *ValidationReport) Result(id string) (RuleResult, bool) {
	for _, res := range r.Results {
		if res.ID == id {
			return res, true
		}
	}
	return RuleResult{}, false
}
