// Package validate implements the declarative data-quality rule engine.
// Rules are data, not code: a rule set is an ordered list of descriptors
// evaluated uniformly against a dataset snapshot, producing an immutable
// report. Gate policy (promote or block) lives with the caller — the
// engine only measures.
package validate

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Kind is the closed set of rule kinds. Adding a kind means extending this
// enum and the evaluator's switch — no ad-hoc per-dataset check code.
type Kind string

const (
	KindNotNull                 Kind = "not_null"
	KindBetween                 Kind = "between"
	KindInSet                   Kind = "in_set"
	KindUnique                  Kind = "unique"
	KindMeanBetween             Kind = "mean_between"
	KindStdevBetween            Kind = "stdev_between"
	KindMinBetween              Kind = "min_between"
	KindMaxBetween              Kind = "max_between"
	KindSumBetween              Kind = "sum_between"
	KindRowCountBetween         Kind = "row_count_between"
	KindColumnCountEquals       Kind = "column_count_equals"
	KindValueLengthBetween      Kind = "value_length_between"
	KindMatchRegex              Kind = "match_regex"
	KindNotMatchRegex           Kind = "not_match_regex"
	KindProportionUniqueBetween Kind = "proportion_unique_between"
	KindCompoundUnique          Kind = "compound_unique"
	KindCramersPhiMax           Kind = "cramers_phi_max"
)

var knownKinds = map[Kind]bool{
	KindNotNull: true, KindBetween: true, KindInSet: true, KindUnique: true,
	KindMeanBetween: true, KindStdevBetween: true, KindMinBetween: true,
	KindMaxBetween: true, KindSumBetween: true, KindRowCountBetween: true,
	KindColumnCountEquals: true, KindValueLengthBetween: true,
	KindMatchRegex: true, KindNotMatchRegex: true,
	KindProportionUniqueBetween: true, KindCompoundUnique: true,
	KindCramersPhiMax: true,
}

// Rule is one declarative check. Which parameters apply depends on the
// kind; unused parameters are ignored.
type Rule struct {
	ID      string   `yaml:"id,omitempty"`
	Kind    Kind     `yaml:"kind"`
	Column  string   `yaml:"column,omitempty"`
	Columns []string `yaml:"columns,omitempty"`
	Min     *float64 `yaml:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty"`
	Values  []string `yaml:"values,omitempty"`
	Pattern string   `yaml:"pattern,omitempty"`
	Count   *int     `yaml:"count,omitempty"`
	// Mostly is the success-ratio threshold for row-level rules; a rule
	// passes when passing-rows / total-rows >= Mostly. Zero means 1.0.
	Mostly float64 `yaml:"mostly,omitempty"`
}

// Identifier returns the rule id, synthesizing kind:column when the rule
// set did not name one.
func (r Rule) Identifier() string {
	if r.ID != "" {
		return r.ID
	}
	if r.Column != "" {
		return fmt.Sprintf("%s:%s", r.Kind, r.Column)
	}
	if len(r.Columns) > 0 {
		id := string(r.Kind)
		for _, c := range r.Columns {
			id += ":" + c
		}
		return id
	}
	return string(r.Kind)
}

// TargetColumns returns the column(s) the rule evaluates, for reporting.
func (r Rule) TargetColumns() []string {
	if r.Column != "" {
		return []string{r.Column}
	}
	return r.Columns
}

func (r Rule) threshold() float64 {
	if r.Mostly <= 0 {
		return 1.0
	}
	return r.Mostly
}

// ruleSetFile is the on-disk rule set layout.
type ruleSetFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads an ordered rule set from a YAML file.
func LoadRules(path string) ([]Rule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "validate: read rule set %s", path)
	}
	var file ruleSetFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, eris.Wrapf(err, "validate: parse rule set %s", path)
	}
	for i, r := range file.Rules {
		if !knownKinds[r.Kind] {
			return nil, eris.Errorf("validate: rule %d has unknown kind %q", i, r.Kind)
		}
	}
	return file.Rules, nil
}
