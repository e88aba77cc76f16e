package validate

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/frame"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

// ErrEmptyRuleSet is returned when Evaluate is asked to measure nothing —
// a configuration error, not a passing report.
var ErrEmptyRuleSet = eris.New("validate: empty rule set")

// Evaluate runs every rule of the set against the snapshot and assembles
// the report. Rules are independent and evaluated concurrently; the
// report keeps rule-set order. The snapshot is never mutated.
func Evaluate(ctx context.Context, f *frame.Frame, rules []Rule) (*model.ValidationReport, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyRuleSet
	}

	results := make([]model.RuleResult, len(rules))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, rule := range rules {
		g.Go(func() error {
			results[i] = evalRule(f, rule)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "validate: evaluate rules")
	}

	report := model.NewValidationReport(results)
	zap.L().Info("validate: report assembled",
		zap.Int("rules_evaluated", report.RulesEvaluated),
		zap.Int("rules_passed", report.RulesPassed),
		zap.Float64("success_percent", report.SuccessPercent),
	)
	return report, nil
}

// evalRule dispatches on the closed kind enum. Exhaustive: an unknown kind
// can only arrive through a bug in rule loading and fails the rule.
func evalRule(f *frame.Frame, rule Rule) model.RuleResult {
	res := model.RuleResult{
		ID:      rule.Identifier(),
		Kind:    string(rule.Kind),
		Columns: rule.TargetColumns(),
	}

	switch rule.Kind {
	case KindNotNull:
		evalNotNull(f, rule, &res)
	case KindBetween:
		evalRowwise(f, rule, &res, func(c frame.Cell) bool {
			v, ok := c.Float()
			return ok && inBounds(v, rule.Min, rule.Max)
		})
	case KindInSet:
		allowed := make(map[string]bool, len(rule.Values))
		for _, v := range rule.Values {
			allowed[v] = true
		}
		evalRowwise(f, rule, &res, func(c frame.Cell) bool {
			return allowed[c.Text]
		})
	case KindValueLengthBetween:
		evalRowwise(f, rule, &res, func(c frame.Cell) bool {
			return inBounds(float64(len(c.Text)), rule.Min, rule.Max)
		})
	case KindMatchRegex:
		evalRegex(f, rule, &res, true)
	case KindNotMatchRegex:
		evalRegex(f, rule, &res, false)
	case KindUnique:
		evalUnique(f, rule, &res)
	case KindMeanBetween, KindStdevBetween, KindMinBetween, KindMaxBetween, KindSumBetween:
		evalStatistic(f, rule, &res)
	case KindRowCountBetween:
		res.Observed = float64(f.RowCount())
		res.Passed = inBounds(res.Observed, rule.Min, rule.Max)
	case KindColumnCountEquals:
		res.Observed = float64(len(f.Columns()))
		res.Passed = rule.Count != nil && len(f.Columns()) == *rule.Count
	case KindProportionUniqueBetween:
		evalProportionUnique(f, rule, &res)
	case KindCompoundUnique:
		evalCompoundUnique(f, rule, &res)
	case KindCramersPhiMax:
		evalCramersPhi(f, rule, &res)
	default:
		res.Detail = fmt.Sprintf("unknown rule kind %q", rule.Kind)
	}
	return res
}

// column fetches the rule's target column, failing the rule (not the run)
// when the snapshot does not have it.
func column(f *frame.Frame, name string, res *model.RuleResult) ([]frame.Cell, bool) {
	cells, err := f.Column(name)
	if err != nil {
		res.Detail = fmt.Sprintf("column %q not present", name)
		return nil, false
	}
	return cells, true
}

func evalNotNull(f *frame.Frame, rule Rule, res *model.RuleResult) {
	cells, ok := column(f, rule.Column, res)
	if !ok {
		return
	}
	passing := 0
	for _, c := range cells {
		if c.Valid {
			passing++
		}
	}
	finishRowwise(rule, res, passing, len(cells))
}

// evalRowwise applies a per-value predicate over the column's non-null
// cells. Nulls are out of scope for value rules; completeness is the
// not_null rule's job.
func evalRowwise(f *frame.Frame, rule Rule, res *model.RuleResult, pred func(frame.Cell) bool) {
	cells, ok := column(f, rule.Column, res)
	if !ok {
		return
	}
	passing, total := 0, 0
	for _, c := range cells {
		if !c.Valid {
			continue
		}
		total++
		if pred(c) {
			passing++
		}
	}
	finishRowwise(rule, res, passing, total)
}

// finishRowwise records the observed success ratio and compares it to the
// rule's mostly threshold. A column with nothing to check passes vacuously.
func finishRowwise(rule Rule, res *model.RuleResult, passing, total int) {
	if total == 0 {
		res.Observed = 1.0
		res.Passed = true
		return
	}
	res.Observed = float64(passing) / float64(total)
	res.Passed = res.Observed >= rule.threshold()
	if !res.Passed {
		res.Detail = fmt.Sprintf("%d of %d values failed", total-passing, total)
	}
}

func evalRegex(f *frame.Frame, rule Rule, res *model.RuleResult, wantMatch bool) {
	re, err := regexp.Compile(rule.Pattern)
	if err != nil {
		res.Detail = fmt.Sprintf("invalid pattern %q", rule.Pattern)
		return
	}
	evalRowwise(f, rule, res, func(c frame.Cell) bool {
		return re.MatchString(c.Text) == wantMatch
	})
}

// evalUnique measures the fraction of non-null values occurring exactly
// once, compared to the mostly threshold.
func evalUnique(f *frame.Frame, rule Rule, res *model.RuleResult) {
	cells, ok := column(f, rule.Column, res)
	if !ok {
		return
	}
	counts := make(map[string]int)
	total := 0
	for _, c := range cells {
		if !c.Valid {
			continue
		}
		counts[c.Text]++
		total++
	}
	passing := 0
	for _, c := range cells {
		if c.Valid && counts[c.Text] == 1 {
			passing++
		}
	}
	finishRowwise(rule, res, passing, total)
}

func evalStatistic(f *frame.Frame, rule Rule, res *model.RuleResult) {
	cells, ok := column(f, rule.Column, res)
	if !ok {
		return
	}
	var values []float64
	for _, c := range cells {
		if v, ok := c.Float(); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		res.Detail = "no numeric values"
		return
	}

	var observed float64
	switch rule.Kind {
	case KindMeanBetween:
		observed = mean(values)
	case KindStdevBetween:
		observed = stdev(values)
	case KindMinBetween:
		observed = values[0]
		for _, v := range values[1:] {
			if v < observed {
				observed = v
			}
		}
	case KindMaxBetween:
		observed = values[0]
		for _, v := range values[1:] {
			if v > observed {
				observed = v
			}
		}
	case KindSumBetween:
		for _, v := range values {
			observed += v
		}
	}
	res.Observed = observed
	res.Passed = inBounds(observed, rule.Min, rule.Max)
	if !res.Passed {
		res.Detail = fmt.Sprintf("observed %.4f outside bounds", observed)
	}
}

func evalProportionUnique(f *frame.Frame, rule Rule, res *model.RuleResult) {
	cells, ok := column(f, rule.Column, res)
	if !ok {
		return
	}
	distinct := make(map[string]bool)
	total := 0
	for _, c := range cells {
		if !c.Valid {
			continue
		}
		distinct[c.Text] = true
		total++
	}
	if total == 0 {
		res.Detail = "no values"
		return
	}
	res.Observed = float64(len(distinct)) / float64(total)
	res.Passed = inBounds(res.Observed, rule.Min, rule.Max)
}

// evalCompoundUnique measures joint uniqueness of a column tuple: the
// fraction of rows whose tuple occurs exactly once.
func evalCompoundUnique(f *frame.Frame, rule Rule, res *model.RuleResult) {
	if len(rule.Columns) < 2 {
		res.Detail = "compound_unique needs at least two columns"
		return
	}
	cols := make([][]frame.Cell, len(rule.Columns))
	for i, name := range rule.Columns {
		c, ok := column(f, name, res)
		if !ok {
			return
		}
		cols[i] = c
	}

	keys := make([]string, f.RowCount())
	counts := make(map[string]int, f.RowCount())
	for r := 0; r < f.RowCount(); r++ {
		var sb strings.Builder
		for _, col := range cols {
			sb.WriteString(col[r].Text)
			sb.WriteByte('\x1f')
		}
		keys[r] = sb.String()
		counts[keys[r]]++
	}
	passing := 0
	for _, k := range keys {
		if counts[k] == 1 {
			passing++
		}
	}
	finishRowwise(rule, res, passing, len(keys))
}

// evalCramersPhi bounds the association strength between two categorical
// columns using Cramér's phi over their contingency table.
func evalCramersPhi(f *frame.Frame, rule Rule, res *model.RuleResult) {
	if len(rule.Columns) != 2 {
		res.Detail = "cramers_phi_max needs exactly two columns"
		return
	}
	a, ok := column(f, rule.Columns[0], res)
	if !ok {
		return
	}
	b, ok := column(f, rule.Columns[1], res)
	if !ok {
		return
	}

	type pair struct{ a, b string }
	joint := make(map[pair]float64)
	margA := make(map[string]float64)
	margB := make(map[string]float64)
	n := 0.0
	for i := range a {
		if !a[i].Valid || !b[i].Valid {
			continue
		}
		joint[pair{a[i].Text, b[i].Text}]++
		margA[a[i].Text]++
		margB[b[i].Text]++
		n++
	}
	if n == 0 || len(margA) < 2 || len(margB) < 2 {
		// A constant column cannot carry association; nothing to bound.
		res.Observed = 0
		res.Passed = true
		return
	}

	chi2 := 0.0
	for av, na := range margA {
		for bv, nb := range margB {
			expected := na * nb / n
			diff := joint[pair{av, bv}] - expected
			chi2 += diff * diff / expected
		}
	}
	k := math.Min(float64(len(margA)-1), float64(len(margB)-1))
	res.Observed = math.Sqrt(chi2 / (n * k))
	res.Passed = rule.Max != nil && res.Observed < *rule.Max
	if !res.Passed {
		res.Detail = fmt.Sprintf("phi %.4f not below bound", res.Observed)
	}
}

func inBounds(v float64, min, max *float64) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

func mean(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s / float64(len(values))
}

// stdev is the sample standard deviation.
func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
