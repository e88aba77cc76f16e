package validate

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/frame"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

func testFrame(t *testing.T, cols []string, rows [][]string) *frame.Frame {
	t.Helper()
	f, err := frame.FromStrings(cols, rows)
	require.NoError(t, err)
	return f
}

func ptr[T any](v T) *T { return &v }

func evalOne(t *testing.T, f *frame.Frame, rule Rule) model.RuleResult {
	t.Helper()
	report, err := Evaluate(context.Background(), f, []Rule{rule})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	return report.Results[0]
}

func TestEvaluate_EmptyRuleSet(t *testing.T) {
	f := testFrame(t, []string{"a"}, nil)
	_, err := Evaluate(context.Background(), f, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrEmptyRuleSet))
}

func TestEvaluate_SuccessPercent(t *testing.T) {
	f := testFrame(t, []string{"age"}, [][]string{{"50"}, {"60"}})
	rules := []Rule{
		{Kind: KindNotNull, Column: "age"},
		{Kind: KindBetween, Column: "age", Min: ptr(0.0), Max: ptr(120.0)},
		{Kind: KindBetween, Column: "age", Min: ptr(55.0)}, // fails: 50 below
		{Kind: KindRowCountBetween, Min: ptr(1.0), Max: ptr(10.0)},
	}
	report, err := Evaluate(context.Background(), f, rules)
	require.NoError(t, err)
	assert.Equal(t, 4, report.RulesEvaluated)
	assert.Equal(t, 3, report.RulesPassed)
	assert.Equal(t, 1, report.RulesFailed)
	assert.InDelta(t, 75.0, report.SuccessPercent, 1e-9)

	// Report keeps rule-set order.
	assert.Equal(t, "not_null:age", report.Results[0].ID)
	assert.False(t, report.Results[2].Passed)
}

func TestEvaluate_MissingColumnFailsRuleNotRun(t *testing.T) {
	f := testFrame(t, []string{"age"}, [][]string{{"50"}})
	res := evalOne(t, f, Rule{Kind: KindNotNull, Column: "ghost"})
	assert.False(t, res.Passed)
	assert.Contains(t, res.Detail, "not present")
}

func TestEvalNotNull(t *testing.T) {
	f := testFrame(t, []string{"a"}, [][]string{{"x"}, {""}, {"y"}, {"z"}})

	res := evalOne(t, f, Rule{Kind: KindNotNull, Column: "a"})
	assert.False(t, res.Passed)
	assert.InDelta(t, 0.75, res.Observed, 1e-9)

	res = evalOne(t, f, Rule{Kind: KindNotNull, Column: "a", Mostly: 0.7})
	assert.True(t, res.Passed)
}

func TestEvalBetween_SkipsNulls(t *testing.T) {
	f := testFrame(t, []string{"v"}, [][]string{{"5"}, {""}, {"15"}})
	res := evalOne(t, f, Rule{Kind: KindBetween, Column: "v", Min: ptr(0.0), Max: ptr(10.0)})
	assert.False(t, res.Passed)
	// One of two non-null values in bounds; the null is out of scope.
	assert.InDelta(t, 0.5, res.Observed, 1e-9)
}

func TestEvalInSet(t *testing.T) {
	f := testFrame(t, []string{"g"}, [][]string{{"M"}, {"F"}, {"X"}})
	res := evalOne(t, f, Rule{Kind: KindInSet, Column: "g", Values: []string{"M", "F"}})
	assert.False(t, res.Passed)

	res = evalOne(t, f, Rule{Kind: KindInSet, Column: "g", Values: []string{"M", "F"}, Mostly: 0.6})
	assert.True(t, res.Passed)
}

func TestEvalUnique(t *testing.T) {
	f := testFrame(t, []string{"id"}, [][]string{{"a"}, {"b"}, {"b"}, {"c"}})
	res := evalOne(t, f, Rule{Kind: KindUnique, Column: "id"})
	assert.False(t, res.Passed)
	// a and c occur once; the two b rows both fail.
	assert.InDelta(t, 0.5, res.Observed, 1e-9)

	res = evalOne(t, f, Rule{Kind: KindUnique, Column: "id", Mostly: 0.5})
	assert.True(t, res.Passed)
}

func TestEvalStatistics(t *testing.T) {
	f := testFrame(t, []string{"v"}, [][]string{{"2"}, {"4"}, {"6"}})

	res := evalOne(t, f, Rule{Kind: KindMeanBetween, Column: "v", Min: ptr(3.0), Max: ptr(5.0)})
	assert.True(t, res.Passed)
	assert.InDelta(t, 4.0, res.Observed, 1e-9)

	res = evalOne(t, f, Rule{Kind: KindStdevBetween, Column: "v", Min: ptr(1.0), Max: ptr(3.0)})
	assert.True(t, res.Passed)
	assert.InDelta(t, 2.0, res.Observed, 1e-9)

	res = evalOne(t, f, Rule{Kind: KindMinBetween, Column: "v", Min: ptr(0.0), Max: ptr(3.0)})
	assert.True(t, res.Passed)
	assert.Equal(t, 2.0, res.Observed)

	res = evalOne(t, f, Rule{Kind: KindMaxBetween, Column: "v", Min: ptr(5.0), Max: ptr(7.0)})
	assert.True(t, res.Passed)
	assert.Equal(t, 6.0, res.Observed)

	res = evalOne(t, f, Rule{Kind: KindSumBetween, Column: "v", Min: ptr(12.0), Max: ptr(12.0)})
	assert.True(t, res.Passed)

	res = evalOne(t, f, Rule{Kind: KindMeanBetween, Column: "v", Max: ptr(3.0)})
	assert.False(t, res.Passed)
}

func TestEvalShapeRules(t *testing.T) {
	f := testFrame(t, []string{"a", "b"}, [][]string{{"1", "2"}})

	res := evalOne(t, f, Rule{Kind: KindRowCountBetween, Min: ptr(1.0), Max: ptr(1.0)})
	assert.True(t, res.Passed)

	res = evalOne(t, f, Rule{Kind: KindColumnCountEquals, Count: ptr(2)})
	assert.True(t, res.Passed)

	res = evalOne(t, f, Rule{Kind: KindColumnCountEquals, Count: ptr(3)})
	assert.False(t, res.Passed)
}

func TestEvalValueLengthAndRegex(t *testing.T) {
	f := testFrame(t, []string{"id"}, [][]string{{"PAT-0000001"}, {"PAT-001"}})

	res := evalOne(t, f, Rule{Kind: KindValueLengthBetween, Column: "id", Min: ptr(10.0), Max: ptr(15.0)})
	assert.False(t, res.Passed)
	assert.InDelta(t, 0.5, res.Observed, 1e-9)

	res = evalOne(t, f, Rule{Kind: KindMatchRegex, Column: "id", Pattern: `^PAT-\d{7}$`})
	assert.False(t, res.Passed)
	assert.InDelta(t, 0.5, res.Observed, 1e-9)

	res = evalOne(t, f, Rule{Kind: KindNotMatchRegex, Column: "id", Pattern: `\s`})
	assert.True(t, res.Passed)

	res = evalOne(t, f, Rule{Kind: KindMatchRegex, Column: "id", Pattern: `[`})
	assert.False(t, res.Passed)
	assert.Contains(t, res.Detail, "invalid pattern")
}

func TestEvalProportionUnique(t *testing.T) {
	f := testFrame(t, []string{"tier"}, [][]string{{"LOW"}, {"LOW"}, {"HIGH"}, {"HIGH"}})
	res := evalOne(t, f, Rule{Kind: KindProportionUniqueBetween, Column: "tier", Min: ptr(0.01), Max: ptr(0.5)})
	assert.True(t, res.Passed)
	assert.InDelta(t, 0.5, res.Observed, 1e-9)

	res = evalOne(t, f, Rule{Kind: KindProportionUniqueBetween, Column: "tier", Max: ptr(0.25)})
	assert.False(t, res.Passed)
}

func TestEvalCompoundUnique(t *testing.T) {
	f := testFrame(t, []string{"p", "d"}, [][]string{
		{"a", "2024-01-01"},
		{"a", "2024-01-02"},
		{"a", "2024-01-01"},
	})
	res := evalOne(t, f, Rule{Kind: KindCompoundUnique, Columns: []string{"p", "d"}})
	assert.False(t, res.Passed)
	assert.InDelta(t, 1.0/3.0, res.Observed, 1e-9)

	res = evalOne(t, f, Rule{Kind: KindCompoundUnique, Columns: []string{"p"}})
	assert.False(t, res.Passed)
	assert.Contains(t, res.Detail, "at least two columns")
}

func TestEvalCramersPhi(t *testing.T) {
	// Perfectly associated pair: phi = 1, fails a 0.9 bound.
	f := testFrame(t, []string{"a", "b"}, [][]string{
		{"0", "0"}, {"0", "0"}, {"1", "1"}, {"1", "1"},
	})
	res := evalOne(t, f, Rule{Kind: KindCramersPhiMax, Columns: []string{"a", "b"}, Max: ptr(0.9)})
	assert.False(t, res.Passed)
	assert.InDelta(t, 1.0, res.Observed, 1e-9)

	// Independent pair: phi = 0, passes.
	f = testFrame(t, []string{"a", "b"}, [][]string{
		{"0", "0"}, {"0", "1"}, {"1", "0"}, {"1", "1"},
	})
	res = evalOne(t, f, Rule{Kind: KindCramersPhiMax, Columns: []string{"a", "b"}, Max: ptr(0.9)})
	assert.True(t, res.Passed)
	assert.InDelta(t, 0.0, res.Observed, 1e-9)

	// A constant column carries no association.
	f = testFrame(t, []string{"a", "b"}, [][]string{
		{"0", "0"}, {"0", "1"},
	})
	res = evalOne(t, f, Rule{Kind: KindCramersPhiMax, Columns: []string{"a", "b"}, Max: ptr(0.9)})
	assert.True(t, res.Passed)
}

func TestEvalRowwise_VacuousPass(t *testing.T) {
	f := testFrame(t, []string{"v"}, [][]string{{""}, {""}})
	res := evalOne(t, f, Rule{Kind: KindBetween, Column: "v", Min: ptr(0.0)})
	assert.True(t, res.Passed)
	assert.Equal(t, 1.0, res.Observed)
}
