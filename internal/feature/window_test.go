package feature

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

func admission(patient, date string, los, procs, charlson int) model.CleanedRecord {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return model.CleanedRecord{
		PatientID:     patient,
		AdmissionDate: model.Date{Time: d},
		LOSDays:       los,
		NumProcedures: procs,
		CharlsonIndex: charlson,
	}
}

func TestScanTrailing(t *testing.T) {
	values := []float64{5, 3, 7, 2}

	// Exclusive window of up to 2 preceding rows.
	counts := scanTrailing(values, 2, false, aggCount)
	assert.Equal(t, []float64{0, 1, 2, 2}, counts)

	// Inclusive unbounded running sum.
	sums := scanTrailing(values, -1, true, aggSum)
	assert.Equal(t, []float64{5, 8, 15, 17}, sums)

	// Exclusive mean is NaN at the first row.
	means := scanTrailing(values, 3, false, aggMean)
	assert.True(t, math.IsNaN(means[0]))
	assert.Equal(t, 5.0, means[1])
	assert.Equal(t, 4.0, means[2])
	assert.Equal(t, 5.0, means[3])

	// LAG: previous value, NaN at the first row.
	lags := scanTrailing(values, 1, false, aggLast)
	assert.True(t, math.IsNaN(lags[0]))
	assert.Equal(t, []float64{5, 3, 7}, lags[1:])
}

func TestComputeWindows_SinglePatient(t *testing.T) {
	cleaned := []model.CleanedRecord{
		admission("PAT-0000001", "2024-01-01", 5, 2, 1),
		admission("PAT-0000001", "2024-01-10", 3, 1, 4),
		admission("PAT-0000001", "2024-02-01", 7, 0, 2),
	}

	windows, err := ComputeWindows(context.Background(), cleaned, DefaultParams())
	require.NoError(t, err)
	require.Len(t, windows, 3)

	assert.Equal(t, 1, windows[0].VisitNumber)
	assert.Equal(t, 2, windows[1].VisitNumber)
	assert.Equal(t, 3, windows[2].VisitNumber)

	// First visit has no history: sentinel gap, own LOS as the average.
	assert.Equal(t, 999, windows[0].DaysSinceLastAdmit)
	assert.Equal(t, 9, windows[1].DaysSinceLastAdmit)
	assert.Equal(t, 22, windows[2].DaysSinceLastAdmit)

	assert.Equal(t, 5.0, windows[0].AvgLOSLast3Visits)
	assert.Equal(t, 5.0, windows[1].AvgLOSLast3Visits)
	assert.Equal(t, 4.0, windows[2].AvgLOSLast3Visits)

	assert.Equal(t, 0, windows[0].VisitsPrior90D)
	assert.Equal(t, 1, windows[1].VisitsPrior90D)
	assert.Equal(t, 2, windows[2].VisitsPrior90D)

	// Inclusive running aggregates.
	assert.Equal(t, []int{2, 3, 3}, []int{windows[0].CumulativeProcs, windows[1].CumulativeProcs, windows[2].CumulativeProcs})
	assert.Equal(t, []int{1, 4, 4}, []int{windows[0].MaxCharlsonEver, windows[1].MaxCharlsonEver, windows[2].MaxCharlsonEver})
}

func TestComputeWindows_SortsWithinPartition(t *testing.T) {
	cleaned := []model.CleanedRecord{
		admission("PAT-0000001", "2024-02-01", 7, 0, 2),
		admission("PAT-0000001", "2024-01-01", 5, 2, 1),
	}

	windows, err := ComputeWindows(context.Background(), cleaned, DefaultParams())
	require.NoError(t, err)
	require.Len(t, windows, 2)

	assert.Equal(t, "2024-01-01", windows[0].AdmissionDate.Format("2006-01-02"))
	assert.Equal(t, 1, windows[0].VisitNumber)
	assert.Equal(t, 999, windows[0].DaysSinceLastAdmit)
	assert.Equal(t, 2, windows[1].VisitNumber)
	assert.Equal(t, 31, windows[1].DaysSinceLastAdmit)
}

func TestComputeWindows_PartitionsAreIndependent(t *testing.T) {
	cleaned := []model.CleanedRecord{
		admission("PAT-0000001", "2024-01-01", 5, 2, 1),
		admission("PAT-0000002", "2024-01-05", 4, 6, 3),
		admission("PAT-0000001", "2024-01-10", 3, 1, 4),
	}

	windows, err := ComputeWindows(context.Background(), cleaned, Params{GapSentinelDays: 999, MaxWorkers: 4})
	require.NoError(t, err)
	require.Len(t, windows, 3)

	byPatient := make(map[string][]model.WindowFeatureRecord)
	for _, w := range windows {
		byPatient[w.PatientID] = append(byPatient[w.PatientID], w)
	}

	require.Len(t, byPatient["PAT-0000001"], 2)
	require.Len(t, byPatient["PAT-0000002"], 1)

	// The other patient's visit never leaks into this partition.
	assert.Equal(t, 9, byPatient["PAT-0000001"][1].DaysSinceLastAdmit)
	assert.Equal(t, 999, byPatient["PAT-0000002"][0].DaysSinceLastAdmit)
	assert.Equal(t, 6, byPatient["PAT-0000002"][0].CumulativeProcs)
}

func TestComputeWindows_SameDayTieKeepsIngestionOrder(t *testing.T) {
	cleaned := []model.CleanedRecord{
		admission("PAT-0000001", "2024-01-01", 5, 2, 1),
		admission("PAT-0000001", "2024-01-01", 3, 1, 1),
	}

	windows, err := ComputeWindows(context.Background(), cleaned, DefaultParams())
	require.NoError(t, err)
	require.Len(t, windows, 2)

	assert.Equal(t, 1, windows[0].VisitNumber)
	assert.Equal(t, 5.0, windows[0].AvgLOSLast3Visits)
	assert.Equal(t, 2, windows[1].VisitNumber)
	assert.Equal(t, 0, windows[1].DaysSinceLastAdmit)
	assert.Equal(t, 5.0, windows[1].AvgLOSLast3Visits)
}

func TestComputeWindows_Empty(t *testing.T) {
	windows, err := ComputeWindows(context.Background(), nil, DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestComputeWindows_WindowBounds(t *testing.T) {
	// Seven visits: the exclusive windows never exceed their row caps.
	var cleaned []model.CleanedRecord
	for i := 0; i < 7; i++ {
		d := time.Date(2024, time.January, 1+i*10, 0, 0, 0, 0, time.UTC)
		cleaned = append(cleaned, admission("PAT-0000001", d.Format("2006-01-02"), 2+i, 1, 0))
	}

	windows, err := ComputeWindows(context.Background(), cleaned, DefaultParams())
	require.NoError(t, err)
	for _, w := range windows {
		assert.LessOrEqual(t, w.VisitsPrior90D, 2)
		assert.LessOrEqual(t, w.VisitsPrior365D, 5)
		assert.GreaterOrEqual(t, w.VisitsPrior365D, w.VisitsPrior90D)
	}
	assert.Equal(t, 2, windows[6].VisitsPrior90D)
	assert.Equal(t, 5, windows[6].VisitsPrior365D)
}
