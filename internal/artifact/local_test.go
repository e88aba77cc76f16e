package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/frame"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

func writeRawCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const rawHeader = "patient_id,admission_date,los_days,age\n"

func TestImportRaw_RoundTrip(t *testing.T) {
	store := NewLocal(t.TempDir(), 1)
	src := writeRawCSV(t, rawHeader+
		"PAT-0000001,2024-01-01,5,67\n"+
		"PAT-0000002,2024-01-02,3,45\n")

	ref, err := store.ImportRaw(context.Background(), src, "admissions")
	require.NoError(t, err)
	assert.Equal(t, "bronze.admissions", ref.String())

	recs, meta, err := store.ReadRaw(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "PAT-0000001", recs[0].PatientID)
	assert.Equal(t, "5", recs[0].LOSDays)
	assert.Equal(t, 2, meta.RowCount)
	assert.Equal(t, "CSV", meta.Format)
	assert.Equal(t, []string{"admit_year", "admit_month"}, meta.PartitionKeys)
}

func TestImportRaw_MissingRequiredColumn(t *testing.T) {
	store := NewLocal(t.TempDir(), 1)
	src := writeRawCSV(t, "patient_id,age\nPAT-0000001,67\n")

	_, err := store.ImportRaw(context.Background(), src, "admissions")
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrSchema))
}

func TestImportRaw_PadsShortRows(t *testing.T) {
	store := NewLocal(t.TempDir(), 1)
	src := writeRawCSV(t, rawHeader+"PAT-0000001,2024-01-01,5\n")

	ref, err := store.ImportRaw(context.Background(), src, "admissions")
	require.NoError(t, err)

	f, _, err := store.ReadFrame(context.Background(), ref)
	require.NoError(t, err)
	col, err := f.Column("age")
	require.NoError(t, err)
	assert.False(t, col[0].Valid)
}

func TestWriteFrame_ReadFrame(t *testing.T) {
	store := NewLocal(t.TempDir(), 2)
	f, err := frame.FromStrings([]string{"a", "b"}, [][]string{{"1", "x"}, {"2", ""}})
	require.NoError(t, err)

	ref, err := store.WriteFrame(context.Background(), model.LayerSilver, "t", f, nil)
	require.NoError(t, err)

	back, meta, err := store.ReadFrame(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, back.Columns())
	assert.Equal(t, 2, back.RowCount())
	assert.Equal(t, 2, meta.SchemaVersion)

	col, err := back.Column("b")
	require.NoError(t, err)
	assert.False(t, col[1].Valid)
}

func TestCleanedRoundTrip(t *testing.T) {
	store := NewLocal(t.TempDir(), 1)
	recs := []model.CleanedRecord{{
		PatientID:         "PAT-0000001",
		AdmissionDate:     model.NewDate(2024, time.January, 6),
		AdmitYear:         2024,
		AdmitMonth:        1,
		AdmitDOW:          5,
		AdmitSeason:       model.SeasonWinter,
		Age:               67,
		AgeBucket:         "60-74",
		Gender:            "M",
		LOSDays:           5,
		NumDiagnoses:      3,
		CharlsonIndex:     2,
		RiskTier:          model.RiskTierMedium,
		TenYrSurvivalProb: 0.9588,
		AdmissionKey:      "abc123",
	}}

	ref, err := store.WriteCleaned(context.Background(), "admissions", recs)
	require.NoError(t, err)
	assert.Equal(t, "silver.admissions", ref.String())

	back, meta, err := store.ReadCleaned(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, recs[0], back[0])
	assert.Equal(t, 1, meta.RowCount)
}

func TestGoldRoundTrip(t *testing.T) {
	store := NewLocal(t.TempDir(), 1)
	recs := []model.FeatureRecord{{
		PatientID:          "PAT-0000001",
		AdmissionDate:      model.NewDate(2024, time.February, 1),
		VisitNumber:        3,
		LOSDays:            7,
		AvgLOSLast3Visits:  4.0,
		DaysSinceLastAdmit: 22,
		SeasonCode:         1,
		ProceduresPerDay:   0.286,
	}}

	ref, err := store.WriteGold(context.Background(), "admission_features", recs)
	require.NoError(t, err)
	assert.Equal(t, "gold.admission_features", ref.String())

	back, _, err := store.ReadGold(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, recs[0], back[0])
}

func TestReadFrame_DescriptorMismatch(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir, 1)
	f, err := frame.FromStrings([]string{"a"}, [][]string{{"1"}, {"2"}})
	require.NoError(t, err)

	ref, err := store.WriteFrame(context.Background(), model.LayerSilver, "t", f, nil)
	require.NoError(t, err)

	// Truncate the data file behind the descriptor's back.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "silver", "t.csv"), []byte("a\n1\n"), 0o644))

	_, _, err = store.ReadFrame(context.Background(), ref)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrSchema))
}

func TestReadTyped_WrongSchema(t *testing.T) {
	store := NewLocal(t.TempDir(), 1)
	f, err := frame.FromStrings([]string{"a"}, [][]string{{"1"}})
	require.NoError(t, err)

	ref, err := store.WriteFrame(context.Background(), model.LayerSilver, "t", f, nil)
	require.NoError(t, err)

	_, _, err = store.ReadCleaned(context.Background(), ref)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrSchema))
}

func TestRead_MissingArtifact(t *testing.T) {
	store := NewLocal(t.TempDir(), 1)
	_, _, err := store.ReadFrame(context.Background(), Ref{Layer: "gold", Name: "nope"})
	assert.Error(t, err)
}

func TestPublish_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir, 1)
	f, err := frame.FromStrings([]string{"a"}, [][]string{{"1"}})
	require.NoError(t, err)

	_, err = store.WriteFrame(context.Background(), model.LayerSilver, "t", f, nil)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "silver"))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"t.csv", "t.meta.json"}, names)
}
