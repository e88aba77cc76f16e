package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

func TestParseRef(t *testing.T) {
	ref, err := parseRef("silver.admissions")
	require.NoError(t, err)
	assert.Equal(t, "silver", ref.Layer)
	assert.Equal(t, "admissions", ref.Name)

	for _, bad := range []string{"", "silver", "silver.", ".admissions"} {
		_, err := parseRef(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestComputeRunStats(t *testing.T) {
	now := time.Now()
	runs := []model.Run{
		{State: model.RunStatePromoted, CreatedAt: now.Add(-10 * time.Second), UpdatedAt: now},
		{State: model.RunStatePromoted, CreatedAt: now.Add(-20 * time.Second), UpdatedAt: now},
		{State: model.RunStateFailed},
		{State: model.RunStateCleaned},
	}

	s := computeRunStats(runs)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Promoted)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.InFlight)
	assert.InDelta(t, 15.0, s.AvgDurSecs, 0.5)
}

func TestFormatRunsList(t *testing.T) {
	now := time.Now()
	var buf bytes.Buffer
	formatRunsList(&buf, []model.Run{
		{ID: "0123456789abcdef", Input: "data/raw.csv", State: model.RunStatePromoted, CreatedAt: now, UpdatedAt: now},
	})

	out := buf.String()
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "data/raw.csv")
	assert.Contains(t, out, "PROMOTED")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "12345678", truncateID("1234567890"))
}
