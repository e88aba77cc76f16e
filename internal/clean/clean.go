// Package clean normalizes raw admission records into the silver layer's
// canonical schema. Rules are applied independently per row: a row that
// fails any hard constraint is dropped and counted, never propagated as an
// error.
package clean

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

// Params holds the cleaning stage knobs. The survival estimate is
// base^exp(decay·charlson), monotonically decreasing in the charlson index.
type Params struct {
	SurvivalBase  float64
	SurvivalDecay float64
	MaxLOSDays    int
}

// DefaultParams mirrors the configured defaults.
func DefaultParams() Params {
	return Params{SurvivalBase: 0.983, SurvivalDecay: 0.9, MaxLOSDays: 365}
}

// Metrics reports what the stage did to its input.
type Metrics struct {
	RowsIn      int `json:"rows_in"`
	RowsOut     int `json:"rows_out"`
	RowsDropped int `json:"rows_dropped"`
	RowsCoerced int `json:"rows_coerced"`
}

// Clean transforms raw records into cleaned records. A row survives only if
// it has a patient id, a parseable admission date, and a length of stay
// coercible to an integer in [0, MaxLOSDays]; a raw zero stay is floored to
// one day. Soft fields are coerced with stated defaults.
func Clean(raw []model.RawRecord, p Params) ([]model.CleanedRecord, Metrics) {
	if p.MaxLOSDays <= 0 {
		p.MaxLOSDays = 365
	}

	metrics := Metrics{RowsIn: len(raw)}
	out := make([]model.CleanedRecord, 0, len(raw))

	for _, r := range raw {
		rec, coerced, ok := cleanRow(r, p)
		if !ok {
			metrics.RowsDropped++
			continue
		}
		if coerced {
			metrics.RowsCoerced++
		}
		out = append(out, rec)
	}
	metrics.RowsOut = len(out)

	zap.L().Info("clean: stage complete",
		zap.Int("rows_in", metrics.RowsIn),
		zap.Int("rows_out", metrics.RowsOut),
		zap.Int("rows_dropped", metrics.RowsDropped),
		zap.Int("rows_coerced", metrics.RowsCoerced),
	)
	return out, metrics
}

func cleanRow(r model.RawRecord, p Params) (model.CleanedRecord, bool, bool) {
	var rec model.CleanedRecord
	coerced := false

	rec.PatientID = strings.TrimSpace(r.PatientID)
	if rec.PatientID == "" {
		return rec, false, false
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(r.AdmissionDate))
	if err != nil {
		return rec, false, false
	}
	rec.AdmissionDate = model.Date{Time: date}

	los, err := cast.ToIntE(strings.TrimSpace(r.LOSDays))
	if err != nil || los < 0 || los > p.MaxLOSDays {
		return rec, false, false
	}
	if los == 0 {
		// At-least-one-day policy: a same-day discharge still occupies a bed.
		los = 1
		coerced = true
	}
	rec.LOSDays = los

	// Calendar fields are recomputed from the parsed date so they stay
	// consistent even when the raw feed disagrees with admission_date.
	rec.AdmitYear = date.Year()
	rec.AdmitMonth = int(date.Month())
	rec.AdmitDOW = (int(date.Weekday()) + 6) % 7 // Monday = 0
	rec.AdmitSeason = model.SeasonFor(date.Month())

	rec.Age, coerced = intField(r.Age, 0, coerced)
	rec.AgeBucket = model.AgeBucketFor(rec.Age)
	rec.Gender = strings.ToUpper(strings.TrimSpace(r.Gender))

	rec.NumProcedures, coerced = clampedField(r.NumProcedures, 0, 0, coerced)
	rec.NumDiagnoses, coerced = clampedField(r.NumDiagnoses, 1, 1, coerced)

	rec.HasDiabetes, coerced = flagField(r.HasDiabetes, coerced)
	rec.HasCHF, coerced = flagField(r.HasCHF, coerced)
	rec.HasCOPD, coerced = flagField(r.HasCOPD, coerced)
	rec.HasCKD, coerced = flagField(r.HasCKD, coerced)
	rec.HasCancer, coerced = flagField(r.HasCancer, coerced)
	rec.HasDementia, coerced = flagField(r.HasDementia, coerced)

	rec.CharlsonIndex, coerced = clampedField(r.CharlsonIndex, 0, 0, coerced)
	rec.PriorVisits12M, coerced = clampedField(r.PriorVisits12M, 0, 0, coerced)
	rec.Readmitted30D, coerced = flagField(r.Readmitted30D, coerced)

	rec.RiskTier = model.RiskTierFor(rec.CharlsonIndex)
	rec.TenYrSurvivalProb = SurvivalProb(rec.CharlsonIndex, p)
	rec.AdmissionKey = AdmissionKey(rec.PatientID, rec.AdmissionDate)

	return rec, coerced, true
}

// SurvivalProb is the deterministic ten-year survival estimate,
// rounded to 4 decimals.
func SurvivalProb(charlson int, p Params) float64 {
	prob := math.Pow(p.SurvivalBase, math.Exp(p.SurvivalDecay*float64(charlson)))
	return math.Round(prob*10000) / 10000
}

// AdmissionKey derives the deterministic per-admission key from patient id
// and admission date. Opaque identifier for joins and dedup, never ordered on.
func AdmissionKey(patientID string, date model.Date) string {
	sum := md5.Sum([]byte(patientID + date.Format("2006-01-02")))
	return hex.EncodeToString(sum[:])
}

// intField coerces a numeric text field, falling back to def on absence or
// junk and flagging the coercion.
func intField(s string, def int, coerced bool) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, true
	}
	v, err := cast.ToIntE(s)
	if err != nil {
		return def, true
	}
	return v, coerced
}

// clampedField coerces like intField and additionally floors at min.
func clampedField(s string, def, min int, coerced bool) (int, bool) {
	v, coerced := intField(s, def, coerced)
	if v < min {
		return min, true
	}
	return v, coerced
}

// flagField coerces a 0/1 clinical flag.
func flagField(s string, coerced bool) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	b, err := cast.ToBoolE(s)
	if err != nil {
		return 0, true
	}
	if b {
		return 1, coerced
	}
	return 0, coerced
}
