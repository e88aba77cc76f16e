package feature

import (
	"github.com/rotisserie/eris"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

type joinKey struct {
	patientID string
	date      string
}

// Assemble left-joins cleaned base columns, window features, and derived
// features on (patient id, admission date) into the gold feature table.
// Output row count always equals the cleaned row count: a missing or
// duplicated window key means the calculator broke its contract and the
// join aborts with a join integrity error instead of defaulting silently.
func Assemble(cleaned []model.CleanedRecord, windows []model.WindowFeatureRecord) ([]model.FeatureRecord, error) {
	if len(windows) != len(cleaned) {
		return nil, eris.Wrapf(model.ErrJoinIntegrity,
			"feature: %d window rows for %d cleaned rows", len(windows), len(cleaned))
	}

	// Same-day admissions share a (patient, date) key; the calculator emits
	// their window rows in ingestion order, so each key holds a FIFO queue
	// consumed in the same order the cleaned rows were ingested.
	byKey := make(map[joinKey][]model.WindowFeatureRecord, len(windows))
	for _, w := range windows {
		k := joinKey{w.PatientID, w.AdmissionDate.Format("2006-01-02")}
		byKey[k] = append(byKey[k], w)
	}

	out := make([]model.FeatureRecord, 0, len(cleaned))
	for _, rec := range cleaned {
		k := joinKey{rec.PatientID, rec.AdmissionDate.Format("2006-01-02")}
		queue := byKey[k]
		if len(queue) == 0 {
			return nil, eris.Wrapf(model.ErrJoinIntegrity,
				"feature: no window row for %s@%s", rec.PatientID, k.date)
		}
		w := queue[0]
		byKey[k] = queue[1:]
		d := Derive(rec)

		out = append(out, model.FeatureRecord{
			PatientID:     rec.PatientID,
			AdmissionDate: rec.AdmissionDate,
			VisitNumber:   w.VisitNumber,

			Age:       rec.Age,
			AgeBucket: rec.AgeBucket,
			Gender:    rec.Gender,

			LOSDays:       rec.LOSDays,
			NumProcedures: rec.NumProcedures,
			NumDiagnoses:  rec.NumDiagnoses,

			HasDiabetes: rec.HasDiabetes,
			HasCHF:      rec.HasCHF,
			HasCOPD:     rec.HasCOPD,
			HasCKD:      rec.HasCKD,
			HasCancer:   rec.HasCancer,
			HasDementia: rec.HasDementia,

			CharlsonIndex:     rec.CharlsonIndex,
			PriorVisits12M:    rec.PriorVisits12M,
			RiskTier:          rec.RiskTier,
			TenYrSurvivalProb: rec.TenYrSurvivalProb,

			AdmitMonth:  rec.AdmitMonth,
			AdmitDOW:    rec.AdmitDOW,
			AdmitSeason: rec.AdmitSeason,

			VisitsPrior90D:     w.VisitsPrior90D,
			VisitsPrior365D:    w.VisitsPrior365D,
			AvgLOSLast3Visits:  w.AvgLOSLast3Visits,
			CumulativeProcs:    w.CumulativeProcs,
			MaxCharlsonEver:    w.MaxCharlsonEver,
			DaysSinceLastAdmit: w.DaysSinceLastAdmit,

			SeasonCode:       d.SeasonCode,
			IsWeekendAdmit:   d.IsWeekendAdmit,
			LOSxComorbidity:  d.LOSxComorbidity,
			ProceduresPerDay: d.ProceduresPerDay,
			CardioBurden:     d.CardioBurden,
			MetabolicBurden:  d.MetabolicBurden,

			Readmitted30D: rec.Readmitted30D,
		})
	}
	return out, nil
}
