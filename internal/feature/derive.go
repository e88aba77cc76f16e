package feature

import (
	"math"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

// Derive computes the stateless interaction features for one cleaned
// record. Every output is a total function of its inputs: no ordering, no
// partitioning, no failure modes.
func Derive(rec model.CleanedRecord) model.DerivedFeatures {
	perDay := 0.0
	if rec.LOSDays > 0 {
		perDay = math.Round(float64(rec.NumProcedures)/float64(rec.LOSDays)*1000) / 1000
	}
	weekend := 0
	if rec.AdmitDOW == 5 || rec.AdmitDOW == 6 {
		weekend = 1
	}
	return model.DerivedFeatures{
		SeasonCode:       model.SeasonCode(rec.AdmitSeason),
		IsWeekendAdmit:   weekend,
		LOSxComorbidity:  rec.LOSDays * rec.CharlsonIndex,
		ProceduresPerDay: perDay,
		CardioBurden:     rec.HasCHF + rec.HasCKD + rec.HasCOPD,
		MetabolicBurden:  rec.HasDiabetes + rec.HasCancer + rec.HasDementia,
	}
}
