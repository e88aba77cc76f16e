package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

func TestDerive(t *testing.T) {
	rec := model.CleanedRecord{
		AdmitSeason:   model.SeasonSummer,
		AdmitDOW:      2,
		LOSDays:       3,
		NumProcedures: 7,
		CharlsonIndex: 4,
		HasCHF:        1,
		HasCKD:        0,
		HasCOPD:       1,
		HasDiabetes:   1,
		HasCancer:     0,
		HasDementia:   1,
	}

	d := Derive(rec)
	assert.Equal(t, 3, d.SeasonCode)
	assert.Equal(t, 0, d.IsWeekendAdmit)
	assert.Equal(t, 12, d.LOSxComorbidity)
	assert.InDelta(t, 2.333, d.ProceduresPerDay, 1e-9)
	assert.Equal(t, 2, d.CardioBurden)
	assert.Equal(t, 2, d.MetabolicBurden)
}

func TestDerive_WeekendFlag(t *testing.T) {
	for dow := 0; dow <= 6; dow++ {
		d := Derive(model.CleanedRecord{AdmitDOW: dow, LOSDays: 1})
		want := 0
		if dow == 5 || dow == 6 {
			want = 1
		}
		assert.Equal(t, want, d.IsWeekendAdmit, "dow %d", dow)
	}
}

func TestDerive_ZeroLOSGuard(t *testing.T) {
	d := Derive(model.CleanedRecord{LOSDays: 0, NumProcedures: 5})
	assert.Equal(t, 0.0, d.ProceduresPerDay)
}
