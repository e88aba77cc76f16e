package model

// WindowFeatureRecord holds the temporal aggregates computed for one
// admission from the patient's partition. Keyed by (patient_id,
// admission_date); never persisted on its own, always joined into the
// gold row.
type WindowFeatureRecord struct {
	PatientID          string  `json:"patient_id"`
	AdmissionDate      Date    `json:"admission_date"`
	VisitNumber        int     `json:"visit_number"`
	VisitsPrior90D     int     `json:"visits_prior_90d"`
	VisitsPrior365D    int     `json:"visits_prior_365d"`
	AvgLOSLast3Visits  float64 `json:"avg_los_last_3_visits"`
	CumulativeProcs    int     `json:"cumulative_procedures"`
	MaxCharlsonEver    int     `json:"max_charlson_ever"`
	DaysSinceLastAdmit int     `json:"days_since_last_admit"`
}

// DerivedFeatures are the stateless per-row interaction features. Every
// field is a total function of the cleaned record it was derived from.
type DerivedFeatures struct {
	SeasonCode       int     `json:"season_code"`
	IsWeekendAdmit   int     `json:"is_weekend_admit"`
	LOSxComorbidity  int     `json:"los_x_comorbidity"`
	ProceduresPerDay float64 `json:"procedures_per_day"`
	CardioBurden     int     `json:"cardio_burden"`
	MetabolicBurden  int     `json:"metabolic_burden"`
}

// FeatureRecord is one gold-layer row: cleaned base columns, window
// features, derived interaction features, and the readmission target.
// Exactly one FeatureRecord exists per CleanedRecord.
type FeatureRecord struct {
	PatientID     string `csv:"patient_id" json:"patient_id"`
	AdmissionDate Date   `csv:"admission_date" json:"admission_date"`
	VisitNumber   int    `csv:"visit_number" json:"visit_number"`

	Age       int    `csv:"age" json:"age"`
	AgeBucket string `csv:"age_bucket" json:"age_bucket"`
	Gender    string `csv:"gender" json:"gender"`

	LOSDays       int `csv:"los_days" json:"los_days"`
	NumProcedures int `csv:"num_procedures" json:"num_procedures"`
	NumDiagnoses  int `csv:"num_diagnoses" json:"num_diagnoses"`

	HasDiabetes int `csv:"has_diabetes" json:"has_diabetes"`
	HasCHF      int `csv:"has_chf" json:"has_chf"`
	HasCOPD     int `csv:"has_copd" json:"has_copd"`
	HasCKD      int `csv:"has_ckd" json:"has_ckd"`
	HasCancer   int `csv:"has_cancer" json:"has_cancer"`
	HasDementia int `csv:"has_dementia" json:"has_dementia"`

	CharlsonIndex     int     `csv:"charlson_index" json:"charlson_index"`
	PriorVisits12M    int     `csv:"prior_visits_12m" json:"prior_visits_12m"`
	RiskTier          string  `csv:"risk_tier" json:"risk_tier"`
	TenYrSurvivalProb float64 `csv:"ten_yr_survival_prob" json:"ten_yr_survival_prob"`

	AdmitMonth  int    `csv:"admit_month" json:"admit_month"`
	AdmitDOW    int    `csv:"admit_dow" json:"admit_dow"`
	AdmitSeason string `csv:"admit_season" json:"admit_season"`

	VisitsPrior90D     int     `csv:"visits_prior_90d" json:"visits_prior_90d"`
	VisitsPrior365D    int     `csv:"visits_prior_365d" json:"visits_prior_365d"`
	AvgLOSLast3Visits  float64 `csv:"avg_los_last_3_visits" json:"avg_los_last_3_visits"`
	CumulativeProcs    int     `csv:"cumulative_procedures" json:"cumulative_procedures"`
	MaxCharlsonEver    int     `csv:"max_charlson_ever" json:"max_charlson_ever"`
	DaysSinceLastAdmit int     `csv:"days_since_last_admit" json:"days_since_last_admit"`

	SeasonCode       int     `csv:"season_code" json:"season_code"`
	IsWeekendAdmit   int     `csv:"is_weekend_admit" json:"is_weekend_admit"`
	LOSxComorbidity  int     `csv:"los_x_comorbidity" json:"los_x_comorbidity"`
	ProceduresPerDay float64 `csv:"procedures_per_day" json:"procedures_per_day"`
	CardioBurden     int     `csv:"cardio_burden" json:"cardio_burden"`
	MetabolicBurden  int     `csv:"metabolic_burden" json:"metabolic_burden"`

	Readmitted30D int `csv:"readmitted_30d" json:"readmitted_30d"`
}
