// Package model defines the record types flowing through the lakehouse
// layers (raw → cleaned → gold) and the run/report types surrounding them.
package model

import (
	"time"
)

// Layer names used by the artifact store.
const (
	LayerBronze = "bronze"
	LayerSilver = "silver"
	LayerGold   = "gold"
)

// Date is a calendar date serialized as YYYY-MM-DD in artifacts.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.Format("2006-01-02")), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse("2006-01-02", string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// DaysSince returns the calendar-day difference d - other.
func (d Date) DaysSince(other Date) int {
	return int(d.Sub(other.Time).Hours() / 24)
}

// RawRecord is one hospital admission event as ingested into the bronze
// layer. Fields are kept as raw CSV text: nulls, junk, and out-of-range
// values are quality issues handled by the cleaning stage, not decode errors.
type RawRecord struct {
	PatientID      string `csv:"patient_id"`
	AdmissionDate  string `csv:"admission_date"`
	AdmitYear      string `csv:"admit_year"`
	AdmitMonth     string `csv:"admit_month"`
	AdmitDOW       string `csv:"admit_dow"`
	AdmitSeason    string `csv:"admit_season"`
	Age            string `csv:"age"`
	AgeBucket      string `csv:"age_bucket"`
	Gender         string `csv:"gender"`
	LOSDays        string `csv:"los_days"`
	NumProcedures  string `csv:"num_procedures"`
	NumDiagnoses   string `csv:"num_diagnoses"`
	HasDiabetes    string `csv:"has_diabetes"`
	HasCHF         string `csv:"has_chf"`
	HasCOPD        string `csv:"has_copd"`
	HasCKD         string `csv:"has_ckd"`
	HasCancer      string `csv:"has_cancer"`
	HasDementia    string `csv:"has_dementia"`
	CharlsonIndex  string `csv:"charlson_index"`
	PriorVisits12M string `csv:"prior_visits_12m"`
	Readmitted30D  string `csv:"readmitted_30d"`
}

// Risk tiers derived from the charlson comorbidity index.
const (
	RiskTierLow      = "LOW"
	RiskTierMedium   = "MEDIUM"
	RiskTierHigh     = "HIGH"
	RiskTierVeryHigh = "VERY_HIGH"
)

// RiskTierFor maps a charlson index to its tier: 0 LOW, 1-2 MEDIUM,
// 3-4 HIGH, 5+ VERY_HIGH.
func RiskTierFor(charlson int) string {
	switch {
	case charlson <= 0:
		return RiskTierLow
	case charlson <= 2:
		return RiskTierMedium
	case charlson <= 4:
		return RiskTierHigh
	default:
		return RiskTierVeryHigh
	}
}

// Admission seasons.
const (
	SeasonWinter = "WINTER"
	SeasonSpring = "SPRING"
	SeasonSummer = "SUMMER"
	SeasonFall   = "FALL"
)

// SeasonFor maps a calendar month to its season (Dec-Feb WINTER,
// Mar-May SPRING, Jun-Aug SUMMER, Sep-Nov FALL).
func SeasonFor(month time.Month) string {
	switch month {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonFall
	}
}

// SeasonCode maps a season name to its fixed numeric encoding.
func SeasonCode(season string) int {
	switch season {
	case SeasonWinter:
		return 1
	case SeasonSpring:
		return 2
	case SeasonSummer:
		return 3
	default:
		return 4
	}
}

// AgeBucketFor maps an age to the fixed bucket labels used across layers.
func AgeBucketFor(age int) string {
	switch {
	case age < 40:
		return "18-39"
	case age < 60:
		return "40-59"
	case age < 75:
		return "60-74"
	default:
		return "75+"
	}
}

// CleanedRecord is a RawRecord after coercion, filtering, and categorical
// derivation — one row of the silver layer. Every CleanedRecord has a
// non-empty patient id, a valid admission date, and los_days in [1, 365].
type CleanedRecord struct {
	PatientID         string  `csv:"patient_id" json:"patient_id"`
	AdmissionDate     Date    `csv:"admission_date" json:"admission_date"`
	AdmitYear         int     `csv:"admit_year" json:"admit_year"`
	AdmitMonth        int     `csv:"admit_month" json:"admit_month"`
	AdmitDOW          int     `csv:"admit_dow" json:"admit_dow"`
	AdmitSeason       string  `csv:"admit_season" json:"admit_season"`
	Age               int     `csv:"age" json:"age"`
	AgeBucket         string  `csv:"age_bucket" json:"age_bucket"`
	Gender            string  `csv:"gender" json:"gender"`
	LOSDays           int     `csv:"los_days" json:"los_days"`
	NumProcedures     int     `csv:"num_procedures" json:"num_procedures"`
	NumDiagnoses      int     `csv:"num_diagnoses" json:"num_diagnoses"`
	HasDiabetes       int     `csv:"has_diabetes" json:"has_diabetes"`
	HasCHF            int     `csv:"has_chf" json:"has_chf"`
	HasCOPD           int     `csv:"has_copd" json:"has_copd"`
	HasCKD            int     `csv:"has_ckd" json:"has_ckd"`
	HasCancer         int     `csv:"has_cancer" json:"has_cancer"`
	HasDementia       int     `csv:"has_dementia" json:"has_dementia"`
	CharlsonIndex     int     `csv:"charlson_index" json:"charlson_index"`
	PriorVisits12M    int     `csv:"prior_visits_12m" json:"prior_visits_12m"`
	Readmitted30D     int     `csv:"readmitted_30d" json:"readmitted_30d"`
	RiskTier          string  `csv:"risk_tier" json:"risk_tier"`
	TenYrSurvivalProb float64 `csv:"ten_yr_survival_prob" json:"ten_yr_survival_prob"`
	AdmissionKey      string  `csv:"admission_key" json:"admission_key"`
}
