// Package feature computes the gold layer's engineered features: temporal
// window aggregates over per-patient partitions, stateless derived
// features, and the assembly join producing the feature table.
package feature

import (
	"context"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

// Params holds the window calculator knobs.
type Params struct {
	// GapSentinelDays is the days_since_last_admit value for a patient's
	// first observed visit, signaling "no prior history" without nulls.
	GapSentinelDays int
	// MaxWorkers bounds the number of partitions processed concurrently.
	MaxWorkers int
}

// DefaultParams mirrors the configured defaults.
func DefaultParams() Params {
	return Params{GapSentinelDays: 999, MaxWorkers: 8}
}

// Aggregator reduces a window of values to a single statistic.
type Aggregator func(window []float64) float64

func aggCount(w []float64) float64 { return float64(len(w)) }

func aggSum(w []float64) float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// aggMean returns NaN on an empty window; callers substitute their
// documented default.
func aggMean(w []float64) float64 {
	if len(w) == 0 {
		return math.NaN()
	}
	return aggSum(w) / float64(len(w))
}

func aggMax(w []float64) float64 {
	if len(w) == 0 {
		return math.NaN()
	}
	m := w[0]
	for _, v := range w[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// aggLast returns the most recent value in the window, NaN when empty.
// With a trailing window of one preceding row this is SQL's LAG().
func aggLast(w []float64) float64 {
	if len(w) == 0 {
		return math.NaN()
	}
	return w[len(w)-1]
}

// scanTrailing evaluates agg over a trailing window at every position of a
// partition-ordered series. preceding bounds the window to that many rows
// before the current one (negative = unbounded); includeCurrent extends the
// window through the current row. Exclusive windows model history known
// before a visit; inclusive ones model state accumulated through it.
func scanTrailing(values []float64, preceding int, includeCurrent bool, agg Aggregator) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		lo := 0
		if preceding >= 0 && i-preceding > 0 {
			lo = i - preceding
		}
		hi := i
		if includeCurrent {
			hi = i + 1
		}
		out[i] = agg(values[lo:hi])
	}
	return out
}

// ComputeWindows derives one WindowFeatureRecord per cleaned record.
// Records are partitioned by patient id and ordered by admission date,
// ties broken by original ingestion order (stable). Partitions are
// independent and computed concurrently; only order within a partition
// matters. The computation is pure: input records are never mutated.
func ComputeWindows(ctx context.Context, cleaned []model.CleanedRecord, p Params) ([]model.WindowFeatureRecord, error) {
	if p.MaxWorkers <= 0 {
		p.MaxWorkers = 1
	}
	if p.GapSentinelDays <= 0 {
		p.GapSentinelDays = 999
	}

	// Group row indices per patient, preserving ingestion order within
	// each group and first-appearance order across groups.
	var patients []string
	groups := make(map[string][]int)
	for i, rec := range cleaned {
		if _, ok := groups[rec.PatientID]; !ok {
			patients = append(patients, rec.PatientID)
		}
		groups[rec.PatientID] = append(groups[rec.PatientID], i)
	}

	out := make([]model.WindowFeatureRecord, len(cleaned))
	offsets := make(map[string]int, len(patients))
	next := 0
	for _, id := range patients {
		offsets[id] = next
		next += len(groups[id])
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.MaxWorkers)
	for _, id := range patients {
		idx, off := groups[id], offsets[id]
		g.Go(func() error {
			part := make([]model.CleanedRecord, len(idx))
			for i, j := range idx {
				part[i] = cleaned[j]
			}
			// Stable sort keeps ingestion order for same-day admissions.
			sort.SliceStable(part, func(a, b int) bool {
				return part[a].AdmissionDate.Before(part[b].AdmissionDate.Time)
			})
			computePartition(part, p, out[off:off+len(part)])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "feature: window scan")
	}

	zap.L().Debug("feature: windows computed",
		zap.Int("rows", len(out)),
		zap.Int("partitions", len(patients)),
	)
	return out, nil
}

// computePartition fills dst with the window features of one time-ordered
// patient partition.
func computePartition(part []model.CleanedRecord, p Params, dst []model.WindowFeatureRecord) {
	n := len(part)
	los := make([]float64, n)
	procs := make([]float64, n)
	charlson := make([]float64, n)
	days := make([]float64, n)
	for i, rec := range part {
		los[i] = float64(rec.LOSDays)
		procs[i] = float64(rec.NumProcedures)
		charlson[i] = float64(rec.CharlsonIndex)
		days[i] = float64(rec.AdmissionDate.Unix()) / 86400
	}

	// Trailing, current row excluded: history known before this visit.
	visits90 := scanTrailing(los, 2, false, aggCount)
	visits365 := scanTrailing(los, 5, false, aggCount)
	avgLOS3 := scanTrailing(los, 3, false, aggMean)
	lagDay := scanTrailing(days, 1, false, aggLast)

	// Unbounded, current row included: state accumulated through this visit.
	cumProcs := scanTrailing(procs, -1, true, aggSum)
	maxCharlson := scanTrailing(charlson, -1, true, aggMax)

	for i, rec := range part {
		avg := avgLOS3[i]
		if math.IsNaN(avg) {
			avg = float64(rec.LOSDays)
		}
		gap := p.GapSentinelDays
		if !math.IsNaN(lagDay[i]) {
			gap = int(math.Round(days[i] - lagDay[i]))
		}
		dst[i] = model.WindowFeatureRecord{
			PatientID:          rec.PatientID,
			AdmissionDate:      rec.AdmissionDate,
			VisitNumber:        i + 1,
			VisitsPrior90D:     int(visits90[i]),
			VisitsPrior365D:    int(visits365[i]),
			AvgLOSLast3Visits:  math.Round(avg*100) / 100,
			CumulativeProcs:    int(cumProcs[i]),
			MaxCharlsonEver:    int(maxCharlson[i]),
			DaysSinceLastAdmit: gap,
		}
	}
}
