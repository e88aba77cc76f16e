// Package pipeline orchestrates the layered promotion flow: raw ingestion,
// cleaning, windowed feature computation, and the validation checkpoints
// that gate each promotion. Every run is tracked in the run ledger.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/artifact"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/clean"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/config"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/feature"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/store"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/validate"
)

// Stage names recorded in the ledger.
const (
	StageIngest        = "1_ingest"
	StageClean         = "2_clean"
	StageValidateClean = "3_validate_clean"
	StageFeatures      = "4_features"
	StageValidateGold  = "5_validate_gold"
	StagePromote       = "6_promote"
)

// Pipeline runs the full layered flow for one raw input file.
type Pipeline struct {
	cfg          *config.Config
	artifacts    artifact.Store
	ledger       store.Store
	cleanedRules []validate.Rule
	goldRules    []validate.Rule
}

// New creates a Pipeline with all dependencies. Rule sets are loaded once
// at construction so a bad rule file fails fast, before any run starts.
func New(cfg *config.Config, artifacts artifact.Store, ledger store.Store) (*Pipeline, error) {
	cleanedRules, err := validate.LoadRules(cfg.Validate.CleanedRules)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load cleaned rules")
	}
	goldRules, err := validate.LoadRules(cfg.Validate.GoldRules)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load gold rules")
	}
	return &Pipeline{
		cfg:          cfg,
		artifacts:    artifacts,
		ledger:       ledger,
		cleanedRules: cleanedRules,
		goldRules:    goldRules,
	}, nil
}

// Result summarizes one pipeline execution. A blocked validation gate is a
// normal outcome: Result carries the FAILED state and the blocking report,
// and Run returns a nil error.
type Result struct {
	RunID       string                  `json:"run_id"`
	State       model.RunState          `json:"state"`
	Stages      []model.StageResult     `json:"stages"`
	GoldRef     string                  `json:"gold_artifact,omitempty"`
	BlockedAt   string                  `json:"blocked_at,omitempty"`
	BlockReport *model.ValidationReport `json:"block_report,omitempty"`
}

// Run executes the full flow for one raw CSV input. Stages run strictly in
// order; a validation gate below the threshold stops the run with state
// FAILED. Only infrastructure errors (I/O, storage, rule file problems)
// return a non-nil error.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*Result, error) {
	log := zap.L().With(zap.String("input", inputPath))
	log.Info("pipeline: starting run")

	run, err := p.ledger.CreateRun(ctx, inputPath)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	result := &Result{RunID: run.ID, State: model.RunStateIngested}
	log = log.With(zap.String("run_id", run.ID))

	setState := func(state model.RunState) {
		result.State = state
		if stateErr := p.ledger.UpdateRunState(ctx, run.ID, state); stateErr != nil {
			log.Warn("pipeline: failed to update run state", zap.Error(stateErr))
		}
	}

	// Stage tracking helper. The returned error is the fn error, so callers
	// can stop the run; the ledger write itself is best effort.
	trackStage := func(name string, fn func(stage *model.StageResult) error) error {
		stage := model.StageResult{Name: name, Status: model.StageStatusRunning}
		start := time.Now()
		fnErr := fn(&stage)
		stage.DurationMS = time.Since(start).Milliseconds()

		if fnErr != nil {
			stage.Status = model.StageStatusFailed
			stage.Error = fnErr.Error()
			log.Error("pipeline: stage failed",
				zap.String("stage", name),
				zap.Int64("duration_ms", stage.DurationMS),
				zap.Error(fnErr),
			)
		} else {
			stage.Status = model.StageStatusComplete
			log.Info("pipeline: stage complete",
				zap.String("stage", name),
				zap.Int64("duration_ms", stage.DurationMS),
				zap.Int("rows_out", stage.RowsOut),
			)
		}

		if ledgerErr := p.ledger.AppendStage(ctx, run.ID, stage); ledgerErr != nil {
			log.Warn("pipeline: failed to record stage", zap.String("stage", name), zap.Error(ledgerErr))
		}
		result.Stages = append(result.Stages, stage)
		return fnErr
	}

	// ===== Stage 1: ingest raw into bronze =====
	var rawRef artifact.Ref
	err = trackStage(StageIngest, func(stage *model.StageResult) error {
		ref, ingestErr := p.artifacts.ImportRaw(ctx, inputPath, "admissions")
		if ingestErr != nil {
			return ingestErr
		}
		rawRef = ref
		stage.Artifact = ref.String()
		return nil
	})
	if err != nil {
		setState(model.RunStateFailed)
		return result, eris.Wrap(err, "pipeline: ingest")
	}

	// ===== Stage 2: clean into silver =====
	var cleaned []model.CleanedRecord
	var cleanedRef artifact.Ref
	err = trackStage(StageClean, func(stage *model.StageResult) error {
		raw, _, readErr := p.artifacts.ReadRaw(ctx, rawRef)
		if readErr != nil {
			return readErr
		}
		params := clean.Params{
			SurvivalBase:  p.cfg.Clean.SurvivalBase,
			SurvivalDecay: p.cfg.Clean.SurvivalDecay,
			MaxLOSDays:    p.cfg.Clean.MaxLOSDays,
		}
		recs, metrics := clean.Clean(raw, params)
		cleaned = recs

		ref, writeErr := p.artifacts.WriteCleaned(ctx, "admissions", recs)
		if writeErr != nil {
			return writeErr
		}
		cleanedRef = ref
		stage.Artifact = ref.String()
		stage.RowsIn = metrics.RowsIn
		stage.RowsOut = metrics.RowsOut
		stage.RowsDropped = metrics.RowsDropped
		stage.Metadata = map[string]any{"rows_coerced": metrics.RowsCoerced}
		return nil
	})
	if err != nil {
		setState(model.RunStateFailed)
		return result, eris.Wrap(err, "pipeline: clean")
	}
	setState(model.RunStateCleaned)

	// ===== Stage 3: validation checkpoint on the cleaned snapshot =====
	blocked, err := p.checkpoint(ctx, trackStage, StageValidateClean, cleanedRef, p.cleanedRules, result)
	if err != nil {
		setState(model.RunStateFailed)
		return result, eris.Wrap(err, "pipeline: validate cleaned")
	}
	if blocked {
		setState(model.RunStateFailed)
		log.Warn("pipeline: run blocked at cleaned checkpoint")
		return result, nil
	}
	setState(model.RunStateValidatedClean)

	// ===== Stage 4: window features into gold =====
	var goldRef artifact.Ref
	err = trackStage(StageFeatures, func(stage *model.StageResult) error {
		params := feature.Params{
			GapSentinelDays: p.cfg.Features.GapSentinelDays,
			MaxWorkers:      p.cfg.Features.MaxWorkers,
		}
		windows, winErr := feature.ComputeWindows(ctx, cleaned, params)
		if winErr != nil {
			return winErr
		}
		gold, asmErr := feature.Assemble(cleaned, windows)
		if asmErr != nil {
			return asmErr
		}

		ref, writeErr := p.artifacts.WriteGold(ctx, "admission_features", gold)
		if writeErr != nil {
			return writeErr
		}
		goldRef = ref
		stage.Artifact = ref.String()
		stage.RowsIn = len(cleaned)
		stage.RowsOut = len(gold)
		return nil
	})
	if err != nil {
		setState(model.RunStateFailed)
		return result, eris.Wrap(err, "pipeline: features")
	}
	setState(model.RunStateFeatured)

	// ===== Stage 5: validation checkpoint on the gold snapshot =====
	blocked, err = p.checkpoint(ctx, trackStage, StageValidateGold, goldRef, p.goldRules, result)
	if err != nil {
		setState(model.RunStateFailed)
		return result, eris.Wrap(err, "pipeline: validate gold")
	}
	if blocked {
		setState(model.RunStateFailed)
		log.Warn("pipeline: run blocked at gold checkpoint")
		return result, nil
	}
	setState(model.RunStateValidatedGold)

	// ===== Stage 6: promote =====
	err = trackStage(StagePromote, func(stage *model.StageResult) error {
		stage.Artifact = goldRef.String()
		result.GoldRef = goldRef.String()
		return nil
	})
	if err != nil {
		setState(model.RunStateFailed)
		return result, eris.Wrap(err, "pipeline: promote")
	}
	setState(model.RunStatePromoted)

	log.Info("pipeline: run promoted",
		zap.String("gold_artifact", result.GoldRef),
		zap.Int("stages", len(result.Stages)),
	)
	return result, nil
}

// checkpoint evaluates a rule set against a stored snapshot and applies the
// gate threshold. The returned bool reports whether the gate blocked the
// run; the error is reserved for infrastructure failures.
func (p *Pipeline) checkpoint(
	ctx context.Context,
	trackStage func(string, func(*model.StageResult) error) error,
	name string,
	ref artifact.Ref,
	rules []validate.Rule,
	result *Result,
) (bool, error) {
	blocked := false
	err := trackStage(name, func(stage *model.StageResult) error {
		f, _, readErr := p.artifacts.ReadFrame(ctx, ref)
		if readErr != nil {
			return readErr
		}
		report, evalErr := validate.Evaluate(ctx, f, rules)
		if evalErr != nil {
			return evalErr
		}
		stage.Report = report
		stage.Artifact = ref.String()
		stage.RowsIn = f.RowCount()

		if report.SuccessPercent < p.cfg.Validate.GateThreshold {
			blocked = true
			result.BlockedAt = name
			result.BlockReport = report
			zap.L().Warn("pipeline: gate blocked",
				zap.String("stage", name),
				zap.Float64("success_percent", report.SuccessPercent),
				zap.Float64("threshold", p.cfg.Validate.GateThreshold),
			)
		}
		return nil
	})
	return blocked, err
}
