package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/validate"
)

var (
	validateRef   string
	validateRules string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Evaluate a rule set against a stored layer artifact",
	Long:  "Reads the artifact snapshot, evaluates every rule, and prints the report as JSON. Exits nonzero when the success percentage is below the configured gate threshold.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		artifacts := initArtifacts()

		ref, err := parseRef(validateRef)
		if err != nil {
			return err
		}
		f, _, err := artifacts.ReadFrame(ctx, ref)
		if err != nil {
			return eris.Wrap(err, "read artifact")
		}

		rules, err := validate.LoadRules(validateRules)
		if err != nil {
			return eris.Wrap(err, "load rules")
		}

		report, err := validate.Evaluate(ctx, f, rules)
		if err != nil {
			return eris.Wrap(err, "evaluate")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}

		if report.SuccessPercent < cfg.Validate.GateThreshold {
			zap.L().Warn("gate would block",
				zap.Float64("success_percent", report.SuccessPercent),
				zap.Float64("threshold", cfg.Validate.GateThreshold),
			)
			return eris.Errorf("validation below gate threshold: %.2f%% < %.2f%%",
				report.SuccessPercent, cfg.Validate.GateThreshold)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateRef, "artifact", "", "artifact ref to validate, e.g. silver.admissions (required)")
	validateCmd.Flags().StringVar(&validateRules, "rules", "", "path to the rule set YAML (required)")
	_ = validateCmd.MarkFlagRequired("artifact")
	_ = validateCmd.MarkFlagRequired("rules")
	rootCmd.AddCommand(validateCmd)
}
