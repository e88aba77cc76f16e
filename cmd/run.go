package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/pipeline"
)

var runInput string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline for a raw admission extract",
	Long:  "Ingests the raw CSV into bronze, cleans into silver, computes gold features, and promotes through both validation gates. A blocked gate exits nonzero with the report on stdout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		p, err := pipeline.New(cfg, initArtifacts(), st)
		if err != nil {
			return err
		}

		result, err := p.Run(ctx, runInput)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("run finished",
			zap.String("run_id", result.RunID),
			zap.String("state", string(result.State)),
			zap.Int("stages", len(result.Stages)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}

		if result.State != model.RunStatePromoted {
			return eris.Errorf("run %s blocked at %s", result.RunID, result.BlockedAt)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "path to the raw admissions CSV (required)")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}
