package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/clean"
)

var cleanInput string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Ingest and clean a raw extract without running the full pipeline",
	Long:  "Imports the raw CSV into bronze, runs the cleaning stage, and writes the silver artifact. No validation gates are applied; use this to inspect cleaning metrics on a new extract.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		artifacts := initArtifacts()

		rawRef, err := artifacts.ImportRaw(ctx, cleanInput, "admissions")
		if err != nil {
			return eris.Wrap(err, "import raw")
		}
		raw, _, err := artifacts.ReadRaw(ctx, rawRef)
		if err != nil {
			return eris.Wrap(err, "read raw")
		}

		params := clean.Params{
			SurvivalBase:  cfg.Clean.SurvivalBase,
			SurvivalDecay: cfg.Clean.SurvivalDecay,
			MaxLOSDays:    cfg.Clean.MaxLOSDays,
		}
		recs, metrics := clean.Clean(raw, params)

		cleanedRef, err := artifacts.WriteCleaned(ctx, "admissions", recs)
		if err != nil {
			return eris.Wrap(err, "write cleaned")
		}

		zap.L().Info("clean complete",
			zap.String("artifact", cleanedRef.String()),
			zap.Int("rows_in", metrics.RowsIn),
			zap.Int("rows_out", metrics.RowsOut),
			zap.Int("rows_dropped", metrics.RowsDropped),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"artifact": cleanedRef.String(),
			"metrics":  metrics,
		})
	},
}

func init() {
	cleanCmd.Flags().StringVar(&cleanInput, "input", "", "path to the raw admissions CSV (required)")
	_ = cleanCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(cleanCmd)
}
