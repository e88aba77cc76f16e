package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/feature"
)

var featuresCleanedRef string

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Compute gold features from an existing silver artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		artifacts := initArtifacts()

		ref, err := parseRef(featuresCleanedRef)
		if err != nil {
			return err
		}
		cleaned, _, err := artifacts.ReadCleaned(ctx, ref)
		if err != nil {
			return eris.Wrap(err, "read cleaned")
		}

		params := feature.Params{
			GapSentinelDays: cfg.Features.GapSentinelDays,
			MaxWorkers:      cfg.Features.MaxWorkers,
		}
		windows, err := feature.ComputeWindows(ctx, cleaned, params)
		if err != nil {
			return eris.Wrap(err, "compute windows")
		}
		gold, err := feature.Assemble(cleaned, windows)
		if err != nil {
			return eris.Wrap(err, "assemble features")
		}

		goldRef, err := artifacts.WriteGold(ctx, "admission_features", gold)
		if err != nil {
			return eris.Wrap(err, "write gold")
		}

		zap.L().Info("features complete",
			zap.String("artifact", goldRef.String()),
			zap.Int("rows", len(gold)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"artifact": goldRef.String(),
			"rows":     len(gold),
		})
	},
}

func init() {
	featuresCmd.Flags().StringVar(&featuresCleanedRef, "cleaned", "silver.admissions", "silver artifact ref (layer.name)")
	rootCmd.AddCommand(featuresCmd)
}
