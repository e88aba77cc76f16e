package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "lakehouse",
	Short: "Layered hospital admission analytics pipeline",
	Long:  "Ingests raw admission extracts, cleans and standardizes them, computes windowed readmission features, and promotes layers through declarative validation gates.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
