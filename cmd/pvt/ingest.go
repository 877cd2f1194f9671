package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pvt-resolver/internal/config"
	"pvt-resolver/internal/observability"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Bulk-load PVT samples from a CSV or YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.Store.Driver == config.DriverMemory {
			zap.L().Warn("memory store discards samples on exit; set PVT_STORE_DRIVER to persist")
		}

		store, cleanup, err := openStore(ctx, cfg.Store, observability.DefaultMetrics)
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := loadSamples(ctx, store, ingestFile)
		if err != nil {
			return err
		}

		zap.L().Info("ingest complete",
			zap.Int("samples", n),
			zap.String("file", ingestFile),
			zap.String("driver", cfg.Store.Driver),
		)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "path to CSV or YAML file (required)")
	_ = ingestCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(ingestCmd)
}
