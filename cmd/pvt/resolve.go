package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pvt-resolver/internal/domain"
	"pvt-resolver/internal/observability"
	"pvt-resolver/internal/service"
)

var (
	resolveCompletion string
	resolvePressure   float64
	resolveAsOf       string
	resolveOutput     string
	resolveSamples    string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the PVT profile of a completion at a target pressure",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		asOf, err := domain.ParseDate(resolveAsOf)
		if err != nil {
			return eris.Wrap(err, "parse --as-of")
		}
		if resolveOutput != "json" && resolveOutput != "table" {
			return eris.Errorf("unknown --output %q (json or table)", resolveOutput)
		}

		store, cleanup, err := openStore(ctx, cfg.Store, observability.DefaultMetrics)
		if err != nil {
			return err
		}
		defer cleanup()

		if resolveSamples != "" {
			n, err := loadSamples(ctx, store, resolveSamples)
			if err != nil {
				return err
			}
			zap.L().Debug("samples preloaded", zap.Int("count", n), zap.String("file", resolveSamples))
		}

		svc := service.New(store)
		res, err := svc.Resolve(ctx, domain.Request{
			CompletionID:   resolveCompletion,
			TargetPressure: resolvePressure,
			AsOf:           asOf,
		})
		if err != nil {
			return err
		}

		if resolveOutput == "table" {
			return printTable(cmd.OutOrStdout(), res)
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func printJSON(out io.Writer, res domain.Result) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		CompletionID string            `json:"completion_id"`
		SnapshotDate string            `json:"snapshot_date"`
		Case         string            `json:"case"`
		Pressure     *float64          `json:"pressure"`
		Properties   domain.Properties `json:"properties"`
	}{
		CompletionID: res.CompletionID,
		SnapshotDate: res.SnapshotDate.Format(domain.DateLayout),
		Case:         res.Case.String(),
		Pressure:     res.Pressure,
		Properties:   res.Properties,
	})
}

func printTable(out io.Writer, res domain.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "completion\t%s\n", res.CompletionID)
	_, _ = fmt.Fprintf(w, "snapshot_date\t%s\n", res.SnapshotDate.Format(domain.DateLayout))
	_, _ = fmt.Fprintf(w, "case\t%s\n", res.Case)

	values := res.Values()
	for i, col := range domain.Columns() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", col, formatValue(values[i]))
	}
	return w.Flush()
}

func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func init() {
	resolveCmd.Flags().StringVar(&resolveCompletion, "completion", "", "completion id (required)")
	resolveCmd.Flags().Float64Var(&resolvePressure, "pressure", 0, "target pressure (required)")
	resolveCmd.Flags().StringVar(&resolveAsOf, "as-of", "", "as-of date YYYY-MM-DD (required)")
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "json", "output format: json or table")
	resolveCmd.Flags().StringVar(&resolveSamples, "samples", "", "CSV or YAML file loaded into the store before resolving")
	_ = resolveCmd.MarkFlagRequired("completion")
	_ = resolveCmd.MarkFlagRequired("pressure")
	_ = resolveCmd.MarkFlagRequired("as-of")
	rootCmd.AddCommand(resolveCmd)
}
