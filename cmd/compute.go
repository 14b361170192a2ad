package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/posm-recon/internal/export"
	"github.com/sells-group/posm-recon/internal/recon"
)

var (
	computeOut    string
	computeFormat string
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute POSM completion rates from survey submissions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("compute"); err != nil {
			return err
		}

		result, _, err := runCompletion(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("compute complete",
			zap.Int("assignments", len(result.PerAssignment)),
			zap.Int("stores", len(result.PerStore)),
			zap.Int("orphans", len(result.Orphans)),
			zap.Int("cap_warnings", len(result.CapWarnings)),
		)

		switch computeFormat {
		case "json":
			if computeOut == "" {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return eris.Wrap(enc.Encode(result), "compute: encode result")
			}
			buf, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return eris.Wrap(err, "compute: marshal result")
			}
			return eris.Wrap(os.WriteFile(computeOut, buf, 0644), "compute: write result")
		case "csv":
			if computeOut == "" {
				return eris.New("compute: --out is required for csv output")
			}
			return export.WriteCSV(result, computeOut)
		case "xlsx":
			if computeOut == "" {
				return eris.New("compute: --out is required for xlsx output")
			}
			return export.WriteXLSX(result, computeOut)
		case "text":
			fmt.Fprint(cmd.OutOrStdout(), recon.FormatReport(result))
			return nil
		default:
			return eris.Errorf("compute: unknown format %q", computeFormat)
		}
	},
}

func init() {
	addInputFlags(computeCmd)
	computeCmd.Flags().StringVar(&computeOut, "out", "", "output path (stdout for json/text when empty)")
	computeCmd.Flags().StringVar(&computeFormat, "format", "text", "output format: text, json, csv, xlsx")
	rootCmd.AddCommand(computeCmd)
}
