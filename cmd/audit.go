package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/posm-recon/internal/audit"
)

var auditOut string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit a completion run for statistically suspicious figures",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("audit"); err != nil {
			return err
		}

		result, _, err := runCompletion(ctx)
		if err != nil {
			return err
		}

		reporter := audit.NewReporter(cfg.Audit)
		report := reporter.Report(result)

		zap.L().Info("audit complete",
			zap.Int("stores", report.Summary.StoresAudited),
			zap.Int("flagged", report.Summary.FlaggedStores),
		)

		if auditOut == "" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(report), "audit: encode report")
		}
		buf, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return eris.Wrap(err, "audit: marshal report")
		}
		return eris.Wrap(os.WriteFile(auditOut, buf, 0644), "audit: write report")
	},
}

func init() {
	addInputFlags(auditCmd)
	auditCmd.Flags().StringVar(&auditOut, "out", "", "output path (stdout when empty)")
	rootCmd.AddCommand(auditCmd)
}
