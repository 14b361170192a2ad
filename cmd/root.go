package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/posm-recon/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "posm-recon",
	Short: "POSM field-survey reconciliation engine",
	Long:  "Resolves free-text survey store labels against the store catalog, reconciles POSM selections with display requirements, and reports completion rates per store, model, and region.",
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
