package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/posm-recon/internal/ingest"
	"github.com/sells-group/posm-recon/internal/store"
)

var importDatasetPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a YAML dataset bundle into the configured store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		ds, err := ingest.LoadDataset(importDatasetPath)
		if err != nil {
			return err
		}

		st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		if err := st.SeedStores(ctx, ds.Stores); err != nil {
			return err
		}
		if err := st.SeedDisplayAssignments(ctx, ds.DisplayAssignments); err != nil {
			return err
		}
		if err := st.SeedPOSMRequirements(ctx, ds.POSMRequirements); err != nil {
			return err
		}
		if err := st.SeedSubmissions(ctx, ds.Submissions); err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("dataset", importDatasetPath),
			zap.Int("stores", len(ds.Stores)),
			zap.Int("assignments", len(ds.DisplayAssignments)),
			zap.Int("requirements", len(ds.POSMRequirements)),
			zap.Int("submissions", len(ds.Submissions)),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importDatasetPath, "dataset", "", "path to YAML dataset bundle (required)")
	_ = importCmd.MarkFlagRequired("dataset")
	rootCmd.AddCommand(importCmd)
}
