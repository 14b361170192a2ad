package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/posm-recon/internal/ingest"
	"github.com/sells-group/posm-recon/internal/model"
	"github.com/sells-group/posm-recon/internal/recon"
	"github.com/sells-group/posm-recon/internal/store"
)

var (
	datasetPath      string
	storesPath       string
	assignmentsPath  string
	requirementsPath string
	submissionsPath  string
)

// addInputFlags registers the shared input-source flags. Inputs come from a
// YAML bundle, from individual catalog files, or from the configured store,
// in that precedence order.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "YAML bundle with all catalogs and submissions")
	cmd.Flags().StringVar(&storesPath, "stores", "", "store catalog (CSV or XLSX)")
	cmd.Flags().StringVar(&assignmentsPath, "assignments", "", "display assignment catalog (CSV or XLSX)")
	cmd.Flags().StringVar(&requirementsPath, "requirements", "", "POSM requirement catalog (CSV or XLSX)")
	cmd.Flags().StringVar(&submissionsPath, "submissions", "", "survey submissions (YAML)")
}

// inputs holds one complete reconciliation input set.
type inputs struct {
	Stores       []model.Store
	Assignments  []model.DisplayAssignment
	Requirements []model.POSMRequirement
	Submissions  []model.SurveySubmission
}

func loadInputs(ctx context.Context) (*inputs, error) {
	if datasetPath != "" {
		ds, err := ingest.LoadDataset(datasetPath)
		if err != nil {
			return nil, err
		}
		return &inputs{
			Stores:       ds.Stores,
			Assignments:  ds.DisplayAssignments,
			Requirements: ds.POSMRequirements,
			Submissions:  ds.Submissions,
		}, nil
	}

	if storesPath != "" || assignmentsPath != "" || requirementsPath != "" || submissionsPath != "" {
		return loadInputFiles()
	}

	return loadInputsFromStore(ctx)
}

func loadInputFiles() (*inputs, error) {
	if storesPath == "" || assignmentsPath == "" || requirementsPath == "" || submissionsPath == "" {
		return nil, eris.New("inputs: --stores, --assignments, --requirements, and --submissions must all be set when loading from files")
	}

	var (
		in  inputs
		err error
	)
	if in.Stores, err = ingest.LoadStores(storesPath); err != nil {
		return nil, err
	}
	if in.Assignments, err = ingest.LoadDisplayAssignments(assignmentsPath); err != nil {
		return nil, err
	}
	if in.Requirements, err = ingest.LoadPOSMRequirements(requirementsPath); err != nil {
		return nil, err
	}
	if in.Submissions, err = ingest.LoadSubmissions(submissionsPath); err != nil {
		return nil, err
	}
	return &in, nil
}

func loadInputsFromStore(ctx context.Context) (*inputs, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	var in inputs
	if in.Stores, err = st.Stores(ctx); err != nil {
		return nil, err
	}
	if in.Assignments, err = st.DisplayAssignments(ctx); err != nil {
		return nil, err
	}
	if in.Requirements, err = st.POSMRequirements(ctx); err != nil {
		return nil, err
	}
	if in.Submissions, err = st.Submissions(ctx); err != nil {
		return nil, err
	}
	return &in, nil
}

// runCompletion loads inputs and runs the aggregation engine.
func runCompletion(ctx context.Context) (*model.CompletionResult, *inputs, error) {
	in, err := loadInputs(ctx)
	if err != nil {
		return nil, nil, err
	}

	engine := recon.NewEngine(cfg.Recon)
	result := engine.ComputeCompletion(ctx, in.Assignments, in.Submissions, in.Requirements, in.Stores)
	return result, in, nil
}
