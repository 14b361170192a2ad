// Package store persists the reconciliation inputs: the store master
// catalog, display assignments, POSM requirements, and raw survey
// submissions. Backends are snapshot-oriented; the engine reads whole
// catalogs, never individual rows.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/posm-recon/internal/model"
)

// Store defines the persistence interface for reconciliation inputs.
type Store interface {
	// Snapshot reads
	Stores(ctx context.Context) ([]model.Store, error)
	DisplayAssignments(ctx context.Context) ([]model.DisplayAssignment, error)
	POSMRequirements(ctx context.Context) ([]model.POSMRequirement, error)
	Submissions(ctx context.Context) ([]model.SurveySubmission, error)

	// Bulk loads. Seeding upserts on the natural key so a re-import of a
	// corrected file overwrites rather than duplicates.
	SeedStores(ctx context.Context, stores []model.Store) error
	SeedDisplayAssignments(ctx context.Context, assignments []model.DisplayAssignment) error
	SeedPOSMRequirements(ctx context.Context, requirements []model.POSMRequirement) error
	SeedSubmissions(ctx context.Context, submissions []model.SurveySubmission) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the given driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
