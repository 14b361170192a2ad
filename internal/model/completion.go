package model

// CompletionStatus classifies a completion record.
type CompletionStatus string

const (
	StatusComplete    CompletionStatus = "complete"
	StatusPartial     CompletionStatus = "partial"
	StatusNotVerified CompletionStatus = "not_verified"
	StatusNoDisplays  CompletionStatus = "no_displays"
)

// CompletionRecord is the per-assignment output: how much of the required
// POSM set for one store x model expectation is confirmed by survey evidence.
// Recomputed from scratch each run, never persisted.
type CompletionRecord struct {
	StoreID                     string           `json:"store_id"`
	StoreName                   string           `json:"store_name"`
	Region                      string           `json:"region"`
	Model                       string           `json:"model"`
	RequiredCount               int              `json:"required_count"`
	CompletedCount              int              `json:"completed_count"`
	CompletionRate              float64          `json:"completion_rate"`
	Status                      CompletionStatus `json:"status"`
	ContributingSubmissionCount int              `json:"contributing_submission_count"`
	Capped                      bool             `json:"capped,omitempty"`
}

// CompletionSummary is a sum-then-divide rollup over a group of completion
// records (per store, per model, per region, or global). Rates are
// POSM-weighted, not averages of member rates.
type CompletionSummary struct {
	Key            string  `json:"key"`
	Assignments    int     `json:"assignments"`
	RequiredTotal  int     `json:"required_total"`
	CompletedTotal int     `json:"completed_total"`
	CompletionRate float64 `json:"completion_rate"`
}

// CapWarning records one anomaly cap: a record whose raw confirmed-code count
// exceeded its requirement count before capping.
type CapWarning struct {
	StoreID  string `json:"store_id"`
	Model    string `json:"model"`
	Raw      int    `json:"raw_count"`
	Required int    `json:"required_count"`
}

// OrphanedSubmission is a submission that resolved to no display assignment.
// Diagnostic only; orphans are not an error condition.
type OrphanedSubmission struct {
	SubmissionID  string `json:"submission_id"`
	LeaderLabel   string `json:"leader_label"`
	ShopNameLabel string `json:"shop_name_label"`
}

// EvidenceRef identifies one submission that contributed evidence to a
// store. Submission IDs are optional in survey exports, so identity is
// established by the engine, not by the ID; the ID is carried for display
// and ResponseCount for audit grading.
type EvidenceRef struct {
	SubmissionID  string `json:"submission_id,omitempty"`
	ResponseCount int    `json:"response_count"`
}

// CompletionResult is the full output of one reconciliation run.
type CompletionResult struct {
	PerAssignment []CompletionRecord  `json:"per_assignment"`
	PerStore      []CompletionSummary `json:"per_store"`
	PerModel      []CompletionSummary `json:"per_model"`
	PerRegion     []CompletionSummary `json:"per_region"`
	Global        CompletionSummary   `json:"global"`

	CapWarnings    []CapWarning         `json:"cap_warnings,omitempty"`
	Orphans        []OrphanedSubmission `json:"orphaned_submissions,omitempty"`
	SkippedRecords int                  `json:"skipped_records"`
	InvalidSubs    int                  `json:"invalid_submissions"`

	// StoreEvidence maps storeID to the distinct submissions that contributed
	// evidence to any of the store's assignments, in submission input order.
	// This is the audit reporter's trail; it never feeds back into the rates.
	StoreEvidence map[string][]EvidenceRef `json:"store_evidence,omitempty"`
}
