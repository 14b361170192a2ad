package model

// AuditConfidence grades how much a store's completion figure can be trusted.
type AuditConfidence string

const (
	AuditHigh   AuditConfidence = "high"
	AuditMedium AuditConfidence = "medium"
	AuditLow    AuditConfidence = "low"
)

// AuditFinding flags one store whose completion figures look suspicious.
type AuditFinding struct {
	StoreID    string          `json:"store_id"`
	Confidence AuditConfidence `json:"confidence"`
	Issues     []string        `json:"issues"`
}

// AuditSummary is the distribution half of an audit report.
type AuditSummary struct {
	StoresAudited  int            `json:"stores_audited"`
	RateBuckets    map[string]int `json:"rate_buckets"`
	StatusCounts   map[string]int `json:"status_counts"`
	CapWarnings    int            `json:"cap_warnings"`
	PerfectStores  int            `json:"perfect_stores"`
	FlaggedStores  int            `json:"flagged_stores"`
	OrphanedSubs   int            `json:"orphaned_submissions"`
	InvalidSubs    int            `json:"invalid_submissions"`
	SkippedRecords int            `json:"skipped_records"`
}

// AuditReport annotates a completion result. It never alters it.
type AuditReport struct {
	Summary         AuditSummary   `json:"summary"`
	StoreFindings   []AuditFinding `json:"store_findings"`
	Recommendations []string       `json:"recommendations"`
}
