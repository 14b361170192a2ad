// Package audit post-processes a completion result and flags statistically
// suspicious figures: perfect scores resting on a single unrepeated survey,
// completion without an evidence trail, and run-level patterns that suggest
// over-matching or requirement-catalog drift. The reporter only annotates;
// it never changes the aggregator's numbers.
package audit

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/posm-recon/internal/model"
)

// Thresholds drive the run-level recommendations.
type Thresholds struct {
	PerfectStoreShare float64 `mapstructure:"perfect_store_share"`
	FlaggedStoreShare float64 `mapstructure:"flagged_store_share"`
}

// DefaultThresholds returns the production tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{PerfectStoreShare: 0.5, FlaggedStoreShare: 0.1}
}

// Reporter produces audit reports from completion results.
type Reporter struct {
	thresholds Thresholds
}

// NewReporter builds a reporter.
func NewReporter(thresholds Thresholds) *Reporter {
	return &Reporter{thresholds: thresholds}
}

// Report audits one completion run. Findings follow the per-store summary
// order of the result, so identical inputs yield identical reports.
func (r *Reporter) Report(completion *model.CompletionResult) *model.AuditReport {
	report := &model.AuditReport{
		Summary: model.AuditSummary{
			StoresAudited:  len(completion.PerStore),
			RateBuckets:    bucketRates(completion.PerStore),
			StatusCounts:   statusHistogram(completion.PerAssignment),
			CapWarnings:    len(completion.CapWarnings),
			OrphanedSubs:   len(completion.Orphans),
			InvalidSubs:    completion.InvalidSubs,
			SkippedRecords: completion.SkippedRecords,
		},
	}

	for _, store := range completion.PerStore {
		finding := r.auditStore(store, completion.StoreEvidence[store.Key])
		if store.CompletionRate == 100.0 && store.RequiredTotal > 0 {
			report.Summary.PerfectStores++
		}
		if finding != nil {
			report.StoreFindings = append(report.StoreFindings, *finding)
		}
	}
	report.Summary.FlaggedStores = len(report.StoreFindings)

	report.Recommendations = r.recommend(report.Summary)

	zap.L().Info("audit: report produced",
		zap.Int("stores", report.Summary.StoresAudited),
		zap.Int("flagged", report.Summary.FlaggedStores),
		zap.Int("recommendations", len(report.Recommendations)),
	)
	return report
}

// auditStore grades one store's completion figures against its evidence
// trail. Returns nil when nothing is suspicious.
func (r *Reporter) auditStore(store model.CompletionSummary, evidence []model.EvidenceRef) *model.AuditFinding {
	var issues []string
	confidence := model.AuditHigh

	if store.CompletedTotal > 0 && len(evidence) == 0 {
		// Computed completion with no recorded contributors is an internal
		// inconsistency between the rate and the evidence trail.
		confidence = model.AuditLow
		issues = append(issues, "positive completion without contributing-submission metadata")
	} else if store.CompletionRate == 100.0 && store.RequiredTotal > 0 && len(evidence) == 1 {
		if evidence[0].ResponseCount <= 1 {
			// Perfect score, one submission, one model response: plausible
			// but unverified by repetition.
			confidence = model.AuditMedium
			issues = append(issues, "100% completion from a single single-response submission")
		}
	}

	if confidence == model.AuditHigh {
		return nil
	}
	return &model.AuditFinding{StoreID: store.Key, Confidence: confidence, Issues: issues}
}

// recommend emits run-level guidance from the summary.
func (r *Reporter) recommend(s model.AuditSummary) []string {
	var recs []string
	if s.StoresAudited > 0 {
		if share := float64(s.PerfectStores) / float64(s.StoresAudited); share > r.thresholds.PerfectStoreShare {
			recs = append(recs, fmt.Sprintf(
				"%.0f%% of stores report 100%% completion; review identity matching for over-merging",
				share*100))
		}
	}
	if s.CapWarnings > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d completion count(s) exceeded requirements and were capped; requirement catalog may be stale",
			s.CapWarnings))
	}
	if s.StoresAudited > 0 {
		if share := float64(s.FlaggedStores) / float64(s.StoresAudited); share > r.thresholds.FlaggedStoreShare {
			recs = append(recs, fmt.Sprintf(
				"%.0f%% of stores carry audit findings; a systemic data-quality review is warranted",
				share*100))
		}
	}
	return recs
}

// bucketRates builds the 10-percentage-point completion distribution.
// 100% sits in its own bucket so perfect stores are visible at a glance.
func bucketRates(stores []model.CompletionSummary) map[string]int {
	buckets := make(map[string]int)
	for _, s := range stores {
		buckets[bucketLabel(s.CompletionRate)]++
	}
	return buckets
}

func bucketLabel(rate float64) string {
	if rate >= 100 {
		return "100"
	}
	if rate < 0 {
		rate = 0
	}
	lo := int(rate/10) * 10
	return fmt.Sprintf("%d-%d", lo, lo+9)
}

func statusHistogram(records []model.CompletionRecord) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[string(rec.Status)]++
	}
	return counts
}
