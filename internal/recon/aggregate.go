// Package recon is the completion-accounting engine: it reconciles loosely
// identified survey submissions against the display-assignment catalog and
// computes per-assignment, per-store, per-model, per-region and global
// completion figures. One invocation reads immutable input snapshots and
// returns a fresh result; nothing is cached between runs and identical
// inputs always produce identical output.
package recon

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/posm-recon/internal/model"
	"github.com/sells-group/posm-recon/internal/resolve"
)

// Config tunes the engine.
type Config struct {
	Resolver      resolve.Config `mapstructure:"resolver"`
	MaxConcurrent int            `mapstructure:"max_concurrent"`
}

// DefaultConfig returns the production engine tuning.
func DefaultConfig() Config {
	return Config{Resolver: resolve.DefaultConfig(), MaxConcurrent: 8}
}

// Engine performs the reconciliation computation. It is stateless across
// invocations and safe for concurrent use.
type Engine struct {
	resolver      *resolve.Resolver
	matcher       *resolve.Matcher
	maxConcurrent int
}

// NewEngine builds an engine from config.
func NewEngine(cfg Config) *Engine {
	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	return &Engine{
		resolver:      resolve.NewResolver(cfg.Resolver),
		matcher:       resolve.NewMatcher(cfg.Resolver.ModelJaccard),
		maxConcurrent: limit,
	}
}

// ResolveStoreIdentity runs a single submission-vs-candidate identity check.
// Exposed for collaborators that need the decision without a full run.
func (e *Engine) ResolveStoreIdentity(sub model.SurveySubmission, candidateStoreID string, stores []model.Store) resolve.Resolution {
	return e.resolver.Resolve(sub.LeaderLabel, sub.ShopNameLabel, candidateStoreID, resolve.BuildCatalog(stores))
}

// ComputeCompletion evaluates every display assignment against the
// submission set. Dirty data degrades, never aborts: malformed records are
// skipped and counted, anomalous completions are capped with a warning, and
// unmatched submissions surface as an orphan diagnostic.
func (e *Engine) ComputeCompletion(ctx context.Context, assignments []model.DisplayAssignment, submissions []model.SurveySubmission, requirements []model.POSMRequirement, stores []model.Store) *model.CompletionResult {
	catalog := resolve.BuildCatalog(stores)
	index := NewRequirementIndex(requirements)

	result := &model.CompletionResult{}
	result.SkippedRecords = index.Skipped()

	// Validate inputs once, up front.
	var active []model.DisplayAssignment
	for _, a := range assignments {
		if !ValidAssignment(a) {
			result.SkippedRecords++
			continue
		}
		if !a.IsDisplayed {
			continue // not an expectation, nothing to verify
		}
		active = append(active, a)
	}

	var valid []model.SurveySubmission
	for _, s := range submissions {
		if !ValidSubmission(s) {
			result.InvalidSubs++
			continue
		}
		valid = append(valid, s)
	}
	if result.InvalidSubs > 0 {
		zap.L().Warn("recon: invalid submissions excluded",
			zap.Int("invalid", result.InvalidSubs),
			zap.Int("valid", len(valid)),
		)
	}

	// Phase 1: resolve each valid submission to the stores that actually
	// have assignments. Identity resolution is independent of the model
	// dimension, so this runs once per (store, submission) pair rather than
	// once per assignment. Workers write only their own slot.
	storeIDs := uniqueStoreIDs(active)
	matchesByStore := make([][]int, len(storeIDs))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)
	for i, storeID := range storeIDs {
		g.Go(func() error {
			var matched []int
			for j, sub := range valid {
				if res := e.resolver.Resolve(sub.LeaderLabel, sub.ShopNameLabel, storeID, catalog); res.Accepted {
					matched = append(matched, j)
				}
			}
			matchesByStore[i] = matched
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	storeMatches := make(map[string][]int, len(storeIDs))
	for i, storeID := range storeIDs {
		storeMatches[storeID] = matchesByStore[i]
	}

	// Phase 2: per-assignment completion, fanned out with per-slot writes.
	// Contributors are tracked as indices into the valid-submission slice;
	// submission IDs are optional and may collide when absent.
	records := make([]model.CompletionRecord, len(active))
	contributors := make([][]int, len(active))
	rawCounts := make([]int, len(active))

	g, _ = errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)
	for i, assignment := range active {
		g.Go(func() error {
			records[i], contributors[i], rawCounts[i] = e.completeOne(assignment, valid, storeMatches[assignment.StoreID], index, catalog)
			return nil
		})
	}
	_ = g.Wait()

	for i := range records {
		if records[i].Capped {
			result.CapWarnings = append(result.CapWarnings, model.CapWarning{
				StoreID:  records[i].StoreID,
				Model:    records[i].Model,
				Raw:      rawCounts[i],
				Required: records[i].RequiredCount,
			})
		}
	}

	result.PerAssignment = records
	result.StoreEvidence = buildEvidence(records, contributors, valid)
	result.Orphans = findOrphans(valid, storeMatches)

	result.PerStore = rollup(records, func(r model.CompletionRecord) string { return r.StoreID })
	result.PerModel = rollup(records, func(r model.CompletionRecord) string { return r.Model })
	result.PerRegion = rollup(records, func(r model.CompletionRecord) string {
		if r.Region == "" {
			return "unknown"
		}
		return r.Region
	})
	result.Global = globalSummary(records)

	sortByRate(result.PerAssignment)
	sortSummaries(result.PerStore)
	sortSummaries(result.PerModel)
	sortSummaries(result.PerRegion)

	zap.L().Info("recon: completion computed",
		zap.Int("assignments", len(records)),
		zap.Int("stores", len(result.PerStore)),
		zap.Int("cap_warnings", len(result.CapWarnings)),
		zap.Int("orphans", len(result.Orphans)),
		zap.Float64("global_rate", result.Global.CompletionRate),
	)
	return result
}

// completeOne computes the completion record for a single assignment: the
// cumulative union of selected POSM codes across every matching submission's
// matching model responses, compared against the requirement index. Returns
// the record, the contributing submission indices, and the pre-cap raw
// confirmed-code count.
func (e *Engine) completeOne(assignment model.DisplayAssignment, valid []model.SurveySubmission, matched []int, index *RequirementIndex, catalog map[string]model.Store) (model.CompletionRecord, []int, int) {
	required := index.RequiredCount(assignment.Model)

	selected := make(map[string]bool)
	var contributing []int
	for _, j := range matched {
		sub := valid[j]
		hit := false
		for _, resp := range sub.ModelResponses {
			if !e.matcher.Matches(assignment.Model, resp.Model) {
				continue
			}
			hit = true
			for _, sel := range resp.POSMSelections {
				if sel.Selected && sel.POSMCode != "" {
					selected[sel.POSMCode] = true
				}
			}
		}
		if hit {
			contributing = append(contributing, j)
		}
	}

	raw := len(selected)
	completed := raw
	capped := false
	if completed > required {
		zap.L().Warn("recon: completed count exceeds requirement, capping",
			zap.String("store_id", assignment.StoreID),
			zap.String("model", assignment.Model),
			zap.Int("raw", completed),
			zap.Int("required", required),
		)
		completed = required
		capped = true
	}

	rate := 0.0
	if required > 0 {
		rate = roundRate(float64(completed) / float64(required) * 100)
	}

	status := model.StatusPartial
	switch {
	case required == 0:
		status = model.StatusNoDisplays
	case completed == 0:
		status = model.StatusNotVerified
	case completed == required:
		status = model.StatusComplete
	}

	rec := model.CompletionRecord{
		StoreID:                     assignment.StoreID,
		Model:                       assignment.Model,
		RequiredCount:               required,
		CompletedCount:              completed,
		CompletionRate:              rate,
		Status:                      status,
		ContributingSubmissionCount: len(contributing),
		Capped:                      capped,
	}
	if store, ok := catalog[assignment.StoreID]; ok {
		rec.StoreName = store.StoreName
		rec.Region = store.Region
	}
	return rec, contributing, raw
}

// buildEvidence merges per-assignment contributor lists into a per-store
// distinct-submission map. Submissions are deduplicated by slice index, not
// by ID, so ID-less submissions stay distinct; refs follow submission input
// order for deterministic output.
func buildEvidence(records []model.CompletionRecord, contributors [][]int, valid []model.SurveySubmission) map[string][]model.EvidenceRef {
	seen := make(map[string]map[int]bool)
	for i, rec := range records {
		for _, j := range contributors[i] {
			if seen[rec.StoreID] == nil {
				seen[rec.StoreID] = make(map[int]bool)
			}
			seen[rec.StoreID][j] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	evidence := make(map[string][]model.EvidenceRef, len(seen))
	for storeID, idxs := range seen {
		list := make([]int, 0, len(idxs))
		for j := range idxs {
			list = append(list, j)
		}
		sort.Ints(list)
		refs := make([]model.EvidenceRef, 0, len(list))
		for _, j := range list {
			refs = append(refs, model.EvidenceRef{
				SubmissionID:  valid[j].ID,
				ResponseCount: len(valid[j].ModelResponses),
			})
		}
		evidence[storeID] = refs
	}
	return evidence
}

// findOrphans lists valid submissions that resolved to no assigned store.
func findOrphans(valid []model.SurveySubmission, storeMatches map[string][]int) []model.OrphanedSubmission {
	matched := make(map[int]bool)
	for _, idxs := range storeMatches {
		for _, j := range idxs {
			matched[j] = true
		}
	}
	var orphans []model.OrphanedSubmission
	for j, sub := range valid {
		if matched[j] {
			continue
		}
		orphans = append(orphans, model.OrphanedSubmission{
			SubmissionID:  sub.ID,
			LeaderLabel:   sub.LeaderLabel,
			ShopNameLabel: sub.ShopNameLabel,
		})
	}
	return orphans
}

// rollup groups records by key and computes sum-then-divide summaries:
// required and completed counts are summed across the group before the rate
// is taken, so the group rate is POSM-weighted rather than an average of
// member rates. Group order follows first appearance in the record list.
func rollup(records []model.CompletionRecord, keyFn func(model.CompletionRecord) string) []model.CompletionSummary {
	byKey := make(map[string]*model.CompletionSummary)
	var order []string
	for _, rec := range records {
		key := keyFn(rec)
		s, ok := byKey[key]
		if !ok {
			s = &model.CompletionSummary{Key: key}
			byKey[key] = s
			order = append(order, key)
		}
		s.Assignments++
		s.RequiredTotal += rec.RequiredCount
		s.CompletedTotal += rec.CompletedCount
	}
	summaries := make([]model.CompletionSummary, 0, len(order))
	for _, key := range order {
		s := byKey[key]
		if s.RequiredTotal > 0 {
			s.CompletionRate = roundRate(float64(s.CompletedTotal) / float64(s.RequiredTotal) * 100)
		}
		summaries = append(summaries, *s)
	}
	return summaries
}

func globalSummary(records []model.CompletionRecord) model.CompletionSummary {
	g := model.CompletionSummary{Key: "global"}
	for _, rec := range records {
		g.Assignments++
		g.RequiredTotal += rec.RequiredCount
		g.CompletedTotal += rec.CompletedCount
	}
	if g.RequiredTotal > 0 {
		g.CompletionRate = roundRate(float64(g.CompletedTotal) / float64(g.RequiredTotal) * 100)
	}
	return g
}

// uniqueStoreIDs returns the distinct store IDs of the assignment list in
// first-seen order.
func uniqueStoreIDs(assignments []model.DisplayAssignment) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, a := range assignments {
		if seen[a.StoreID] {
			continue
		}
		seen[a.StoreID] = true
		ids = append(ids, a.StoreID)
	}
	return ids
}

// sortByRate orders records by completion rate descending. The sort is
// stable: ties keep their input order so reruns are byte-identical.
func sortByRate(records []model.CompletionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CompletionRate > records[j].CompletionRate
	})
}

func sortSummaries(summaries []model.CompletionSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CompletionRate > summaries[j].CompletionRate
	})
}

// roundRate rounds to one decimal place.
func roundRate(rate float64) float64 {
	return math.Round(rate*10) / 10
}
