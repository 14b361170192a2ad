package recon

import (
	"go.uber.org/zap"

	"github.com/sells-group/posm-recon/internal/model"
	"github.com/sells-group/posm-recon/internal/normalize"
)

// RequirementIndex reduces the POSM requirement catalog to a distinct-code
// count per model. Keys are normalized model tokens so catalog spelling
// variants ("Model-X 55" vs "modelx55") collapse onto one requirement set.
type RequirementIndex struct {
	codes   map[string]map[string]bool
	skipped int
}

// NewRequirementIndex builds the index. Requirement rows missing a model or
// a POSM code are skipped and counted, never fatal.
func NewRequirementIndex(reqs []model.POSMRequirement) *RequirementIndex {
	ix := &RequirementIndex{codes: make(map[string]map[string]bool)}
	for _, req := range reqs {
		key := normalize.ModelToken(req.Model)
		if key == "" || req.POSMCode == "" {
			ix.skipped++
			continue
		}
		set, ok := ix.codes[key]
		if !ok {
			set = make(map[string]bool)
			ix.codes[key] = set
		}
		set[req.POSMCode] = true
	}
	if ix.skipped > 0 {
		zap.L().Warn("recon: requirement rows skipped",
			zap.Int("skipped", ix.skipped),
			zap.Int("models_indexed", len(ix.codes)),
		)
	}
	return ix
}

// RequiredCount returns the number of distinct POSM codes the model needs,
// or 0 when the model has no requirement entries.
func (ix *RequirementIndex) RequiredCount(modelName string) int {
	return len(ix.codes[normalize.ModelToken(modelName)])
}

// Codes returns the required code set for a model. Callers must not mutate it.
func (ix *RequirementIndex) Codes(modelName string) map[string]bool {
	return ix.codes[normalize.ModelToken(modelName)]
}

// Skipped returns the number of malformed requirement rows dropped at build.
func (ix *RequirementIndex) Skipped() int { return ix.skipped }

// Models returns the number of models carrying at least one requirement.
func (ix *RequirementIndex) Models() int { return len(ix.codes) }
