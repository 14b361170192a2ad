// Package resolve decides whether a free-text survey submission refers to the
// same real-world store as a catalog record, and whether a submitted model
// name refers to a catalog model. Identity resolution runs as an ordered
// cascade of methods, strictly highest-precision first; the first method
// whose confidence clears the global threshold wins and no scores are ever
// combined across methods.
package resolve

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/sells-group/posm-recon/internal/model"
	"github.com/sells-group/posm-recon/internal/normalize"
)

// Config carries the empirically tuned matching thresholds. These are
// heuristics, not derived values; they live in configuration so deployments
// with dirtier catalogs can retune them.
type Config struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	PartialOverlap      float64 `mapstructure:"partial_overlap"`
	MinSharedTokens     int     `mapstructure:"min_shared_tokens"`
	MaxTokenCountDiff   int     `mapstructure:"max_token_count_diff"`
	ModelJaccard        float64 `mapstructure:"model_jaccard"`
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.85,
		PartialOverlap:      0.85,
		MinSharedTokens:     3,
		MaxTokenCountDiff:   1,
		ModelJaccard:        0.80,
	}
}

// Resolution is the outcome of one submission-vs-candidate identity check.
type Resolution struct {
	Accepted   bool    `json:"accepted"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// pair holds the pre-normalized views of one submission/candidate pairing so
// each cascade method works from the same canonical strings.
type pair struct {
	leader     string   // normalized submission leader label
	shop       string   // normalized submission shop-name label
	shopTokens []string // discriminative tokens of shop
	candID     string   // normalized candidate store ID
	candName   string   // normalized catalog store name
	nameTokens []string // discriminative tokens of candName
}

// method is one tier of the identity cascade.
type method interface {
	name() string
	// evaluate reports whether the method's structural criteria hold and, if
	// so, the confidence it assigns. Threshold acceptance is the resolver's
	// call, not the method's.
	evaluate(p pair) (float64, bool)
}

// Resolver evaluates the identity cascade against a store catalog.
type Resolver struct {
	cfg     Config
	cascade []method
}

// NewResolver builds a resolver with the standard five-tier cascade.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{
		cfg: cfg,
		cascade: []method{
			exactNameMatch{},
			exactIDMatch{},
			strictPartialMatch{minOverlap: cfg.PartialOverlap, minShared: cfg.MinSharedTokens, maxCountDiff: cfg.MaxTokenCountDiff},
			idInNameMatch{},
			labelInNameMatch{},
		},
	}
}

// Resolve runs the cascade for one submission against one candidate store.
// Rejection carries confidence 0 regardless of any sub-threshold scores seen
// along the way.
func (r *Resolver) Resolve(leaderLabel, shopNameLabel, candidateStoreID string, catalog map[string]model.Store) Resolution {
	cand, ok := catalog[candidateStoreID]
	if !ok {
		return Resolution{}
	}

	p := pair{
		leader: normalize.Label(leaderLabel),
		shop:   normalize.Label(shopNameLabel),
		candID: normalize.Label(candidateStoreID),
	}
	p.shopTokens = normalize.Tokenize(p.shop)
	p.candName = normalize.Label(cand.StoreName)
	p.nameTokens = normalize.Tokenize(p.candName)

	if p.leader == "" && p.shop == "" {
		return Resolution{}
	}

	for _, m := range r.cascade {
		conf, ok := m.evaluate(p)
		if !ok {
			continue
		}
		if conf < r.cfg.ConfidenceThreshold {
			zap.L().Debug("resolve: sub-threshold match skipped",
				zap.String("method", m.name()),
				zap.Float64("confidence", conf),
				zap.String("store_id", candidateStoreID),
			)
			continue
		}
		return Resolution{Accepted: true, Confidence: conf, Method: m.name()}
	}
	return Resolution{}
}

// BuildCatalog indexes store records by ID for resolver lookups. Records
// without an ID are dropped.
func BuildCatalog(stores []model.Store) map[string]model.Store {
	catalog := make(map[string]model.Store, len(stores))
	for _, s := range stores {
		if s.StoreID == "" {
			continue
		}
		catalog[s.StoreID] = s
	}
	return catalog
}

var trailingDigit = regexp.MustCompile(`\d$`)

// wholeWord reports whether needle occurs in haystack on word boundaries.
func wholeWord(haystack, needle string) bool {
	if needle == "" || haystack == "" {
		return false
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(needle) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(haystack)
}
