package resolve

import (
	"strings"

	"github.com/sells-group/posm-recon/internal/normalize"
)

// Matcher decides whether a submitted model name and a catalog model name
// refer to the same model. Free-text submissions carry inconsistent spacing
// and punctuation relative to the catalog.
type Matcher struct {
	jaccard float64
}

// NewMatcher builds a model matcher with the given token-Jaccard floor.
func NewMatcher(jaccard float64) *Matcher {
	return &Matcher{jaccard: jaccard}
}

// Matches accepts when the stripped tokens are equal, one contains the other,
// or the space-separated tokens of the normalized (un-stripped) labels reach
// the Jaccard floor.
func (m *Matcher) Matches(displayModel, submissionModel string) bool {
	a := normalize.ModelToken(displayModel)
	b := normalize.ModelToken(submissionModel)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return labelJaccard(displayModel, submissionModel) >= m.jaccard
}

// labelJaccard computes token Jaccard over the whitespace-split normalized
// labels. Model tokens are often short ("55", "s3") so no minimum token
// length applies here, unlike store-name tokenization.
func labelJaccard(a, b string) float64 {
	af := strings.Fields(normalize.Label(a))
	bf := strings.Fields(normalize.Label(b))
	if len(af) == 0 || len(bf) == 0 {
		return 0
	}
	set := make(map[string]bool, len(af))
	for _, tok := range af {
		set[tok] = true
	}
	bSet := make(map[string]bool, len(bf))
	shared := 0
	for _, tok := range bf {
		if bSet[tok] {
			continue
		}
		bSet[tok] = true
		if set[tok] {
			shared++
		}
	}
	union := len(set) + len(bSet) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
