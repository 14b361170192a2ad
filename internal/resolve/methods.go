package resolve

import "strings"

// exactNameMatch: the catalog store name and the submission shop label are
// identical after normalization.
type exactNameMatch struct{}

func (exactNameMatch) name() string { return "exact_name" }

func (exactNameMatch) evaluate(p pair) (float64, bool) {
	if p.candName != "" && p.candName == p.shop {
		return 1.0, true
	}
	return 0, false
}

// exactIDMatch: legacy submissions carry the store key in the leader label.
type exactIDMatch struct{}

func (exactIDMatch) name() string { return "exact_id" }

func (exactIDMatch) evaluate(p pair) (float64, bool) {
	if p.candID != "" && p.candID == p.leader {
		return 1.0, true
	}
	return 0, false
}

// strictPartialMatch accepts near-identical multi-token names. All of the
// following must hold: both labels carry at least two discriminative tokens,
// token Jaccard overlap >= minOverlap with at least minShared shared tokens,
// token counts within maxCountDiff, and one normalized string contains the
// other. Confidence scales linearly from 0.75 at the overlap floor to 0.90
// at full overlap, so weak partials stay below the global accept threshold.
//
// Numbered-store guard: when either label ends in a digit the strings must
// be exactly equal. Sibling branches of a chain differ only by a numeric
// suffix and containment would otherwise merge "branch 2" into "branch 20".
type strictPartialMatch struct {
	minOverlap   float64
	minShared    int
	maxCountDiff int
}

func (strictPartialMatch) name() string { return "strict_partial" }

func (m strictPartialMatch) evaluate(p pair) (float64, bool) {
	if len(p.shopTokens) < 2 || len(p.nameTokens) < 2 {
		return 0, false
	}

	if trailingDigit.MatchString(p.shop) || trailingDigit.MatchString(p.candName) {
		if p.shop == p.candName {
			return 0.90, true
		}
		return 0, false
	}

	shared := 0
	nameSet := make(map[string]bool, len(p.nameTokens))
	for _, tok := range p.nameTokens {
		nameSet[tok] = true
	}
	for _, tok := range p.shopTokens {
		if nameSet[tok] {
			shared++
		}
	}
	union := len(p.shopTokens) + len(p.nameTokens) - shared
	if union == 0 {
		return 0, false
	}
	overlap := float64(shared) / float64(union)

	if overlap < m.minOverlap || shared < m.minShared {
		return 0, false
	}
	if diff := len(p.shopTokens) - len(p.nameTokens); diff > m.maxCountDiff || -diff > m.maxCountDiff {
		return 0, false
	}
	if !strings.Contains(p.shop, p.candName) && !strings.Contains(p.candName, p.shop) {
		return 0, false
	}

	conf := 0.75
	if m.minOverlap < 1 {
		conf += 0.15 * (overlap - m.minOverlap) / (1 - m.minOverlap)
	} else {
		conf = 0.90
	}
	return conf, true
}

// idInNameMatch: the catalog identifier shows up as a whole word inside the
// shop label. Short IDs are too collision-prone to trust, and the label must
// carry more than the bare ID.
type idInNameMatch struct{}

func (idInNameMatch) name() string { return "id_in_name" }

func (idInNameMatch) evaluate(p pair) (float64, bool) {
	if len(p.candID) < 4 || len(p.shop) <= len(p.candID) {
		return 0, false
	}
	if wholeWord(p.shop, p.candID) {
		return 0.88, true
	}
	return 0, false
}

// labelInNameMatch: symmetric to idInNameMatch with the submission's leader
// label as the needle and the catalog store name as the haystack.
type labelInNameMatch struct{}

func (labelInNameMatch) name() string { return "label_in_name" }

func (labelInNameMatch) evaluate(p pair) (float64, bool) {
	if len(p.leader) < 4 || len(p.candName) <= len(p.leader) {
		return 0, false
	}
	if wholeWord(p.candName, p.leader) {
		return 0.87, true
	}
	return 0, false
}
