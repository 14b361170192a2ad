package recon

import "github.com/sells-group/posm-recon/internal/model"

// ValidSubmission reports whether a survey submission carries enough to
// contribute evidence: at least one identifying label, at least one model
// response, and at least one POSM selection somewhere. Corrupt or empty
// submissions are excluded from completion accounting entirely.
func ValidSubmission(s model.SurveySubmission) bool {
	if s.LeaderLabel == "" && s.ShopNameLabel == "" {
		return false
	}
	if len(s.ModelResponses) == 0 {
		return false
	}
	return s.SelectionCount() > 0
}

// ValidAssignment reports whether a display assignment names both a store
// and a model. Records failing this are skipped and counted.
func ValidAssignment(a model.DisplayAssignment) bool {
	return a.StoreID != "" && a.Model != ""
}
