package model

import "time"

// SurveySubmission is one field-survey report. Store identity is free text:
// surveyors type a shop name plus a secondary "leader" label, with no foreign
// key into the store catalog. Resolution back to a StoreID is the engine's job.
type SurveySubmission struct {
	ID             string          `json:"id" yaml:"id"`
	LeaderLabel    string          `json:"leader_label" yaml:"leader_label"`
	ShopNameLabel  string          `json:"shop_name_label" yaml:"shop_name_label"`
	SubmittedAt    time.Time       `json:"submitted_at" yaml:"submitted_at"`
	ModelResponses []ModelResponse `json:"model_responses" yaml:"model_responses"`
}

// ModelResponse records which POSM items a surveyor confirmed for one model.
type ModelResponse struct {
	Model          string          `json:"model" yaml:"model"`
	POSMSelections []POSMSelection `json:"posm_selections" yaml:"posm_selections"`
}

// POSMSelection is a single checkbox from the survey form.
type POSMSelection struct {
	POSMCode string `json:"posm_code" yaml:"posm_code"`
	Selected bool   `json:"selected" yaml:"selected"`
}

// SelectionCount returns the total number of POSM selections across all
// model responses, selected or not. Zero means the submission carries no
// usable evidence.
func (s SurveySubmission) SelectionCount() int {
	n := 0
	for _, mr := range s.ModelResponses {
		n += len(mr.POSMSelections)
	}
	return n
}
