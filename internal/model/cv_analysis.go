package model

import "encoding/json"

// CVAnalysisRequest is the request-scoped input of a CV rewrite. It is never mutated
// after it has been received.
type CVAnalysisRequest struct {
	ResumeText     string
	JobDescription string
	Skills         map[string]string
	Rules          map[string]string // Optional per-request rules, overlaid on the defaults
	Credentials    Credentials
}

// Rules maps a rule name to its description.
type Rules map[string]string

// Merge returns a copy of r overlaid with overrides.
func (r Rules) Merge(overrides map[string]string) Rules {
	out := make(Rules, len(r)+len(overrides))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// EditedCV is the structure the model is asked to return through the
// provide_edited_cv tool.
type EditedCV struct {
	WorkExperience      []WorkExperience `json:"work_experience" jsonschema:"description=Work history rewritten to match the job description"`
	Skills              []string         `json:"skills"`
	ProfessionalSummary string           `json:"professional_summary"`
}

type WorkExperience struct {
	CompanyName string   `json:"company_name"`
	JobTitle    string   `json:"job_title"`
	Duration    string   `json:"duration"`
	Duties      []string `json:"duties"`
}

// RewriteResult is the outcome of a single LLM call.
type RewriteResult struct {
	// Content is the provider's structured answer, passed through without
	// first-party validation of its shape.
	Content          json.RawMessage
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// CVAnalysisResult is what the pipeline hands back to the transport layer.
type CVAnalysisResult struct {
	AnalysisID int64
	Content    json.RawMessage
	Receipt    CreditReceipt
}
