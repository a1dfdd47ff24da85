package dto

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/Alpha-Sight/propellantBE/internal/model"
)

// CVAnalysisRequest carries no binding tags: missing fields are reported by the
// service validator as 422, only undecodable bodies are 400.
type CVAnalysisRequest struct {
	ResumeText     string            `json:"resume_text"`
	JobDescription string            `json:"job_description"`
	Skills         map[string]string `json:"skills"`
	Rules          map[string]string `json:"rules,omitempty"`
	AuthToken      string            `json:"auth_token"`
	UserAddress    string            `json:"user_address,omitempty"`
}

func (r CVAnalysisRequest) ToModel() model.CVAnalysisRequest {
	return model.CVAnalysisRequest{
		ResumeText:     r.ResumeText,
		JobDescription: r.JobDescription,
		Skills:         r.Skills,
		Rules:          r.Rules,
		Credentials: model.Credentials{
			Token:       r.AuthToken,
			UserAddress: r.UserAddress,
		},
	}
}

// CVUploadForm is the multipart variant. Skills and rules arrive as JSON objects
// encoded in form fields.
type CVUploadForm struct {
	Resume         *multipart.FileHeader `form:"resume"`
	JobDescription string                `form:"job_description"`
	Skills         string                `form:"skills"`
	Rules          string                `form:"rules"`
	AuthToken      string                `form:"auth_token"`
	UserAddress    string                `form:"user_address"`
}

// ToModel decodes the JSON-encoded fields and combines them with the extracted resume text.
func (f CVUploadForm) ToModel(resumeText string) (model.CVAnalysisRequest, error) {
	skills, err := parseStringMap("skills", f.Skills)
	if err != nil {
		return model.CVAnalysisRequest{}, err
	}
	rules, err := parseStringMap("rules", f.Rules)
	if err != nil {
		return model.CVAnalysisRequest{}, err
	}

	return model.CVAnalysisRequest{
		ResumeText:     resumeText,
		JobDescription: f.JobDescription,
		Skills:         skills,
		Rules:          rules,
		Credentials: model.Credentials{
			Token:       f.AuthToken,
			UserAddress: f.UserAddress,
		},
	}, nil
}

func parseStringMap(field, raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%s must be a JSON object of strings: %w", field, err)
	}
	return out, nil
}
