package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Alpha-Sight/propellantBE/internal/model"
)

type Validator interface {
	Validate(req model.CVAnalysisRequest) error
}

type ValidationLimits struct {
	MaxResumeChars         int
	MaxJobDescriptionChars int
	MaxSkills              int
	MaxRules               int
}

func DefaultValidationLimits() ValidationLimits {
	return ValidationLimits{
		MaxResumeChars:         100_000,
		MaxJobDescriptionChars: 20_000,
		MaxSkills:              200,
		MaxRules:               50,
	}
}

type validator struct {
	limits ValidationLimits
}

func NewValidator(limits ValidationLimits) Validator {
	return &validator{limits: limits}
}

// Validate checks the structural shape of a request and reports every problem at once.
func (v *validator) Validate(req model.CVAnalysisRequest) error {
	var problems []string

	if strings.TrimSpace(req.ResumeText) == "" {
		problems = append(problems, "resume_text is required")
	} else if utf8.RuneCountInString(req.ResumeText) > v.limits.MaxResumeChars {
		problems = append(problems, fmt.Sprintf("resume_text exceeds %d characters", v.limits.MaxResumeChars))
	}

	if strings.TrimSpace(req.JobDescription) == "" {
		problems = append(problems, "job_description is required")
	} else if utf8.RuneCountInString(req.JobDescription) > v.limits.MaxJobDescriptionChars {
		problems = append(problems, fmt.Sprintf("job_description exceeds %d characters", v.limits.MaxJobDescriptionChars))
	}

	switch {
	case len(req.Skills) == 0:
		problems = append(problems, "skills must contain at least one entry")
	case len(req.Skills) > v.limits.MaxSkills:
		problems = append(problems, fmt.Sprintf("skills exceeds %d entries", v.limits.MaxSkills))
	default:
		problems = append(problems, blankEntries("skills", req.Skills)...)
	}

	if len(req.Rules) > v.limits.MaxRules {
		problems = append(problems, fmt.Sprintf("rules exceeds %d entries", v.limits.MaxRules))
	} else {
		problems = append(problems, blankEntries("rules", req.Rules)...)
	}

	if strings.TrimSpace(req.Credentials.Token) == "" {
		problems = append(problems, "auth_token is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// blankEntries reports blank names and values once each, independent of map order.
func blankEntries(field string, m map[string]string) []string {
	var blankName, blankValue bool
	for k, val := range m {
		blankName = blankName || strings.TrimSpace(k) == ""
		blankValue = blankValue || strings.TrimSpace(val) == ""
	}

	var problems []string
	if blankName {
		problems = append(problems, field+" contains an empty name")
	}
	if blankValue {
		problems = append(problems, field+" contains an empty value")
	}
	return problems
}
