package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Alpha-Sight/propellantBE/internal/model"
)

const (
	editCVToolName        = "provide_edited_cv"
	editCVToolDescription = "Enhance a CV/resume to better match a job description"
)

const personaPreamble = "You are a Certified Professional Resume Writer, with over 20 years of experience in tailoring CVs " +
	"for job seekers in various industries."

const rewriteInstructions = "Please enhance the EXISTING RESUME content to better align with the JOB DESCRIPTION. " +
	"Do not add new job titles, roles, or duties that do not exist in the original resume. " +
	"Your task is to improve the language, add relevant keywords, and adjust the format of the work experience and skills " +
	"to better reflect the job description, while keeping the original content intact."

const toolInstructions = "Use the " + editCVToolName + " function to return your enhanced resume in a structured format with sections for " +
	"work experience (with company name, job title, duration, and duties), skills, and a professional summary."

// BuildPrompt renders the single user message sent to the LLM. Sections appear in a
// fixed order and map entries are rendered in ascending key order, so the same input
// always produces the same prompt.
func BuildPrompt(req model.CVAnalysisRequest, rules model.Rules) string {
	var b strings.Builder

	b.WriteString(personaPreamble)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "JOB DESCRIPTION:\n%s\n\n", req.JobDescription)
	fmt.Fprintf(&b, "CANDIDATE SKILLS:\n%s\n\n", renderEntries(req.Skills))
	fmt.Fprintf(&b, "EXISTING RESUME:\n%s\n\n", req.ResumeText)
	fmt.Fprintf(&b, "INSTRUCTIONS:\n%s\n\n", rewriteInstructions)
	fmt.Fprintf(&b, "RULES:\n%s\n\n", renderEntries(rules))
	b.WriteString(toolInstructions)

	return b.String()
}

func renderEntries[M ~map[string]string](m M) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("- %s: %s", k, m[k])
	}
	return strings.Join(lines, "\n")
}
