package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alpha-Sight/propellantBE/common/llm"
	"github.com/Alpha-Sight/propellantBE/common/logger"
	"github.com/Alpha-Sight/propellantBE/internal/model"
)

// RewriteService turns a validated request and a rule set into the rewritten CV.
type RewriteService interface {
	Rewrite(ctx context.Context, req model.CVAnalysisRequest, rules model.Rules) (*model.RewriteResult, error)
}

type rewriteService struct {
	client llm.Client
	tool   llm.Tool
}

func NewRewriteService(client llm.Client) RewriteService {
	return &rewriteService{
		client: client,
		tool: llm.Tool{
			Name:        editCVToolName,
			Description: editCVToolDescription,
			Parameters:  llm.GenerateSchema[model.EditedCV](),
		},
	}
}

// Rewrite issues exactly one completion request. Provider failures are returned as
// ErrUpstream or ErrNetwork; nothing is retried.
func (s *rewriteService) Rewrite(ctx context.Context, req model.CVAnalysisRequest, rules model.Rules) (*model.RewriteResult, error) {
	sc := logger.StartSpan(ctx, "service.rewrite")
	defer sc.End()
	ctx = logger.WithLogFields(sc.Context(), logger.LogFields{Component: "propellant.service.rewrite"})

	prompt := BuildPrompt(req, rules)

	resp, err := s.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{llm.UserMessage(prompt)},
		Tools:    []llm.Tool{s.tool},
	})
	if err != nil {
		sc.RecordError(err)
		switch {
		case errors.Is(err, llm.ErrUpstream):
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		case errors.Is(err, llm.ErrNetwork):
			return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
		default:
			return nil, fmt.Errorf("rewriting cv: %w", err)
		}
	}

	content, err := extractContent(resp)
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "llm response had no usable content",
			"error", err,
			"finish_reason", resp.FinishReason,
			"content", logger.Truncate(resp.Content, 200))
		return nil, err
	}

	slog.InfoContext(ctx, "cv rewritten",
		"model", s.client.Model(),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens)

	return &model.RewriteResult{
		Content:          content,
		Model:            s.client.Model(),
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
	}, nil
}

// extractContent prefers the provide_edited_cv tool arguments and falls back to the
// message body. Output that decodes into model.EditedCV is re-encoded in normalized
// form; any other JSON is passed through untouched.
func extractContent(resp *llm.Response) (json.RawMessage, error) {
	raw := llm.StripCodeFence(resp.Content)
	if tc, ok := resp.FindToolCall(editCVToolName); ok {
		raw = tc.Arguments
	}

	if raw == "" {
		return nil, fmt.Errorf("%w: empty response", ErrUpstream)
	}
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrUpstream)
	}

	if normalized, ok := normalizeEditedCV([]byte(raw)); ok {
		return normalized, nil
	}
	return json.RawMessage(raw), nil
}

func normalizeEditedCV(raw []byte) (json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var cv model.EditedCV
	if err := dec.Decode(&cv); err != nil {
		return nil, false
	}
	if len(cv.WorkExperience) == 0 && len(cv.Skills) == 0 && cv.ProfessionalSummary == "" {
		return nil, false
	}

	if cv.WorkExperience == nil {
		cv.WorkExperience = []model.WorkExperience{}
	}
	if cv.Skills == nil {
		cv.Skills = []string{}
	}
	for i := range cv.WorkExperience {
		if cv.WorkExperience[i].Duties == nil {
			cv.WorkExperience[i].Duties = []string{}
		}
	}

	out, err := json.Marshal(cv)
	if err != nil {
		return nil, false
	}
	return out, true
}
