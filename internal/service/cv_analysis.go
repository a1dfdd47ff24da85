package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/Alpha-Sight/propellantBE/common/id"
	"github.com/Alpha-Sight/propellantBE/common/logger"
	"github.com/Alpha-Sight/propellantBE/internal/model"
	"github.com/Alpha-Sight/propellantBE/internal/queue"
)

// CVAnalysisService runs the request pipeline: validate, verify credentials, rewrite,
// deduct one credit. Each step short-circuits on failure.
type CVAnalysisService interface {
	Analyze(ctx context.Context, req model.CVAnalysisRequest) (*model.CVAnalysisResult, error)
}

type CVAnalysisDeps struct {
	Validator Validator
	Verifier  CredentialVerifier
	Rewriter  RewriteService
	Ledger    CreditLedger
	Rules     RulesProvider
	Usage     queue.Producer // Optional
}

type cvAnalysisService struct {
	validator Validator
	verifier  CredentialVerifier
	rewriter  RewriteService
	ledger    CreditLedger
	rules     RulesProvider
	usage     queue.Producer
}

func NewCVAnalysisService(deps CVAnalysisDeps) CVAnalysisService {
	usage := deps.Usage
	if usage == nil {
		usage = queue.NewNoopProducer()
	}
	rules := deps.Rules
	if rules == nil {
		rules = NewStaticRulesProvider(nil)
	}
	return &cvAnalysisService{
		validator: deps.Validator,
		verifier:  deps.Verifier,
		rewriter:  deps.Rewriter,
		ledger:    deps.Ledger,
		rules:     rules,
		usage:     usage,
	}
}

func (s *cvAnalysisService) Analyze(ctx context.Context, req model.CVAnalysisRequest) (*model.CVAnalysisResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "propellant.service.cv_analysis"})

	if err := s.validator.Validate(req); err != nil {
		slog.InfoContext(ctx, "cv analysis rejected", "error", err)
		return nil, err
	}

	identity, err := s.verifier.Verify(ctx, req.Credentials)
	if err != nil {
		slog.WarnContext(ctx, "credential verification failed", "error", err)
		if errors.Is(err, ErrAuth) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	analysisID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		AnalysisID:  logger.Ptr(analysisID),
		UserAddress: logger.Ptr(identity.Address),
	})

	rules := s.rules.Rules().Merge(req.Rules)

	rewrite, err := s.rewriter.Rewrite(ctx, req, rules)
	if err != nil {
		slog.ErrorContext(ctx, "cv rewrite failed", "error", err)
		return nil, err
	}

	receipt, err := s.ledger.Deduct(ctx, identity)
	if err != nil {
		slog.ErrorContext(ctx, "credit ledger unavailable", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCreditUnavailable, err)
	}
	if !receipt.Success {
		reason := receipt.Error
		if reason == "" {
			reason = "credit deduction was rejected"
		}
		slog.WarnContext(ctx, "credit deduction rejected", "reason", reason)
		return nil, fmt.Errorf("%w: %s", ErrCredit, reason)
	}

	slog.InfoContext(ctx, "cv analysis completed",
		"tx_hash", receipt.TxHash,
		"credits_remaining", receipt.CreditsRemaining)

	s.publishUsage(ctx, analysisID, identity, receipt, rewrite)

	return &model.CVAnalysisResult{
		AnalysisID: analysisID,
		Content:    rewrite.Content,
		Receipt:    receipt,
	}, nil
}

// publishUsage never fails the request: the credit has already been spent.
func (s *cvAnalysisService) publishUsage(ctx context.Context, analysisID int64, identity model.Identity, receipt model.CreditReceipt, rewrite *model.RewriteResult) {
	event := queue.UsageEvent{
		AnalysisID:       analysisID,
		UserAddress:      identity.Address,
		TxHash:           receipt.TxHash,
		CreditsRemaining: receipt.CreditsRemaining,
		Model:            rewrite.Model,
		PromptTokens:     rewrite.PromptTokens,
		CompletionTokens: rewrite.CompletionTokens,
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		event.TraceID = logger.Ptr(spanCtx.TraceID().String())
	}

	if err := s.usage.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish usage event", "error", err)
	}
}
