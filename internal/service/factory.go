package service

import (
	"github.com/Alpha-Sight/propellantBE/common/llm"
	"github.com/Alpha-Sight/propellantBE/internal/queue"
)

type ServicesConfig struct {
	LLM      llm.Client
	Verifier CredentialVerifier
	Ledger   CreditLedger
	Usage    queue.Producer
	Limits   ValidationLimits
}

type Services struct {
	llm      llm.Client
	verifier CredentialVerifier
	ledger   CreditLedger
	usage    queue.Producer
	limits   ValidationLimits
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		llm:      cfg.LLM,
		verifier: cfg.Verifier,
		ledger:   cfg.Ledger,
		usage:    cfg.Usage,
		limits:   cfg.Limits,
	}
}

func (s *Services) Rewrite() RewriteService {
	return NewRewriteService(s.llm)
}

func (s *Services) CVAnalysis() CVAnalysisService {
	return NewCVAnalysisService(CVAnalysisDeps{
		Validator: NewValidator(s.limits),
		Verifier:  s.verifier,
		Rewriter:  s.Rewrite(),
		Ledger:    s.ledger,
		Rules:     NewStaticRulesProvider(nil),
		Usage:     s.usage,
	})
}
