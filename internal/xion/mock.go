package xion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Alpha-Sight/propellantBE/internal/model"
)

// MockVerifier accepts any non-empty token. It is selected with CREDENTIAL_MODE=mock.
type MockVerifier struct{}

func NewMockVerifier() *MockVerifier {
	return &MockVerifier{}
}

func (MockVerifier) Verify(ctx context.Context, creds model.Credentials) (model.Identity, error) {
	token := strings.TrimSpace(creds.Token)
	if token == "" {
		return model.Identity{}, ErrTokenFormat
	}

	address := strings.TrimSpace(creds.UserAddress)
	if address == "" {
		prefix, _, _ := strings.Cut(token, ":")
		address = "mock-" + truncateRunes(prefix, 12)
	}

	slog.DebugContext(ctx, "mock verifier accepted token", "user_address", address)
	return model.Identity{Address: address, Token: creds.Token}, nil
}

// MockLedger always succeeds. The remaining balance counts down from the starting
// value and never goes below zero.
type MockLedger struct {
	remaining atomic.Int64
}

func NewMockLedger(startingCredits int64) *MockLedger {
	l := &MockLedger{}
	l.remaining.Store(startingCredits)
	return l
}

func (l *MockLedger) Deduct(ctx context.Context, identity model.Identity) (model.CreditReceipt, error) {
	remaining := l.remaining.Add(-1)
	if remaining < 0 {
		l.remaining.Store(0)
		remaining = 0
	}

	receipt := model.CreditReceipt{
		Success:          true,
		TxHash:           fmt.Sprintf("MOCK-%s", strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))),
		CreditsRemaining: remaining,
	}
	slog.DebugContext(ctx, "mock ledger deducted credit", "user_address", identity.Address, "tx_hash", receipt.TxHash)
	return receipt, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
