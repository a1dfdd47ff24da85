package service

import (
	"context"

	"github.com/Alpha-Sight/propellantBE/internal/model"
)

// CredentialVerifier checks the caller's blockchain credentials. The mock and XION
// implementations are selected once at startup.
type CredentialVerifier interface {
	Verify(ctx context.Context, creds model.Credentials) (model.Identity, error)
}

// CreditLedger debits one usage credit for a verified identity. A ledger that answers
// but refuses the deduction returns a receipt with Success=false and a nil error.
type CreditLedger interface {
	Deduct(ctx context.Context, identity model.Identity) (model.CreditReceipt, error)
}
