package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("credential verification failed")
	ErrUpstream   = errors.New("llm provider call failed")
	ErrCredit     = errors.New("credit deduction failed")

	// ErrNetwork is an ErrUpstream where the provider was never reached.
	ErrNetwork = fmt.Errorf("%w: provider unreachable", ErrUpstream)

	// ErrCreditUnavailable wraps ErrCredit for ledger transport failures, as opposed to
	// the ledger answering success=false.
	ErrCreditUnavailable = fmt.Errorf("%w: ledger unavailable", ErrCredit)
)
