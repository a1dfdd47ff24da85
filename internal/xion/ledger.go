package xion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Alpha-Sight/propellantBE/common/logger"
	"github.com/Alpha-Sight/propellantBE/internal/model"
)

// ErrRelayer is returned when the signing relayer fails without a usable answer.
var ErrRelayer = errors.New("xion relayer request failed")

type RelayerConfig struct {
	URL             string
	APIKey          string
	ContractAddress string
	Timeout         time.Duration
	HTTPClient      *http.Client // Optional
}

// RelayerLedger deducts credits by asking a signing relayer, which holds the contract
// admin wallet, to execute deduct_cv_credit.
type RelayerLedger struct {
	url      string
	apiKey   string
	contract string
	httpc    *http.Client
}

func NewRelayerLedger(cfg RelayerConfig) *RelayerLedger {
	httpc := cfg.HTTPClient
	if httpc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpc = &http.Client{Timeout: timeout}
	}
	return &RelayerLedger{
		url:      strings.TrimRight(cfg.URL, "/") + "/execute",
		apiKey:   cfg.APIKey,
		contract: cfg.ContractAddress,
		httpc:    httpc,
	}
}

type executeRequest struct {
	Contract string         `json:"contract"`
	Msg      map[string]any `json:"msg"`
}

type executeResponse struct {
	Success          bool   `json:"success"`
	TxHash           string `json:"tx_hash"`
	CreditsRemaining int64  `json:"credits_remaining"`
	Error            string `json:"error"`
}

// Deduct returns a receipt with Success=false when the relayer reports a failed
// execution, and an error only when no answer could be obtained.
func (l *RelayerLedger) Deduct(ctx context.Context, identity model.Identity) (model.CreditReceipt, error) {
	sc := logger.StartSpan(ctx, "xion.deduct_cv_credit")
	defer sc.End()
	ctx = logger.WithLogFields(sc.Context(), logger.LogFields{Component: "propellant.xion.ledger"})

	body, err := json.Marshal(executeRequest{
		Contract: l.contract,
		Msg: map[string]any{
			"deduct_cv_credit": map[string]string{
				"user_address": identity.Address,
				"secure_token": identity.Token,
			},
		},
	})
	if err != nil {
		return model.CreditReceipt{}, fmt.Errorf("encode execute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(body))
	if err != nil {
		return model.CreditReceipt{}, fmt.Errorf("build execute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if l.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+l.apiKey)
	}

	resp, err := l.httpc.Do(req)
	if err != nil {
		sc.RecordError(err)
		return model.CreditReceipt{}, fmt.Errorf("%w: %w", ErrRelayer, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return model.CreditReceipt{}, fmt.Errorf("%w: read response: %w", ErrRelayer, err)
	}

	var out executeResponse
	decodeErr := json.Unmarshal(raw, &out)

	switch {
	case resp.StatusCode >= 500:
		return model.CreditReceipt{}, fmt.Errorf("%w: status %d: %s", ErrRelayer, resp.StatusCode, logger.Truncate(string(raw), 200))
	case decodeErr != nil:
		return model.CreditReceipt{}, fmt.Errorf("%w: status %d: decode response: %w", ErrRelayer, resp.StatusCode, decodeErr)
	case resp.StatusCode >= 400 && out.Error == "":
		return model.CreditReceipt{}, fmt.Errorf("%w: status %d", ErrRelayer, resp.StatusCode)
	}

	receipt := model.CreditReceipt{
		Success:          out.Success && resp.StatusCode < 300,
		TxHash:           out.TxHash,
		CreditsRemaining: out.CreditsRemaining,
		Error:            out.Error,
	}

	if receipt.Success {
		slog.InfoContext(ctx, "cv credit deducted",
			"tx_hash", receipt.TxHash,
			"credits_remaining", receipt.CreditsRemaining)
	} else {
		slog.WarnContext(ctx, "cv credit deduction refused", "reason", receipt.Error)
	}
	return receipt, nil
}
