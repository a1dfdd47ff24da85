package xion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alpha-Sight/propellantBE/common/logger"
	"github.com/Alpha-Sight/propellantBE/internal/model"
)

var (
	ErrAddressRequired = errors.New("user_address is required")
	ErrTokenFormat     = errors.New("invalid token format")
	ErrNoActiveToken   = errors.New("user has no active token")
	ErrTokenMismatch   = errors.New("token mismatch")
)

type tokenQuerier interface {
	QueryUserToken(ctx context.Context, address string) (UserToken, error)
}

// Verifier checks a presented token against the one stored on-chain for the address.
type Verifier struct {
	client tokenQuerier
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, creds model.Credentials) (model.Identity, error) {
	sc := logger.StartSpan(ctx, "xion.verify")
	defer sc.End()
	ctx = logger.WithLogFields(sc.Context(), logger.LogFields{Component: "propellant.xion.verifier"})

	address := strings.TrimSpace(creds.UserAddress)
	if address == "" {
		return model.Identity{}, ErrAddressRequired
	}

	presented, err := canonicalToken(creds.Token)
	if err != nil {
		slog.WarnContext(ctx, "rejected token", "token", logger.Truncate(creds.Token, 20))
		return model.Identity{}, err
	}

	stored, err := v.client.QueryUserToken(ctx, address)
	if err != nil {
		sc.RecordError(err)
		return model.Identity{}, fmt.Errorf("query user token: %w", err)
	}

	if !stored.HasActiveToken || stored.Token == "" {
		return model.Identity{}, ErrNoActiveToken
	}
	if !tokensMatch(stored.Token, presented) {
		return model.Identity{}, ErrTokenMismatch
	}

	slog.InfoContext(ctx, "token verified", "user_address", address)
	return model.Identity{Address: address, Token: creds.Token}, nil
}

// canonicalToken accepts encrypted:timestamp:uuid tokens as they are and reduces the
// older five-or-more part format to its first three parts.
func canonicalToken(token string) (string, error) {
	parts := strings.Split(strings.TrimSpace(token), ":")
	switch {
	case len(parts) == 3:
		return strings.Join(parts, ":"), nil
	case len(parts) >= 5:
		return strings.Join(parts[:3], ":"), nil
	default:
		return "", fmt.Errorf("%w: expected 3 or at least 5 colon-separated parts, got %d", ErrTokenFormat, len(parts))
	}
}

// tokensMatch accepts an exact match or a match on the encrypted segment alone.
func tokensMatch(stored, presented string) bool {
	if stored == presented {
		return true
	}
	storedHead, _, _ := strings.Cut(stored, ":")
	presentedHead, _, _ := strings.Cut(presented, ":")
	return storedHead != "" && storedHead == presentedHead
}
