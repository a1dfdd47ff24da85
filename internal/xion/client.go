package xion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Alpha-Sight/propellantBE/common/logger"
)

// ErrQuery is returned when the chain's REST endpoint answers with a non-success status.
var ErrQuery = errors.New("xion contract query failed")

type ClientConfig struct {
	RESTURL         string
	ContractAddress string
	Timeout         time.Duration
	HTTPClient      *http.Client // Optional
}

// Client runs CosmWasm smart queries against a XION REST (LCD) endpoint.
type Client struct {
	baseURL  string
	contract string
	httpc    *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	httpc := cfg.HTTPClient
	if httpc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:  normalizeRESTURL(cfg.RESTURL),
		contract: cfg.ContractAddress,
		httpc:    httpc,
	}
}

// UserToken is the contract's answer to get_user_token.
type UserToken struct {
	HasActiveToken bool   `json:"has_active_token"`
	Token          string `json:"token"`
}

func (c *Client) QueryUserToken(ctx context.Context, address string) (UserToken, error) {
	query := map[string]any{
		"get_user_token": map[string]string{"address": address},
	}

	var out UserToken
	if err := c.smartQuery(ctx, query, &out); err != nil {
		return UserToken{}, err
	}
	return out, nil
}

func (c *Client) smartQuery(ctx context.Context, query any, out any) error {
	raw, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	endpoint := fmt.Sprintf("%s/cosmwasm/wasm/v1/contract/%s/smart/%s", c.baseURL, c.contract, encoded)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrQuery, resp.StatusCode, logger.Truncate(strings.TrimSpace(string(body)), 200))
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrQuery, err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("%w: response has no data", ErrQuery)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %w", ErrQuery, err)
	}
	return nil
}

// normalizeRESTURL accepts the cosmpy-style "rest+https://..." form as well as a plain URL.
func normalizeRESTURL(u string) string {
	u = strings.TrimPrefix(strings.TrimSpace(u), "rest+")
	return strings.TrimRight(u, "/")
}
