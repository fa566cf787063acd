package trade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
)

// HTTPExecutor implements Executor against a trade service HTTP API.
// The service signs and submits swaps on behalf of registered wallets.
type HTTPExecutor struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// ExecutorOption configures HTTPExecutor.
type ExecutorOption func(*HTTPExecutor)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *HTTPExecutor) {
		e.client.Timeout = d
	}
}

// WithAPIKey sets the bearer token sent to the trade service.
func WithAPIKey(key string) ExecutorOption {
	return func(e *HTTPExecutor) {
		e.apiKey = key
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ExecutorOption {
	return func(e *HTTPExecutor) {
		e.client = client
	}
}

// NewHTTPExecutor creates an executor talking to the trade service at endpoint.
func NewHTTPExecutor(endpoint string, opts ...ExecutorOption) *HTTPExecutor {
	e := &HTTPExecutor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ Executor = (*HTTPExecutor)(nil)

type buyRequest struct {
	WalletAddress string  `json:"wallet_address"`
	TokenMint     string  `json:"token_mint"`
	AmountSOL     float64 `json:"amount_sol"`
	SlippageBps   int     `json:"slippage_bps"`
	Priority      string  `json:"priority"`
	SkipTax       bool    `json:"skip_tax"`
}

type sellRequest struct {
	WalletAddress string  `json:"wallet_address"`
	TokenMint     string  `json:"token_mint"`
	Percentage    float64 `json:"percentage"`
	SlippageBps   int     `json:"slippage_bps"`
	Priority      string  `json:"priority"`
	SkipTax       bool    `json:"skip_tax"`
}

type tradeResponse struct {
	Success   bool   `json:"success"`
	Signature string `json:"signature"`
	Error     string `json:"error,omitempty"`
}

// Buy submits a buy order. Trades are not retried: a duplicate submit
// could double-spend, so any failure surfaces in the Result instead.
func (e *HTTPExecutor) Buy(ctx context.Context, order BuyOrder) *Result {
	req := buyRequest{
		WalletAddress: order.WalletAddress,
		TokenMint:     order.TokenMint,
		AmountSOL:     order.AmountSOL,
		SlippageBps:   order.SlippageBps,
		Priority:      string(order.Priority),
		SkipTax:       order.SkipTax,
	}
	return e.post(ctx, "/v1/buy", req)
}

// Sell submits a sell order.
func (e *HTTPExecutor) Sell(ctx context.Context, order SellOrder) *Result {
	req := sellRequest{
		WalletAddress: order.WalletAddress,
		TokenMint:     order.TokenMint,
		Percentage:    order.Percentage,
		SlippageBps:   order.SlippageBps,
		Priority:      string(order.Priority),
		SkipTax:       order.SkipTax,
	}
	return e.post(ctx, "/v1/sell", req)
}

func (e *HTTPExecutor) post(ctx context.Context, path string, payload interface{}) *Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Result{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return &Result{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return &Result{Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Result{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return &Result{Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))}
	}

	var tr tradeResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return &Result{Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	if !tr.Success {
		return &Result{Err: fmt.Errorf("trade rejected: %s", tr.Error)}
	}

	return &Result{Success: true, Signature: tr.Signature}
}
