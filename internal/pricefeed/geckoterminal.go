package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.geckoterminal.com/api/v2"
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 2
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
	DefaultBackoffMult = 2.0
)

// GeckoTerminalFeed implements Feed against the GeckoTerminal pools API.
type GeckoTerminalFeed struct {
	baseURL     string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// FeedOption configures GeckoTerminalFeed.
type FeedOption func(*GeckoTerminalFeed)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) FeedOption {
	return func(f *GeckoTerminalFeed) {
		f.baseURL = url
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) FeedOption {
	return func(f *GeckoTerminalFeed) {
		f.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) FeedOption {
	return func(f *GeckoTerminalFeed) {
		f.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) FeedOption {
	return func(f *GeckoTerminalFeed) {
		f.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) FeedOption {
	return func(f *GeckoTerminalFeed) {
		f.client = client
	}
}

// NewGeckoTerminalFeed creates a feed backed by the GeckoTerminal API.
func NewGeckoTerminalFeed(opts ...FeedOption) *GeckoTerminalFeed {
	f := &GeckoTerminalFeed{
		baseURL:     DefaultBaseURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ Feed = (*GeckoTerminalFeed)(nil)

// poolResponse mirrors the subset of the pools endpoint we read.
type poolResponse struct {
	Data struct {
		Attributes struct {
			BaseTokenPriceNativeCurrency string  `json:"base_token_price_native_currency"`
			BaseTokenPriceUSD            *string `json:"base_token_price_usd"`
		} `json:"attributes"`
	} `json:"data"`
}

// LatestPrice fetches the current base token price of a pool.
func (f *GeckoTerminalFeed) LatestPrice(ctx context.Context, poolAddress string) (*Quote, error) {
	url := fmt.Sprintf("%s/networks/solana/pools/%s", f.baseURL, poolAddress)

	body, err := f.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var resp poolResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrUnavailable, err)
	}

	priceSOL, err := strconv.ParseFloat(resp.Data.Attributes.BaseTokenPriceNativeCurrency, 64)
	if err != nil || priceSOL <= 0 {
		return nil, fmt.Errorf("%w: no native price for pool %s", ErrUnavailable, poolAddress)
	}

	quote := &Quote{
		PriceSOL:  priceSOL,
		FetchedAt: time.Now().UnixMilli(),
	}
	if usd := resp.Data.Attributes.BaseTokenPriceUSD; usd != nil {
		if v, err := strconv.ParseFloat(*usd, 64); err == nil && v > 0 {
			quote.PriceUSD = &v
		}
	}
	return quote, nil
}

// get performs a GET with retries and exponential backoff.
func (f *GeckoTerminalFeed) get(ctx context.Context, url string) ([]byte, error) {
	delay := f.retryDelay
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * f.backoffMult)
			if delay > f.maxDelay {
				delay = f.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = errors.New("rate limited (429)")
			continue
		}

		// 404 means the pool does not exist, retrying will not help
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("pool not found (404)")
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
