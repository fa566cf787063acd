// Package pricefeed provides on-chain price lookups for liquidity pools.
package pricefeed

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the feed cannot produce a price for a
// pool: the upstream failed, returned no data, or returned a zero price.
var ErrUnavailable = errors.New("price unavailable")

// Quote is the latest observed price of a pool's base token.
type Quote struct {
	PriceSOL  float64  // price in SOL, always set
	PriceUSD  *float64 // price in USD, nil when upstream has none
	FetchedAt int64    // Unix timestamp in ms
}

// Feed returns the latest on-chain price for a pool. Polled, not pushed;
// implementations must honor the context deadline.
type Feed interface {
	LatestPrice(ctx context.Context, poolAddress string) (*Quote, error)
}

// FeedFunc adapts a function to the Feed interface.
type FeedFunc func(ctx context.Context, poolAddress string) (*Quote, error)

func (f FeedFunc) LatestPrice(ctx context.Context, poolAddress string) (*Quote, error) {
	return f(ctx, poolAddress)
}
