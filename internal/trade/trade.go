// Package trade executes buy and sell orders through an external trade
// service. Failures are reported in the Result, never panicked.
package trade

import "context"

// PriorityLevel controls the priority fee tier attached to a swap.
type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "low"
	PriorityMedium PriorityLevel = "medium"
	PriorityHigh   PriorityLevel = "high"
)

// BuyOrder buys a token with a fixed amount of SOL.
type BuyOrder struct {
	WalletAddress string
	TokenMint     string
	AmountSOL     float64
	SlippageBps   int
	Priority      PriorityLevel
	SkipTax       bool
}

// SellOrder sells a percentage of the wallet's token balance.
type SellOrder struct {
	WalletAddress string
	TokenMint     string
	Percentage    float64
	SlippageBps   int
	Priority      PriorityLevel
	SkipTax       bool
}

// Result is the outcome of a trade attempt.
type Result struct {
	Success   bool
	Signature string
	Err       error
}

// Executor submits orders to a trade backend.
type Executor interface {
	Buy(ctx context.Context, order BuyOrder) *Result
	Sell(ctx context.Context, order SellOrder) *Result
}
