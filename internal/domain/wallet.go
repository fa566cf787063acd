package domain

// Wallet maps a wallet ID to its on-chain address and owning user.
// Corresponds to the wallets table in PostgreSQL.
type Wallet struct {
	WalletID    string // PRIMARY KEY
	Address     string // base58 Solana address
	OwnerUserID string
	Label       string
	CreatedAt   int64 // Unix timestamp in ms
}

// PriceTick is one archived price observation for a campaign.
// Corresponds to the price_ticks table in ClickHouse.
type PriceTick struct {
	CampaignID    string
	TimestampMs   int64
	PriceSOL      float64
	PriceUSD      *float64
	ChangePercent float64
}
