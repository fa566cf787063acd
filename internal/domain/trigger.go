package domain

// TriggerRecord is an immutable audit row written once per alert firing.
// Corresponds to the trigger_history table in PostgreSQL. Never updated
// after insert.
type TriggerRecord struct {
	TriggerID   string // PRIMARY KEY, deterministic hash
	CampaignID  string
	AlertID     string
	TokenMint   string
	PoolAddress string

	PriceSOL      float64  // SOL price at trigger time
	PriceUSD      *float64 // USD price, nil when the feed had none
	ChangePercent float64  // percent change from baseline at trigger time

	// Condition is the alert's direction/target rendered as text,
	// e.g. "above 50.00% from baseline".
	Condition string

	// ActionsJSON is the alert's serialized action list.
	ActionsJSON string

	FiredAt int64 // Unix timestamp in ms
}
