package domain

// EventType identifies a broadcast envelope.
type EventType string

const (
	// EventPriceUpdate carries a full campaign snapshot after a poll.
	EventPriceUpdate EventType = "price_update"
	// EventAlertTriggered carries the trigger context plus the fired alert.
	EventAlertTriggered EventType = "alert_triggered"
)

// Envelope is the wire format pushed to real-time clients. Clients must
// tolerate unknown additional fields.
type Envelope struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// TriggerEvent is the data payload of an alert_triggered envelope.
type TriggerEvent struct {
	CampaignID    string   `json:"campaign_id"`
	TokenMint     string   `json:"token_mint"`
	PoolAddress   string   `json:"pool_address"`
	PriceSOL      float64  `json:"price_sol"`
	PriceUSD      *float64 `json:"price_usd,omitempty"`
	ChangePercent float64  `json:"change_percent"`
	Alert         *Alert   `json:"alert"`
	FiredAt       int64    `json:"fired_at"`
}
