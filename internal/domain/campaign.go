package domain

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	// CampaignStatusActive means the campaign is polled every tick.
	CampaignStatusActive CampaignStatus = "active"
	// CampaignStatusStopped means the campaign is excluded from polling
	// and can no longer fire alerts.
	CampaignStatusStopped CampaignStatus = "stopped"
)

// Campaign is one token+pool under continuous price observation.
// BaselinePrice is captured at start and is immutable except through an
// explicit reset, which also re-arms all attached alerts.
type Campaign struct {
	ID          string `json:"id"`
	TokenMint   string `json:"token_mint"`
	PoolAddress string `json:"pool_address"`

	// BaselinePrice is the SOL price reference point for percentage alerts.
	BaselinePrice float64 `json:"baseline_price"`

	// CurrentPrice / CurrentPriceUSD hold the last successfully observed
	// price. Nil until the first successful poll.
	CurrentPrice    *float64 `json:"current_price,omitempty"`
	CurrentPriceUSD *float64 `json:"current_price_usd,omitempty"`

	// ChangePercent is (current - baseline) / baseline * 100.
	// Nil while CurrentPrice is unset.
	ChangePercent *float64 `json:"change_percent,omitempty"`

	// Alerts in insertion order. Evaluation order is stable.
	Alerts []*Alert `json:"alerts"`

	Status CampaignStatus `json:"status"`

	CreatedAt     int64 `json:"created_at"`      // Unix timestamp in ms
	LastUpdatedAt int64 `json:"last_updated_at"` // Unix timestamp in ms
}

// Clone returns a deep copy of the campaign, including alerts.
func (c *Campaign) Clone() *Campaign {
	cp := *c
	if c.CurrentPrice != nil {
		v := *c.CurrentPrice
		cp.CurrentPrice = &v
	}
	if c.CurrentPriceUSD != nil {
		v := *c.CurrentPriceUSD
		cp.CurrentPriceUSD = &v
	}
	if c.ChangePercent != nil {
		v := *c.ChangePercent
		cp.ChangePercent = &v
	}
	cp.Alerts = make([]*Alert, len(c.Alerts))
	for i, a := range c.Alerts {
		cp.Alerts[i] = a.Clone()
	}
	return &cp
}
