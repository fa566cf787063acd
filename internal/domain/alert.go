package domain

// Direction tells which side of the target triggers the alert.
type Direction string

const (
	// DirectionAbove fires when the observed value is >= target.
	DirectionAbove Direction = "above"
	// DirectionBelow fires when the observed value is <= target.
	DirectionBelow Direction = "below"
)

// PriceType determines how an alert target is interpreted.
type PriceType string

const (
	// PriceTypePercentage compares against change percent from baseline.
	PriceTypePercentage PriceType = "percentage"
	// PriceTypeExactSOL compares against the absolute SOL price.
	PriceTypeExactSOL PriceType = "exact_sol"
	// PriceTypeExactUSD compares against the absolute USD price.
	PriceTypeExactUSD PriceType = "exact_usd"
)

// Alert is one trigger condition attached to a campaign. It fires at most
// once per arm cycle: Fired transitions false->true exactly once, and only
// a campaign reset clears it back to false.
type Alert struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	Direction  Direction `json:"direction"`
	PriceType  PriceType `json:"price_type"`
	Target     float64   `json:"target"`

	// Actions executed on trigger, in order. Never empty: a single
	// notification action is attached when none are supplied.
	Actions []Action `json:"actions"`

	IsActive bool   `json:"is_active"`
	Fired    bool   `json:"fired"`
	FiredAt  *int64 `json:"fired_at,omitempty"` // Unix timestamp in ms

	CreatedAt int64 `json:"created_at"` // Unix timestamp in ms
}

// Clone returns a deep copy of the alert.
func (a *Alert) Clone() *Alert {
	cp := *a
	if a.FiredAt != nil {
		v := *a.FiredAt
		cp.FiredAt = &v
	}
	cp.Actions = make([]Action, len(a.Actions))
	copy(cp.Actions, a.Actions)
	return &cp
}

// ValidDirection reports whether d is a known direction.
func ValidDirection(d Direction) bool {
	return d == DirectionAbove || d == DirectionBelow
}

// ValidPriceType reports whether p is a known price type.
func ValidPriceType(p PriceType) bool {
	return p == PriceTypePercentage || p == PriceTypeExactSOL || p == PriceTypeExactUSD
}
