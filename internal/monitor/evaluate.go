// Package monitor runs the polling scheduler: the concurrency core that
// fetches prices for active campaigns, evaluates alerts, and emits events.
package monitor

import "solana-price-sentinel/internal/domain"

// observedValue extracts the value an alert compares against from a
// campaign snapshot. ok is false when the snapshot does not carry the
// value the alert needs (e.g. a USD alert on a feed with no USD price).
func observedValue(a *domain.Alert, c *domain.Campaign) (float64, bool) {
	switch a.PriceType {
	case domain.PriceTypePercentage:
		if c.ChangePercent == nil {
			return 0, false
		}
		return *c.ChangePercent, true
	case domain.PriceTypeExactSOL:
		if c.CurrentPrice == nil {
			return 0, false
		}
		return *c.CurrentPrice, true
	case domain.PriceTypeExactUSD:
		if c.CurrentPriceUSD == nil {
			return 0, false
		}
		return *c.CurrentPriceUSD, true
	default:
		return 0, false
	}
}

// ShouldFire reports whether the alert's condition is satisfied by the
// campaign snapshot. Inactive and already-fired alerts never fire.
func ShouldFire(a *domain.Alert, c *domain.Campaign) bool {
	if !a.IsActive || a.Fired {
		return false
	}
	observed, ok := observedValue(a, c)
	if !ok {
		return false
	}
	switch a.Direction {
	case domain.DirectionAbove:
		return observed >= a.Target
	case domain.DirectionBelow:
		return observed <= a.Target
	default:
		return false
	}
}
