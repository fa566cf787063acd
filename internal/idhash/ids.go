package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeCampaignID computes a deterministic campaign ID using SHA256.
// Formula: SHA256(mint|pool|created_at_ms)
// Returns hex-encoded hash (64 characters).
func ComputeCampaignID(mint, pool string, createdAtMs int64) string {
	data := fmt.Sprintf("%s|%s|%d", mint, pool, createdAtMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeAlertID computes a deterministic alert ID using SHA256.
// Formula: SHA256(campaign_id|direction|price_type|target|created_at_ms|seq)
// seq disambiguates identical alerts created in the same millisecond.
// Returns hex-encoded hash (64 characters).
func ComputeAlertID(campaignID, direction, priceType string, target float64, createdAtMs int64, seq int) string {
	data := fmt.Sprintf("%s|%s|%s|%g|%d|%d", campaignID, direction, priceType, target, createdAtMs, seq)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeTriggerID computes a deterministic trigger ID using SHA256.
// Formula: SHA256(campaign_id|alert_id|fired_at_ms)
// Returns hex-encoded hash (64 characters).
func ComputeTriggerID(campaignID, alertID string, firedAtMs int64) string {
	data := fmt.Sprintf("%s|%s|%d", campaignID, alertID, firedAtMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
