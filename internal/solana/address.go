// Package solana holds small helpers for Solana address handling.
package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// WSOLMint is the wrapped SOL mint address.
const WSOLMint = "So11111111111111111111111111111111111111112"

// ValidateAddress checks that addr is a base58-encoded 32-byte value.
// Both regular accounts and program-derived addresses pass this check.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("empty address")
	}
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("decode base58 address %q: %w", addr, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("address %q: expected 32 bytes, got %d", addr, len(decoded))
	}
	return nil
}

// IsOnCurve reports whether addr is a valid ed25519 curve point.
// Wallet addresses are keypair public keys and must be on-curve;
// program-derived addresses (pools) are deliberately off-curve.
func IsOnCurve(addr string) bool {
	decoded, err := base58.Decode(addr)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}

// ValidateWalletAddress checks that addr is a base58-encoded 32-byte
// value lying on the ed25519 curve. Program-derived addresses cannot
// sign transactions and are rejected.
func ValidateWalletAddress(addr string) error {
	if err := ValidateAddress(addr); err != nil {
		return err
	}
	if !IsOnCurve(addr) {
		return fmt.Errorf("address %q is not on the ed25519 curve", addr)
	}
	return nil
}
