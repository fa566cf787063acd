package solana

import "testing"

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"wsol mint", WSOLMint, false},
		{"system program", "11111111111111111111111111111111", false},
		{"token program", "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", false},
		{"empty", "", true},
		{"not base58", "not-an-address!", true},
		{"too short", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddress(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}

// The Raydium AMM authority, a program-derived address and therefore
// off-curve by construction.
const raydiumAuthority = "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1"

func TestIsOnCurve(t *testing.T) {
	// The system program address decodes to 32 zero bytes, which is a
	// valid curve encoding.
	if !IsOnCurve("11111111111111111111111111111111") {
		t.Error("expected system program address to be on-curve")
	}
	if IsOnCurve(raydiumAuthority) {
		t.Error("expected program-derived address to be off-curve")
	}
	if IsOnCurve("") {
		t.Error("expected empty address to be off-curve")
	}
	if IsOnCurve("abc") {
		t.Error("expected short address to be off-curve")
	}
}

func TestValidateWalletAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"keypair pubkey", "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", false},
		{"program-derived address", raydiumAuthority, true},
		{"empty", "", true},
		{"not base58", "not-an-address!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWalletAddress(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWalletAddress(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}
