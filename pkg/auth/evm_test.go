package auth

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

// signEIP191Message signs with the same prefixing scheme personal_sign uses.
func signEIP191Message(t *testing.T, message string, keyHex string) (address, signature string) {
	t.Helper()
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		t.Fatalf("failed to load key: %v", err)
	}

	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	hash := crypto.Keccak256Hash([]byte(prefixed))
	sig, err := crypto.Sign(hash.Bytes(), key)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hex.EncodeToString(sig)
}

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestVerifyEIP191Signature(t *testing.T) {
	message := "connect:eat-around-the-globe:nonce-1"
	address, signature := signEIP191Message(t, message, testKeyHex)

	recovered, err := VerifyEIP191Signature(message, signature)
	if err != nil {
		t.Fatalf("VerifyEIP191Signature() failed: %v", err)
	}
	if recovered.Hex() != address {
		t.Fatalf("expected recovered address %s, got %s", address, recovered.Hex())
	}
}

func TestVerifyEIP191Signature_LegacyRecoveryID(t *testing.T) {
	message := "connect:eat-around-the-globe:nonce-2"
	address, signature := signEIP191Message(t, message, testKeyHex)

	// Wallets commonly report v as 27/28 instead of 0/1.
	sigBytes, _ := hex.DecodeString(signature)
	sigBytes[64] += 27

	recovered, err := VerifyEIP191Signature(message, "0x"+hex.EncodeToString(sigBytes))
	if err != nil {
		t.Fatalf("VerifyEIP191Signature() failed: %v", err)
	}
	if recovered.Hex() != address {
		t.Fatalf("expected recovered address %s, got %s", address, recovered.Hex())
	}
}

func TestVerifyEIP191Signature_TamperedMessage(t *testing.T) {
	address, signature := signEIP191Message(t, "original message", testKeyHex)

	recovered, err := VerifyEIP191Signature("tampered message", signature)
	if err == nil && recovered.Hex() == address {
		t.Fatal("expected a tampered message to recover a different address")
	}
}

func TestVerifyEIP191Signature_BadInput(t *testing.T) {
	if _, err := VerifyEIP191Signature("msg", "not-hex"); err == nil {
		t.Fatal("expected invalid hex to be rejected")
	}
	if _, err := VerifyEIP191Signature("msg", "0xdead"); err == nil {
		t.Fatal("expected a short signature to be rejected")
	}
}

func TestValidateEVMAddress(t *testing.T) {
	cases := []struct {
		address string
		valid   bool
	}{
		{"0x8ba1f109551bD432803012645Ac136ddd64DBA72", true},
		{"8ba1f109551bD432803012645Ac136ddd64DBA72", false},
		{"0x8ba1", false},
		{"0xZZa1f109551bD432803012645Ac136ddd64DBA72", false},
	}
	for _, tc := range cases {
		if got := ValidateEVMAddress(tc.address); got != tc.valid {
			t.Errorf("ValidateEVMAddress(%q): expected %v, got %v", tc.address, tc.valid, got)
		}
	}
}

func TestNormalizeAddress(t *testing.T) {
	lower := "0x8ba1f109551bd432803012645ac136ddd64dba72"
	want := "0x8ba1f109551bD432803012645Ac136ddd64DBA72"
	if got := NormalizeAddress(lower); got != want {
		t.Fatalf("expected checksummed %s, got %s", want, got)
	}
}
