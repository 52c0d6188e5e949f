package auth

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"
)

// VerifySolanaSignature verifies an ed25519 signature over the message.
// address is the base58-encoded public key, signature is base64-encoded as
// produced by the wallet bridge.
func VerifySolanaSignature(message, address, signature string) error {
	pubKey, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("invalid solana address: %w", err)
	}
	if len(pubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid solana public key length: expected %d, got %d", ed25519.PublicKeySize, len(pubKey))
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid signature length: expected %d, got %d", ed25519.SignatureSize, len(sig))
	}

	if !ed25519.Verify(ed25519.PublicKey(pubKey), []byte(message), sig) {
		return fmt.Errorf("signature verification failed")
	}
	return nil
}

// ValidateSolanaAddress checks that a string is a base58-encoded ed25519
// public key.
func ValidateSolanaAddress(address string) bool {
	pubKey, err := base58.Decode(address)
	return err == nil && len(pubKey) == ed25519.PublicKeySize
}
