package auth

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

// Arweave wallets sign with RSA-PSS over a sha256 digest. The address is
// derived from the public key: base64url(sha256(owner modulus bytes)).

const arweavePublicExponent = 65537

// ArweaveAddress derives the wallet address from the base64url-encoded
// owner key (the RSA modulus).
func ArweaveAddress(owner string) (string, error) {
	modulus, err := base64.RawURLEncoding.DecodeString(owner)
	if err != nil {
		return "", fmt.Errorf("invalid owner key: %w", err)
	}
	sum := sha256.Sum256(modulus)
	return base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

// VerifyArweaveSignature verifies an RSA-PSS signature over the message.
// owner is the base64url-encoded RSA modulus, signature is base64-encoded.
func VerifyArweaveSignature(message, owner, signature string) error {
	modulus, err := base64.RawURLEncoding.DecodeString(owner)
	if err != nil {
		return fmt.Errorf("invalid owner key: %w", err)
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}

	pubKey := &rsa.PublicKey{
		N: new(big.Int).SetBytes(modulus),
		E: arweavePublicExponent,
	}

	digest := sha256.Sum256([]byte(message))
	opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto, Hash: crypto.SHA256}
	if err := rsa.VerifyPSS(pubKey, crypto.SHA256, digest[:], sig, opts); err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}
