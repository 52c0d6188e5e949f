package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func newArweaveWallet(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	owner := base64.RawURLEncoding.EncodeToString(key.N.Bytes())
	return key, owner
}

func TestArweaveAddress(t *testing.T) {
	_, owner := newArweaveWallet(t)

	address, err := ArweaveAddress(owner)
	if err != nil {
		t.Fatalf("ArweaveAddress() failed: %v", err)
	}

	modulus, _ := base64.RawURLEncoding.DecodeString(owner)
	sum := sha256.Sum256(modulus)
	if address != base64.RawURLEncoding.EncodeToString(sum[:]) {
		t.Fatalf("unexpected address %q", address)
	}

	if _, err := ArweaveAddress("not base64url!"); err == nil {
		t.Fatal("expected an invalid owner key to be rejected")
	}
}

func TestVerifyArweaveSignature(t *testing.T) {
	key, owner := newArweaveWallet(t)

	message := "connect:eat-around-the-globe:nonce-1"
	digest := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
		Hash:       crypto.SHA256,
	})
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	signature := base64.StdEncoding.EncodeToString(sig)

	if err := VerifyArweaveSignature(message, owner, signature); err != nil {
		t.Fatalf("VerifyArweaveSignature() failed: %v", err)
	}

	if err := VerifyArweaveSignature("tampered", owner, signature); err == nil {
		t.Fatal("expected a tampered message to be rejected")
	}

	_, otherOwner := newArweaveWallet(t)
	if err := VerifyArweaveSignature(message, otherOwner, signature); err == nil {
		t.Fatal("expected a foreign owner key to be rejected")
	}
}

func TestVerifyArweaveSignature_BadInput(t *testing.T) {
	_, owner := newArweaveWallet(t)

	if err := VerifyArweaveSignature("msg", "not base64url!", "c2ln"); err == nil {
		t.Fatal("expected an invalid owner key to be rejected")
	}
	if err := VerifyArweaveSignature("msg", owner, "not base64!"); err == nil {
		t.Fatal("expected invalid signature encoding to be rejected")
	}
}
