package auth

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/mr-tron/base58"

	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

func TestNewChallenge_BindsIdentityAndNonce(t *testing.T) {
	first := NewChallenge(wallet.ChainSolana, "addr-1")
	if !strings.Contains(first, "solana") || !strings.Contains(first, "addr-1") {
		t.Fatalf("challenge is missing the wallet identity: %q", first)
	}

	second := NewChallenge(wallet.ChainSolana, "addr-1")
	if first == second {
		t.Fatal("expected each challenge to carry a fresh nonce")
	}
}

func TestVerifyOwnership_EVM(t *testing.T) {
	message := "prove ownership to eat-around-the-globe"
	address, sigHex := signEIP191Message(t, message, testKeyHex)
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		t.Fatalf("failed to decode signature: %v", err)
	}
	proof := &wallet.MessageProof{Signature: sig}

	if err := VerifyOwnership(wallet.ChainEthereum, address, message, proof); err != nil {
		t.Fatalf("VerifyOwnership() failed: %v", err)
	}

	// Bridges commonly report the address lowercased.
	if err := VerifyOwnership(wallet.ChainEthereum, strings.ToLower(address), message, proof); err != nil {
		t.Fatalf("VerifyOwnership() with a lowercased address failed: %v", err)
	}

	other := "0x8ba1f109551bD432803012645Ac136ddd64DBA72"
	if err := VerifyOwnership(wallet.ChainEthereum, other, message, proof); err == nil {
		t.Fatal("expected a signature from a different key to be rejected")
	}
}

func TestVerifyOwnership_Solana(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	address := base58.Encode(pub)

	message := NewChallenge(wallet.ChainSolana, address)
	proof := &wallet.MessageProof{Signature: ed25519.Sign(priv, []byte(message))}

	if err := VerifyOwnership(wallet.ChainSolana, address, message, proof); err != nil {
		t.Fatalf("VerifyOwnership() failed: %v", err)
	}
	if err := VerifyOwnership(wallet.ChainSolana, address, message+"x", proof); err == nil {
		t.Fatal("expected a tampered message to be rejected")
	}

	otherPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	if err := VerifyOwnership(wallet.ChainSolana, base58.Encode(otherPub), message, proof); err == nil {
		t.Fatal("expected a foreign address to be rejected")
	}
}

func TestVerifyOwnership_Arweave(t *testing.T) {
	key, owner := newArweaveWallet(t)
	address, err := ArweaveAddress(owner)
	if err != nil {
		t.Fatalf("ArweaveAddress() failed: %v", err)
	}

	message := NewChallenge(wallet.ChainArweave, address)
	digest := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
		Hash:       crypto.SHA256,
	})
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	proof := &wallet.MessageProof{Signature: sig, PublicKey: owner}
	if err := VerifyOwnership(wallet.ChainArweave, address, message, proof); err != nil {
		t.Fatalf("VerifyOwnership() failed: %v", err)
	}

	// An owner key that hashes to a different address must not pass even if
	// its signature is internally consistent.
	_, otherOwner := newArweaveWallet(t)
	forged := &wallet.MessageProof{Signature: sig, PublicKey: otherOwner}
	if err := VerifyOwnership(wallet.ChainArweave, address, message, forged); err == nil {
		t.Fatal("expected a foreign owner key to be rejected")
	}
}

func TestVerifyOwnership_BadInput(t *testing.T) {
	if err := VerifyOwnership(wallet.ChainSolana, "addr", "msg", nil); err == nil {
		t.Fatal("expected a missing proof to be rejected")
	}
	if err := VerifyOwnership(wallet.ChainSolana, "addr", "msg", &wallet.MessageProof{}); err == nil {
		t.Fatal("expected an empty signature to be rejected")
	}
	proof := &wallet.MessageProof{Signature: []byte("sig")}
	if err := VerifyOwnership(wallet.Chain("dogecoin"), "addr", "msg", proof); err == nil {
		t.Fatal("expected an unsupported chain to be rejected")
	}
}
