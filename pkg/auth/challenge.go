package auth

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// NewChallenge builds the plain-text message a wallet signs to prove it
// controls the address it reported during connect. The nonce makes every
// challenge unique, so a captured signature cannot be replayed against a
// later connect.
func NewChallenge(chain wallet.Chain, address string) string {
	return fmt.Sprintf(
		"Eat Around The Globe wants to verify your wallet.\n\nChain: %s\nAddress: %s\nNonce: %s\nIssued At: %s",
		chain, address, uuid.NewString(), time.Now().UTC().Format(time.RFC3339),
	)
}

// VerifyOwnership checks a wallet's answer to an ownership challenge. The
// signature must verify over the exact challenge text, and the signing key
// must resolve to the address the wallet reported.
func VerifyOwnership(chain wallet.Chain, address, message string, proof *wallet.MessageProof) error {
	if proof == nil || len(proof.Signature) == 0 {
		return fmt.Errorf("empty ownership proof")
	}

	switch chain {
	case wallet.ChainEthereum:
		if !ValidateEVMAddress(address) {
			return fmt.Errorf("invalid evm address %q", address)
		}
		recovered, err := VerifyEIP191Signature(message, hex.EncodeToString(proof.Signature))
		if err != nil {
			return err
		}
		if recovered.Hex() != NormalizeAddress(address) {
			return fmt.Errorf("signature recovers to %s, wallet reported %s", recovered.Hex(), NormalizeAddress(address))
		}
		return nil

	case wallet.ChainSolana:
		if !ValidateSolanaAddress(address) {
			return fmt.Errorf("invalid solana address %q", address)
		}
		return VerifySolanaSignature(message, address, base64.StdEncoding.EncodeToString(proof.Signature))

	case wallet.ChainArweave:
		derived, err := ArweaveAddress(proof.PublicKey)
		if err != nil {
			return err
		}
		if derived != address {
			return fmt.Errorf("owner key resolves to %s, wallet reported %s", derived, address)
		}
		return VerifyArweaveSignature(message, proof.PublicKey, base64.StdEncoding.EncodeToString(proof.Signature))
	}

	return fmt.Errorf("unsupported chain %q", chain)
}
