// Package wallet defines the domain model shared by the session and signing
// layers: supported chains, the active wallet session, the vendor provider
// contract, and the sentinel error conditions surfaced to users.
package wallet

import (
	"context"
	"errors"
)

// Chain identifies a supported wallet chain.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainSolana   Chain = "solana"
	ChainArweave  Chain = "arweave"
)

// Valid reports whether c is one of the supported chains.
func (c Chain) Valid() bool {
	switch c {
	case ChainEthereum, ChainSolana, ChainArweave:
		return true
	}
	return false
}

func (c Chain) String() string {
	return string(c)
}

var (
	// ErrWalletUnavailable means no provider is registered for the chain
	// (the vendor extension is not installed / the bridge is not running).
	ErrWalletUnavailable = errors.New("wallet unavailable")

	// ErrWalletNotConnected means the provider exists but reports no
	// authorized account matching the requested address.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrUploadsUnsupported means the connected wallet is accepted for
	// browsing but cannot produce ledger uploads.
	ErrUploadsUnsupported = errors.New("uploads are not supported for this wallet")

	// ErrNoActiveSession means an operation requiring a connected wallet
	// was attempted without one.
	ErrNoActiveSession = errors.New("no active wallet session")
)

// Session is the in-memory record of which wallet is currently active.
// Address may be empty while a connect flow is still pending.
type Session struct {
	Chain     Chain
	Address   string
	Connector string // vendor identity, e.g. "metamask", "walletconnect", "phantom", "arconnect"
	Provider  Provider
}

// MessageProof is a wallet's answer to a plain-text signing request.
type MessageProof struct {
	Signature []byte

	// PublicKey identifies the signing key on chains where the address is
	// only a digest of it (the Arweave owner modulus). Empty elsewhere.
	PublicKey string
}

// Provider is the contract this middleware consumes from a wallet vendor
// integration. Implementations wrap exactly one vendor SDK; all cryptography
// stays on the vendor side.
type Provider interface {
	// Connect prompts the wallet for access and returns the active address.
	Connect(ctx context.Context) (string, error)

	// Accounts returns the currently authorized addresses. An empty slice
	// means the wallet has revoked access.
	Accounts(ctx context.Context) ([]string, error)

	// SignData asks the wallet to sign raw bytes with the active account.
	SignData(ctx context.Context, data []byte) ([]byte, error)

	// SignMessage asks the wallet to sign a human-readable message with the
	// active account, using the chain's personal message scheme.
	SignMessage(ctx context.Context, message string) (*MessageProof, error)

	// Disconnect revokes this middleware's access to the wallet.
	Disconnect(ctx context.Context) error
}

// AccountEvent is the normalized form of a vendor-reported out-of-band
// change: account switch, connector change, or revocation (empty Addresses).
type AccountEvent struct {
	Chain     Chain
	Connector string
	Addresses []string
}
