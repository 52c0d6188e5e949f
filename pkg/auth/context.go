package auth

import (
	"context"

	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyAddress is the context key for the authenticated wallet address
	ContextKeyAddress contextKey = "wallet_address"
	// ContextKeyChain is the context key for the authenticated wallet chain
	ContextKeyChain contextKey = "wallet_chain"
)

// WithWallet adds the authenticated wallet identity to the context
func WithWallet(ctx context.Context, chain wallet.Chain, address string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyChain, chain)
	return context.WithValue(ctx, ContextKeyAddress, address)
}

// AddressFromContext retrieves the authenticated wallet address from the context
func AddressFromContext(ctx context.Context) (string, bool) {
	addr, ok := ctx.Value(ContextKeyAddress).(string)
	return addr, ok
}

// ChainFromContext retrieves the authenticated wallet chain from the context
func ChainFromContext(ctx context.Context) (wallet.Chain, bool) {
	chain, ok := ctx.Value(ContextKeyChain).(wallet.Chain)
	return chain, ok
}
