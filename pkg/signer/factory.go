// Package signer manages the per-chain signing clients used to upload
// records to the ledger. Clients are constructed lazily, memoized by
// (chain, address, connector), and invalidated whenever the session layer
// reports an account or connector change. A client must never outlive the
// address it was built for: a stale handle would mis-attribute signatures.
package signer

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/eatglobe/globe-middleware/internal/metrics"
	"github.com/eatglobe/globe-middleware/pkg/ledger"
	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// Config contains the upload endpoint settings shared by all chain clients.
type Config struct {
	UploadURL string
}

type clientKey struct {
	chain     wallet.Chain
	address   string
	connector string
}

type cacheEntry struct {
	key    clientKey
	client ledger.Uploader
}

// Factory hands out signing clients. At most one client per chain is live at
// a time, and at most one construction per chain may be in flight: concurrent
// callers share the pending construction instead of racing to duplicate it.
type Factory struct {
	cfg        Config
	providers  map[wallet.Chain]wallet.Provider
	httpClient *http.Client
	logger     *zap.Logger

	mu     sync.Mutex
	cached map[wallet.Chain]cacheEntry
	group  singleflight.Group
}

// NewFactory creates a Factory over the registered chain providers.
func NewFactory(cfg Config, providers map[wallet.Chain]wallet.Provider, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:        cfg,
		providers:  providers,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
		cached:     make(map[wallet.Chain]cacheEntry),
	}
}

// Client returns the signing client for the given chain and address,
// constructing one if the cached entry is missing or keyed differently.
//
// Ethereum wallets are accepted for browsing only; upload-client requests
// for them fail before any provider or network call.
func (f *Factory) Client(ctx context.Context, chain wallet.Chain, address, connector string) (ledger.Uploader, error) {
	if !chain.Valid() {
		return nil, fmt.Errorf("unsupported chain %q", chain)
	}
	if chain == wallet.ChainEthereum {
		return nil, wallet.ErrUploadsUnsupported
	}
	if address == "" {
		return nil, wallet.ErrWalletNotConnected
	}

	key := clientKey{chain: chain, address: address, connector: connector}

	f.mu.Lock()
	if entry, ok := f.cached[chain]; ok && entry.key == key {
		f.mu.Unlock()
		return entry.client, nil
	}
	f.mu.Unlock()

	// Late callers for the same chain wait on the in-flight construction.
	// The key is validated again inside, so a waiter asking for a different
	// address gets a fresh construction on its own retry instead of a stale
	// client.
	result, err, _ := f.group.Do(string(chain), func() (any, error) {
		f.mu.Lock()
		if entry, ok := f.cached[chain]; ok && entry.key == key {
			f.mu.Unlock()
			return entry.client, nil
		}
		f.mu.Unlock()

		client, err := f.construct(ctx, key)
		if err != nil {
			return nil, err
		}

		f.mu.Lock()
		f.cached[chain] = cacheEntry{key: key, client: client}
		f.mu.Unlock()
		return client, nil
	})
	if err != nil {
		return nil, err
	}

	client := result.(ledger.Uploader)
	if client.Address() != address {
		// The shared construction belonged to a different address; retry
		// builds one for ours.
		return f.Client(ctx, chain, address, connector)
	}
	return client, nil
}

func (f *Factory) construct(ctx context.Context, key clientKey) (ledger.Uploader, error) {
	provider, ok := f.providers[key.chain]
	if !ok || provider == nil {
		return nil, wallet.ErrWalletUnavailable
	}

	accounts, err := provider.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet accounts: %w", err)
	}
	if !containsAddress(accounts, key.address) {
		return nil, wallet.ErrWalletNotConnected
	}

	var client ledger.Uploader
	switch key.chain {
	case wallet.ChainArweave:
		client = newArweaveClient(key.address, provider, f.cfg.UploadURL, f.httpClient, f.logger)
	case wallet.ChainSolana:
		client = newSolanaClient(key.address, provider, f.cfg.UploadURL, f.httpClient, f.logger)
	default:
		return nil, wallet.ErrUploadsUnsupported
	}

	metrics.SignerConstructions.WithLabelValues(key.chain.String()).Inc()
	f.logger.Info("Constructed signing client",
		zap.String("chain", key.chain.String()),
		zap.String("address", key.address),
		zap.String("connector", key.connector))
	return client, nil
}

// ClearCache drops the cached client for one chain. Must be called on
// disconnect and on any address or connector change for that chain.
func (f *Factory) ClearCache(chain wallet.Chain) {
	f.mu.Lock()
	_, had := f.cached[chain]
	delete(f.cached, chain)
	f.mu.Unlock()

	if had {
		metrics.SignerCacheInvalidations.WithLabelValues(chain.String(), "chain").Inc()
		f.logger.Debug("Cleared signing client cache", zap.String("chain", chain.String()))
	}
}

// ClearAll drops every cached client.
func (f *Factory) ClearAll() {
	f.mu.Lock()
	for chain := range f.cached {
		metrics.SignerCacheInvalidations.WithLabelValues(chain.String(), "all").Inc()
	}
	f.cached = make(map[wallet.Chain]cacheEntry)
	f.mu.Unlock()
}

func containsAddress(accounts []string, address string) bool {
	for _, a := range accounts {
		if a == address {
			return true
		}
	}
	return false
}
