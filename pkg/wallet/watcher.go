package wallet

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventHandler receives normalized account events.
type EventHandler func(AccountEvent)

// Watcher polls every registered provider for its authorized accounts and
// emits an AccountEvent when they change. Vendors push these events in a
// browser; over the bridge we have to poll.
type Watcher struct {
	providers map[Chain]Provider
	handler   EventHandler
	interval  time.Duration
	logger    *zap.Logger

	lastSeen map[Chain][]string
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher creates a watcher over the given providers.
func NewWatcher(providers map[Chain]Provider, handler EventHandler, interval time.Duration, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		providers: providers,
		handler:   handler,
		interval:  interval,
		logger:    logger,
		lastSeen:  make(map[Chain][]string),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start begins polling in a background goroutine.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case <-ticker.C:
				w.poll(ctx)
			}
		}
	}()
}

// Stop halts polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.done
}

func (w *Watcher) poll(ctx context.Context) {
	for chain, provider := range w.providers {
		pollCtx, cancel := context.WithTimeout(ctx, w.interval)
		addresses, err := provider.Accounts(pollCtx)
		cancel()
		if err != nil {
			// An unreachable bridge is not a revocation; keep the last
			// known state until the bridge answers again.
			w.logger.Debug("Account poll failed",
				zap.String("chain", chain.String()),
				zap.Error(err))
			continue
		}

		last, seen := w.lastSeen[chain]
		if seen && slices.Equal(last, addresses) {
			continue
		}
		w.lastSeen[chain] = addresses

		if !seen && len(addresses) == 0 {
			// First observation of a wallet with nothing authorized is
			// not an event.
			continue
		}

		w.logger.Info("Wallet accounts changed",
			zap.String("chain", chain.String()),
			zap.Int("count", len(addresses)))
		w.handler(AccountEvent{Chain: chain, Addresses: addresses})
	}
}
