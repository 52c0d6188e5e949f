// Package session holds the single source of truth for the active wallet
// session and keeps the signing-client caches consistent with what the
// wallet vendors report out-of-band.
package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/eatglobe/globe-middleware/internal/metrics"
	"github.com/eatglobe/globe-middleware/pkg/ledger"
	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// CacheInvalidator is the narrow contract the manager needs from the signing
// layer. Implemented by signer.Factory.
type CacheInvalidator interface {
	ClearCache(chain wallet.Chain)
	ClearAll()
}

// Listener observes session changes. The argument is nil after a disconnect.
type Listener func(*wallet.Session)

// Manager owns the process-wide wallet session. Exactly one session is
// active at a time; UI-facing callers read it and never mutate it directly.
// All mutations are synchronous: by the time a mutating method returns,
// every subscribed listener has observed the new state.
type Manager struct {
	logger      *zap.Logger
	invalidator CacheInvalidator

	mu         sync.RWMutex
	active     *wallet.Session
	connecting bool
	likes      map[string]bool
	profile    *ledger.ProfilePayload
	listeners  []Listener
}

// NewManager creates a Manager wired to the given cache invalidator.
func NewManager(invalidator CacheInvalidator, logger *zap.Logger) *Manager {
	return &Manager{
		logger:      logger,
		invalidator: invalidator,
		likes:       make(map[string]bool),
	}
}

// Subscribe registers a listener for session changes.
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// Active returns a copy of the current session, if any.
func (m *Manager) Active() (wallet.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return wallet.Session{}, false
	}
	return *m.active, true
}

// BeginConnect marks that the user opened a connect flow. A vendor prompt
// that resolves after AbortConnect is ignored via this flag; there is no way
// to cancel the prompt itself.
func (m *Manager) BeginConnect() {
	m.mu.Lock()
	m.connecting = true
	m.mu.Unlock()
}

// AbortConnect marks the connect flow as abandoned (e.g. the user closed the
// modal). Any late vendor result is dropped by CompleteConnect.
func (m *Manager) AbortConnect() {
	m.mu.Lock()
	m.connecting = false
	m.mu.Unlock()
}

// CompleteConnect installs the session produced by a connect flow, unless
// the flow was abandoned in the meantime. Returns whether it was applied.
func (m *Manager) CompleteConnect(s wallet.Session) bool {
	m.mu.Lock()
	if !m.connecting {
		m.mu.Unlock()
		m.logger.Debug("Ignoring stale connect result",
			zap.String("chain", s.Chain.String()),
			zap.String("address", s.Address))
		return false
	}
	m.connecting = false
	m.active = &s
	m.mu.Unlock()

	metrics.SessionTransitions.WithLabelValues("connect").Inc()
	m.notify(&s)
	return true
}

// SetWallet replaces the session wholesale and clears any pending connect
// flag. Callers are responsible for the session being consistent with a live
// vendor connection.
func (m *Manager) SetWallet(s wallet.Session) {
	m.mu.Lock()
	m.connecting = false
	m.active = &s
	m.mu.Unlock()

	metrics.SessionTransitions.WithLabelValues("set").Inc()
	m.notify(&s)
}

// Disconnect clears the session, the user-scoped interaction state and the
// cached profile, and invalidates every signing-client cache. It does not
// call the vendor's disconnect; that is the caller's job. Idempotent.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	wasConnected := m.active != nil
	m.active = nil
	m.connecting = false
	m.likes = make(map[string]bool)
	m.profile = nil
	m.mu.Unlock()

	m.invalidator.ClearAll()

	if wasConnected {
		metrics.SessionTransitions.WithLabelValues("disconnect").Inc()
		m.logger.Info("Wallet session disconnected")
	}
	m.notify(nil)
}

// HandleAccountEvent applies a vendor-reported account change.
//
// Only events for the session's active chain mutate the session:
//   - empty address list: full disconnect
//   - pending address (connect in flight): address is filled in
//   - different address or connector: chain cache cleared, session updated
//
// Events from an inactive chain only clear that chain's cache, which is
// always safe.
func (m *Manager) HandleAccountEvent(ev wallet.AccountEvent) {
	m.mu.Lock()
	active := m.active
	if active == nil || active.Chain != ev.Chain {
		m.mu.Unlock()
		m.invalidator.ClearCache(ev.Chain)
		return
	}

	if len(ev.Addresses) == 0 {
		m.mu.Unlock()
		m.logger.Info("Wallet reported no accounts, disconnecting",
			zap.String("chain", ev.Chain.String()))
		m.Disconnect()
		return
	}

	next := ev.Addresses[0]
	connectorChanged := ev.Connector != "" && ev.Connector != active.Connector
	if active.Address == next && !connectorChanged {
		m.mu.Unlock()
		return
	}

	// The cache must be cleared before the new address becomes visible:
	// a write racing this transition must never pick up the old client.
	m.invalidator.ClearCache(ev.Chain)

	updated := *active
	updated.Address = next
	if ev.Connector != "" {
		updated.Connector = ev.Connector
	}
	m.active = &updated
	// The user-scoped interaction state belongs to the old address.
	m.likes = make(map[string]bool)
	m.profile = nil
	m.mu.Unlock()

	metrics.SessionTransitions.WithLabelValues("account_switch").Inc()
	m.logger.Info("Active account changed",
		zap.String("chain", ev.Chain.String()),
		zap.String("address", next))
	m.notify(&updated)
}

// SetLocalLike records the user's optimistic like state for a place.
func (m *Manager) SetLocalLike(placeID string, liked bool) {
	m.mu.Lock()
	m.likes[placeID] = liked
	m.mu.Unlock()
}

// LocalLike returns the optimistic like state for a place, if set.
func (m *Manager) LocalLike(placeID string) (liked, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	liked, ok = m.likes[placeID]
	return liked, ok
}

// RemoveLocalLike drops the optimistic state for a place, used when a write
// fails and the tentative update is rolled back.
func (m *Manager) RemoveLocalLike(placeID string) {
	m.mu.Lock()
	delete(m.likes, placeID)
	m.mu.Unlock()
}

// SetProfile caches the connected user's profile.
func (m *Manager) SetProfile(p *ledger.ProfilePayload) {
	m.mu.Lock()
	m.profile = p
	m.mu.Unlock()
}

// Profile returns the cached profile for the connected user, if any.
func (m *Manager) Profile() *ledger.ProfilePayload {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile
}

func (m *Manager) notify(s *wallet.Session) {
	m.mu.RLock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, l := range listeners {
		l(s)
	}
}
