package session

import (
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/eatglobe/globe-middleware/pkg/ledger"
	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// recordingInvalidator records invalidation calls in order.
type recordingInvalidator struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingInvalidator) ClearCache(chain wallet.Chain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "clear:"+chain.String())
}

func (r *recordingInvalidator) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "clear-all")
}

func (r *recordingInvalidator) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func newTestManager() (*Manager, *recordingInvalidator) {
	inv := &recordingInvalidator{}
	return NewManager(inv, zap.NewNop()), inv
}

func solanaSession(address string) wallet.Session {
	return wallet.Session{
		Chain:     wallet.ChainSolana,
		Address:   address,
		Connector: "phantom",
	}
}

func TestManager_CompleteConnect_InstallsSession(t *testing.T) {
	m, _ := newTestManager()

	m.BeginConnect()
	if !m.CompleteConnect(solanaSession("addr-1")) {
		t.Fatal("expected connect result to be applied")
	}

	sess, ok := m.Active()
	if !ok {
		t.Fatal("expected an active session")
	}
	if sess.Address != "addr-1" || sess.Chain != wallet.ChainSolana {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestManager_CompleteConnect_DropsStaleResult(t *testing.T) {
	m, _ := newTestManager()

	m.BeginConnect()
	m.AbortConnect()

	if m.CompleteConnect(solanaSession("addr-1")) {
		t.Fatal("expected stale connect result to be dropped")
	}
	if _, ok := m.Active(); ok {
		t.Fatal("expected no active session after dropped connect")
	}
}

func TestManager_Disconnect_ClearsEverythingAndIsIdempotent(t *testing.T) {
	m, inv := newTestManager()

	m.SetWallet(solanaSession("addr-1"))
	m.SetLocalLike("place-1", true)
	m.SetProfile(&ledger.ProfilePayload{Username: "ada"})

	m.Disconnect()

	if _, ok := m.Active(); ok {
		t.Fatal("expected no active session after disconnect")
	}
	if _, ok := m.LocalLike("place-1"); ok {
		t.Fatal("expected local like state to be cleared")
	}
	if m.Profile() != nil {
		t.Fatal("expected cached profile to be cleared")
	}

	// Second disconnect must not panic or change anything.
	m.Disconnect()

	calls := inv.recorded()
	count := 0
	for _, c := range calls {
		if c == "clear-all" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected ClearAll on every disconnect, got calls %v", calls)
	}
}

func TestManager_AccountEvent_InactiveChainOnlyClearsCache(t *testing.T) {
	m, inv := newTestManager()
	m.SetWallet(solanaSession("addr-1"))

	m.HandleAccountEvent(wallet.AccountEvent{
		Chain:     wallet.ChainArweave,
		Addresses: []string{"ar-addr"},
	})

	sess, ok := m.Active()
	if !ok || sess.Address != "addr-1" || sess.Chain != wallet.ChainSolana {
		t.Fatalf("expected session untouched, got %+v ok=%v", sess, ok)
	}

	calls := inv.recorded()
	if len(calls) != 1 || calls[0] != "clear:arweave" {
		t.Fatalf("expected only the arweave cache cleared, got %v", calls)
	}
}

func TestManager_AccountEvent_EmptyAddressesDisconnects(t *testing.T) {
	m, inv := newTestManager()
	m.SetWallet(solanaSession("addr-1"))
	m.SetLocalLike("place-1", true)

	m.HandleAccountEvent(wallet.AccountEvent{Chain: wallet.ChainSolana})

	if _, ok := m.Active(); ok {
		t.Fatal("expected session cleared after revocation")
	}
	if _, ok := m.LocalLike("place-1"); ok {
		t.Fatal("expected local like state cleared after revocation")
	}

	found := false
	for _, c := range inv.recorded() {
		if c == "clear-all" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected every signing-client cache cleared on revocation")
	}
}

func TestManager_AccountEvent_AddressSwitchClearsCacheBeforeNotify(t *testing.T) {
	m, inv := newTestManager()
	m.SetWallet(solanaSession("addr-1"))
	m.SetLocalLike("place-1", true)
	m.SetProfile(&ledger.ProfilePayload{Username: "ada"})

	var order []string
	var orderMu sync.Mutex
	m.Subscribe(func(s *wallet.Session) {
		orderMu.Lock()
		defer orderMu.Unlock()
		if s != nil {
			order = append(order, "notify:"+s.Address)
		}
	})

	m.HandleAccountEvent(wallet.AccountEvent{
		Chain:     wallet.ChainSolana,
		Addresses: []string{"addr-2"},
	})

	sess, ok := m.Active()
	if !ok || sess.Address != "addr-2" {
		t.Fatalf("expected session switched to addr-2, got %+v ok=%v", sess, ok)
	}
	if _, ok := m.LocalLike("place-1"); ok {
		t.Fatal("expected like state of the old address to be dropped")
	}
	if m.Profile() != nil {
		t.Fatal("expected profile of the old address to be dropped")
	}

	// The old client must be gone before anyone observes the new address.
	calls := inv.recorded()
	if len(calls) == 0 || calls[0] != "clear:solana" {
		t.Fatalf("expected solana cache cleared on switch, got %v", calls)
	}
	orderMu.Lock()
	defer orderMu.Unlock()
	if len(order) != 1 || order[0] != "notify:addr-2" {
		t.Fatalf("expected one notification for addr-2, got %v", order)
	}
}

func TestManager_AccountEvent_SameAddressIsNoop(t *testing.T) {
	m, inv := newTestManager()
	m.SetWallet(solanaSession("addr-1"))

	m.HandleAccountEvent(wallet.AccountEvent{
		Chain:     wallet.ChainSolana,
		Addresses: []string{"addr-1"},
	})

	if calls := inv.recorded(); len(calls) != 0 {
		t.Fatalf("expected no invalidations for unchanged account, got %v", calls)
	}
}

func TestManager_AccountEvent_ConnectorChangeInvalidates(t *testing.T) {
	m, inv := newTestManager()
	m.SetWallet(solanaSession("addr-1"))

	m.HandleAccountEvent(wallet.AccountEvent{
		Chain:     wallet.ChainSolana,
		Connector: "solflare",
		Addresses: []string{"addr-1"},
	})

	sess, _ := m.Active()
	if sess.Connector != "solflare" {
		t.Fatalf("expected connector updated, got %q", sess.Connector)
	}
	calls := inv.recorded()
	if len(calls) != 1 || calls[0] != "clear:solana" {
		t.Fatalf("expected cache cleared on connector change, got %v", calls)
	}
}

func TestManager_LocalLikeLifecycle(t *testing.T) {
	m, _ := newTestManager()

	if _, ok := m.LocalLike("p"); ok {
		t.Fatal("expected no like state initially")
	}

	m.SetLocalLike("p", true)
	if liked, ok := m.LocalLike("p"); !ok || !liked {
		t.Fatalf("expected liked=true, got liked=%v ok=%v", liked, ok)
	}

	m.SetLocalLike("p", false)
	if liked, ok := m.LocalLike("p"); !ok || liked {
		t.Fatalf("expected liked=false, got liked=%v ok=%v", liked, ok)
	}

	m.RemoveLocalLike("p")
	if _, ok := m.LocalLike("p"); ok {
		t.Fatal("expected like state removed")
	}
}
