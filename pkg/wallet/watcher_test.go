package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type scriptedProvider struct {
	mu        sync.Mutex
	addresses []string
	err       error
}

func (p *scriptedProvider) set(addresses []string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addresses = addresses
	p.err = err
}

func (p *scriptedProvider) Connect(context.Context) (string, error) { return "", nil }
func (p *scriptedProvider) Disconnect(context.Context) error        { return nil }

func (p *scriptedProvider) SignData(context.Context, []byte) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (p *scriptedProvider) SignMessage(context.Context, string) (*MessageProof, error) {
	return nil, errors.New("not implemented")
}

func (p *scriptedProvider) Accounts(context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.addresses, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []AccountEvent
}

func (r *eventRecorder) handle(ev AccountEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) all() []AccountEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AccountEvent(nil), r.events...)
}

func newTestWatcher(provider Provider, rec *eventRecorder) *Watcher {
	return NewWatcher(map[Chain]Provider{ChainSolana: provider}, rec.handle, time.Second, zap.NewNop())
}

func TestWatcher_EmitsOnAccountChange(t *testing.T) {
	provider := &scriptedProvider{addresses: []string{"addr-1"}}
	rec := &eventRecorder{}
	w := newTestWatcher(provider, rec)
	ctx := context.Background()

	w.poll(ctx)
	events := rec.all()
	if len(events) != 1 || events[0].Chain != ChainSolana || events[0].Addresses[0] != "addr-1" {
		t.Fatalf("expected one event for addr-1, got %v", events)
	}

	// Unchanged accounts stay silent.
	w.poll(ctx)
	if len(rec.all()) != 1 {
		t.Fatalf("expected no event for unchanged accounts, got %v", rec.all())
	}

	provider.set([]string{"addr-2"}, nil)
	w.poll(ctx)
	events = rec.all()
	if len(events) != 2 || events[1].Addresses[0] != "addr-2" {
		t.Fatalf("expected a switch event for addr-2, got %v", events)
	}
}

func TestWatcher_FirstEmptyObservationIsNotAnEvent(t *testing.T) {
	provider := &scriptedProvider{}
	rec := &eventRecorder{}
	w := newTestWatcher(provider, rec)

	w.poll(context.Background())
	if len(rec.all()) != 0 {
		t.Fatalf("expected no event for an initially empty wallet, got %v", rec.all())
	}
}

func TestWatcher_EmitsRevocation(t *testing.T) {
	provider := &scriptedProvider{addresses: []string{"addr-1"}}
	rec := &eventRecorder{}
	w := newTestWatcher(provider, rec)
	ctx := context.Background()

	w.poll(ctx)
	provider.set(nil, nil)
	w.poll(ctx)

	events := rec.all()
	if len(events) != 2 || len(events[1].Addresses) != 0 {
		t.Fatalf("expected a revocation event with no addresses, got %v", events)
	}
}

func TestWatcher_PollErrorKeepsLastState(t *testing.T) {
	provider := &scriptedProvider{addresses: []string{"addr-1"}}
	rec := &eventRecorder{}
	w := newTestWatcher(provider, rec)
	ctx := context.Background()

	w.poll(ctx)

	// A bridge outage must not read as a revocation.
	provider.set(nil, errors.New("bridge unreachable"))
	w.poll(ctx)
	if len(rec.all()) != 1 {
		t.Fatalf("expected no event while the bridge is down, got %v", rec.all())
	}

	// Recovery with the same address stays silent too.
	provider.set([]string{"addr-1"}, nil)
	w.poll(ctx)
	if len(rec.all()) != 1 {
		t.Fatalf("expected no event after recovery with the same address, got %v", rec.all())
	}
}

func TestWatcher_StartAndStop(t *testing.T) {
	provider := &scriptedProvider{addresses: []string{"addr-1"}}
	rec := &eventRecorder{}
	w := NewWatcher(map[Chain]Provider{ChainSolana: provider}, rec.handle, 10*time.Millisecond, zap.NewNop())

	w.Start(context.Background())
	deadline := time.After(2 * time.Second)
	for len(rec.all()) == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the first poll event")
		case <-time.After(5 * time.Millisecond):
		}
	}
	w.Stop()

	// Stop must be idempotent.
	w.Stop()
}
