package signer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// fakeProvider is an in-memory wallet.Provider. Accounts calls are counted;
// each signing-client construction queries Accounts exactly once, so the
// counter doubles as a construction counter.
type fakeProvider struct {
	mu        sync.Mutex
	addresses []string
	signature []byte
	signErr   error

	accountsCalls atomic.Int64
	accountsGate  chan struct{} // if set, Accounts blocks until closed
}

func newFakeProvider(addresses ...string) *fakeProvider {
	return &fakeProvider{addresses: addresses, signature: []byte("sig")}
}

func (p *fakeProvider) Connect(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.addresses) == 0 {
		return "", nil
	}
	return p.addresses[0], nil
}

func (p *fakeProvider) Accounts(context.Context) ([]string, error) {
	p.accountsCalls.Add(1)
	if p.accountsGate != nil {
		<-p.accountsGate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.addresses))
	copy(out, p.addresses)
	return out, nil
}

func (p *fakeProvider) SignData(context.Context, []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signature, p.signErr
}

func (p *fakeProvider) SignMessage(context.Context, string) (*wallet.MessageProof, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.signErr != nil {
		return nil, p.signErr
	}
	return &wallet.MessageProof{Signature: p.signature}, nil
}

func (p *fakeProvider) Disconnect(context.Context) error {
	return nil
}

func (p *fakeProvider) setAddresses(addresses ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addresses = addresses
}
