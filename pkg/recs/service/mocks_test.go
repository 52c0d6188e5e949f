package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/eatglobe/globe-middleware/pkg/ledger"
	"github.com/eatglobe/globe-middleware/pkg/recs"
	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// fakeReader serves canned index records and bodies.
type fakeReader struct {
	mu       sync.Mutex
	queryErr error
	records  map[string][]ledger.Record // keyed by requested Type tag values
	bodies   map[string]any             // record id -> payload
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		records: make(map[string][]ledger.Record),
		bodies:  make(map[string]any),
	}
}

func (r *fakeReader) QueryRecords(_ context.Context, filters []ledger.TagFilter) ([]ledger.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	for _, f := range filters {
		if f.Name == ledger.TagType {
			var out []ledger.Record
			for _, v := range f.Values {
				out = append(out, r.records[v]...)
			}
			return out, nil
		}
	}
	return nil, nil
}

func (r *fakeReader) FetchBody(_ context.Context, id string, out any) error {
	r.mu.Lock()
	body, ok := r.bodies[id]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("no body for record %s", id)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// fakeUploader records uploads.
type fakeUploader struct {
	chain   wallet.Chain
	address string
	err     error

	mu      sync.Mutex
	uploads int
}

func (u *fakeUploader) Chain() wallet.Chain { return u.chain }
func (u *fakeUploader) Address() string     { return u.address }

func (u *fakeUploader) Upload(context.Context, []byte, []ledger.Tag) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return "", u.err
	}
	u.uploads++
	return fmt.Sprintf("record-%d", u.uploads), nil
}

// fakeFactory hands out one uploader or one error.
type fakeFactory struct {
	uploader *fakeUploader
	err      error
}

func (f *fakeFactory) Client(_ context.Context, chain wallet.Chain, address, _ string) (ledger.Uploader, error) {
	if f.err != nil {
		return nil, f.err
	}
	if chain == wallet.ChainEthereum {
		return nil, wallet.ErrUploadsUnsupported
	}
	return f.uploader, nil
}

// fakeCache is an in-memory PlaceCache with upsert semantics matching the
// postgres store: rows survive until deleted.
type fakeCache struct {
	mu      sync.Mutex
	places  map[string]*recs.FoodPlace
	listErr error
}

func (c *fakeCache) UpsertPlaces(_ context.Context, places []*recs.FoodPlace) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.places == nil {
		c.places = make(map[string]*recs.FoodPlace)
	}
	for _, p := range places {
		c.places[p.PlaceID] = p
	}
	return nil
}

func (c *fakeCache) ListPlaces(context.Context) ([]*recs.FoodPlace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listErr != nil {
		return nil, c.listErr
	}
	out := make([]*recs.FoodPlace, 0, len(c.places))
	for _, p := range c.places {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlaceID < out[j].PlaceID })
	return out, nil
}

func (c *fakeCache) DeletePlace(_ context.Context, placeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.places, placeID)
	return nil
}

// noopInvalidator satisfies the session manager's invalidation contract.
type noopInvalidator struct{}

func (noopInvalidator) ClearCache(wallet.Chain) {}
func (noopInvalidator) ClearAll()               {}
