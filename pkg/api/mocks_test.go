package api

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/mr-tron/base58"

	"github.com/eatglobe/globe-middleware/pkg/recs"
	"github.com/eatglobe/globe-middleware/pkg/recs/service"
	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// fakeProvider is a scriptable wallet vendor integration. It holds a real
// ed25519 key so the connect flow's ownership challenge can be answered.
type fakeProvider struct {
	address        string
	signKey        ed25519.PrivateKey
	connectErr     error
	signErr        error
	disconnectErr  error
	disconnectHits int
}

func newSolanaProvider(t *testing.T) *fakeProvider {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate wallet key: %v", err)
	}
	return &fakeProvider{address: base58.Encode(pub), signKey: priv}
}

func (p *fakeProvider) Connect(context.Context) (string, error) {
	if p.connectErr != nil {
		return "", p.connectErr
	}
	return p.address, nil
}

func (p *fakeProvider) Accounts(context.Context) ([]string, error) {
	if p.address == "" {
		return nil, nil
	}
	return []string{p.address}, nil
}

func (p *fakeProvider) SignData(context.Context, []byte) ([]byte, error) {
	return []byte("signature"), nil
}

func (p *fakeProvider) SignMessage(_ context.Context, message string) (*wallet.MessageProof, error) {
	if p.signErr != nil {
		return nil, p.signErr
	}
	return &wallet.MessageProof{Signature: ed25519.Sign(p.signKey, []byte(message))}, nil
}

func (p *fakeProvider) Disconnect(context.Context) error {
	p.disconnectHits++
	return p.disconnectErr
}

// fakeRecService is a scriptable recommendation service.
type fakeRecService struct {
	places    []*recs.FoodPlace
	comments  []*recs.Comment
	profile   *recs.Profile
	recordID  string
	likeCount int
	liked     bool
	err       error

	lastInput   *service.RecommendationInput
	lastPlaceID string
	lastLiked   bool
}

func (s *fakeRecService) LoadGlobe(context.Context) ([]*recs.FoodPlace, error) {
	return s.places, s.err
}

func (s *fakeRecService) Places() []*recs.FoodPlace { return s.places }

func (s *fakeRecService) SubmitRecommendation(_ context.Context, input *service.RecommendationInput) (string, error) {
	s.lastInput = input
	return s.recordID, s.err
}

func (s *fakeRecService) SetLike(_ context.Context, placeID string, liked bool) (string, error) {
	s.lastPlaceID = placeID
	s.lastLiked = liked
	return s.recordID, s.err
}

func (s *fakeRecService) SubmitComment(_ context.Context, placeID, _, _ string) (string, error) {
	s.lastPlaceID = placeID
	return s.recordID, s.err
}

func (s *fakeRecService) SaveProfile(context.Context, string, string, string) (string, error) {
	return s.recordID, s.err
}

func (s *fakeRecService) PlaceLikes(_ context.Context, placeID string) (int, bool, error) {
	s.lastPlaceID = placeID
	return s.likeCount, s.liked, s.err
}

func (s *fakeRecService) PlaceComments(_ context.Context, placeID string) ([]*recs.Comment, error) {
	s.lastPlaceID = placeID
	return s.comments, s.err
}

func (s *fakeRecService) ProfileOf(context.Context, string) (*recs.Profile, error) {
	return s.profile, s.err
}

func (s *fakeRecService) HasUserRecommended(string) bool { return false }

// noopInvalidator satisfies the session manager's invalidation contract.
type noopInvalidator struct{}

func (noopInvalidator) ClearCache(wallet.Chain) {}
func (noopInvalidator) ClearAll()               {}
