package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// fakeUploader captures the last upload instead of talking to a gateway.
type fakeUploader struct {
	chain   wallet.Chain
	address string
	err     error

	lastData []byte
	lastTags []Tag
}

func (u *fakeUploader) Chain() wallet.Chain { return u.chain }
func (u *fakeUploader) Address() string     { return u.address }

func (u *fakeUploader) Upload(_ context.Context, data []byte, tags []Tag) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.lastData = data
	u.lastTags = tags
	return "record-1", nil
}

func solanaUploader() *fakeUploader {
	return &fakeUploader{chain: wallet.ChainSolana, address: "sol-addr"}
}

func TestPublisher_StampsAuthorFromUploader(t *testing.T) {
	up := solanaUploader()
	p := NewPublisher("app", zap.NewNop())

	payload := &RecommendationPayload{
		PlaceID:   "p1",
		PlaceName: "Noodle House",
		Category:  "ramen",
		CreatedAt: time.Now().UTC(),
	}
	id, err := p.PublishRecommendation(context.Background(), up, payload)
	if err != nil {
		t.Fatalf("PublishRecommendation() failed: %v", err)
	}
	if id != "record-1" {
		t.Fatalf("expected record-1, got %q", id)
	}
	if payload.Author != "sol-addr" || payload.AuthorChain != "solana" {
		t.Fatalf("expected author stamped from uploader, got %q/%q", payload.Author, payload.AuthorChain)
	}

	var decoded RecommendationPayload
	if err := json.Unmarshal(up.lastData, &decoded); err != nil {
		t.Fatalf("uploaded body is not valid JSON: %v", err)
	}
	if decoded.Author != "sol-addr" {
		t.Fatalf("expected uploaded body to carry the author, got %q", decoded.Author)
	}
}

func TestPublisher_LikeTypeSelection(t *testing.T) {
	p := NewPublisher("app", zap.NewNop())

	up := solanaUploader()
	if _, err := p.PublishLike(context.Background(), up, &LikePayload{PlaceID: "p1", CreatedAt: time.Now()}, true); err != nil {
		t.Fatalf("PublishLike(liked) failed: %v", err)
	}
	if got := tagValue(up.lastTags, TagType); got != "like" {
		t.Fatalf("expected like record, got %q", got)
	}

	if _, err := p.PublishLike(context.Background(), up, &LikePayload{PlaceID: "p1", CreatedAt: time.Now()}, false); err != nil {
		t.Fatalf("PublishLike(unliked) failed: %v", err)
	}
	if got := tagValue(up.lastTags, TagType); got != "unlike" {
		t.Fatalf("expected unlike record, got %q", got)
	}
}

func TestPublisher_UploadErrorPropagates(t *testing.T) {
	up := solanaUploader()
	up.err = errors.New("gateway down")
	p := NewPublisher("app", zap.NewNop())

	_, err := p.PublishComment(context.Background(), up, &CommentPayload{
		PlaceID:   "p1",
		Body:      "great",
		CreatedAt: time.Now(),
	})
	if err == nil || !errors.Is(err, up.err) {
		t.Fatalf("expected wrapped upload error, got %v", err)
	}
}
