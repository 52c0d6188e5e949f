package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/eatglobe/globe-middleware/internal/metrics"
)

// Publisher turns user actions into tagged ledger records and submits them
// through the provided signing client. Each publish is a single best-effort
// attempt: no retries, no queuing. Rollback of optimistic UI state is the
// caller's responsibility.
type Publisher struct {
	appName string
	logger  *zap.Logger
}

// NewPublisher creates a Publisher stamping records with the given App-Name.
func NewPublisher(appName string, logger *zap.Logger) *Publisher {
	return &Publisher{appName: appName, logger: logger}
}

// PublishRecommendation submits a recommendation record and returns its id.
func (p *Publisher) PublishRecommendation(ctx context.Context, up Uploader, payload *RecommendationPayload) (string, error) {
	payload.Author = up.Address()
	payload.AuthorChain = up.Chain().String()
	return p.publish(ctx, up, TypeRecommendation, payload, recommendationTags(p.appName, payload))
}

// PublishLike submits a like or unlike record for a place.
func (p *Publisher) PublishLike(ctx context.Context, up Uploader, payload *LikePayload, liked bool) (string, error) {
	payload.Author = up.Address()
	payload.AuthorChain = up.Chain().String()
	typ := TypeLike
	if !liked {
		typ = TypeUnlike
	}
	return p.publish(ctx, up, typ, payload, likeTags(p.appName, typ, payload))
}

// PublishComment submits a comment record for a place.
func (p *Publisher) PublishComment(ctx context.Context, up Uploader, payload *CommentPayload) (string, error) {
	payload.Author = up.Address()
	payload.AuthorChain = up.Chain().String()
	return p.publish(ctx, up, TypeComment, payload, commentTags(p.appName, payload))
}

// PublishProfile submits a profile record. Profiles carry no Place-ID; the
// latest record per author wins on read.
func (p *Publisher) PublishProfile(ctx context.Context, up Uploader, payload *ProfilePayload) (string, error) {
	payload.Author = up.Address()
	payload.AuthorChain = up.Chain().String()
	return p.publish(ctx, up, TypeProfile, payload, profileTags(p.appName, payload))
}

func (p *Publisher) publish(ctx context.Context, up Uploader, typ Type, payload any, tags []Tag) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s payload: %w", typ, err)
	}

	id, err := up.Upload(ctx, data, tags)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(string(typ), "error").Inc()
		return "", fmt.Errorf("failed to upload %s record: %w", typ, err)
	}

	metrics.UploadsTotal.WithLabelValues(string(typ), "ok").Inc()
	p.logger.Info("Published ledger record",
		zap.String("type", string(typ)),
		zap.String("record_id", id),
		zap.String("author", up.Address()),
		zap.String("chain", up.Chain().String()))
	return id, nil
}
