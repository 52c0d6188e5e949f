// Package service implements the business logic turning user actions into
// ledger records and reconstructing the globe from them.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eatglobe/globe-middleware/internal/metrics"
	apperrors "github.com/eatglobe/globe-middleware/pkg/app/errors"
	"github.com/eatglobe/globe-middleware/pkg/ledger"
	"github.com/eatglobe/globe-middleware/pkg/recs"
	"github.com/eatglobe/globe-middleware/pkg/session"
	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

var (
	ErrAlreadyRecommended = errors.New("place already recommended by this user")
	ErrPlaceNotFound      = errors.New("place not found")
	ErrProfileNotFound    = errors.New("profile not found")
)

// LedgerReader is the narrow read-path contract the service needs.
//
//go:generate mockery --name LedgerReader --output mocks --outpkg mocks --filename mock_ledger_reader.go --with-expecter
type LedgerReader interface {
	QueryRecords(ctx context.Context, filters []ledger.TagFilter) ([]ledger.Record, error)
	FetchBody(ctx context.Context, id string, out any) error
}

// SignerFactory hands out the signing client for the active session.
type SignerFactory interface {
	Client(ctx context.Context, chain wallet.Chain, address, connector string) (ledger.Uploader, error)
}

// PlaceCache persists the folded read model so reads can degrade gracefully
// when the ledger index is unreachable. Optional; may be nil.
type PlaceCache interface {
	UpsertPlaces(ctx context.Context, places []*recs.FoodPlace) error
	ListPlaces(ctx context.Context) ([]*recs.FoodPlace, error)
	DeletePlace(ctx context.Context, placeID string) error
}

// Config carries the service policy knobs.
type Config struct {
	AppName string

	// DedupByAuthor controls whether the global load keeps only one
	// recommendation per (place, author). The local submit flow always
	// rejects duplicates; historical records may still contain them.
	DedupByAuthor bool
}

// RecommendationInput is a submit request for a new recommendation.
// Coordinates arrive as strings and are parsed into decimals on submit.
type RecommendationInput struct {
	PlaceID     string   `json:"placeId"`
	PlaceName   string   `json:"placeName"`
	Country     string   `json:"country"`
	CountryCode string   `json:"countryCode"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Lat         string   `json:"lat"`
	Lng         string   `json:"lng"`
	Category    string   `json:"category"`
	DietaryTags []string `json:"dietaryTags"`
	Caption     string   `json:"caption"`
}

// Service is the interface for the recommendation business logic.
type Service interface {
	LoadGlobe(ctx context.Context) ([]*recs.FoodPlace, error)
	Places() []*recs.FoodPlace
	SubmitRecommendation(ctx context.Context, input *RecommendationInput) (string, error)
	SetLike(ctx context.Context, placeID string, liked bool) (string, error)
	SubmitComment(ctx context.Context, placeID, body, userName string) (string, error)
	SaveProfile(ctx context.Context, username, bio, avatarURL string) (string, error)
	PlaceLikes(ctx context.Context, placeID string) (count int, likedByUser bool, err error)
	PlaceComments(ctx context.Context, placeID string) ([]*recs.Comment, error)
	ProfileOf(ctx context.Context, address string) (*recs.Profile, error)
	HasUserRecommended(placeID string) bool
}

type recService struct {
	cfg       Config
	sessions  *session.Manager
	factory   SignerFactory
	publisher *ledger.Publisher
	reader    LedgerReader
	cache     PlaceCache
	logger    *zap.Logger

	mu     sync.RWMutex
	places map[string]*recs.FoodPlace
}

// NewService creates the recommendation service.
func NewService(
	cfg Config,
	sessions *session.Manager,
	factory SignerFactory,
	publisher *ledger.Publisher,
	reader LedgerReader,
	cache PlaceCache,
	logger *zap.Logger,
) Service {
	return &recService{
		cfg:       cfg,
		sessions:  sessions,
		factory:   factory,
		publisher: publisher,
		reader:    reader,
		cache:     cache,
		logger:    logger,
		places:    make(map[string]*recs.FoodPlace),
	}
}

// uploader resolves the signing client for the active session.
func (s *recService) uploader(ctx context.Context) (ledger.Uploader, wallet.Session, error) {
	sess, ok := s.sessions.Active()
	if !ok {
		return nil, wallet.Session{}, apperrors.UnAuthorizedError(wallet.ErrNoActiveSession, "connect a wallet first")
	}

	up, err := s.factory.Client(ctx, sess.Chain, sess.Address, sess.Connector)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrUploadsUnsupported):
			return nil, sess, apperrors.NotSupportedError(err, "this wallet cannot publish records yet; connect an Arweave or Solana wallet")
		case errors.Is(err, wallet.ErrWalletUnavailable):
			return nil, sess, apperrors.DependencyError(err, "wallet is unavailable; is the extension installed?")
		case errors.Is(err, wallet.ErrWalletNotConnected):
			return nil, sess, apperrors.UnAuthorizedError(err, "wallet is not connected")
		}
		return nil, sess, fmt.Errorf("failed to acquire signing client: %w", err)
	}
	return up, sess, nil
}

// SubmitRecommendation publishes a recommendation record. A user may
// recommend a given place only once through this flow.
func (s *recService) SubmitRecommendation(ctx context.Context, input *RecommendationInput) (string, error) {
	if input.PlaceID == "" || input.PlaceName == "" {
		return "", apperrors.BadRequestError(nil, "placeId and placeName are required")
	}
	if input.Category == "" {
		return "", apperrors.BadRequestError(nil, "category is required")
	}

	payload, err := buildRecommendationPayload(input)
	if err != nil {
		return "", apperrors.BadRequestError(err, "invalid place coordinates")
	}

	up, sess, err := s.uploader(ctx)
	if err != nil {
		return "", err
	}
	if profile := s.sessions.Profile(); profile != nil {
		payload.RecommenderName = profile.Username
	}

	s.mu.RLock()
	place, known := s.places[input.PlaceID]
	already := known && place.HasRecommender(sess.Address)
	s.mu.RUnlock()
	if already {
		return "", apperrors.ConflictError(ErrAlreadyRecommended, "you already recommended this place")
	}

	correlationID := uuid.NewString()
	s.logger.Info("Submitting recommendation",
		zap.String("upload_id", correlationID),
		zap.String("place_id", input.PlaceID),
		zap.String("author", sess.Address))

	recordID, err := s.publisher.PublishRecommendation(ctx, up, payload)
	if err != nil {
		return "", err
	}

	s.applyRecommendation(recordID, payload)
	return recordID, nil
}

// SetLike publishes a like or unlike record, applying the change
// optimistically and rolling it back if the upload fails.
func (s *recService) SetLike(ctx context.Context, placeID string, liked bool) (string, error) {
	if placeID == "" {
		return "", apperrors.BadRequestError(nil, "placeId is required")
	}

	up, _, err := s.uploader(ctx)
	if err != nil {
		return "", err
	}

	// Tentative apply; the revert below is the guaranteed cleanup step.
	prev, hadPrev := s.sessions.LocalLike(placeID)
	s.sessions.SetLocalLike(placeID, liked)

	published := false
	defer func() {
		if published {
			return
		}
		if hadPrev {
			s.sessions.SetLocalLike(placeID, prev)
		} else {
			s.sessions.RemoveLocalLike(placeID)
		}
	}()

	recordID, err := s.publisher.PublishLike(ctx, up, &ledger.LikePayload{
		PlaceID:   placeID,
		CreatedAt: time.Now().UTC(),
	}, liked)
	if err != nil {
		return "", err
	}

	published = true
	return recordID, nil
}

// SubmitComment publishes a comment record for a place.
func (s *recService) SubmitComment(ctx context.Context, placeID, body, userName string) (string, error) {
	if placeID == "" {
		return "", apperrors.BadRequestError(nil, "placeId is required")
	}
	if strings.TrimSpace(body) == "" {
		return "", apperrors.BadRequestError(nil, "comment body is required")
	}

	up, _, err := s.uploader(ctx)
	if err != nil {
		return "", err
	}

	return s.publisher.PublishComment(ctx, up, &ledger.CommentPayload{
		PlaceID:   placeID,
		UserName:  userName,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
}

// SaveProfile publishes a profile record and caches it for the session.
func (s *recService) SaveProfile(ctx context.Context, username, bio, avatarURL string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", apperrors.BadRequestError(nil, "username is required")
	}

	up, _, err := s.uploader(ctx)
	if err != nil {
		return "", err
	}

	payload := &ledger.ProfilePayload{
		Username:  username,
		Bio:       bio,
		AvatarURL: avatarURL,
		UpdatedAt: time.Now().UTC(),
	}
	recordID, err := s.publisher.PublishProfile(ctx, up, payload)
	if err != nil {
		return "", err
	}

	s.sessions.SetProfile(payload)
	return recordID, nil
}

// LoadGlobe reconstructs all places from the ledger: recommendation records
// are fetched and folded by place, like counts resolved last-write-wins per
// author. On index failure the persisted read model is served instead.
func (s *recService) LoadGlobe(ctx context.Context) ([]*recs.FoodPlace, error) {
	start := time.Now()

	recRecords, err := s.reader.QueryRecords(ctx, []ledger.TagFilter{
		{Name: ledger.TagAppName, Values: []string{s.cfg.AppName}},
		{Name: ledger.TagType, Values: []string{string(ledger.TypeRecommendation)}},
	})
	if err != nil {
		return s.loadFromCache(ctx, err)
	}

	places := s.foldRecommendations(ctx, recRecords)

	likeRecords, err := s.reader.QueryRecords(ctx, []ledger.TagFilter{
		{Name: ledger.TagAppName, Values: []string{s.cfg.AppName}},
		{Name: ledger.TagType, Values: []string{string(ledger.TypeLike), string(ledger.TypeUnlike)}},
	})
	if err != nil {
		s.logger.Warn("Failed to load like records, counts may be stale", zap.Error(err))
	} else {
		for placeID, records := range ledger.GroupByPlace(likeRecords) {
			if place, ok := places[placeID]; ok {
				place.LikeCount = ledger.CountLikes(records)
			}
		}
	}

	s.mu.Lock()
	s.places = places
	s.mu.Unlock()

	result := sortedPlaces(places)
	if s.cache != nil {
		if err := s.cache.UpsertPlaces(ctx, result); err != nil {
			s.logger.Warn("Failed to persist place read model", zap.Error(err))
		}
		s.pruneCache(ctx, places)
	}

	metrics.GlobeLoadDuration.Observe(time.Since(start).Seconds())
	metrics.PlacesResolved.Set(float64(len(result)))
	s.logger.Info("Globe loaded",
		zap.Int("places", len(result)),
		zap.Int("recommendation_records", len(recRecords)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// pruneCache drops cached rows for places the fold no longer produced, so a
// stale read model cannot resurrect them on the next index outage.
func (s *recService) pruneCache(ctx context.Context, live map[string]*recs.FoodPlace) {
	cached, err := s.cache.ListPlaces(ctx)
	if err != nil {
		s.logger.Warn("Failed to list cached places for pruning", zap.Error(err))
		return
	}
	for _, p := range cached {
		if _, ok := live[p.PlaceID]; ok {
			continue
		}
		if err := s.cache.DeletePlace(ctx, p.PlaceID); err != nil {
			s.logger.Warn("Failed to prune stale cached place",
				zap.String("place_id", p.PlaceID),
				zap.Error(err))
		}
	}
}

func (s *recService) loadFromCache(ctx context.Context, cause error) ([]*recs.FoodPlace, error) {
	if s.cache == nil {
		return nil, apperrors.DependencyError(cause, "ledger index unavailable")
	}

	cached, cacheErr := s.cache.ListPlaces(ctx)
	if cacheErr != nil {
		return nil, apperrors.DependencyError(cause, "ledger index unavailable")
	}

	s.logger.Warn("Serving globe from persisted read model",
		zap.Int("places", len(cached)),
		zap.Error(cause))

	places := make(map[string]*recs.FoodPlace, len(cached))
	for _, p := range cached {
		places[p.PlaceID] = p
	}
	s.mu.Lock()
	s.places = places
	s.mu.Unlock()

	return cached, nil
}

// foldRecommendations fetches record bodies and merges them by place id.
// A record whose body cannot be fetched is logged and skipped; one bad
// record must not abort the whole globe load.
func (s *recService) foldRecommendations(ctx context.Context, records []ledger.Record) map[string]*recs.FoodPlace {
	places := make(map[string]*recs.FoodPlace)

	for _, rec := range records {
		var payload ledger.RecommendationPayload
		if err := s.reader.FetchBody(ctx, rec.ID, &payload); err != nil {
			metrics.RecordsSkipped.WithLabelValues(string(ledger.TypeRecommendation)).Inc()
			s.logger.Warn("Skipping unreadable recommendation record",
				zap.String("record_id", rec.ID),
				zap.Error(err))
			continue
		}
		if payload.PlaceID == "" {
			continue
		}

		place, ok := places[payload.PlaceID]
		if !ok {
			place = placeFromPayload(&payload)
			places[payload.PlaceID] = place
		}

		if s.cfg.DedupByAuthor && place.HasRecommender(payload.Author) {
			continue
		}

		place.Recommenders = append(place.Recommenders, &recs.Recommender{
			Address:       payload.Author,
			Chain:         payload.AuthorChain,
			Name:          payload.RecommenderName,
			Caption:       payload.Caption,
			DietaryTags:   payload.DietaryTags,
			RecordID:      rec.ID,
			RecommendedAt: payload.CreatedAt,
		})
	}

	return places
}

// Places returns the current in-memory snapshot.
func (s *recService) Places() []*recs.FoodPlace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedPlaces(s.places)
}

// PlaceLikes queries the like state for one place. The connected user's
// optimistic local state overrides the ledger-resolved status until the next
// load confirms it.
func (s *recService) PlaceLikes(ctx context.Context, placeID string) (int, bool, error) {
	if placeID == "" {
		return 0, false, apperrors.BadRequestError(nil, "placeId is required")
	}

	records, err := s.reader.QueryRecords(ctx, []ledger.TagFilter{
		{Name: ledger.TagAppName, Values: []string{s.cfg.AppName}},
		{Name: ledger.TagType, Values: []string{string(ledger.TypeLike), string(ledger.TypeUnlike)}},
		{Name: ledger.TagPlaceID, Values: []string{placeID}},
	})
	if err != nil {
		return 0, false, apperrors.DependencyError(err, "ledger index unavailable")
	}

	count := ledger.CountLikes(records)
	liked := false
	if sess, ok := s.sessions.Active(); ok {
		liked = ledger.LikeStatus(records, sess.Address)
		if local, set := s.sessions.LocalLike(placeID); set && local != liked {
			if local {
				count++
			} else if count > 0 {
				count--
			}
			liked = local
		}
	}
	return count, liked, nil
}

// PlaceComments returns all comments for a place, newest first.
func (s *recService) PlaceComments(ctx context.Context, placeID string) ([]*recs.Comment, error) {
	if placeID == "" {
		return nil, apperrors.BadRequestError(nil, "placeId is required")
	}

	records, err := s.reader.QueryRecords(ctx, []ledger.TagFilter{
		{Name: ledger.TagAppName, Values: []string{s.cfg.AppName}},
		{Name: ledger.TagType, Values: []string{string(ledger.TypeComment)}},
		{Name: ledger.TagPlaceID, Values: []string{placeID}},
	})
	if err != nil {
		return nil, apperrors.DependencyError(err, "ledger index unavailable")
	}

	comments := make([]*recs.Comment, 0, len(records))
	for _, rec := range records {
		var payload ledger.CommentPayload
		if err := s.reader.FetchBody(ctx, rec.ID, &payload); err != nil {
			metrics.RecordsSkipped.WithLabelValues(string(ledger.TypeComment)).Inc()
			s.logger.Warn("Skipping unreadable comment record",
				zap.String("record_id", rec.ID),
				zap.Error(err))
			continue
		}
		comments = append(comments, &recs.Comment{
			RecordID:  rec.ID,
			PlaceID:   payload.PlaceID,
			Author:    payload.Author,
			Chain:     payload.AuthorChain,
			UserName:  payload.UserName,
			Body:      payload.Body,
			CreatedAt: payload.CreatedAt,
		})
	}

	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

// ProfileOf resolves the latest profile record for an address.
func (s *recService) ProfileOf(ctx context.Context, address string) (*recs.Profile, error) {
	if address == "" {
		return nil, apperrors.BadRequestError(nil, "address is required")
	}

	records, err := s.reader.QueryRecords(ctx, []ledger.TagFilter{
		{Name: ledger.TagAppName, Values: []string{s.cfg.AppName}},
		{Name: ledger.TagType, Values: []string{string(ledger.TypeProfile)}},
		{Name: ledger.TagAuthor, Values: []string{address}},
	})
	if err != nil {
		return nil, apperrors.DependencyError(err, "ledger index unavailable")
	}

	latest, ok := ledger.LatestByAuthor(records)[address]
	if !ok {
		return nil, apperrors.ResourceNotFoundError(ErrProfileNotFound, "profile not found")
	}

	var payload ledger.ProfilePayload
	if err := s.reader.FetchBody(ctx, latest.ID, &payload); err != nil {
		return nil, apperrors.DependencyError(err, "failed to fetch profile record")
	}

	return &recs.Profile{
		Address:   payload.Author,
		Chain:     payload.AuthorChain,
		Username:  payload.Username,
		Bio:       payload.Bio,
		AvatarURL: payload.AvatarURL,
		UpdatedAt: payload.UpdatedAt,
	}, nil
}

// HasUserRecommended reports whether the connected user already recommended
// the place, per the in-memory snapshot.
func (s *recService) HasUserRecommended(placeID string) bool {
	sess, ok := s.sessions.Active()
	if !ok {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	place, known := s.places[placeID]
	return known && place.HasRecommender(sess.Address)
}

// applyRecommendation merges a just-published recommendation into the
// snapshot so the map updates without a full reload.
func (s *recService) applyRecommendation(recordID string, payload *ledger.RecommendationPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	place, ok := s.places[payload.PlaceID]
	if !ok {
		place = placeFromPayload(payload)
		s.places[payload.PlaceID] = place
	}
	place.Recommenders = append(place.Recommenders, &recs.Recommender{
		Address:       payload.Author,
		Chain:         payload.AuthorChain,
		Name:          payload.RecommenderName,
		Caption:       payload.Caption,
		DietaryTags:   payload.DietaryTags,
		RecordID:      recordID,
		RecommendedAt: payload.CreatedAt,
	})
}

func placeFromPayload(p *ledger.RecommendationPayload) *recs.FoodPlace {
	return &recs.FoodPlace{
		PlaceID:     p.PlaceID,
		Name:        p.PlaceName,
		Country:     p.Country,
		CountryCode: p.CountryCode,
		City:        p.City,
		Address:     p.Address,
		Lat:         p.Lat,
		Lng:         p.Lng,
		Category:    p.Category,
	}
}

func buildRecommendationPayload(input *RecommendationInput) (*ledger.RecommendationPayload, error) {
	lat, err := decimal.NewFromString(input.Lat)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q: %w", input.Lat, err)
	}
	lng, err := decimal.NewFromString(input.Lng)
	if err != nil {
		return nil, fmt.Errorf("invalid lng %q: %w", input.Lng, err)
	}

	return &ledger.RecommendationPayload{
		PlaceID:     input.PlaceID,
		PlaceName:   input.PlaceName,
		Country:     input.Country,
		CountryCode: input.CountryCode,
		City:        input.City,
		Address:     input.Address,
		Lat:         lat,
		Lng:         lng,
		Category:    input.Category,
		DietaryTags: input.DietaryTags,
		Caption:     input.Caption,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func sortedPlaces(places map[string]*recs.FoodPlace) []*recs.FoodPlace {
	out := make([]*recs.FoodPlace, 0, len(places))
	for _, p := range places {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlaceID < out[j].PlaceID })
	return out
}
