// Package ledger implements the write and read paths against the permanent
// content-addressed ledger: tagged record publication through a chain signing
// client, tag-filtered GraphQL queries, and the client-side folds that
// reconstruct application state from immutable records.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// Type is the record type carried in the "Type" tag.
type Type string

const (
	TypeProfile        Type = "profile"
	TypeRecommendation Type = "recommendation"
	TypeLike           Type = "like"
	TypeUnlike         Type = "unlike"
	TypeComment        Type = "comment"
)

// Tag is a name/value string pair attached to a ledger record. Tags are the
// only query/filter mechanism the ledger offers.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Uploader is the narrow signing-client contract the write path needs.
// Implemented by the per-chain clients in pkg/signer.
type Uploader interface {
	Chain() wallet.Chain
	Address() string
	Upload(ctx context.Context, data []byte, tags []Tag) (string, error)
}

// Record is an indexed ledger record reference as returned by the GraphQL
// index: identity, ordering information and tags, but not the body.
type Record struct {
	ID        string
	Height    int64
	Timestamp int64 // block timestamp, unix seconds; 0 if unconfirmed
	Tags      []Tag
}

// TagValue returns the value of the first tag with the given name.
func (r Record) TagValue(name string) string {
	for _, t := range r.Tags {
		if t.Name == name {
			return t.Value
		}
	}
	return ""
}

// Version returns the record's Version tag parsed as a timestamp.
// Records without a parseable version sort as the zero time.
func (r Record) Version() time.Time {
	v, err := time.Parse(time.RFC3339, r.TagValue(TagVersion))
	if err != nil {
		return time.Time{}
	}
	return v
}

// RecommendationPayload is the JSON body of a recommendation record.
type RecommendationPayload struct {
	PlaceID         string          `json:"placeId"`
	PlaceName       string          `json:"placeName"`
	Country         string          `json:"country"`
	CountryCode     string          `json:"countryCode"`
	City            string          `json:"city"`
	Address         string          `json:"address"`
	Lat             decimal.Decimal `json:"lat"`
	Lng             decimal.Decimal `json:"lng"`
	Category        string          `json:"category"`
	DietaryTags     []string        `json:"dietaryTags,omitempty"`
	Caption         string          `json:"caption,omitempty"`
	RecommenderName string          `json:"recommenderName,omitempty"`
	Author          string          `json:"author"`
	AuthorChain     string          `json:"authorChain"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// LikePayload is the JSON body of a like or unlike record. Whether it is a
// like or an unlike is carried by the record's Type tag.
type LikePayload struct {
	PlaceID     string    `json:"placeId"`
	Author      string    `json:"author"`
	AuthorChain string    `json:"authorChain"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CommentPayload is the JSON body of a comment record.
type CommentPayload struct {
	PlaceID     string    `json:"placeId"`
	UserName    string    `json:"userName,omitempty"`
	Body        string    `json:"body"`
	Author      string    `json:"author"`
	AuthorChain string    `json:"authorChain"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProfilePayload is the JSON body of a profile record.
type ProfilePayload struct {
	Username    string    `json:"username"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Author      string    `json:"author"`
	AuthorChain string    `json:"authorChain"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
