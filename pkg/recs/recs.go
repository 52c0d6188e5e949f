// Package recs defines the presentation-facing aggregates reconstructed
// from ledger records: food places, their recommenders, comments and
// user profiles.
package recs

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recommender is one recommendation entry for a place.
type Recommender struct {
	Address       string    `json:"address"`
	Chain         string    `json:"chain"`
	Name          string    `json:"name,omitempty"`
	Caption       string    `json:"caption,omitempty"`
	DietaryTags   []string  `json:"dietaryTags,omitempty"`
	RecordID      string    `json:"recordId"`
	RecommendedAt time.Time `json:"recommendedAt"`
}

// FoodPlace is a place with zero or more recommenders, merged client-side by
// matching place ids across independently submitted records. There is no
// server-side join; the globe is reconstructed by querying and folding.
type FoodPlace struct {
	PlaceID      string          `json:"placeId"`
	Name         string          `json:"name"`
	Country      string          `json:"country"`
	CountryCode  string          `json:"countryCode"`
	City         string          `json:"city"`
	Address      string          `json:"address"`
	Lat          decimal.Decimal `json:"lat"`
	Lng          decimal.Decimal `json:"lng"`
	Category     string          `json:"category"`
	Recommenders []*Recommender  `json:"recommenders"`
	LikeCount    int             `json:"likeCount"`
}

// HasRecommender reports whether the given address already recommended
// this place.
func (p *FoodPlace) HasRecommender(address string) bool {
	for _, r := range p.Recommenders {
		if r.Address == address {
			return true
		}
	}
	return false
}

// Comment is a user comment on a place.
type Comment struct {
	RecordID  string    `json:"recordId"`
	PlaceID   string    `json:"placeId"`
	Author    string    `json:"author"`
	Chain     string    `json:"chain"`
	UserName  string    `json:"userName,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is a user profile; the newest profile record per author wins.
type Profile struct {
	Address   string    `json:"address"`
	Chain     string    `json:"chain"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
