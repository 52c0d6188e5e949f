package ledger

import (
	"strconv"
	"strings"
	"time"
)

// Tag names forming the record vocabulary. The base set is attached to every
// record; the rest are type-specific.
const (
	TagAppName     = "App-Name"
	TagType        = "Type"
	TagPlaceID     = "Place-ID"
	TagAuthor      = "Author"
	TagAuthorChain = "Author-Chain"
	TagVersion     = "Version"
	TagContentType = "Content-Type"

	TagCategory         = "Category"
	TagDietaryTags      = "Dietary-Tags"
	TagCaption          = "Caption"
	TagRecommenderName  = "Recommender-Name"
	TagUsername         = "Username"
	TagUserName         = "User-Name"
	TagPlaceName        = "Place-Name"
	TagCountry          = "Country"
	TagCountryCode      = "Country-Code"
	TagCity             = "City"
	TagAddress          = "Address"
	TagCommentWordCount = "Comment-Word-Count"
)

const contentTypeJSON = "application/json"

// baseTags builds the tag set shared by every record type.
func baseTags(appName string, typ Type, placeID, author string, chain string, version time.Time) []Tag {
	tags := []Tag{
		{Name: TagAppName, Value: appName},
		{Name: TagType, Value: string(typ)},
	}
	if placeID != "" {
		tags = append(tags, Tag{Name: TagPlaceID, Value: placeID})
	}
	tags = append(tags,
		Tag{Name: TagAuthor, Value: author},
		Tag{Name: TagAuthorChain, Value: chain},
		Tag{Name: TagVersion, Value: version.UTC().Format(time.RFC3339)},
		Tag{Name: TagContentType, Value: contentTypeJSON},
	)
	return tags
}

func recommendationTags(appName string, p *RecommendationPayload) []Tag {
	tags := baseTags(appName, TypeRecommendation, p.PlaceID, p.Author, p.AuthorChain, p.CreatedAt)
	tags = append(tags,
		Tag{Name: TagCategory, Value: p.Category},
		Tag{Name: TagPlaceName, Value: p.PlaceName},
		Tag{Name: TagCountry, Value: p.Country},
		Tag{Name: TagCountryCode, Value: p.CountryCode},
		Tag{Name: TagCity, Value: p.City},
		Tag{Name: TagAddress, Value: p.Address},
	)
	if len(p.DietaryTags) > 0 {
		tags = append(tags, Tag{Name: TagDietaryTags, Value: strings.Join(p.DietaryTags, ",")})
	}
	if p.Caption != "" {
		tags = append(tags, Tag{Name: TagCaption, Value: p.Caption})
	}
	if p.RecommenderName != "" {
		tags = append(tags, Tag{Name: TagRecommenderName, Value: p.RecommenderName})
	}
	return tags
}

func likeTags(appName string, typ Type, p *LikePayload) []Tag {
	return baseTags(appName, typ, p.PlaceID, p.Author, p.AuthorChain, p.CreatedAt)
}

func commentTags(appName string, p *CommentPayload) []Tag {
	tags := baseTags(appName, TypeComment, p.PlaceID, p.Author, p.AuthorChain, p.CreatedAt)
	if p.UserName != "" {
		tags = append(tags, Tag{Name: TagUserName, Value: p.UserName})
	}
	tags = append(tags, Tag{Name: TagCommentWordCount, Value: strconv.Itoa(wordCount(p.Body))})
	return tags
}

func profileTags(appName string, p *ProfilePayload) []Tag {
	tags := baseTags(appName, TypeProfile, "", p.Author, p.AuthorChain, p.UpdatedAt)
	tags = append(tags, Tag{Name: TagUsername, Value: p.Username})
	return tags
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// ParseDietaryTags splits the comma-joined Dietary-Tags tag value.
func ParseDietaryTags(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
