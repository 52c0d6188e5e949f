package placestore

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/eatglobe/globe-middleware/pkg/recs"
)

// PlaceDao is a data access object that maps directly to the 'places' table in
// PostgreSQL. It is a snapshot of the ledger-folded read model, not a source
// of truth.
type PlaceDao struct {
	bun.BaseModel `bun:"table:places,alias:p"`
	ID            int64               `bun:"id,pk,autoincrement"`
	PlaceID       string              `bun:"place_id,unique,notnull,type:varchar(128)"`
	Name          string              `bun:"name,notnull,type:varchar(255)"`
	Country       string              `bun:"country,type:varchar(128)"`
	CountryCode   string              `bun:"country_code,type:varchar(8)"`
	City          string              `bun:"city,type:varchar(128)"`
	Address       string              `bun:"address,type:varchar(512)"`
	Lat           string              `bun:"lat,type:numeric(10,7)"`
	Lng           string              `bun:"lng,type:numeric(10,7)"`
	Category      string              `bun:"category,type:varchar(64)"`
	Recommenders  []*recs.Recommender `bun:"recommenders,type:jsonb"`
	LikeCount     int                 `bun:"like_count,notnull,default:0"`
	UpdatedAt     time.Time           `bun:"updated_at,nullzero,default:current_timestamp"`
}

// toPlaceDao converts a recs.FoodPlace to PlaceDao.
func toPlaceDao(p *recs.FoodPlace) *PlaceDao {
	return &PlaceDao{
		PlaceID:      p.PlaceID,
		Name:         p.Name,
		Country:      p.Country,
		CountryCode:  p.CountryCode,
		City:         p.City,
		Address:      p.Address,
		Lat:          p.Lat.String(),
		Lng:          p.Lng.String(),
		Category:     p.Category,
		Recommenders: p.Recommenders,
		LikeCount:    p.LikeCount,
		UpdatedAt:    time.Now().UTC(),
	}
}

// toFoodPlace converts a PlaceDao to recs.FoodPlace. Malformed coordinates
// come back as zero, which renders at null island rather than failing the read.
func toFoodPlace(dao *PlaceDao) *recs.FoodPlace {
	lat, _ := decimal.NewFromString(dao.Lat)
	lng, _ := decimal.NewFromString(dao.Lng)
	return &recs.FoodPlace{
		PlaceID:      dao.PlaceID,
		Name:         dao.Name,
		Country:      dao.Country,
		CountryCode:  dao.CountryCode,
		City:         dao.City,
		Address:      dao.Address,
		Lat:          lat,
		Lng:          lng,
		Category:     dao.Category,
		Recommenders: dao.Recommenders,
		LikeCount:    dao.LikeCount,
	}
}
