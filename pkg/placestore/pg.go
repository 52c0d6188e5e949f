package placestore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/eatglobe/globe-middleware/pkg/recs"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the place store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

// UpsertPlaces replaces each place row with the freshly folded snapshot.
func (s *pgStore) UpsertPlaces(ctx context.Context, places []*recs.FoodPlace) error {
	if len(places) == 0 {
		return nil
	}

	daos := make([]*PlaceDao, len(places))
	for i, p := range places {
		daos[i] = toPlaceDao(p)
	}

	_, err := s.db.NewInsert().
		Model(&daos).
		On("CONFLICT (place_id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("country = EXCLUDED.country").
		Set("country_code = EXCLUDED.country_code").
		Set("city = EXCLUDED.city").
		Set("address = EXCLUDED.address").
		Set("lat = EXCLUDED.lat").
		Set("lng = EXCLUDED.lng").
		Set("category = EXCLUDED.category").
		Set("recommenders = EXCLUDED.recommenders").
		Set("like_count = EXCLUDED.like_count").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert places: %w", err)
	}
	return nil
}

// ListPlaces returns every cached place.
func (s *pgStore) ListPlaces(ctx context.Context) ([]*recs.FoodPlace, error) {
	var daos []PlaceDao
	err := s.db.NewSelect().Model(&daos).Order("place_id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}

	places := make([]*recs.FoodPlace, len(daos))
	for i := range daos {
		places[i] = toFoodPlace(&daos[i])
	}
	return places, nil
}

// DeletePlace removes a place row from the read model.
func (s *pgStore) DeletePlace(ctx context.Context, placeID string) error {
	_, err := s.db.NewDelete().
		Model((*PlaceDao)(nil)).
		Where("place_id = ?", placeID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	return nil
}
