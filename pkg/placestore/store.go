// Package placestore persists the ledger-folded place read model so the map
// can be served while the ledger index is unreachable.
package placestore

import (
	"context"

	"github.com/eatglobe/globe-middleware/pkg/recs"
)

// Store is the persistence contract for the place read model.
type Store interface {
	UpsertPlaces(ctx context.Context, places []*recs.FoodPlace) error
	ListPlaces(ctx context.Context) ([]*recs.FoodPlace, error)
	DeletePlace(ctx context.Context, placeID string) error
}
