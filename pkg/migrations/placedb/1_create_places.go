package placedb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/eatglobe/globe-middleware/pkg/placestore"
	mghelper "github.com/eatglobe/globe-middleware/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating places table...")
		if err := mghelper.CreateSchema(ctx, db, &placestore.PlaceDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &placestore.PlaceDao{}, "country_code", "category")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping places table...")
		return mghelper.DropTables(ctx, db, &placestore.PlaceDao{})
	})
}
