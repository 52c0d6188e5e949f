// Package placedb holds all the migrations for the place read-model database
package placedb

import (
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations is the registered migration set for the place database.
var Migrations = migrate.NewMigrations()

// NewMigrator returns a migrator bound to the place database migrations.
func NewMigrator(db *bun.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, Migrations)
}
