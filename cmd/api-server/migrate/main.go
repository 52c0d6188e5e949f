package main

import (
	"flag"
	"log"

	"github.com/eatglobe/globe-middleware/pkg/config"
	"github.com/eatglobe/globe-middleware/pkg/migrations/placedb"
	"github.com/eatglobe/globe-middleware/pkg/pgutil"
	mghelper "github.com/eatglobe/globe-middleware/pkg/pgutil/migrations"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Usage = mghelper.Usage
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("error reading configuration file: %s", err.Error())
	}
	if !cfg.Database.Enabled() {
		log.Fatal("no database configured; set database.host in the config file")
	}

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatalf("error connecting to database: %s", err.Error())
	}
	defer db.Close()

	log.Printf("Running migrations for place database (%s)...\n", cfg.Database.Database)

	err = mghelper.RunMigrations(placedb.NewMigrator(db), flag.Args()...)
	if err != nil {
		mghelper.Exitf(err.Error())
	}
}
