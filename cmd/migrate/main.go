package main

import (
	"log"

	"moodfeed/internal/dbsql"
	"moodfeed/internal/wire"
)

func main() {
	store, cleanup, err := wire.InitializeStore()
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	err = dbsql.Migrate(store.DB)
	cleanup()
	if err != nil {
		store.Log.WithError(err).Fatal("migration failed")
	}
	store.Log.WithField("driver", store.Config.Database.Driver).Info("database migration completed")
}
