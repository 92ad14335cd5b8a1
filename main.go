package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"medibill/m/internal/api"
	"medibill/m/internal/config"
	"medibill/m/internal/database"
	"medibill/m/internal/migrations"
	"medibill/m/internal/seed"
	"medibill/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	seed.LoadCatalog(db, cfg.CatalogCSV)

	handler := api.New(store.New(db), cfg.Secret)

	log.Printf("MediBill POS server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
