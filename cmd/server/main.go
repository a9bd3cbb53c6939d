package main

import (
	"fmt"
	"log"
	"os"

	"github.com/tripmatch/backend/config"
	httpDelivery "github.com/tripmatch/backend/internal/delivery/http"
	"github.com/tripmatch/backend/internal/infrastructure/catalog"
	"github.com/tripmatch/backend/internal/infrastructure/store"
	"github.com/tripmatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting TripMatch Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Load the destination catalog. A broken regions or cities source is
	// fatal; a missing continents source degrades inside the loader.
	cat, err := catalog.LoadFromFiles(cfg.Catalog.RegionsPath, cfg.Catalog.CitiesPath, cfg.Catalog.ContinentsPath)
	if err != nil {
		log.Fatalf("Failed to load destination catalog: %v", err)
	}

	// Initialize infrastructure dependencies
	tripStore := store.NewMemoryStore(cfg.Trips.Retention)
	log.Printf("Trip retention: %s", cfg.Trips.Retention)

	// Initialize usecase layer
	debug := cfg.Server.Environment == "development" || cfg.Matching.EnableDebugLogging

	matcher := usecase.NewMatcherService(cat, usecase.MatcherConfig{
		RegionLimit:        cfg.Matching.RegionLimit,
		CityLimit:          cfg.Matching.CityLimit,
		EnableDebugLogging: debug,
	})

	tripService := usecase.NewTripService(tripStore, matcher, usecase.TripServiceConfig{
		EnableDebugLogging: debug,
	})

	log.Printf("Matching: region_limit=%d, city_limit=%d, debug=%v",
		cfg.Matching.RegionLimit, cfg.Matching.CityLimit, debug)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(tripService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
