package main

import (
	"flag"
	"fmt"
	"log"

	"safecity-dashboard/be/config"
	"safecity-dashboard/be/database"
	"safecity-dashboard/be/models"

	"github.com/joho/godotenv"
)

// Upserts the endpoints table for a deployment profile:
// "default" writes the startup seed, "production" points consumers at this
// service's own /api routes and adds the mock endpoints.
func main() {
	profile := flag.String("profile", "default", "endpoint profile: default or production")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	var endpoints []models.Endpoint
	switch *profile {
	case "default":
		endpoints = database.DefaultEndpoints(cfg.Upstream)
	case "production":
		endpoints = database.ProductionEndpoints()
	default:
		log.Fatalf("Unknown profile %q (want default or production)", *profile)
	}

	db, err := database.Initialize(cfg.Database, cfg.Upstream)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	created, updated, err := database.UpsertEndpoints(db, endpoints)
	if err != nil {
		log.Fatalf("Failed to update endpoints: %v", err)
	}

	fmt.Printf("Profile %s: %d created, %d updated\n", *profile, created, updated)
	for _, ep := range endpoints {
		fmt.Printf("  %-16s %-6s %s\n", ep.Name, ep.Method, ep.URL)
	}
}
