package main

import (
	"log"
	"net/http"
	"os"

	"github.com/qninhdt/generals-draft/server/internal/api"
	"github.com/qninhdt/generals-draft/server/internal/config"
	"github.com/qninhdt/generals-draft/server/internal/db"
	"github.com/qninhdt/generals-draft/server/internal/loader"
	mw "github.com/qninhdt/generals-draft/server/internal/middleware"
	"github.com/qninhdt/generals-draft/server/internal/rules"
)

func main() {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	// Get configuration from environment
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Load catalog and rules; a broken rule file disables scoring but keeps serving
	bundle := loader.Load(cfg.CatalogPath, cfg.RulesPath, logger)
	if bundle.Catalog == nil {
		logger.Fatalf("No card catalog available")
	}
	evaluator := rules.NewEvaluator(bundle.Table, logger)

	// Initialize database
	database, err := db.NewDB(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Create API server
	server := api.NewServer(database, api.Options{
		Catalog:        bundle.Catalog,
		Evaluator:      evaluator,
		Auth:           mw.NewAuthenticator(cfg.JWTSecret, cfg.TokenTTL),
		Capacity:       cfg.SelectionCapacity,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Logger:         logger,
	})

	// Start HTTP server
	addr := cfg.Addr()
	logger.Printf("Starting server on %s", addr)

	if err := http.ListenAndServe(addr, server); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
