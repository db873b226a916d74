package main

import (
	"context"
	"log"

	"github.com/pageza/feastly/backend/config"
	"github.com/pageza/feastly/backend/internal/database"
	"github.com/pageza/feastly/backend/internal/router"
	"github.com/pageza/feastly/backend/internal/server"
	"github.com/pageza/feastly/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		// The API degrades gracefully without Redis: rate limiting is skipped.
		log.Printf("Redis unavailable, continuing without rate limiting: %v", err)
		redisClient = nil
	}

	s3cfg, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to configure S3: %v", err)
	}

	deps := router.Deps{
		DB:           db,
		RedisClient:  redisClient,
		Auth:         service.NewAuthService(db, cfg.JWTSecret),
		Recipes:      service.NewRecipeService(db),
		Relations:    service.NewRelationService(db),
		Catalog:      service.NewCatalogService(db),
		ShoppingList: service.NewShoppingListService(db),
		Images:       service.NewImageService(s3cfg),
	}

	srv := server.New(router.New(deps))
	if err := srv.Start(cfg.ServerHost + ":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
