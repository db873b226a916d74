package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/feastly/backend/internal/api"
	"github.com/pageza/feastly/backend/internal/middleware"
	"github.com/pageza/feastly/backend/internal/service"
)

// Deps bundles everything the HTTP layer needs. redisClient may be nil, in
// which case recipe creation runs without rate limiting.
type Deps struct {
	DB           *gorm.DB
	RedisClient  *redis.Client
	Auth         *service.AuthService
	Recipes      *service.RecipeService
	Relations    *service.RelationService
	Catalog      *service.CatalogService
	ShoppingList *service.ShoppingListService
	Images       *service.ImageService
}

// New assembles the gin engine: CORS, custom binding rules, a public group
// with optional auth for per-user flags, and a protected group behind the
// JWT middleware.
func New(deps Deps) *gin.Engine {
	api.RegisterValidations()

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	public := v1.Group("")
	public.Use(middleware.OptionalAuthMiddleware(deps.Auth))
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))

	authHandler := api.NewAuthHandler(deps.Auth)
	authHandler.RegisterRoutes(v1)

	var createExtras []gin.HandlerFunc
	if deps.RedisClient != nil {
		limiter := middleware.NewRecipeCreationRateLimiter(deps.RedisClient)
		createExtras = append(createExtras, limiter.RateLimitMiddleware())
	}

	recipeHandler := api.NewRecipeHandler(deps.DB, deps.Recipes, deps.Relations, deps.ShoppingList, deps.Images)
	recipeHandler.RegisterRoutes(public, protected, createExtras...)

	catalogHandler := api.NewCatalogHandler(deps.DB, deps.Catalog)
	catalogHandler.RegisterRoutes(public, protected)

	userHandler := api.NewUserHandler(deps.DB, deps.Relations)
	userHandler.RegisterRoutes(public, protected)

	return engine
}
