package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/feastly/backend/internal/database"
	"github.com/pageza/feastly/backend/internal/middleware"
	"github.com/pageza/feastly/backend/internal/models"
	"github.com/pageza/feastly/backend/internal/service"
)

// TestDB bundles the in-memory database and the services handlers need.
type TestDB struct {
	DB           *gorm.DB
	AuthService  *service.AuthService
	Recipes      *service.RecipeService
	Relations    *service.RelationService
	Catalog      *service.CatalogService
	ShoppingList *service.ShoppingListService
}

// SetupTestDB opens a per-test sqlite database with the full schema.
// TranslateError is on, matching production, so unique violations surface as
// gorm.ErrDuplicatedKey here too.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return &TestDB{
		DB:           db,
		AuthService:  service.NewAuthService(db, "test-secret"),
		Recipes:      service.NewRecipeService(db),
		Relations:    service.NewRelationService(db),
		Catalog:      service.NewCatalogService(db),
		ShoppingList: service.NewShoppingListService(db),
	}
}

// SetupTestRouter wires the handlers onto a fresh engine the same way the
// production router does, minus CORS and rate limiting.
func SetupTestRouter(t *testing.T, testDB *TestDB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidations()

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	public := v1.Group("")
	public.Use(middleware.OptionalAuthMiddleware(testDB.AuthService))
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(testDB.AuthService))

	NewAuthHandler(testDB.AuthService).RegisterRoutes(v1)
	NewRecipeHandler(testDB.DB, testDB.Recipes, testDB.Relations, testDB.ShoppingList, nil).
		RegisterRoutes(public, protected)
	NewCatalogHandler(testDB.DB, testDB.Catalog).RegisterRoutes(public, protected)
	NewUserHandler(testDB.DB, testDB.Relations).RegisterRoutes(public, protected)

	return router
}

// CreateTestUserAndToken inserts a user and returns its ID plus a valid JWT.
func CreateTestUserAndToken(t *testing.T, testDB *TestDB) (uuid.UUID, string) {
	t.Helper()
	return createUser(t, testDB, false)
}

// CreateTestAdminAndToken inserts an admin user and returns its ID plus a valid JWT.
func CreateTestAdminAndToken(t *testing.T, testDB *TestDB) (uuid.UUID, string) {
	t.Helper()
	return createUser(t, testDB, true)
}

func createUser(t *testing.T, testDB *TestDB, admin bool) (uuid.UUID, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	id := uuid.New()
	user := models.User{
		ID:           id,
		Email:        fmt.Sprintf("user+%s@example.com", id),
		Username:     fmt.Sprintf("user_%s", id),
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hashed),
		IsAdmin:      admin,
	}
	if err := testDB.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	token, err := testDB.AuthService.GenerateToken(&user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return id, token
}

// seedCatalog inserts one tag and two ingredients for recipe tests.
func seedCatalog(t *testing.T, testDB *TestDB) (models.Tag, models.Ingredient, models.Ingredient) {
	t.Helper()

	tag := models.Tag{Name: "Dinner", Color: "#8775D2", Slug: fmt.Sprintf("dinner-%s", uuid.New())}
	if err := testDB.DB.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}

	flour := models.Ingredient{Name: fmt.Sprintf("flour-%s", uuid.New()), MeasurementUnit: "g"}
	if err := testDB.DB.Create(&flour).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}

	milk := models.Ingredient{Name: fmt.Sprintf("milk-%s", uuid.New()), MeasurementUnit: "ml"}
	if err := testDB.DB.Create(&milk).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}

	return tag, flour, milk
}

// performRequest issues a JSON request against the test router. token may be
// empty for anonymous calls.
func performRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
