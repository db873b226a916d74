package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/feastly/backend/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartEntry{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	id := uuid.New()
	user := models.User{
		ID:           id,
		Email:        fmt.Sprintf("user+%s@example.com", id),
		Username:     fmt.Sprintf("user_%s", id),
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

func createTag(t *testing.T, db *gorm.DB) *models.Tag {
	t.Helper()

	tag := models.Tag{
		Name: "Dinner",
		Slug: fmt.Sprintf("dinner-%s", uuid.New()),
	}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}
	return &tag
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}
	return &ingredient
}

func createRecipe(t *testing.T, db *gorm.DB, author *models.User, pairs []IngredientAmount, tag *models.Tag) *models.Recipe {
	t.Helper()

	svc := NewRecipeService(db)
	recipe, err := svc.Create(context.Background(), author.ID, RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Ingredients: pairs,
		TagIDs:      []uuid.UUID{tag.ID},
	})
	if err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}
