package database

import (
	"gorm.io/gorm"

	"github.com/pageza/feastly/backend/internal/models"
)

// RunMigrations applies the schema. The recipe_tags join table is created by
// GORM from the Recipe.Tags association.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.Follow{},
		&models.ShoppingCartEntry{},
	)
}
