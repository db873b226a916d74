package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/feastly/backend/internal/models"
)

// ShoppingListService aggregates the ingredient amounts of every recipe in a
// user's cart into a downloadable plain-text list. Read-only.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

type shoppingListRow struct {
	Name            string
	MeasurementUnit string
	Total           int64
}

// Build sums amounts grouped by (ingredient name, unit) across the user's
// cart, ordered by name. An empty cart yields ErrEmptyCart.
func (s *ShoppingListService) Build(ctx context.Context, user *models.User) (string, error) {
	var rows []shoppingListRow
	err := s.db.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", user.ID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC").
		Scan(&rows).Error
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", ErrEmptyCart
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for %s\n\n", user.Username)
	b.WriteString("Ingredients:\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "- %s (%s) — %d\n", row.Name, row.MeasurementUnit, row.Total)
	}
	fmt.Fprintf(&b, "\nGenerated %s\n", time.Now().Format("02/01/2006"))
	return b.String(), nil
}

// Filename returns the attachment name for the user's list.
func (s *ShoppingListService) Filename(user *models.User) string {
	return fmt.Sprintf("%s_shopping_list.txt", user.Username)
}
