package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/feastly/backend/internal/models"
)

// IngredientAmount is one (ingredient, amount) pair of a recipe composition.
type IngredientAmount struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput carries the validated fields of a create or update request.
type RecipeInput struct {
	Name        string
	ImageURL    string
	Text        string
	CookingTime int
	Ingredients []IngredientAmount
	TagIDs      []uuid.UUID
}

// ListRecipesInput holds the supported list filters. Nil pointers mean the
// filter is off.
type ListRecipesInput struct {
	AuthorID    *uuid.UUID
	TagSlugs    []string
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
	Page        int
	Limit       int
}

const defaultPageLimit = 6

// RecipeService handles recipe composition, validation and queries.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// validate checks the composition rules shared by create and update: at least
// one ingredient pair and one tag, positive amounts and cooking time, no
// duplicate ingredient lines, and every referenced row must exist.
func (s *RecipeService) validate(ctx context.Context, in RecipeInput) error {
	if in.Name == "" {
		return newValidationError("name", "is required")
	}
	if in.CookingTime < 1 {
		return newValidationError("cooking_time", "must be at least 1")
	}
	if len(in.Ingredients) == 0 {
		return newValidationError("ingredients", "at least one ingredient is required")
	}
	if len(in.TagIDs) == 0 {
		return newValidationError("tags", "at least one tag is required")
	}

	seen := make(map[uuid.UUID]struct{}, len(in.Ingredients))
	ingredientIDs := make([]uuid.UUID, 0, len(in.Ingredients))
	for _, pair := range in.Ingredients {
		if pair.Amount < 1 {
			return newValidationError("ingredients", "amount must be at least 1")
		}
		if _, ok := seen[pair.IngredientID]; ok {
			return newValidationError("ingredients", "duplicate ingredient in recipe")
		}
		seen[pair.IngredientID] = struct{}{}
		ingredientIDs = append(ingredientIDs, pair.IngredientID)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("id IN ?", ingredientIDs).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ingredientIDs)) {
		return newValidationError("ingredients", "unknown ingredient")
	}

	if err := s.db.WithContext(ctx).Model(&models.Tag{}).
		Where("id IN ?", dedupe(in.TagIDs)).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(dedupe(in.TagIDs))) {
		return newValidationError("tags", "unknown tag")
	}

	return nil
}

// Create persists the recipe plus its junction rows in one transaction so a
// partial write is never observable.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		ImageURL:    in.ImageURL,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := s.writeJunctions(tx, &recipe, in); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

// Update replaces the recipe fields and the full junction sets
// (delete-all-then-reinsert, not a merge) in one transaction.
func (s *RecipeService) Update(ctx context.Context, recipe *models.Recipe, in RecipeInput) (*models.Recipe, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if in.ImageURL != "" {
			updates["image_url"] = in.ImageURL
		}
		if err := tx.Model(recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return s.writeJunctions(tx, recipe, in)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

func (s *RecipeService) writeJunctions(tx *gorm.DB, recipe *models.Recipe, in RecipeInput) error {
	pairs := make([]models.RecipeIngredient, 0, len(in.Ingredients))
	for _, pair := range in.Ingredients {
		pairs = append(pairs, models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: pair.IngredientID,
			Amount:       pair.Amount,
		})
	}
	if err := tx.Create(&pairs).Error; err != nil {
		return err
	}

	var tags []models.Tag
	if err := tx.Where("id IN ?", dedupe(in.TagIDs)).Find(&tags).Error; err != nil {
		return err
	}
	return tx.Model(recipe).Association("Tags").Append(&tags)
}

// Get loads a recipe with its author, ingredient pairs and tags.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// Delete removes a recipe; junction rows cascade with it.
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		res = tx.Delete(&models.Recipe{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// List returns a filtered page of recipes, newest first, plus the unpaged count.
func (s *RecipeService) List(ctx context.Context, in ListRecipesInput) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if in.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *in.AuthorID)
	}
	if len(in.TagSlugs) > 0 {
		// Subquery instead of a join: a recipe matching several of the
		// requested slugs must still appear exactly once.
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", in.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if in.FavoritedBy != nil {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", *in.FavoritedBy)
	}
	if in.InCartOf != nil {
		query = query.
			Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipes.id").
			Where("shopping_cart_entries.user_id = ?", *in.InCartOf)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		Order("recipes.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

// RelationFlags reports which of the given recipes the user has favorited or
// carted. Anonymous callers (uuid.Nil) get empty sets.
func (s *RecipeService) RelationFlags(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, map[uuid.UUID]bool, error) {
	favorited := make(map[uuid.UUID]bool)
	inCart := make(map[uuid.UUID]bool)
	if userID == uuid.Nil || len(recipeIDs) == 0 {
		return favorited, inCart, nil
	}

	var favs []models.Favorite
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&favs).Error; err != nil {
		return nil, nil, err
	}
	for _, f := range favs {
		favorited[f.RecipeID] = true
	}

	var entries []models.ShoppingCartEntry
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&entries).Error; err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		inCart[e.RecipeID] = true
	}

	return favorited, inCart, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
