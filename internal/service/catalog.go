package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/feastly/backend/internal/models"
)

// CatalogService manages the tag and ingredient reference data. Writes are
// admin-only; the handlers enforce that before calling in.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func (s *CatalogService) CreateTag(ctx context.Context, tag *models.Tag) error {
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *CatalogService) UpdateTag(ctx context.Context, id uuid.UUID, name, color, slug string) (*models.Tag, error) {
	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"name": name, "slug": slug}
	if color != "" {
		updates["color"] = color
	}
	if err := s.db.WithContext(ctx).Model(tag).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return tag, nil
}

func (s *CatalogService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Tag{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListIngredients supports the autocomplete lookup used by the recipe form:
// an optional case-insensitive name prefix.
func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if namePrefix != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", namePrefix+"%")
	}
	var ingredients []models.Ingredient
	err := query.Order("name ASC").Find(&ingredients).Error
	return ingredients, err
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

func (s *CatalogService) CreateIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	if err := s.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// DeleteIngredient refuses to remove an ingredient that recipes still use.
func (s *CatalogService) DeleteIngredient(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.RecipeIngredient{}).
		Where("ingredient_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}

	res := s.db.WithContext(ctx).Delete(&models.Ingredient{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
