package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/feastly/backend/internal/models"
)

// RelationService implements the add/remove state machine shared by favorites,
// shopping-cart entries and follows. Adding an existing pair is a conflict,
// removing a missing pair is not found; the unique indexes back-stop races
// that slip past the existence checks.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

func (s *RelationService) recipeExists(ctx context.Context, recipeID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFavorite marks a recipe as favorited by the user.
func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Favorite, error) {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return nil, err
	}

	var existing models.Favorite
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&existing).Error
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&fav).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &fav, nil
}

// RemoveFavorite deletes the favorite pair if present.
func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFavorites returns the user's favorited recipes, newest favorite first.
func (s *RelationService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		Find(&recipes).Error
	return recipes, err
}

// AddToCart queues a recipe for shopping-list aggregation.
func (s *RelationService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.ShoppingCartEntry, error) {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return nil, err
	}

	var existing models.ShoppingCartEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&existing).Error
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry := models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &entry, nil
}

// RemoveFromCart deletes the cart pair if present.
func (s *RelationService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.ShoppingCartEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Follow subscribes the user to another user's recipes.
func (s *RelationService) Follow(ctx context.Context, userID, targetID uuid.UUID) (*models.Follow, error) {
	if userID == targetID {
		return nil, ErrSelfFollow
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", targetID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	var existing models.Follow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND following_id = ?", userID, targetID).
		First(&existing).Error
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	follow := models.Follow{UserID: userID, FollowingID: targetID}
	if err := s.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &follow, nil
}

// Unfollow deletes the subscription if present.
func (s *RelationService) Unfollow(ctx context.Context, userID, targetID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND following_id = ?", userID, targetID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSubscriptions returns the users the given user follows.
func (s *RelationService) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.user_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	return users, err
}

// FollowingSet reports which of the target users the given user follows.
// Anonymous callers (uuid.Nil) get an empty set.
func (s *RelationService) FollowingSet(ctx context.Context, userID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	following := make(map[uuid.UUID]bool)
	if userID == uuid.Nil || len(targetIDs) == 0 {
		return following, nil
	}
	var follows []models.Follow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND following_id IN ?", userID, targetIDs).
		Find(&follows).Error
	if err != nil {
		return nil, err
	}
	for _, f := range follows {
		following[f.FollowingID] = true
	}
	return following, nil
}

// IsFollowing reports whether user follows target. Anonymous callers get false.
func (s *RelationService) IsFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || userID == targetID {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND following_id = ?", userID, targetID).
		Count(&count).Error
	return count > 0, err
}
