package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/feastly/backend/internal/models"
)

type RecipeIngredientRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount" binding:"required,min=1"`
}

type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required,max=255"`
	Image       string                    `json:"image"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time" binding:"required,min=1"`
	Ingredients []RecipeIngredientRequest `json:"ingredients" binding:"required,min=1,dive"`
	Tags        []uuid.UUID               `json:"tags" binding:"required,min=1"`
}

type TagRequest struct {
	Name  string `json:"name" binding:"required,max=64"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
	Slug  string `json:"slug" binding:"required,max=50,slug"`
}

type IngredientRequest struct {
	Name            string `json:"name" binding:"required,max=128"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=64"`
}

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	CreatedAt        time.Time                  `json:"created_at"`
}

func newUserResponse(user *models.User, isSubscribed bool) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
}

func newRecipeResponse(recipe *models.Recipe, favorited, inCart, authorSubscribed bool) RecipeResponse {
	ingredients := make([]RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, pair := range recipe.Ingredients {
		ingredients = append(ingredients, RecipeIngredientResponse{
			ID:              pair.IngredientID,
			Name:            pair.Ingredient.Name,
			MeasurementUnit: pair.Ingredient.MeasurementUnit,
			Amount:          pair.Amount,
		})
	}

	tags := recipe.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return RecipeResponse{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           newUserResponse(&recipe.Author, authorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		CreatedAt:        recipe.CreatedAt,
	}
}
