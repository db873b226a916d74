package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRecipe(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	author := createUser(t, db)
	tag := createTag(t, db)
	flour := createIngredient(t, db, "flour", "g")
	milk := createIngredient(t, db, "milk", "ml")

	recipe, err := svc.Create(context.Background(), author.ID, RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Ingredients: []IngredientAmount{
			{IngredientID: flour.ID, Amount: 200},
			{IngredientID: milk.ID, Amount: 300},
		},
		TagIDs: []uuid.UUID{tag.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, author.ID, recipe.AuthorID)
	assert.Equal(t, author.Username, recipe.Author.Username)
	assert.Len(t, recipe.Ingredients, 2)
	assert.Len(t, recipe.Tags, 1)
	assert.Equal(t, tag.Slug, recipe.Tags[0].Slug)
}

func TestCreateRecipeValidation(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	author := createUser(t, db)
	tag := createTag(t, db)
	flour := createIngredient(t, db, "flour", "g")

	valid := RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 200}},
		TagIDs:      []uuid.UUID{tag.ID},
	}

	cases := []struct {
		name   string
		mutate func(in *RecipeInput)
	}{
		{"no ingredients", func(in *RecipeInput) { in.Ingredients = nil }},
		{"no tags", func(in *RecipeInput) { in.TagIDs = nil }},
		{"zero cooking time", func(in *RecipeInput) { in.CookingTime = 0 }},
		{"zero amount", func(in *RecipeInput) {
			in.Ingredients = []IngredientAmount{{IngredientID: flour.ID, Amount: 0}}
		}},
		{"duplicate ingredient", func(in *RecipeInput) {
			in.Ingredients = []IngredientAmount{
				{IngredientID: flour.ID, Amount: 100},
				{IngredientID: flour.ID, Amount: 200},
			}
		}},
		{"unknown ingredient", func(in *RecipeInput) {
			in.Ingredients = []IngredientAmount{{IngredientID: uuid.New(), Amount: 100}}
		}},
		{"unknown tag", func(in *RecipeInput) { in.TagIDs = []uuid.UUID{uuid.New()} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)

			_, err := svc.Create(context.Background(), author.ID, in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	// Nothing partial may remain after the failed attempts.
	var count int64
	require.NoError(t, db.Table("recipes").Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Table("recipe_ingredients").Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateRecipeReplacesJunctions(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	author := createUser(t, db)
	tag := createTag(t, db)
	otherTag := createTag(t, db)
	flour := createIngredient(t, db, "flour", "g")
	milk := createIngredient(t, db, "milk", "ml")

	recipe := createRecipe(t, db, author,
		[]IngredientAmount{{IngredientID: flour.ID, Amount: 200}}, tag)

	updated, err := svc.Update(context.Background(), recipe, RecipeInput{
		Name:        "Crepes",
		Text:        "Thinner batter.",
		CookingTime: 15,
		Ingredients: []IngredientAmount{{IngredientID: milk.ID, Amount: 500}},
		TagIDs:      []uuid.UUID{otherTag.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Crepes", updated.Name)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, milk.ID, updated.Ingredients[0].IngredientID)
	assert.Equal(t, 500, updated.Ingredients[0].Amount)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, otherTag.ID, updated.Tags[0].ID)
}

func TestUpdateRecipeKeepsImageWhenOmitted(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	author := createUser(t, db)
	tag := createTag(t, db)
	flour := createIngredient(t, db, "flour", "g")

	recipe, err := svc.Create(context.Background(), author.ID, RecipeInput{
		Name:        "Pancakes",
		ImageURL:    "https://example.com/p.jpg",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 200}},
		TagIDs:      []uuid.UUID{tag.ID},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), recipe, RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry longer.",
		CookingTime: 25,
		Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 250}},
		TagIDs:      []uuid.UUID{tag.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/p.jpg", updated.ImageURL)
}

func TestDeleteRecipe(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	author := createUser(t, db)
	tag := createTag(t, db)
	flour := createIngredient(t, db, "flour", "g")

	recipe := createRecipe(t, db, author,
		[]IngredientAmount{{IngredientID: flour.ID, Amount: 200}}, tag)

	require.NoError(t, svc.Delete(context.Background(), recipe.ID))

	_, err := svc.Get(context.Background(), recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Table("recipe_ingredients").
		Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, svc.Delete(context.Background(), recipe.ID), ErrNotFound)
}

func TestListRecipesFilters(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	relations := NewRelationService(db)
	alice := createUser(t, db)
	bob := createUser(t, db)
	tag := createTag(t, db)
	otherTag := createTag(t, db)
	flour := createIngredient(t, db, "flour", "g")

	pairs := []IngredientAmount{{IngredientID: flour.ID, Amount: 100}}
	aliceRecipe := createRecipe(t, db, alice, pairs, tag)
	bobRecipe := createRecipe(t, db, bob, pairs, otherTag)

	_, err := relations.AddFavorite(context.Background(), alice.ID, bobRecipe.ID)
	require.NoError(t, err)

	t.Run("by author", func(t *testing.T) {
		recipes, count, err := svc.List(context.Background(), ListRecipesInput{AuthorID: &alice.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
		require.Len(t, recipes, 1)
		assert.Equal(t, aliceRecipe.ID, recipes[0].ID)
	})

	t.Run("by tag slug", func(t *testing.T) {
		recipes, count, err := svc.List(context.Background(), ListRecipesInput{TagSlugs: []string{otherTag.Slug}})
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
		require.Len(t, recipes, 1)
		assert.Equal(t, bobRecipe.ID, recipes[0].ID)
	})

	t.Run("by favorited", func(t *testing.T) {
		recipes, count, err := svc.List(context.Background(), ListRecipesInput{FavoritedBy: &alice.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
		require.Len(t, recipes, 1)
		assert.Equal(t, bobRecipe.ID, recipes[0].ID)
	})

	t.Run("unfiltered with count", func(t *testing.T) {
		recipes, count, err := svc.List(context.Background(), ListRecipesInput{})
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
		assert.Len(t, recipes, 2)
	})
}

func TestListRecipesPagination(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	author := createUser(t, db)
	tag := createTag(t, db)
	flour := createIngredient(t, db, "flour", "g")

	for i := 0; i < 8; i++ {
		createRecipe(t, db, author,
			[]IngredientAmount{{IngredientID: flour.ID, Amount: 100}}, tag)
	}

	recipes, count, err := svc.List(context.Background(), ListRecipesInput{})
	require.NoError(t, err)
	assert.EqualValues(t, 8, count)
	assert.Len(t, recipes, 6, "default page size")

	recipes, count, err = svc.List(context.Background(), ListRecipesInput{Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 8, count)
	assert.Len(t, recipes, 2)
}

func TestRelationFlags(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db)
	relations := NewRelationService(db)
	author := createUser(t, db)
	viewer := createUser(t, db)
	tag := createTag(t, db)
	flour := createIngredient(t, db, "flour", "g")

	pairs := []IngredientAmount{{IngredientID: flour.ID, Amount: 100}}
	favored := createRecipe(t, db, author, pairs, tag)
	carted := createRecipe(t, db, author, pairs, tag)

	_, err := relations.AddFavorite(context.Background(), viewer.ID, favored.ID)
	require.NoError(t, err)
	_, err = relations.AddToCart(context.Background(), viewer.ID, carted.ID)
	require.NoError(t, err)

	ids := []uuid.UUID{favored.ID, carted.ID}
	favorited, inCart, err := svc.RelationFlags(context.Background(), viewer.ID, ids)
	require.NoError(t, err)
	assert.True(t, favorited[favored.ID])
	assert.False(t, favorited[carted.ID])
	assert.True(t, inCart[carted.ID])
	assert.False(t, inCart[favored.ID])

	favorited, inCart, err = svc.RelationFlags(context.Background(), uuid.Nil, ids)
	require.NoError(t, err)
	assert.Empty(t, favorited)
	assert.Empty(t, inCart)
}
