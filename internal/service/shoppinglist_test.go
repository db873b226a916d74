package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingListAggregation(t *testing.T) {
	db := setupDB(t)
	svc := NewShoppingListService(db)
	relations := NewRelationService(db)
	author := createUser(t, db)
	shopper := createUser(t, db)
	tag := createTag(t, db)
	flour := createIngredient(t, db, "flour", "g")
	milk := createIngredient(t, db, "milk", "ml")

	// Two carted recipes sharing flour: the list must sum amounts per
	// (name, unit) pair rather than print one line per recipe.
	pancakes := createRecipe(t, db, author, []IngredientAmount{
		{IngredientID: flour.ID, Amount: 200},
		{IngredientID: milk.ID, Amount: 300},
	}, tag)
	bread := createRecipe(t, db, author, []IngredientAmount{
		{IngredientID: flour.ID, Amount: 300},
	}, tag)

	_, err := relations.AddToCart(context.Background(), shopper.ID, pancakes.ID)
	require.NoError(t, err)
	_, err = relations.AddToCart(context.Background(), shopper.ID, bread.ID)
	require.NoError(t, err)

	list, err := svc.Build(context.Background(), shopper)
	require.NoError(t, err)

	assert.Contains(t, list, fmt.Sprintf("Shopping list for %s", shopper.Username))
	assert.Contains(t, list, "- flour (g) — 500")
	assert.Contains(t, list, "- milk (ml) — 300")
}

func TestShoppingListSortedByName(t *testing.T) {
	db := setupDB(t)
	svc := NewShoppingListService(db)
	relations := NewRelationService(db)
	author := createUser(t, db)
	shopper := createUser(t, db)
	tag := createTag(t, db)
	zucchini := createIngredient(t, db, "zucchini", "pcs")
	apple := createIngredient(t, db, "apple", "pcs")

	recipe := createRecipe(t, db, author, []IngredientAmount{
		{IngredientID: zucchini.ID, Amount: 2},
		{IngredientID: apple.ID, Amount: 3},
	}, tag)
	_, err := relations.AddToCart(context.Background(), shopper.ID, recipe.ID)
	require.NoError(t, err)

	list, err := svc.Build(context.Background(), shopper)
	require.NoError(t, err)
	assert.Less(t, strings.Index(list, "apple"), strings.Index(list, "zucchini"))
}

func TestShoppingListEmptyCart(t *testing.T) {
	db := setupDB(t)
	svc := NewShoppingListService(db)
	shopper := createUser(t, db)

	_, err := svc.Build(context.Background(), shopper)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestShoppingListFilename(t *testing.T) {
	db := setupDB(t)
	svc := NewShoppingListService(db)
	shopper := createUser(t, db)

	assert.Equal(t, shopper.Username+"_shopping_list.txt", svc.Filename(shopper))
}
