package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/feastly/backend/internal/models"
)

func TestTagCRUDRequiresAdmin(t *testing.T) {
	testDB := SetupTestDB(t)
	router := SetupTestRouter(t, testDB)
	_, userToken := CreateTestUserAndToken(t, testDB)
	_, adminToken := CreateTestAdminAndToken(t, testDB)

	payload := map[string]interface{}{
		"name":  "Breakfast",
		"color": "#E26C2D",
		"slug":  "breakfast",
	}

	w := performRequest(router, "POST", "/api/v1/tags", userToken, payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(router, "POST", "/api/v1/tags", adminToken, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var tag models.Tag
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tag))
	assert.Equal(t, "breakfast", tag.Slug)

	// Tags are public reads.
	w = performRequest(router, "GET", "/api/v1/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tags []models.Tag
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tags))
	assert.Len(t, tags, 1)

	w = performRequest(router, "DELETE", "/api/v1/tags/"+tag.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTagSlugValidation(t *testing.T) {
	testDB := SetupTestDB(t)
	router := SetupTestRouter(t, testDB)
	_, adminToken := CreateTestAdminAndToken(t, testDB)

	w := performRequest(router, "POST", "/api/v1/tags", adminToken, map[string]interface{}{
		"name": "Bad",
		"slug": "no spaces allowed",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngredientSearch(t *testing.T) {
	testDB := SetupTestDB(t)
	router := SetupTestRouter(t, testDB)
	_, adminToken := CreateTestAdminAndToken(t, testDB)

	for _, name := range []string{"flour", "flax seed", "milk"} {
		w := performRequest(router, "POST", "/api/v1/ingredients", adminToken, map[string]interface{}{
			"name":             name,
			"measurement_unit": "g",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := performRequest(router, "GET", "/api/v1/ingredients?name=fl", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var ingredients []models.Ingredient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ingredients))
	assert.Len(t, ingredients, 2)
}

func TestDeleteIngredientInUse(t *testing.T) {
	testDB := SetupTestDB(t)
	router := SetupTestRouter(t, testDB)
	_, userToken := CreateTestUserAndToken(t, testDB)
	_, adminToken := CreateTestAdminAndToken(t, testDB)
	tag, flour, _ := seedCatalog(t, testDB)

	payload := recipePayload(tag.ID, map[string]interface{}{"id": flour.ID, "amount": 200})
	w := performRequest(router, "POST", "/api/v1/recipes", userToken, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(router, "DELETE", "/api/v1/ingredients/"+flour.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
