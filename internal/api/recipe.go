package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/feastly/backend/internal/models"
	"github.com/pageza/feastly/backend/internal/permission"
	"github.com/pageza/feastly/backend/internal/service"
)

type RecipeHandler struct {
	db           *gorm.DB
	recipes      *service.RecipeService
	relations    *service.RelationService
	shoppingList *service.ShoppingListService
	images       *service.ImageService
}

func NewRecipeHandler(
	db *gorm.DB,
	recipes *service.RecipeService,
	relations *service.RelationService,
	shoppingList *service.ShoppingListService,
	images *service.ImageService,
) *RecipeHandler {
	return &RecipeHandler{
		db:           db,
		recipes:      recipes,
		relations:    relations,
		shoppingList: shoppingList,
		images:       images,
	}
}

// RegisterRoutes splits the surface between optional-auth reads and
// required-auth writes. extra holds per-route middleware for recipe creation
// (the rate limiter) and may be empty.
func (h *RecipeHandler) RegisterRoutes(public, protected *gin.RouterGroup, extra ...gin.HandlerFunc) {
	public.GET("/recipes", h.ListRecipes)
	public.GET("/recipes/:id", h.GetRecipe)

	create := append(append([]gin.HandlerFunc{}, extra...), h.CreateRecipe)
	protected.POST("/recipes", create...)
	protected.PUT("/recipes/:id", h.UpdateRecipe)
	protected.DELETE("/recipes/:id", h.DeleteRecipe)

	protected.POST("/recipes/:id/favorite", h.FavoriteRecipe)
	protected.DELETE("/recipes/:id/favorite", h.UnfavoriteRecipe)
	protected.GET("/favorites", h.ListFavorites)

	protected.POST("/recipes/:id/shopping_cart", h.AddToCart)
	protected.DELETE("/recipes/:id/shopping_cart", h.RemoveFromCart)
	protected.GET("/shopping_cart/download", h.DownloadShoppingList)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID := currentUserID(c)

	in := service.ListRecipesInput{
		TagSlugs: c.QueryArray("tags"),
	}
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		in.AuthorID = &id
	}
	if c.Query("is_favorited") == "1" && userID != uuid.Nil {
		in.FavoritedBy = &userID
	}
	if c.Query("is_in_shopping_cart") == "1" && userID != uuid.Nil {
		in.InCartOf = &userID
	}
	in.Page, _ = strconv.Atoi(c.Query("page"))
	in.Limit, _ = strconv.Atoi(c.Query("limit"))

	recipes, count, err := h.recipes.List(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.toRecipeResponses(c, userID, recipes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   count,
		"recipes": responses,
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, ok := h.loadRecipe(c)
	if !ok {
		return
	}

	responses, err := h.toRecipeResponses(c, currentUserID(c), []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses[0])
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, err := h.toRecipeInput(c, req)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.toRecipeResponses(c, currentUserID(c), []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, responses[0])
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	recipe, ok := h.loadRecipe(c)
	if !ok {
		return
	}
	if !permission.CanModifyRecipe(currentUserID(c), recipe) {
		respondError(c, service.ErrForbidden)
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, err := h.toRecipeInput(c, req)
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.recipes.Update(c.Request.Context(), recipe, in)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.toRecipeResponses(c, currentUserID(c), []models.Recipe{*updated})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses[0])
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	recipe, ok := h.loadRecipe(c)
	if !ok {
		return
	}
	if !permission.CanModifyRecipe(currentUserID(c), recipe) {
		respondError(c, service.ErrForbidden)
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), recipe.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	recipeID, ok := parseIDParam(c)
	if !ok {
		return
	}

	fav, err := h.relations.AddFavorite(c.Request.Context(), currentUserID(c), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fav)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	recipeID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.relations.RemoveFavorite(c.Request.Context(), currentUserID(c), recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) ListFavorites(c *gin.Context) {
	userID := currentUserID(c)
	recipes, err := h.relations.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.toRecipeResponses(c, userID, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": responses})
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	recipeID, ok := parseIDParam(c)
	if !ok {
		return
	}

	entry, err := h.relations.AddToCart(c.Request.Context(), currentUserID(c), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	recipeID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.relations.RemoveFromCart(c.Request.Context(), currentUserID(c), recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DownloadShoppingList(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, "id = ?", currentUserID(c)).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	list, err := h.shoppingList.Build(c.Request.Context(), &user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+h.shoppingList.Filename(&user)+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(list))
}

func (h *RecipeHandler) loadRecipe(c *gin.Context) (*models.Recipe, bool) {
	id, ok := parseIDParam(c)
	if !ok {
		return nil, false
	}
	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return recipe, true
}

// toRecipeInput translates the DTO and stores a base64 image payload if one
// was submitted.
func (h *RecipeHandler) toRecipeInput(c *gin.Context, req RecipeRequest) (service.RecipeInput, error) {
	imageURL := req.Image
	if imageURL != "" && h.images != nil {
		stored, err := h.images.Store(c.Request.Context(), imageURL)
		if err != nil {
			return service.RecipeInput{}, err
		}
		imageURL = stored
	}

	pairs := make([]service.IngredientAmount, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		pairs = append(pairs, service.IngredientAmount{
			IngredientID: ing.ID,
			Amount:       ing.Amount,
		})
	}

	return service.RecipeInput{
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Ingredients: pairs,
		TagIDs:      req.Tags,
	}, nil
}

func (h *RecipeHandler) toRecipeResponses(c *gin.Context, userID uuid.UUID, recipes []models.Recipe) ([]RecipeResponse, error) {
	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, inCart, err := h.recipes.RelationFlags(c.Request.Context(), userID, recipeIDs)
	if err != nil {
		return nil, err
	}
	following, err := h.relations.FollowingSet(c.Request.Context(), userID, authorIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		responses = append(responses, newRecipeResponse(r, favorited[r.ID], inCart[r.ID], following[r.AuthorID]))
	}
	return responses, nil
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
