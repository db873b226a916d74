package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/feastly/backend/internal/models"
	"github.com/pageza/feastly/backend/internal/permission"
	"github.com/pageza/feastly/backend/internal/service"
)

// CatalogHandler serves the tag and ingredient reference data. Reads are
// public; writes require an admin account.
type CatalogHandler struct {
	db      *gorm.DB
	catalog *service.CatalogService
}

func NewCatalogHandler(db *gorm.DB, catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{db: db, catalog: catalog}
}

func (h *CatalogHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/tags", h.ListTags)
	public.GET("/tags/:id", h.GetTag)
	public.GET("/ingredients", h.ListIngredients)
	public.GET("/ingredients/:id", h.GetIngredient)

	protected.POST("/tags", h.CreateTag)
	protected.PUT("/tags/:id", h.UpdateTag)
	protected.DELETE("/tags/:id", h.DeleteTag)
	protected.POST("/ingredients", h.CreateIngredient)
	protected.DELETE("/ingredients/:id", h.DeleteIngredient)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalog.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	tag, err := h.catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *CatalogHandler) CreateTag(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag := models.Tag{Name: req.Name, Color: req.Color, Slug: req.Slug}
	if err := h.catalog.CreateTag(c.Request.Context(), &tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *CatalogHandler) UpdateTag(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.catalog.UpdateTag(c.Request.Context(), id, req.Name, req.Color, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *CatalogHandler) DeleteTag(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteTag(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalog.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	ingredient, err := h.catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	var req IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ingredient := models.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := h.catalog.CreateIngredient(c.Request.Context(), &ingredient); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (h *CatalogHandler) DeleteIngredient(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteIngredient(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) requireAdmin(c *gin.Context) bool {
	var user models.User
	if err := h.db.First(&user, "id = ?", currentUserID(c)).Error; err != nil {
		respondError(c, service.ErrForbidden)
		return false
	}
	if !permission.CanManageCatalog(&user) {
		respondError(c, service.ErrForbidden)
		return false
	}
	return true
}
