package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/feastly/backend/internal/models"
	"github.com/pageza/feastly/backend/internal/service"
)

type UserHandler struct {
	db        *gorm.DB
	relations *service.RelationService
}

func NewUserHandler(db *gorm.DB, relations *service.RelationService) *UserHandler {
	return &UserHandler{db: db, relations: relations}
}

func (h *UserHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/users", h.ListUsers)
	public.GET("/users/:id", h.GetUser)

	protected.GET("/profile", h.Profile)
	protected.GET("/subscriptions", h.ListSubscriptions)
	protected.POST("/users/:id/subscribe", h.Subscribe)
	protected.DELETE("/users/:id/subscribe", h.Unsubscribe)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit < 1 {
		limit = 6
	}

	var count int64
	if err := h.db.Model(&models.User{}).Count(&count).Error; err != nil {
		respondError(c, err)
		return
	}

	var users []models.User
	err := h.db.Order("username ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.toUserResponses(c, users)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": count,
		"users": responses,
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	subscribed, err := h.relations.IsFollowing(c.Request.Context(), currentUserID(c), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(&user, subscribed))
}

func (h *UserHandler) Profile(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, "id = ?", currentUserID(c)).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(&user, false))
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	users, err := h.relations.ListSubscriptions(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, newUserResponse(&users[i], true))
	}
	c.JSON(http.StatusOK, gin.H{"users": responses})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	targetID, ok := parseIDParam(c)
	if !ok {
		return
	}

	follow, err := h.relations.Follow(c.Request.Context(), currentUserID(c), targetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, follow)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	targetID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.relations.Unfollow(c.Request.Context(), currentUserID(c), targetID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) toUserResponses(c *gin.Context, users []models.User) ([]UserResponse, error) {
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	following, err := h.relations.FollowingSet(c.Request.Context(), currentUserID(c), ids)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, newUserResponse(&users[i], following[users[i].ID]))
	}
	return responses, nil
}
