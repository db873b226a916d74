// Package permission holds the pure access predicates evaluated by handlers
// before any domain operation runs.
package permission

import (
	"github.com/google/uuid"

	"github.com/pageza/feastly/backend/internal/models"
)

// CanModifyRecipe implements owner-or-read-only: only the author may write.
func CanModifyRecipe(userID uuid.UUID, recipe *models.Recipe) bool {
	return userID != uuid.Nil && recipe.AuthorID == userID
}

// CanManageCatalog implements admin-or-read-only for tags and ingredients.
func CanManageCatalog(user *models.User) bool {
	return user != nil && user.IsAdmin
}
