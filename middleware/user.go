package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cleancans-api/models"
)

// UserLookup finds the account behind a token subject
type UserLookup interface {
	ByAuth0ID(ctx context.Context, auth0ID string) (models.User, bool, error)
}

// LoadUser resolves the authenticated token subject to a registered user.
// Requests from identities that have not registered yet are rejected.
func LoadUser(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid user ID in token")
			return
		}

		user, ok, err := users.ByAuth0ID(c.Request.Context(), auth0ID)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "failed to load user", "auth0_id", auth0ID, "error", err)
			abortWithError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to retrieve user")
			return
		}
		if !ok {
			abortWithError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found. Please create a user profile first.")
			return
		}

		c.Set(ContextCurrentUser, user)
		c.Next()
	}
}

// GetCurrentUser returns the user loaded by LoadUser
func GetCurrentUser(c *gin.Context) (models.User, error) {
	value, exists := c.Get(ContextCurrentUser)
	if !exists {
		return models.User{}, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}
	user, ok := value.(models.User)
	if !ok {
		return models.User{}, &AuthError{Code: "INVALID_USER", Message: "User is not in the expected format"}
	}
	return user, nil
}

// RequireRole only lets users with one of roles through
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetCurrentUser(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not loaded")
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions to access this resource")
	}
}
