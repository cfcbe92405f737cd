package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cleancans-api/middleware"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name  string `json:"name" binding:"omitempty,max=100"`
	Phone string `json:"phone" binding:"omitempty,max=32"`
}

// CreateUser handles POST /api/v1/users - registers the caller from Auth0 userinfo
func (h *Handler) CreateUser(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	user, err := h.Users.Register(c.Request.Context(), auth0ID, accessToken)
	if err != nil {
		h.respondServiceError(c, err, "Failed to create user")
		return
	}

	respond(c, http.StatusCreated, user)
}

// GetMyProfile handles GET /api/v1/users/me
func (h *Handler) GetMyProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me
func (h *Handler) UpdateMyProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updated, err := h.Users.UpdateProfile(c.Request.Context(), user.ID, req.Name, req.Phone)
	if err != nil {
		h.respondServiceError(c, err, "Failed to update user")
		return
	}
	respond(c, http.StatusOK, updated)
}
