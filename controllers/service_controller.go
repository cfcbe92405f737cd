package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/services"
)

// ListServices handles GET /api/v1/services. Administrators may pass
// ?all=true to include retired services.
func (h *Handler) ListServices(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	includeInactive := user.Role == models.RoleAdmin && c.Query("all") == "true"
	list, err := h.Catalog.List(c.Request.Context(), includeInactive)
	if err != nil {
		h.respondServiceError(c, err, "Failed to list services")
		return
	}
	respond(c, http.StatusOK, list)
}

// CreateService handles POST /api/v1/services
func (h *Handler) CreateService(c *gin.Context) {
	var req services.ServiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	svc, err := h.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		h.respondServiceError(c, err, "Failed to create service")
		return
	}
	respond(c, http.StatusCreated, svc)
}

// UpdateService handles PUT /api/v1/services/:id
func (h *Handler) UpdateService(c *gin.Context) {
	var req services.ServiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	svc, err := h.Catalog.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondServiceError(c, err, "Failed to update service")
		return
	}
	respond(c, http.StatusOK, svc)
}

// DeactivateService handles DELETE /api/v1/services/:id
func (h *Handler) DeactivateService(c *gin.Context) {
	svc, err := h.Catalog.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "Failed to deactivate service")
		return
	}
	respond(c, http.StatusOK, svc)
}
