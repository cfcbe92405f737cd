package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cleancans-api/models"
)

// ListPlans handles GET /api/v1/plans. Customers see their own plans;
// staff see every plan.
func (h *Handler) ListPlans(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if user.Role != models.RoleCustomer {
		plans, err := h.Plans.List(ctx)
		if err != nil {
			h.respondServiceError(c, err, "Failed to list plans")
			return
		}
		respond(c, http.StatusOK, plans)
		return
	}

	customer, err := h.Customers.ForUser(ctx, user)
	if err != nil {
		h.respondServiceError(c, err, "Failed to load customer profile")
		return
	}
	plans, err := h.Plans.ListForCustomer(ctx, customer.ID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to list plans")
		return
	}
	respond(c, http.StatusOK, plans)
}

// CancelPlan handles POST /api/v1/plans/:id/cancel
func (h *Handler) CancelPlan(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	owner := ""
	switch user.Role {
	case models.RoleAdmin:
	case models.RoleCustomer:
		customer, err := h.Customers.ForUser(ctx, user)
		if err != nil {
			h.respondServiceError(c, err, "Failed to load customer profile")
			return
		}
		owner = customer.ID
	default:
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Only customers and administrators can cancel plans")
		return
	}

	plan, err := h.Plans.Cancel(ctx, c.Param("id"), owner)
	if err != nil {
		h.respondServiceError(c, err, "Failed to cancel plan")
		return
	}
	respond(c, http.StatusOK, plan)
}
