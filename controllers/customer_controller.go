package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cleancans-api/services"
)

// CustomerRequest is the body of customer create and update calls
type CustomerRequest struct {
	Name    string `json:"name" binding:"omitempty,max=100"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"omitempty,max=32"`
	Address string `json:"address" binding:"omitempty,max=255"`
	Notes   string `json:"notes"`
}

func (r CustomerRequest) input() services.CustomerInput {
	return services.CustomerInput{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
		Notes:   r.Notes,
	}
}

// GetMyCustomer handles GET /api/v1/customers/me
func (h *Handler) GetMyCustomer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	customer, err := h.Customers.ForUser(c.Request.Context(), user)
	if err != nil {
		h.respondServiceError(c, err, "Failed to load customer profile")
		return
	}
	respond(c, http.StatusOK, customer)
}

// UpdateMyCustomer handles PUT /api/v1/customers/me
func (h *Handler) UpdateMyCustomer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	customer, err := h.Customers.UpdateProfile(c.Request.Context(), user, req.input())
	if err != nil {
		h.respondServiceError(c, err, "Failed to update customer profile")
		return
	}
	respond(c, http.StatusOK, customer)
}

// ListCustomers handles GET /api/v1/admin/customers
func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.Customers.List(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "Failed to list customers")
		return
	}
	respond(c, http.StatusOK, customers)
}

// GetCustomer handles GET /api/v1/admin/customers/:id
func (h *Handler) GetCustomer(c *gin.Context) {
	customer, err := h.Customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "Failed to load customer")
		return
	}
	respond(c, http.StatusOK, customer)
}

// CreateCustomer handles POST /api/v1/admin/customers
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.Name == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
		return
	}

	customer, err := h.Customers.Create(c.Request.Context(), req.input())
	if err != nil {
		h.respondServiceError(c, err, "Failed to create customer")
		return
	}
	respond(c, http.StatusCreated, customer)
}

// UpdateCustomer handles PUT /api/v1/admin/customers/:id
func (h *Handler) UpdateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	customer, err := h.Customers.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.respondServiceError(c, err, "Failed to update customer")
		return
	}
	respond(c, http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/v1/admin/customers/:id
func (h *Handler) DeleteCustomer(c *gin.Context) {
	if err := h.Customers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondServiceError(c, err, "Failed to delete customer")
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": true})
}
