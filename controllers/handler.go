package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cleancans-api/middleware"
	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/services"
	"github.com/kendall-kelly/cleancans-api/store"
	"github.com/kendall-kelly/cleancans-api/utils"
)

// Handler serves the HTTP API on top of the service layer
type Handler struct {
	Store      *store.Store
	Users      *services.UserService
	Customers  *services.CustomerService
	Catalog    *services.CatalogService
	Booking    *services.BookingService
	Jobs       *services.JobService
	Plans      *services.PlanService
	Recurrence *services.RecurrenceService
	Reminders  *services.ReminderService
	SMS        *services.SMSService
	Logger     *slog.Logger
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// errorStatus maps service errors to an HTTP status and error code
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{services.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{services.ErrCustomerNotFound, http.StatusNotFound, "CUSTOMER_NOT_FOUND"},
	{services.ErrServiceNotFound, http.StatusNotFound, "SERVICE_NOT_FOUND"},
	{services.ErrJobNotFound, http.StatusNotFound, "JOB_NOT_FOUND"},
	{services.ErrPlanNotFound, http.StatusNotFound, "PLAN_NOT_FOUND"},
	{services.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{services.ErrServiceInactive, http.StatusBadRequest, "SERVICE_INACTIVE"},
	{services.ErrInvalidDate, http.StatusBadRequest, "INVALID_DATE"},
	{services.ErrInvalidFrequency, http.StatusBadRequest, "INVALID_FREQUENCY"},
	{services.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{services.ErrInvalidTransition, http.StatusBadRequest, "INVALID_TRANSITION"},
	{services.ErrNotTechnician, http.StatusBadRequest, "NOT_TECHNICIAN"},
	{services.ErrInvalidPhotoKind, http.StatusBadRequest, "INVALID_PHOTO_KIND"},
	{services.ErrTooManyPhotos, http.StatusBadRequest, "TOO_MANY_PHOTOS"},
	{services.ErrCustomerHasJobs, http.StatusConflict, "CUSTOMER_HAS_JOBS"},
	{services.ErrUserExists, http.StatusConflict, "USER_EXISTS"},
	{services.ErrIdentityProvider, http.StatusBadGateway, "AUTH0_ERROR"},
	{store.ErrConflict, http.StatusConflict, "CONFLICT"},
}

// respondServiceError writes the error response for err. Unknown errors are
// logged and reported as a database error with the given message.
func (h *Handler) respondServiceError(c *gin.Context, err error, message string) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			respondError(c, e.status, e.code, err.Error())
			return
		}
	}

	var refErr *utils.PhotoRefError
	if errors.As(err, &refErr) {
		respondError(c, http.StatusBadRequest, refErr.Code, refErr.Message)
		return
	}

	h.logger().ErrorContext(c.Request.Context(), message, "path", c.Request.URL.Path, "error", err)
	respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", message)
}

func respondValidationError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}

// currentUser returns the loaded user or writes a 401 and returns false
func currentUser(c *gin.Context) (models.User, bool) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return models.User{}, false
	}
	return user, true
}

// HealthCheck handles GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		h.logger().ErrorContext(c.Request.Context(), "health check failed", "error", err)
		respondError(c, http.StatusServiceUnavailable, "DATABASE_CONNECTION_ERROR", "Database connection failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "CleanCans API is running",
	})
}
