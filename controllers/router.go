package controllers

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cleancans-api/metrics"
	"github.com/kendall-kelly/cleancans-api/middleware"
	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scopes required on machine-to-machine tokens for the task endpoints
const (
	ScopeRunRecurrence = "run:recurrence"
	ScopeRunReminders  = "run:reminders"
)

// RouterConfig holds the cross-cutting pieces of the router
type RouterConfig struct {
	// Auth validates the bearer token and sets the token subject
	Auth        gin.HandlerFunc
	CORSOrigins []string
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
}

// NewRouter builds the gin engine with every API route
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger, cfg.Metrics))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	v1.GET("/health", h.HealthCheck)

	authed := v1.Group("", cfg.Auth)
	authed.POST("/users", h.CreateUser)

	tasks := authed.Group("/tasks")
	tasks.POST("/recurrence", middleware.RequireScope(ScopeRunRecurrence), h.RunRecurrence)
	tasks.POST("/reminders", middleware.RequireScope(ScopeRunReminders), h.RunReminders)

	api := authed.Group("", middleware.LoadUser(h.Users))
	api.GET("/users/me", h.GetMyProfile)
	api.PUT("/users/me", h.UpdateMyProfile)

	customer := middleware.RequireRole(models.RoleCustomer)
	admin := middleware.RequireRole(models.RoleAdmin)
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleTechnician)

	api.GET("/customers/me", customer, h.GetMyCustomer)
	api.PUT("/customers/me", customer, h.UpdateMyCustomer)

	api.GET("/services", h.ListServices)
	api.POST("/services", admin, h.CreateService)
	api.PUT("/services/:id", admin, h.UpdateService)
	api.DELETE("/services/:id", admin, h.DeactivateService)

	api.POST("/jobs", customer, h.BookJob)
	api.GET("/jobs", h.ListJobs)
	api.GET("/jobs/:id", h.GetJob)
	api.POST("/jobs/:id/assign", staff, h.AssignJob)
	api.PUT("/jobs/:id/status", staff, h.UpdateJobStatus)
	api.POST("/jobs/:id/photos", staff, h.AddJobPhotos)
	api.PUT("/jobs/:id", admin, h.UpdateJob)
	api.DELETE("/jobs/:id", admin, h.DeleteJob)

	api.GET("/plans", h.ListPlans)
	api.POST("/plans/:id/cancel", h.CancelPlan)

	adminGroup := api.Group("/admin", admin)
	adminGroup.GET("/customers", h.ListCustomers)
	adminGroup.POST("/customers", h.CreateCustomer)
	adminGroup.GET("/customers/:id", h.GetCustomer)
	adminGroup.PUT("/customers/:id", h.UpdateCustomer)
	adminGroup.DELETE("/customers/:id", h.DeleteCustomer)
	adminGroup.GET("/technicians", h.ListTechnicians)
	adminGroup.POST("/recurrence/run", h.RunRecurrence)
	adminGroup.POST("/reminders/run", h.RunReminders)
	adminGroup.GET("/notifications", h.ListNotifications)

	return router
}
