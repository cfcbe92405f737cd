package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cleancans-api/models"
)

// RunRecurrence handles POST /api/v1/admin/recurrence/run and the
// machine-to-machine task endpoint. It runs one generation pass.
func (h *Handler) RunRecurrence(c *gin.Context) {
	jobs, err := h.Recurrence.GenerateNextJobs(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "Failed to generate recurring jobs")
		return
	}
	respond(c, http.StatusOK, gin.H{
		"generated": len(jobs),
		"jobs":      jobs,
	})
}

// RunReminders handles POST /api/v1/admin/reminders/run
func (h *Handler) RunReminders(c *gin.Context) {
	queued, err := h.Reminders.SendDueReminders(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "Failed to queue reminders")
		return
	}
	respond(c, http.StatusOK, gin.H{"queued": queued})
}

// ListNotifications handles GET /api/v1/admin/notifications?status=
func (h *Handler) ListNotifications(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", models.NotificationPending, models.NotificationSent, models.NotificationFailed:
	default:
		respondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be pending, sent or failed")
		return
	}

	items, err := h.SMS.List(c.Request.Context(), status)
	if err != nil {
		h.respondServiceError(c, err, "Failed to list notifications")
		return
	}
	respond(c, http.StatusOK, items)
}

// ListTechnicians handles GET /api/v1/admin/technicians
func (h *Handler) ListTechnicians(c *gin.Context) {
	techs, err := h.Users.ListTechnicians(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "Failed to list technicians")
		return
	}
	respond(c, http.StatusOK, techs)
}
