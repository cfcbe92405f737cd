package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cleancans-api/models"
	"github.com/kendall-kelly/cleancans-api/services"
)

// AssignJobRequest is the body of POST /jobs/:id/assign. Technicians may omit
// technician_id to assign themselves.
type AssignJobRequest struct {
	TechnicianID string `json:"technician_id"`
}

// UpdateStatusRequest is the body of PUT /jobs/:id/status
type UpdateStatusRequest struct {
	Status    string `json:"status" binding:"required"`
	TechNotes string `json:"tech_notes" binding:"max=2000"`
}

// AddPhotosRequest is the body of POST /jobs/:id/photos
type AddPhotosRequest struct {
	Kind   string   `json:"kind" binding:"required,oneof=before after"`
	Photos []string `json:"photos" binding:"required,min=1"`
}

// jobDetail is a job with its photo references resolved to URLs
type jobDetail struct {
	models.Job
	PhotoURLs services.JobPhotos `json:"photo_urls"`
}

// BookJob handles POST /api/v1/jobs - a customer books a visit
func (h *Handler) BookJob(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.Booking.Book(c.Request.Context(), user, req)
	if err != nil {
		h.respondServiceError(c, err, "Failed to book job")
		return
	}
	respond(c, http.StatusCreated, result)
}

// ListJobs handles GET /api/v1/jobs, scoped by the caller's role.
// ?status= narrows the list to one status.
func (h *Handler) ListJobs(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	jobs, err := h.Jobs.ListFor(c.Request.Context(), user)
	if err != nil {
		h.respondServiceError(c, err, "Failed to list jobs")
		return
	}

	if status := c.Query("status"); status != "" {
		if !services.IsValidJobStatus(status) {
			respondError(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown job status")
			return
		}
		filtered := make([]models.Job, 0, len(jobs))
		for _, j := range jobs {
			if j.Status == status {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}

	respond(c, http.StatusOK, jobs)
}

// GetJob handles GET /api/v1/jobs/:id
func (h *Handler) GetJob(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	job, err := h.Jobs.GetFor(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "Failed to load job")
		return
	}

	urls, err := h.Jobs.PhotoURLs(c.Request.Context(), job)
	if err != nil {
		h.logger().WarnContext(c.Request.Context(), "failed to resolve photo urls", "job_id", job.ID, "error", err)
		urls = services.JobPhotos{Before: job.BeforePhotos, After: job.AfterPhotos}
	}
	respond(c, http.StatusOK, jobDetail{Job: job, PhotoURLs: urls})
}

// AssignJob handles POST /api/v1/jobs/:id/assign
func (h *Handler) AssignJob(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req AssignJobRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
	}
	if user.Role == models.RoleAdmin && req.TechnicianID == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "technician_id is required")
		return
	}

	job, err := h.Jobs.Assign(c.Request.Context(), user, c.Param("id"), req.TechnicianID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to assign job")
		return
	}
	respond(c, http.StatusOK, job)
}

// UpdateJobStatus handles PUT /api/v1/jobs/:id/status
func (h *Handler) UpdateJobStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	job, err := h.Jobs.UpdateStatus(c.Request.Context(), user, c.Param("id"), req.Status, req.TechNotes)
	if err != nil {
		h.respondServiceError(c, err, "Failed to update job status")
		return
	}
	respond(c, http.StatusOK, job)
}

// AddJobPhotos handles POST /api/v1/jobs/:id/photos
func (h *Handler) AddJobPhotos(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req AddPhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	job, err := h.Jobs.AddPhotos(c.Request.Context(), user, c.Param("id"), req.Kind, req.Photos)
	if err != nil {
		h.respondServiceError(c, err, "Failed to add photos")
		return
	}
	respond(c, http.StatusOK, job)
}

// UpdateJob handles PUT /api/v1/jobs/:id - administrator edits
func (h *Handler) UpdateJob(c *gin.Context) {
	var req services.JobUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	job, err := h.Jobs.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondServiceError(c, err, "Failed to update job")
		return
	}
	respond(c, http.StatusOK, job)
}

// DeleteJob handles DELETE /api/v1/jobs/:id
func (h *Handler) DeleteJob(c *gin.Context) {
	if err := h.Jobs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondServiceError(c, err, "Failed to delete job")
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": true})
}
