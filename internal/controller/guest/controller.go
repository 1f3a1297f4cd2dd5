// Package guest provides HTTP handlers for guest (unauthenticated) job applications.
package guest

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"JobQuest-backend/internal/database"
	"JobQuest-backend/internal/model"
	"JobQuest-backend/internal/pagination"
	"JobQuest-backend/internal/utilities"
)

var allowedSorts = map[string]bool{
	"applied_at": true,
	"status":     true,
}

// ListResponse is the collection envelope for guest application listings
type ListResponse struct {
	GuestApplications []model.GuestApplication `json:"guest_applications"`
	pagination.Meta
}

// GuestController handles guest application related endpoints
type GuestController struct {
	DB *database.DBinstanceStruct
}

// NewGuestController creates a new instance of GuestController
func NewGuestController(db *database.DBinstanceStruct) *GuestController {
	return &GuestController{
		DB: db,
	}
}

type guestApplyRequest struct {
	JobID      uint   `json:"job_id" binding:"required"`
	GuestEmail string `json:"guest_email" binding:"required,email"`
	GuestName  string `json:"guest_name"`
	Message    string `json:"message"`
	ResumeID   *uint  `json:"resume_id"`
}

// ApplyHandler accepts a job application from an unauthenticated visitor.
// Identity is the lowercased email; two submissions differing only in casing
// count as the same applicant. The (guest_email, job_id) unique index backs
// the handler level duplicate lookup.
// @Summary Create guest job application
// @Tags GuestApplication
// @Accept json
// @Produce json
// @Param application body guestApplyRequest true "Guest application information"
// @Success 201 {object} model.GuestApplication "Successfully applied to job post"
// @Failure 400 {object} utilities.ErrorResponse "Missing email or job id, or invalid resume reference"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 409 {object} utilities.ConflictResponse "This email already applied to this job post"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /guest-application [post]
func (gc *GuestController) ApplyHandler(c *gin.Context) {
	req := guestApplyRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	email := utilities.NormalizeEmail(req.GuestEmail)

	var job model.Job
	if err := gc.DB.Where("id = ?", req.JobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job post: %s", err.Error()),
		})
		return
	}

	existing := model.GuestApplication{}
	err := gc.DB.Where("guest_email = ? AND job_id = ?", email, req.JobID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, utilities.ConflictResponse{
			Error:         "This email has already applied to this job post",
			ApplicationID: existing.ID,
			AppliedAt:     existing.AppliedAt,
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to check existing application",
		})
		return
	}

	guestApplication := model.GuestApplication{
		GuestEmail: email,
		GuestName:  req.GuestName,
		JobID:      req.JobID,
		Message:    req.Message,
		ResumeID:   req.ResumeID,
		Status:     model.GuestStatusPending,
	}

	if err := gc.DB.Create(&guestApplication).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				if lookupErr := gc.DB.
					Where("guest_email = ? AND job_id = ?", email, req.JobID).
					First(&existing).Error; lookupErr == nil {
					c.JSON(http.StatusConflict, utilities.ConflictResponse{
						Error:         "This email has already applied to this job post",
						ApplicationID: existing.ID,
						AppliedAt:     existing.AppliedAt,
					})
					return
				}
				c.JSON(http.StatusConflict, utilities.ErrorResponse{
					Error: "This email has already applied to this job post",
				})
				return
			case "23503":
				c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
					Error: "Invalid resume reference",
				})
				return
			}
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to create guest application",
		})
		return
	}

	c.JSON(http.StatusCreated, guestApplication)
}

// GetByEmail returns the guest applications submitted by an email address.
// @Summary Look up guest applications by email
// @Tags GuestApplication
// @Produce json
// @Param email query string true "Applicant email, matched case insensitively"
// @Param job_id query integer false "Restrict to one job post"
// @Success 200 {array} model.GuestApplication
// @Failure 400 {object} utilities.ErrorResponse "Email must be provided"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /guest-application [get]
func (gc *GuestController) GetByEmail(c *gin.Context) {
	rawEmail := c.Query("email")
	if rawEmail == "" {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Email must be provided"})
		return
	}

	tx := gc.DB.Where("guest_email = ?", utilities.NormalizeEmail(rawEmail))
	if jobID := c.Query("job_id"); jobID != "" {
		tx = tx.Where("job_id = ?", jobID)
	}

	guestApplications := []model.GuestApplication{}
	if err := tx.Order("applied_at DESC").Find(&guestApplications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch guest applications: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, guestApplications)
}

// List returns a page of guest applications for admin review.
// @Summary Get guest applications based on query
// @Description Only admin can access this endpoint
// @Tags GuestApplication
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param page query integer false "1-based page number" default(1)
// @Param limit query integer false "Page size" default(10)
// @Param status query string false "Status, exact match"
// @Param job_id query integer false "Job post ID, exact match"
// @Success 200 {object} ListResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/guest-applications [get]
func (gc *GuestController) List(c *gin.Context) {
	params := pagination.Parse(c, "applied_at", allowedSorts)

	filtered := gc.DB.Model(&model.GuestApplication{})
	if status := c.Query("status"); status != "" {
		filtered = filtered.Where("status = ?", status)
	}
	if jobID := c.Query("job_id"); jobID != "" {
		filtered = filtered.Where("job_id = ?", jobID)
	}

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to count guest applications: %s", err.Error()),
		})
		return
	}

	guestApplications := []model.GuestApplication{}
	if err := filtered.Session(&gorm.Session{}).
		Scopes(params.Scope()).
		Find(&guestApplications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch guest applications: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		GuestApplications: guestApplications,
		Meta:              pagination.NewMeta(total, params),
	})
}

type statusUpdateRequest struct {
	Status string  `json:"status" binding:"required"`
	Note   *string `json:"note"`
}

// UpdateStatus sets a guest application's status. reviewed_at is refreshed on
// every write, the note only when provided.
// @Summary Update guest application status
// @Description Only admin can access this endpoint
// @Tags GuestApplication
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Guest application ID"
// @Param status body statusUpdateRequest true "New status and optional note"
// @Success 200 {object} model.GuestApplication
// @Failure 400 {object} utilities.ErrorResponse "Unknown status value"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 404 {object} utilities.ErrorResponse "Guest application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/guest-applications/{id}/status [patch]
func (gc *GuestController) UpdateStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Status must be provided"})
		return
	}

	if !model.AllowedGuestStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown status: %s", req.Status),
		})
		return
	}

	var guestApplication model.GuestApplication
	if err := gc.DB.Where("id = ?", c.Param("id")).First(&guestApplication).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Guest application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve guest application: %s", err.Error()),
		})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      req.Status,
		"reviewed_at": now,
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}

	if err := gc.DB.Model(&guestApplication).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update guest application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, guestApplication)
}
