// Package application provides HTTP handlers for job application operations.
package application

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
	"applied_at":   true,
	"last_updated": true,
	"status":       true,
}

// ListResponse is the collection envelope for application listings
type ListResponse struct {
	Applications []model.Application `json:"applications"`
	pagination.Meta
}

// ApplicationController handles job application related endpoints
type ApplicationController struct {
	DB *database.DBinstanceStruct
}

// NewApplicationController creates a new instance of ApplicationController with the provided database connection.
func NewApplicationController(db *database.DBinstanceStruct) *ApplicationController {
	return &ApplicationController{
		DB: db,
	}
}

type applyRequest struct {
	JobID       uint   `json:"job_id" binding:"required"`
	CoverLetter string `json:"cover_letter"`
	Method      string `json:"method"`
	ResumeID    *uint  `json:"resume_id"`
}

// ApplyHandler handles the creation of a new job application.
// At most one application may exist per (user, job) pair. The handler level
// lookup produces the friendly conflict in the common case; the composite
// unique index catches the race where two requests pass the lookup, and that
// rejection is translated into the same conflict shape.
// @Summary Create job application
// @Description Only the user role can access this endpoint
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param application body applyRequest true "Application information"
// @Success 201 {object} model.Application "Successfully applied to job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or resume reference"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 409 {object} utilities.ConflictResponse "Already applied to this job post"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application [post]
func (ac *ApplicationController) ApplyHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	req := applyRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	// The job must exist before anything else
	var job model.Job
	if err := ac.DB.Where("id = ?", req.JobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job post: %s", err.Error()),
		})
		return
	}

	// Friendly duplicate check before inserting
	existing := model.Application{}
	err = ac.DB.Where("user_id = ? AND job_id = ?", user.ID, req.JobID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, utilities.ConflictResponse{
			Error:         "You have already applied to this job post",
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

	application := model.Application{
		UserID:      user.ID,
		JobID:       req.JobID,
		CompanyID:   job.CompanyID,
		CoverLetter: req.CoverLetter,
		Method:      req.Method,
		ResumeID:    req.ResumeID,
		Status:      model.ApplicationStatusApplied,
		LastUpdated: time.Now(),
	}

	if err := ac.DB.Create(&application).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				// Two requests raced past the lookup; the unique index is
				// the source of truth. Report the surviving record.
				if lookupErr := ac.DB.
					Where("user_id = ? AND job_id = ?", user.ID, req.JobID).
					First(&existing).Error; lookupErr == nil {
					c.JSON(http.StatusConflict, utilities.ConflictResponse{
						Error:         "You have already applied to this job post",
						ApplicationID: existing.ID,
						AppliedAt:     existing.AppliedAt,
					})
					return
				}
				c.JSON(http.StatusConflict, utilities.ErrorResponse{
					Error: "You have already applied to this job post",
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
			Error: "Failed to create application",
		})
		return
	}

	c.JSON(http.StatusCreated, application)
}

// MyApplications returns a page of the requesting user's applications.
// @Summary Get own applications
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param page query integer false "1-based page number" default(1)
// @Param limit query integer false "Page size" default(10)
// @Param status query string false "Status, exact match"
// @Success 200 {object} ListResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/me [get]
func (ac *ApplicationController) MyApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	params := pagination.Parse(c, "applied_at", allowedSorts)

	filtered := ac.DB.Model(&model.Application{}).Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		filtered = filtered.Where("status = ?", status)
	}

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to count applications: %s", err.Error()),
		})
		return
	}

	applications := []model.Application{}
	if err := filtered.Session(&gorm.Session{}).
		Scopes(params.Scope()).
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch applications: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Applications: applications,
		Meta:         pagination.NewMeta(total, params),
	})
}

// ListForJob returns a page of applications for a job the requester manages.
// @Summary Get applications for a job post
// @Description Only the posting user or an admin has access to this endpoint
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Job post ID"
// @Param page query integer false "1-based page number" default(1)
// @Param limit query integer false "Page size" default(10)
// @Param status query string false "Status, exact match"
// @Success 200 {object} ListResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the job owner"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job/{id}/applications [get]
func (ac *ApplicationController) ListForJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var job model.Job
	if err := ac.DB.Where("id = ?", c.Param("id")).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job post: %s", err.Error()),
		})
		return
	}

	if job.PostedByID != user.ID && user.Role != model.RoleAdmin && user.Role != model.RoleSuperAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to view applications for this job post",
		})
		return
	}

	params := pagination.Parse(c, "applied_at", allowedSorts)

	filtered := ac.DB.Model(&model.Application{}).Where("job_id = ?", job.ID)
	if status := c.Query("status"); status != "" {
		filtered = filtered.Where("status = ?", status)
	}

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to count applications: %s", err.Error()),
		})
		return
	}

	applications := []model.Application{}
	if err := filtered.Session(&gorm.Session{}).
		Preload("User").
		Scopes(params.Scope()).
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch applications: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Applications: applications,
		Meta:         pagination.NewMeta(total, params),
	})
}

type statusUpdateRequest struct {
	Status string  `json:"status" binding:"required"`
	Note   *string `json:"note"`
}

// UpdateStatus sets an application's status. Any allowed value is reachable
// from any other; last_updated is bumped on every write even when the status
// value is unchanged. The note is only replaced when one is provided.
// @Summary Update application status
// @Description Job owner and admins can set any status; the applicant can only withdraw
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Application ID"
// @Param status body statusUpdateRequest true "New status and optional note"
// @Success 200 {object} model.Application
// @Failure 400 {object} utilities.ErrorResponse "Unknown status value"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to change this application"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/{id}/status [patch]
func (ac *ApplicationController) UpdateStatus(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Status must be provided"})
		return
	}

	if !model.AllowedApplicationStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown status: %s", req.Status),
		})
		return
	}

	var application model.Application
	if err := ac.DB.Preload("Job").Where("id = ?", c.Param("id")).First(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve application: %s", err.Error()),
		})
		return
	}

	isManager := application.Job.PostedByID == user.ID ||
		user.Role == model.RoleAdmin || user.Role == model.RoleSuperAdmin
	isApplicantWithdrawing := application.UserID == user.ID &&
		req.Status == model.ApplicationStatusWithdrawn

	if !isManager && !isApplicantWithdrawing {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to change this application",
		})
		return
	}

	updates := map[string]interface{}{
		"status":       req.Status,
		"last_updated": time.Now(),
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}

	if err := ac.DB.Model(&application).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, application)
}
