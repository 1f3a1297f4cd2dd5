// Package job provides HTTP handlers for job post related operations.
package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"JobQuest-backend/internal/database"
	"JobQuest-backend/internal/model"
	"JobQuest-backend/internal/pagination"
	"JobQuest-backend/internal/utilities"
)

// allowedSorts is the job listing sort allow-list. Client supplied sortBy
// values outside this set fall back to created_at.
var allowedSorts = map[string]bool{
	"created_at": true,
	"title":      true,
	"views":      true,
	"saves":      true,
	"salary_min": true,
	"deadline":   true,
}

// ListResponse is the collection envelope for job listings
type ListResponse struct {
	Jobs []model.JobListItem `json:"jobs"`
	pagination.Meta
}

// JobController handles job post related endpoints
type JobController struct {
	DB *database.DBinstanceStruct
}

// NewJobController creates a new instance of JobController
func NewJobController(db *database.DBinstanceStruct) *JobController {
	return &JobController{
		DB: db,
	}
}

// applyFilters chains the listing filter dimensions onto tx. Text search is
// OR across title and description, everything else is AND across dimensions.
func applyFilters(tx *gorm.DB, c *gin.Context) *gorm.DB {
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		tx = tx.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}

	if location := c.Query("location"); location != "" {
		tx = tx.Where("location ILIKE ?", "%"+location+"%")
	}

	if category := c.Query("category"); category != "" {
		tx = tx.Where("category ILIKE ?", "%"+category+"%")
	}

	if jobType := c.Query("jobType"); jobType != "" {
		tx = tx.Where("job_type = ?", jobType)
	}

	if exp := c.Query("experienceLevel"); exp != "" {
		tx = tx.Where("experience_level = ?", exp)
	}

	if remote := c.Query("remote"); remote != "" {
		tx = tx.Where("remote = ?", strings.EqualFold(remote, "true"))
	}

	if featured := c.Query("featured"); featured != "" {
		tx = tx.Where("featured = ?", strings.EqualFold(featured, "true"))
	}

	return tx
}

// ListJobs fetches a page of active job posts matching the query filters.
// @Summary Get active job posts based on query
// @Description Search is case insensitive substring matching over title and description
// @Tags Job
// @Produce json
// @Param page query integer false "1-based page number" default(1)
// @Param limit query integer false "Page size" default(10)
// @Param search query string false "Substring search over title and description"
// @Param location query string false "Location substring, case insensitive"
// @Param category query string false "Category substring, case insensitive"
// @Param jobType query string false "Job type, exact match"
// @Param experienceLevel query string false "Experience level, exact match"
// @Param remote query boolean false "Remote only when true"
// @Param featured query boolean false "Featured only when true"
// @Param sortBy query string false "One of created_at, title, views, saves, salary_min, deadline"
// @Param sortOrder query string false "asc or desc" default(desc)
// @Success 200 {object} ListResponse "Page of job posts with pagination metadata"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job [get]
func (jc *JobController) ListJobs(c *gin.Context) {
	params := pagination.Parse(c, "created_at", allowedSorts)

	filtered := applyFilters(jc.DB.Model(&model.Job{}), c).
		Where("status = ?", model.JobStatusActive).
		Where("deadline > ? OR deadline IS NULL", time.Now())

	// Total is computed with the same predicate as the page query so the
	// pagination metadata stays consistent with the filter.
	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to count job posts: ", err.Error()),
		})
		return
	}

	var rawJobs []model.Job
	if err := filtered.Session(&gorm.Session{}).
		Preload("Company").
		Preload("PostedBy").
		Scopes(params.Scope()).
		Find(&rawJobs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to fetch job posts: ", err.Error()),
		})
		return
	}

	jobs := []model.JobListItem{}
	for _, rawJob := range rawJobs {
		jobs = append(jobs, rawJob.ToListItem())
	}

	c.JSON(http.StatusOK, ListResponse{
		Jobs: jobs,
		Meta: pagination.NewMeta(total, params),
	})
}

// GetJobByID fetches a job post by its ID and bumps its view counter.
// @Summary Get job post by ID
// @Tags Job
// @Produce json
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} model.JobListItem "Return the job post with the specified ID"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job/{id} [get]
func (jc *JobController) GetJobByID(c *gin.Context) {
	id := c.Param("id")

	job := model.Job{}
	if err := jc.DB.
		Preload("Company").
		Preload("PostedBy").
		Where("id = ?", id).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job post: %s", err.Error()),
		})
		return
	}

	// View counter is best effort, a failed bump does not fail the read
	jc.DB.Model(&model.Job{}).Where("id = ?", job.ID).
		UpdateColumn("views", gorm.Expr("views + 1"))
	job.Views++

	c.JSON(http.StatusOK, job.ToListItem())
}

type createJobRequest struct {
	model.EditableJobInfo
	CompanyID *string `json:"company_id"`
	Status    string  `json:"status"`
}

// CreateJobHandler handles the creation of a new job post by an employer.
// @Summary Create job post based on given json structure
// @Description Only employer and admin roles have access to this endpoint
// @Tags Job
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Job body createJobRequest true "Input job information"
// @Success 201 {object} model.Job "Successfully create job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of the referenced company"
// @Failure 404 {object} utilities.ErrorResponse "Referenced company not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job [post]
func (jc *JobController) CreateJobHandler(c *gin.Context) {

	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	req := createJobRequest{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if req.Title == "" {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Title must be provided"})
		return
	}

	status := req.Status
	if status == "" {
		status = model.JobStatusActive
	}
	if !model.AllowedJobStatuses[status] {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown status: %s", status),
		})
		return
	}

	job := model.Job{
		EditableJobInfo: req.EditableJobInfo,
		PostedByID:      user.ID,
		Status:          status,
	}

	if req.CompanyID != nil {
		company, ok := jc.resolveOwnedCompany(c, *req.CompanyID, user)
		if !ok {
			return
		}
		job.CompanyID = &company.ID
		job.CompanyName = company.Name
	}

	if err := jc.DB.Create(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to create job post: ", err),
		})
		return
	}

	c.JSON(http.StatusCreated, job)
}

// resolveOwnedCompany loads a company and checks the requester owns it
// (admins bypass the ownership check). Writes the error response itself.
func (jc *JobController) resolveOwnedCompany(c *gin.Context, companyID string, user model.User) (model.Company, bool) {
	var company model.Company
	if err := jc.DB.Where("id = ?", companyID).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
			return company, false
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company: %s", err.Error()),
		})
		return company, false
	}

	if company.OwnerID != user.ID && user.Role != model.RoleAdmin && user.Role != model.RoleSuperAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to post jobs for this company",
		})
		return company, false
	}

	return company, true
}

// EditJobHandler allows the posting user to update a job post they own.
// @Summary Edit job post based on given json structure
// @Description Only the posting user or an admin has access to this endpoint
// @Tags Job
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Param Job body model.EditableJobInfo true "Input job information"
// @Success 200 {object} model.Job "Successfully update job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to edit"
// @Failure 404 {object} utilities.ErrorResponse "Post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job/{id} [patch]
func (jc *JobController) EditJobHandler(c *gin.Context) {

	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id := c.Param("id")

	job := model.Job{}
	if err := jc.DB.Where("id = ?", id).First(&job).Error; err != nil {
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
			Error: "You are not allowed to edit this job post",
		})
		return
	}

	// Bind into a temporary struct to avoid overwriting ownership fields
	updated := model.Job{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&updated.EditableJobInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to parse request body: %s", err.Error()),
		})
		return
	}

	if err := jc.DB.Model(&job).Updates(updated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update job post: %s", err.Error()),
		})
		return
	}

	// Reload the job post to return the latest data
	if err := jc.DB.Where("id = ?", job.ID).First(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve updated job post: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, job)
}

// UpdateJobStatus sets the status of a job post. Any allowed status value is
// accepted from any current status, there is no transition graph.
// @Summary Update job post status
// @Description Only the posting user or an admin has access to this endpoint
// @Tags Job
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} model.Job "Successfully update status"
// @Failure 400 {object} utilities.ErrorResponse "Unknown status value"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission"
// @Failure 404 {object} utilities.ErrorResponse "Post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job/{id}/status [patch]
func (jc *JobController) UpdateJobStatus(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id := c.Param("id")

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Status must be provided"})
		return
	}

	if !model.AllowedJobStatuses[body.Status] {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown status: %s", body.Status),
		})
		return
	}

	job := model.Job{}
	if err := jc.DB.Where("id = ?", id).First(&job).Error; err != nil {
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
			Error: "You are not allowed to change this job post",
		})
		return
	}

	if err := jc.DB.Model(&job).Update("status", body.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update job post: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteJobHandler allows the posting user or an admin to delete a job post.
// Deleting a job also removes its applications through the FK cascade.
// @Summary Delete given job post ID
// @Tags Job
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} utilities.MessageResponse "Successfully delete job post"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to delete this post"
// @Failure 404 {object} utilities.ErrorResponse "Post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job/{id} [delete]
func (jc *JobController) DeleteJobHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	id := c.Param("id")

	job := model.Job{}
	if err := jc.DB.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job post: %s", err.Error()),
		})
		return
	}

	if job.PostedByID != user.ID {
		// Allow admins to bypass ownership check
		if user.Role != model.RoleAdmin && user.Role != model.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, utilities.ErrorResponse{
				Error: "You are not allowed to delete this job post",
			})
			return
		}
	}

	if err := jc.DB.Delete(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete job post: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Job post deleted"})
}
