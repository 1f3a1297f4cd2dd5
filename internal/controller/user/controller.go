// Package user provides HTTP handlers for the authenticated user's own account.
package user

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"JobQuest-backend/internal/database"
	"JobQuest-backend/internal/model"
	"JobQuest-backend/internal/utilities"
)

const dashboardRecentLimit = 5

// UserController handles endpoints scoped to the calling user
type UserController struct {
	DB *database.DBinstanceStruct
}

// NewUserController creates a new instance of UserController
func NewUserController(db *database.DBinstanceStruct) *UserController {
	return &UserController{
		DB: db,
	}
}

// GetMyProfile returns the calling user's account record.
// @Summary Get your own profile
// @Tags User
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} model.User
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Router /user/me [get]
func (uc *UserController) GetMyProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// EditProfile merges the provided non-empty fields into the user profile.
// @Summary Edit your own profile
// @Tags User
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param profile body model.EditableUserProfile true "Fields to update, empty fields are kept"
// @Success 200 {object} model.User
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /user/me [patch]
func (uc *UserController) EditProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	profile := model.EditableUserProfile{}
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	utilities.MergeNonEmpty(&user.EditableUserProfile, &profile)

	if err := uc.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// SaveJob bookmarks a job post for the calling user. Saving twice is a no-op
// for the bookmark but does not bump the counter twice.
// @Summary Save a job post
// @Tags User
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param job_id path integer true "Job post ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /user/saved-jobs/{job_id} [post]
func (uc *UserController) SaveJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var job model.Job
	if err := uc.DB.Where("id = ?", c.Param("job_id")).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job post: %s", err.Error()),
		})
		return
	}

	alreadySaved := uc.DB.Model(&user).
		Where("id = ?", job.ID).
		Association("SavedJobs").Count() > 0
	if alreadySaved {
		c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Job post already saved"})
		return
	}

	if err := uc.DB.Model(&user).Association("SavedJobs").Append(&job); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save job post: %s", err.Error()),
		})
		return
	}

	// Counter on the post is best effort, the bookmark itself already committed
	uc.DB.Model(&job).UpdateColumn("saves", gorm.Expr("saves + 1"))

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Job post saved"})
}

// UnsaveJob removes a bookmark.
// @Summary Unsave a job post
// @Tags User
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param job_id path integer true "Job post ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /user/saved-jobs/{job_id} [delete]
func (uc *UserController) UnsaveJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var job model.Job
	if err := uc.DB.Where("id = ?", c.Param("job_id")).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job post: %s", err.Error()),
		})
		return
	}

	saved := uc.DB.Model(&user).
		Where("id = ?", job.ID).
		Association("SavedJobs").Count() > 0
	if !saved {
		c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Job post was not saved"})
		return
	}

	if err := uc.DB.Model(&user).Association("SavedJobs").Delete(&job); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to unsave job post: %s", err.Error()),
		})
		return
	}

	uc.DB.Model(&job).
		Where("saves > 0").
		UpdateColumn("saves", gorm.Expr("saves - 1"))

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Job post unsaved"})
}

// GetSavedJobs lists the calling user's bookmarked job posts, newest first.
// @Summary Get your saved job posts
// @Tags User
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.JobListItem
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /user/saved-jobs [get]
func (uc *UserController) GetSavedJobs(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	jobs := []model.Job{}
	if err := uc.DB.Model(&user).
		Preload("Company").Preload("PostedBy").
		Order("created_at DESC").
		Association("SavedJobs").Find(&jobs); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch saved jobs: %s", err.Error()),
		})
		return
	}

	items := []model.JobListItem{}
	for _, job := range jobs {
		items = append(items, job.ToListItem())
	}

	c.JSON(http.StatusOK, items)
}

// Dashboard is the per-user activity snapshot
type Dashboard struct {
	SavedJobCount      int64               `json:"saved_job_count"`
	ApplicationStatus  map[string]int64    `json:"application_status"`
	RecentApplications []model.Application `json:"recent_applications"`
}

// GetDashboard returns the calling user's activity snapshot.
// @Summary Get your dashboard
// @Tags User
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} Dashboard
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /user/dashboard [get]
func (uc *UserController) GetDashboard(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	dashboard := Dashboard{
		ApplicationStatus:  map[string]int64{},
		RecentApplications: []model.Application{},
	}

	dashboard.SavedJobCount = uc.DB.Model(&user).Association("SavedJobs").Count()

	var rows []struct {
		Status string
		Count  int64
	}
	if err := uc.DB.Model(&model.Application{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", user.ID).
		Group("status").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to compute status breakdown: %s", err.Error()),
		})
		return
	}
	for _, row := range rows {
		dashboard.ApplicationStatus[row.Status] = row.Count
	}

	if err := uc.DB.Preload("Job").
		Where("user_id = ?", user.ID).
		Order("applied_at DESC").Limit(dashboardRecentLimit).
		Find(&dashboard.RecentApplications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch recent applications: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
