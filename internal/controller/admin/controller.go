// Package admin provides HTTP handlers for the admin dashboard and user management.
package admin

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"JobQuest-backend/internal/database"
	"JobQuest-backend/internal/model"
	"JobQuest-backend/internal/pagination"
	"JobQuest-backend/internal/utilities"
)

const recentActivityLimit = 10

var userSorts = map[string]bool{
	"created_at": true,
	"username":   true,
	"role":       true,
}

var jobSorts = map[string]bool{
	"created_at": true,
	"title":      true,
	"status":     true,
}

// AdminController handles dashboard and moderation endpoints
type AdminController struct {
	DB *database.DBinstanceStruct
}

// NewAdminController creates a new instance of AdminController
func NewAdminController(db *database.DBinstanceStruct) *AdminController {
	return &AdminController{
		DB: db,
	}
}

// UserStats is the users section of the dashboard snapshot
type UserStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Inactive  int64 `json:"inactive"`
	ThisMonth int64 `json:"this_month"`
}

// JobStats is the jobs section of the dashboard snapshot
type JobStats struct {
	Total   int64 `json:"total"`
	Active  int64 `json:"active"`
	Pending int64 `json:"pending"`
}

// CompanyStats is the companies section of the dashboard snapshot
type CompanyStats struct {
	Total    int64 `json:"total"`
	Verified int64 `json:"verified"`
	Pending  int64 `json:"pending"`
}

// GuestApplicationStats is the guest applications section of the dashboard snapshot
type GuestApplicationStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	ThisMonth int64 `json:"this_month"`
	Recent    int64 `json:"recent"`
}

// DashboardStats is the point-in-time aggregation for the admin dashboard.
// Counts are taken without a spanning transaction; concurrent writes between
// the individual queries can make totals momentarily inconsistent, which is
// acceptable for dashboard display.
type DashboardStats struct {
	Users             UserStats                `json:"users"`
	Jobs              JobStats                 `json:"jobs"`
	Companies         CompanyStats             `json:"companies"`
	GuestApplications GuestApplicationStats    `json:"guest_applications"`
	ApplicationStatus map[string]int64         `json:"application_status"`
	RecentJobs        []model.JobListItem      `json:"recent_jobs"`
	RecentApps        []model.Application      `json:"recent_applications"`
	RecentGuestApps   []model.GuestApplication `json:"recent_guest_applications"`
}

// startOfMonth is the calendar-month-to-date boundary: day 1 of the current
// month in server local time. Distinct from the rolling 7-day recentWindow,
// the two must not be unified.
func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

func recentWindow(now time.Time) time.Time {
	return now.Add(-7 * 24 * time.Hour)
}

// GetDashboardStats computes the admin dashboard snapshot. Fails the whole
// call if any individual count fails, no partial dashboard is returned.
// @Summary Get dashboard statistics
// @Description Only admin can access this endpoint
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} DashboardStats
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/stats [get]
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	now := time.Now()
	monthStart := startOfMonth(now)
	weekStart := recentWindow(now)

	stats := DashboardStats{
		ApplicationStatus: map[string]int64{},
		RecentJobs:        []model.JobListItem{},
		RecentApps:        []model.Application{},
		RecentGuestApps:   []model.GuestApplication{},
	}

	counts := []struct {
		dst *int64
		tx  *gorm.DB
	}{
		{&stats.Users.Total, ac.DB.Model(&model.User{})},
		{&stats.Users.Active, ac.DB.Model(&model.User{}).Where("active = ?", true)},
		{&stats.Users.Inactive, ac.DB.Model(&model.User{}).Where("active = ?", false)},
		{&stats.Users.ThisMonth, ac.DB.Model(&model.User{}).Where("created_at >= ?", monthStart)},
		{&stats.Jobs.Total, ac.DB.Model(&model.Job{})},
		{&stats.Jobs.Active, ac.DB.Model(&model.Job{}).Where("status = ?", model.JobStatusActive)},
		{&stats.Jobs.Pending, ac.DB.Model(&model.Job{}).Where("status = ?", model.JobStatusDraft)},
		{&stats.Companies.Total, ac.DB.Model(&model.Company{})},
		{&stats.Companies.Verified, ac.DB.Model(&model.Company{}).Where("verified = ?", true)},
		{&stats.Companies.Pending, ac.DB.Model(&model.Company{}).Where("verified = ?", false)},
		{&stats.GuestApplications.Total, ac.DB.Model(&model.GuestApplication{})},
		{&stats.GuestApplications.Pending, ac.DB.Model(&model.GuestApplication{}).Where("status = ?", model.GuestStatusPending)},
		{&stats.GuestApplications.ThisMonth, ac.DB.Model(&model.GuestApplication{}).Where("applied_at >= ?", monthStart)},
		{&stats.GuestApplications.Recent, ac.DB.Model(&model.GuestApplication{}).Where("applied_at >= ?", weekStart)},
	}

	for _, count := range counts {
		if err := count.tx.Count(count.dst).Error; err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to compute statistics: %s", err.Error()),
			})
			return
		}
	}

	// Application status breakdown
	var rows []struct {
		Status string
		Count  int64
	}
	if err := ac.DB.Model(&model.Application{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to compute status breakdown: %s", err.Error()),
		})
		return
	}
	for _, row := range rows {
		stats.ApplicationStatus[row.Status] = row.Count
	}

	// Recent activity feeds, newest first
	var recentJobs []model.Job
	if err := ac.DB.Preload("Company").Preload("PostedBy").
		Order("created_at DESC").Limit(recentActivityLimit).
		Find(&recentJobs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch recent jobs: %s", err.Error()),
		})
		return
	}
	for _, job := range recentJobs {
		stats.RecentJobs = append(stats.RecentJobs, job.ToListItem())
	}

	if err := ac.DB.Order("applied_at DESC").Limit(recentActivityLimit).
		Find(&stats.RecentApps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch recent applications: %s", err.Error()),
		})
		return
	}

	if err := ac.DB.Order("applied_at DESC").Limit(recentActivityLimit).
		Find(&stats.RecentGuestApps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch recent guest applications: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// UserListResponse is the collection envelope for the admin user listing
type UserListResponse struct {
	Users []model.User `json:"users"`
	pagination.Meta
}

// GetUsers returns a page of users filtered by role and active flag.
// @Summary Get users based on given query
// @Description Only admin can access this endpoint
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param page query integer false "1-based page number" default(1)
// @Param limit query integer false "Page size" default(10)
// @Param role query string false "Role, exact match"
// @Param active query boolean false "Active flag"
// @Param search query string false "Substring search over username and email"
// @Success 200 {object} UserListResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/users [get]
func (ac *AdminController) GetUsers(c *gin.Context) {
	params := pagination.Parse(c, "created_at", userSorts)

	filtered := ac.DB.Model(&model.User{})
	if role := c.Query("role"); role != "" {
		filtered = filtered.Where("role = ?", role)
	}
	if active := c.Query("active"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err == nil {
			filtered = filtered.Where("active = ?", parsed)
		}
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		filtered = filtered.Where("username ILIKE ? OR email ILIKE ?", like, like)
	}

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to count users: %s", err.Error()),
		})
		return
	}

	users := []model.User{}
	if err := filtered.Session(&gorm.Session{}).
		Scopes(params.Scope()).
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch users: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, UserListResponse{
		Users: users,
		Meta:  pagination.NewMeta(total, params),
	})
}

// JobListAdminResponse is the collection envelope for the admin job listing
type JobListAdminResponse struct {
	Jobs []model.Job `json:"jobs"`
	pagination.Meta
}

// GetJobs returns a page of jobs for moderation, any status.
// @Summary Get all jobs based on given query
// @Description Only admin can access this endpoint
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param page query integer false "1-based page number" default(1)
// @Param limit query integer false "Page size" default(10)
// @Param status query string false "Status, exact match"
// @Param category query string false "Category, exact match"
// @Success 200 {object} JobListAdminResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/jobs [get]
func (ac *AdminController) GetJobs(c *gin.Context) {
	params := pagination.Parse(c, "created_at", jobSorts)

	filtered := ac.DB.Model(&model.Job{})
	if status := c.Query("status"); status != "" {
		filtered = filtered.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		filtered = filtered.Where("category = ?", category)
	}

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to count jobs: %s", err.Error()),
		})
		return
	}

	jobs := []model.Job{}
	if err := filtered.Session(&gorm.Session{}).
		Scopes(params.Scope()).
		Find(&jobs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch jobs: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, JobListAdminResponse{
		Jobs: jobs,
		Meta: pagination.NewMeta(total, params),
	})
}

// SetUserActive activates or deactivates a user account.
// @Summary Activate or deactivate a user
// @Description Only admin can access this endpoint
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param user_id path string true "User ID"
// @Param active query boolean true "New active flag"
// @Success 200 {object} model.User
// @Failure 400 {object} utilities.ErrorResponse "Invalid active flag"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 404 {object} utilities.ErrorResponse "User not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/users/{user_id}/active [patch]
func (ac *AdminController) SetUserActive(c *gin.Context) {
	userID := c.Param("user_id")

	active, err := strconv.ParseBool(c.Query("active"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Query parameter active must be true or false",
		})
		return
	}

	var user model.User
	if err := ac.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{
				Error: fmt.Sprintf("%s does not exist in the database", userID),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if err := ac.DB.Model(&user).Update("active", active).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update user: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangeUserRole changes a user's role. Restricted to super admins.
// @Summary Change a user's role
// @Description Only super admin can access this endpoint
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param user_id path string true "User ID"
// @Param role query string true "One of user, employer, admin, super_admin"
// @Success 200 {object} model.User
// @Failure 400 {object} utilities.ErrorResponse "Unknown role"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as super admin"
// @Failure 404 {object} utilities.ErrorResponse "User not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/users/{user_id}/role [patch]
func (ac *AdminController) ChangeUserRole(c *gin.Context) {
	userID := c.Param("user_id")
	role := c.Query("role")

	if !model.AllowedRoles[role] {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown role: %s", role),
		})
		return
	}

	var user model.User
	if err := ac.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{
				Error: fmt.Sprintf("%s does not exist in the database", userID),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if err := ac.DB.Model(&user).Update("role", role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update user: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ExportApplicationsCSV streams every application as text/csv.
// @Summary Export applications as CSV
// @Description Only admin can access this endpoint
// @Tags Admin
// @Produce text/csv
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {string} string "CSV payload"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/export/applications [get]
func (ac *AdminController) ExportApplicationsCSV(c *gin.Context) {
	var applications []model.Application
	if err := ac.DB.Preload("User").Preload("Job").
		Order("applied_at DESC").
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch applications: %s", err.Error()),
		})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="applications.csv"`)

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{"id", "username", "email", "job_id", "job_title", "status", "applied_at", "last_updated"})
	for _, app := range applications {
		_ = writer.Write([]string{
			strconv.FormatUint(uint64(app.ID), 10),
			app.User.Username,
			app.User.Email,
			strconv.FormatUint(uint64(app.JobID), 10),
			app.Job.Title,
			app.Status,
			app.AppliedAt.Format(time.RFC3339),
			app.LastUpdated.Format(time.RFC3339),
		})
	}
	writer.Flush()
}
