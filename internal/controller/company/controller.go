// Package company provides HTTP handlers for employer company profiles.
package company

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"JobQuest-backend/internal/database"
	"JobQuest-backend/internal/model"
	"JobQuest-backend/internal/pagination"
	"JobQuest-backend/internal/utilities"
)

var allowedSorts = map[string]bool{
	"created_at":          true,
	"name":                true,
	"rating_review_count": true,
}

// ListResponse is the collection envelope for company listings
type ListResponse struct {
	Companies []model.Company `json:"companies"`
	pagination.Meta
}

// CompanyController handles company related endpoints
type CompanyController struct {
	DB *database.DBinstanceStruct
}

// NewCompanyController creates a new instance of CompanyController
func NewCompanyController(db *database.DBinstanceStruct) *CompanyController {
	return &CompanyController{
		DB: db,
	}
}

// List returns a page of active companies matching the given filters.
// @Summary Get companies based on given query
// @Tags Company
// @Produce json
// @Param page query integer false "1-based page number" default(1)
// @Param limit query integer false "Page size" default(10)
// @Param search query string false "Substring search over name and description"
// @Param industry query string false "Industry, substring match"
// @Param size query string false "Size bucket, exact match"
// @Param verified query boolean false "Verified flag"
// @Param sortBy query string false "Sort column" default(created_at)
// @Param sortOrder query string false "asc or desc" default(desc)
// @Success 200 {object} ListResponse
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company [get]
func (cc *CompanyController) List(c *gin.Context) {
	params := pagination.Parse(c, "created_at", allowedSorts)

	filtered := cc.DB.Model(&model.Company{}).Where("active = ?", true)
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		filtered = filtered.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}
	if industry := c.Query("industry"); industry != "" {
		filtered = filtered.Where("industry ILIKE ?", "%"+industry+"%")
	}
	if size := c.Query("size"); size != "" {
		filtered = filtered.Where("size = ?", size)
	}
	if verified := c.Query("verified"); verified != "" {
		parsed, err := strconv.ParseBool(verified)
		if err == nil {
			filtered = filtered.Where("verified = ?", parsed)
		}
	}

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to count companies: %s", err.Error()),
		})
		return
	}

	companies := []model.Company{}
	if err := filtered.Session(&gorm.Session{}).
		Scopes(params.Scope()).
		Find(&companies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch companies: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Companies: companies,
		Meta:      pagination.NewMeta(total, params),
	})
}

// GetByID returns one company with its active job posts.
// @Summary Get a company by its ID
// @Tags Company
// @Produce json
// @Param company_id path string true "Company ID"
// @Success 200 {object} model.Company
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/{company_id} [get]
func (cc *CompanyController) GetByID(c *gin.Context) {
	var company model.Company
	err := cc.DB.
		Preload("Jobs", "status = ?", model.JobStatusActive).
		Where("id = ?", c.Param("company_id")).
		First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, company)
}

type createCompanyRequest struct {
	Name string `json:"name" binding:"required"`
	model.EditableCompanyProfile
}

// Create registers a new company owned by the calling employer.
// @Summary Create a company
// @Description Only employer can access this endpoint
// @Tags Company
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company body createCompanyRequest true "Company information"
// @Success 201 {object} model.Company
// @Failure 400 {object} utilities.ErrorResponse "Missing name or unknown size bucket"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as employer"
// @Failure 409 {object} utilities.ErrorResponse "Company name already taken"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company [post]
func (cc *CompanyController) Create(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	req := createCompanyRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if req.Size != "" && !model.AllowedCompanySizes[req.Size] {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown size bucket: %s", req.Size),
		})
		return
	}

	company := model.Company{
		Name:                   req.Name,
		OwnerID:                user.ID,
		EditableCompanyProfile: req.EditableCompanyProfile,
		Active:                 true,
	}

	if err := cc.DB.Create(&company).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, utilities.ErrorResponse{
				Error: fmt.Sprintf("Company name %s is already taken", req.Name),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create company: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, company)
}

// EditProfile merges the provided non-empty fields into the company profile.
// @Summary Edit a company profile
// @Description Only the owner or an admin can access this endpoint
// @Tags Company
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company_id path string true "Company ID"
// @Param profile body model.EditableCompanyProfile true "Fields to update, empty fields are kept"
// @Success 200 {object} model.Company
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of this company"
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/{company_id} [patch]
func (cc *CompanyController) EditProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var company model.Company
	if err := cc.DB.Where("id = ?", c.Param("company_id")).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company: %s", err.Error()),
		})
		return
	}

	isAdmin := user.Role == model.RoleAdmin || user.Role == model.RoleSuperAdmin
	if company.OwnerID != user.ID && !isAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not the owner of this company",
		})
		return
	}

	profile := model.EditableCompanyProfile{}
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if profile.Size != "" && !model.AllowedCompanySizes[profile.Size] {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown size bucket: %s", profile.Size),
		})
		return
	}

	utilities.MergeNonEmpty(&company.EditableCompanyProfile, &profile)

	if err := cc.DB.Save(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update company: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, company)
}

// Follow subscribes the calling user to a company. Following twice is a no-op.
// @Summary Follow a company
// @Tags Company
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company_id path string true "Company ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/{company_id}/follow [post]
func (cc *CompanyController) Follow(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var company model.Company
	if err := cc.DB.Where("id = ?", c.Param("company_id")).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company: %s", err.Error()),
		})
		return
	}

	if err := cc.DB.Model(&company).Association("Followers").Append(&user); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to follow company: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{
		Message: fmt.Sprintf("Now following %s", company.Name),
	})
}

// Unfollow removes the calling user from a company's followers.
// @Summary Unfollow a company
// @Tags Company
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company_id path string true "Company ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/{company_id}/follow [delete]
func (cc *CompanyController) Unfollow(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var company model.Company
	if err := cc.DB.Where("id = ?", c.Param("company_id")).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company: %s", err.Error()),
		})
		return
	}

	if err := cc.DB.Model(&company).Association("Followers").Delete(&user); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to unfollow company: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{
		Message: fmt.Sprintf("No longer following %s", company.Name),
	})
}

// FollowerCount returns the number of users following a company.
// @Summary Get a company's follower count
// @Tags Company
// @Produce json
// @Param company_id path string true "Company ID"
// @Success 200 {object} map[string]int64
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/{company_id}/followers [get]
func (cc *CompanyController) FollowerCount(c *gin.Context) {
	var company model.Company
	if err := cc.DB.Where("id = ?", c.Param("company_id")).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company: %s", err.Error()),
		})
		return
	}

	count := cc.DB.Model(&company).Association("Followers").Count()

	c.JSON(http.StatusOK, gin.H{"followers": count})
}

// VerifyCompany marks a company verified. Restricted to super admins.
// @Summary Verify a company
// @Description Only super admin can access this endpoint
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company_id path string true "Company ID"
// @Success 200 {object} model.Company
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as super admin"
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/companies/{company_id}/verify [patch]
func (cc *CompanyController) VerifyCompany(c *gin.Context) {
	var company model.Company
	if err := cc.DB.Where("id = ?", c.Param("company_id")).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company: %s", err.Error()),
		})
		return
	}

	if err := cc.DB.Model(&company).Update("verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to verify company: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, company)
}

// DeleteCompany removes a company. Its job posts keep their denormalized
// company name but lose the reference. Restricted to super admins.
// @Summary Delete a company
// @Description Only super admin can access this endpoint
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company_id path string true "Company ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as super admin"
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/companies/{company_id} [delete]
func (cc *CompanyController) DeleteCompany(c *gin.Context) {
	var company model.Company
	if err := cc.DB.Where("id = ?", c.Param("company_id")).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company: %s", err.Error()),
		})
		return
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Job{}).
			Where("company_id = ?", company.ID).
			Update("company_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&company).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete company: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{
		Message: fmt.Sprintf("Company %s deleted", company.Name),
	})
}
