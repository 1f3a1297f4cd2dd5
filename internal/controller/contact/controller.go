// Package contact provides HTTP handlers for the public contact form.
package contact

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"JobQuest-backend/internal/database"
	"JobQuest-backend/internal/model"
	"JobQuest-backend/internal/pagination"
	"JobQuest-backend/internal/utilities"
)

var allowedSorts = map[string]bool{
	"created_at": true,
	"status":     true,
}

// ListResponse is the collection envelope for contact message listings
type ListResponse struct {
	Contacts []model.Contact `json:"contacts"`
	pagination.Meta
}

// ContactController handles contact form endpoints
type ContactController struct {
	DB *database.DBinstanceStruct
}

// NewContactController creates a new instance of ContactController
func NewContactController(db *database.DBinstanceStruct) *ContactController {
	return &ContactController{
		DB: db,
	}
}

type submitRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// Submit accepts a contact message from anyone, no authentication required.
// @Summary Submit a contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Param contact body submitRequest true "Contact message"
// @Success 201 {object} model.Contact
// @Failure 400 {object} utilities.ErrorResponse "Missing name, email or message"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /contact [post]
func (cc *ContactController) Submit(c *gin.Context) {
	req := submitRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	contact := model.Contact{
		Name:    req.Name,
		Email:   utilities.NormalizeEmail(req.Email),
		Subject: req.Subject,
		Message: req.Message,
		Status:  model.ContactStatusNew,
	}

	if err := cc.DB.Create(&contact).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save contact message: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// List returns a page of contact messages for admin review.
// @Summary Get contact messages based on query
// @Description Only admin can access this endpoint
// @Tags Contact
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param page query integer false "1-based page number" default(1)
// @Param limit query integer false "Page size" default(10)
// @Param status query string false "Status, exact match"
// @Success 200 {object} ListResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/contacts [get]
func (cc *ContactController) List(c *gin.Context) {
	params := pagination.Parse(c, "created_at", allowedSorts)

	filtered := cc.DB.Model(&model.Contact{})
	if status := c.Query("status"); status != "" {
		filtered = filtered.Where("status = ?", status)
	}

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to count contact messages: %s", err.Error()),
		})
		return
	}

	contacts := []model.Contact{}
	if err := filtered.Session(&gorm.Session{}).
		Scopes(params.Scope()).
		Find(&contacts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch contact messages: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Contacts: contacts,
		Meta:     pagination.NewMeta(total, params),
	})
}

type statusUpdateRequest struct {
	Status string  `json:"status" binding:"required"`
	Reply  *string `json:"reply"`
}

// UpdateStatus moves a contact message through its lifecycle. Providing a
// reply records it and stamps the replying admin.
// @Summary Update contact message status
// @Description Only admin can access this endpoint
// @Tags Contact
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Contact message ID"
// @Param status body statusUpdateRequest true "New status and optional reply"
// @Success 200 {object} model.Contact
// @Failure 400 {object} utilities.ErrorResponse "Unknown status value"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 404 {object} utilities.ErrorResponse "Contact message not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/contacts/{id}/status [patch]
func (cc *ContactController) UpdateStatus(c *gin.Context) {
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

	if !model.AllowedContactStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown status: %s", req.Status),
		})
		return
	}

	var contact model.Contact
	if err := cc.DB.Where("id = ?", c.Param("id")).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Contact message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve contact message: %s", err.Error()),
		})
		return
	}

	updates := map[string]interface{}{
		"status": req.Status,
	}
	if req.Reply != nil {
		updates["reply"] = *req.Reply
		updates["replied_by_id"] = user.ID
		updates["status"] = model.ContactStatusReplied
	}

	if err := cc.DB.Model(&contact).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update contact message: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, contact)
}
