// Package newsletter provides HTTP handlers for newsletter subscriptions.
package newsletter

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"JobQuest-backend/internal/database"
	"JobQuest-backend/internal/model"
	"JobQuest-backend/internal/utilities"
)

// NewsletterController handles subscribe and unsubscribe endpoints
type NewsletterController struct {
	DB *database.DBinstanceStruct
}

// NewNewsletterController creates a new instance of NewsletterController
func NewNewsletterController(db *database.DBinstanceStruct) *NewsletterController {
	return &NewsletterController{
		DB: db,
	}
}

type subscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Subscribe adds an email to the newsletter list. Emails are stored
// lowercased, resubscribing an unsubscribed address reactivates it.
// @Summary Subscribe to the newsletter
// @Tags Newsletter
// @Accept json
// @Produce json
// @Param subscription body subscribeRequest true "Email to subscribe"
// @Success 201 {object} model.NewsletterSubscription
// @Success 200 {object} utilities.MessageResponse "Already subscribed"
// @Failure 400 {object} utilities.ErrorResponse "Missing or invalid email"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /newsletter/subscribe [post]
func (nc *NewsletterController) Subscribe(c *gin.Context) {
	req := subscribeRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	email := utilities.NormalizeEmail(req.Email)

	var existing model.NewsletterSubscription
	err := nc.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if existing.Active {
			c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Already subscribed"})
			return
		}
		if err := nc.DB.Model(&existing).Update("active", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to resubscribe: %s", err.Error()),
			})
			return
		}
		c.JSON(http.StatusOK, existing)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to check subscription: %s", err.Error()),
		})
		return
	}

	subscription := model.NewsletterSubscription{
		Email:  email,
		Active: true,
	}

	if err := nc.DB.Create(&subscription).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Already subscribed"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to subscribe: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, subscription)
}

// Unsubscribe deactivates a subscription. Unknown addresses get the same
// response so the endpoint cannot be used to probe the list.
// @Summary Unsubscribe from the newsletter
// @Tags Newsletter
// @Accept json
// @Produce json
// @Param subscription body subscribeRequest true "Email to unsubscribe"
// @Success 200 {object} utilities.MessageResponse
// @Failure 400 {object} utilities.ErrorResponse "Missing or invalid email"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /newsletter/unsubscribe [post]
func (nc *NewsletterController) Unsubscribe(c *gin.Context) {
	req := subscribeRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	email := utilities.NormalizeEmail(req.Email)

	if err := nc.DB.Model(&model.NewsletterSubscription{}).
		Where("email = ?", email).
		Update("active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to unsubscribe: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Unsubscribed"})
}
