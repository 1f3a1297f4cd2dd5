package model

import (
	"time"

	"github.com/google/uuid"
)

// Contact message statuses
var (
	ContactStatusNew     = "new"
	ContactStatusRead    = "read"
	ContactStatusReplied = "replied"
	ContactStatusClosed  = "closed"
)

// AllowedContactStatuses is the set of valid contact statuses
var AllowedContactStatuses = map[string]bool{
	ContactStatusNew:     true,
	ContactStatusRead:    true,
	ContactStatusReplied: true,
	ContactStatusClosed:  true,
}

// Contact is a message submitted through the contact form
type Contact struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name    string `gorm:"type:text;not null" json:"name"`
	Email   string `gorm:"type:text;not null" json:"email"`
	Subject string `gorm:"type:text" json:"subject"`
	Message string `gorm:"type:text;not null" json:"message"`

	Status string `gorm:"type:text;default:'new'" json:"status"`

	Reply       string     `gorm:"type:text" json:"reply"`
	RepliedByID *uuid.UUID `gorm:"type:uuid" json:"replied_by_id,omitempty"`
	RepliedBy   *User      `gorm:"foreignKey:RepliedByID;references:ID" json:"-"`
}
