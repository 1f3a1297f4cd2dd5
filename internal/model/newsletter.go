package model

import "time"

// NewsletterSubscription records an email subscribed to the newsletter.
// Email is stored lowercased, same normalization as guest applications.
type NewsletterSubscription struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Email  string `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Active bool   `gorm:"default:true" json:"active"`
}
