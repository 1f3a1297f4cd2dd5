package model

import (
	"time"
)

// Guest application statuses
var (
	GuestStatusPending  = "pending"
	GuestStatusReviewed = "reviewed"
	GuestStatusRejected = "rejected"
	GuestStatusAccepted = "accepted"
)

// AllowedGuestStatuses is the set of valid guest application statuses
var AllowedGuestStatuses = map[string]bool{
	GuestStatusPending:  true,
	GuestStatusReviewed: true,
	GuestStatusRejected: true,
	GuestStatusAccepted: true,
}

// GuestApplication is a job application submitted without an account, keyed
// by email instead of user id. GuestEmail is always stored lowercased so the
// (guest_email, job_id) unique index holds regardless of input casing.
type GuestApplication struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	GuestEmail string `gorm:"type:text;not null;uniqueIndex:idx_guest_applications_email_job" json:"guest_email"`
	GuestName  string `gorm:"type:text" json:"guest_name"`

	JobID uint `gorm:"not null;uniqueIndex:idx_guest_applications_email_job" json:"job_id"`
	Job   Job  `gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Message string `gorm:"type:text" json:"message"`

	ResumeID *uint `json:"resume_id"`
	Resume   *File `gorm:"foreignKey:ResumeID;references:ID" json:"-"`

	Status     string     `gorm:"type:text;default:'pending'" json:"status"`
	Note       string     `gorm:"type:text" json:"note"`
	AppliedAt  time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"applied_at"`
	ReviewedAt *time.Time `gorm:"type:timestamp" json:"reviewed_at,omitempty"`
}
