package model

import (
	"time"

	"github.com/google/uuid"
)

// Application statuses for authenticated applicants
var (
	ApplicationStatusApplied            = "applied"
	ApplicationStatusUnderReview        = "under_review"
	ApplicationStatusInterviewScheduled = "interview_scheduled"
	ApplicationStatusOffered            = "offered"
	ApplicationStatusRejected           = "rejected"
	ApplicationStatusWithdrawn          = "withdrawn"
)

// AllowedApplicationStatuses is the set of valid application statuses.
// Transitions are deliberately unconstrained, any value can follow any other.
var AllowedApplicationStatuses = map[string]bool{
	ApplicationStatusApplied:            true,
	ApplicationStatusUnderReview:        true,
	ApplicationStatusInterviewScheduled: true,
	ApplicationStatusOffered:            true,
	ApplicationStatusRejected:           true,
	ApplicationStatusWithdrawn:          true,
}

// Application represents a job application by an authenticated user.
// The composite unique index on (user_id, job_id) is the source of truth for
// the at-most-one-application-per-user-per-job invariant, the handler level
// pre-check only produces a friendlier error in the common case.
type Application struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_user_job" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID" json:"-"`

	JobID uint `gorm:"not null;uniqueIndex:idx_applications_user_job" json:"job_id"`
	Job   Job  `gorm:"foreignKey:JobID;references:ID" json:"-"`

	// CompanyID is copied from the job at submission time when present
	CompanyID *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`

	CoverLetter string `gorm:"type:text" json:"cover_letter"`
	// Method records which client the applicant used to apply
	Method string `gorm:"type:text" json:"method"`

	ResumeID *uint `json:"resume_id"`
	Resume   *File `gorm:"foreignKey:ResumeID;references:ID" json:"-"`

	Status      string    `gorm:"type:text;default:'applied'" json:"status"`
	Note        string    `gorm:"type:text" json:"note"`
	AppliedAt   time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"applied_at"`
	LastUpdated time.Time `gorm:"type:timestamp" json:"last_updated"`
}
