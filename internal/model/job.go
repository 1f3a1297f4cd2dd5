package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Job statuses
var (
	JobStatusDraft   = "draft"
	JobStatusActive  = "active"
	JobStatusPaused  = "paused"
	JobStatusClosed  = "closed"
	JobStatusExpired = "expired"
)

// AllowedJobStatuses is the set of valid job statuses. No transition graph is
// enforced, an authorized caller can move a job between any two statuses.
var AllowedJobStatuses = map[string]bool{
	JobStatusDraft:   true,
	JobStatusActive:  true,
	JobStatusPaused:  true,
	JobStatusClosed:  true,
	JobStatusExpired: true,
}

// SalaryRange describes the advertised compensation for a job
type SalaryRange struct {
	Min      uint   `json:"min"`
	Max      uint   `json:"max"`
	Currency string `gorm:"type:text" json:"currency"`
	Period   string `gorm:"type:text" json:"period"`
}

// EditableJobInfo is the part of a job post that can be edited
type EditableJobInfo struct {
	Title            string         `gorm:"type:text" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	Requirements     pq.StringArray `gorm:"type:text[]" json:"requirements"`
	Responsibilities pq.StringArray `gorm:"type:text[]" json:"responsibilities"`
	Skills           pq.StringArray `gorm:"type:text[]" json:"skills"`
	Benefits         pq.StringArray `gorm:"type:text[]" json:"benefits"`
	Tags             pq.StringArray `gorm:"type:text[]" json:"tags"`
	Location         string         `gorm:"type:text" json:"location"`
	Remote           bool           `json:"remote"`
	JobType          string         `gorm:"type:text" json:"job_type"`
	ExperienceLevel  string         `gorm:"type:text" json:"experience_level"`
	Salary           SalaryRange    `gorm:"embedded;embeddedPrefix:salary_" json:"salary"`
	Category         string         `gorm:"type:text" json:"category"`
	Featured         bool           `json:"featured"`
	Urgent           bool           `json:"urgent"`
	Deadline         *time.Time     `gorm:"type:timestamp" json:"deadline,omitempty"`
}

// Job is gorm model for store job post data in DB
type Job struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// CompanyID is nullable, a job can be posted without an attached company
	CompanyID *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Company   *Company   `gorm:"foreignKey:CompanyID;references:ID" json:"-"`

	// CompanyName is a denormalized snapshot taken from the company at
	// create/update time so list rendering does not need a join
	CompanyName string `gorm:"type:text" json:"company_name"`

	PostedByID uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"posted_by_id"`
	PostedBy   User      `gorm:"foreignKey:PostedByID;references:ID" json:"-"`

	EditableJobInfo

	Status string `gorm:"type:text;default:'draft'" json:"status"`
	Views  uint   `gorm:"default:0" json:"views"`
	Saves  uint   `gorm:"default:0" json:"saves"`

	Applications []Application `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"-"`
}

// JobListItem is the listing projection of a job with company and poster
// summaries instead of full nested entities
type JobListItem struct {
	ID          uint      `json:"id"`
	CompanyName string    `json:"company_name"`
	Status      string    `json:"status"`
	Views       uint      `json:"views"`
	Saves       uint      `json:"saves"`
	CreatedAt   time.Time `json:"created_at"`
	EditableJobInfo

	Company  *CompanySummary `json:"company,omitempty"`
	PostedBy PosterSummary   `json:"posted_by"`
}

// ToListItem converts a job (with Company and PostedBy preloaded) into its
// listing projection
func (j *Job) ToListItem() JobListItem {
	item := JobListItem{
		ID:              j.ID,
		CompanyName:     j.CompanyName,
		Status:          j.Status,
		Views:           j.Views,
		Saves:           j.Saves,
		CreatedAt:       j.CreatedAt,
		EditableJobInfo: j.EditableJobInfo,
		PostedBy:        j.PostedBy.ToPosterSummary(),
	}
	if j.Company != nil {
		summary := j.Company.ToSummary()
		item.Company = &summary
	}
	return item
}
