package model

import (
	"time"

	"github.com/google/uuid"
)

// Company size buckets
var (
	SizeMicro      = "1-10"
	SizeSmall      = "11-50"
	SizeMedium     = "51-200"
	SizeLarge      = "201-1000"
	SizeEnterprise = "1000+"
)

// AllowedCompanySizes is the set of valid size buckets
var AllowedCompanySizes = map[string]bool{
	SizeMicro:      true,
	SizeSmall:      true,
	SizeMedium:     true,
	SizeLarge:      true,
	SizeEnterprise: true,
}

// CompanyRating holds the five review dimensions plus the review count
type CompanyRating struct {
	Culture         float64 `gorm:"default:0" json:"culture"`
	WorkLifeBalance float64 `gorm:"default:0" json:"work_life_balance"`
	Compensation    float64 `gorm:"default:0" json:"compensation"`
	Management      float64 `gorm:"default:0" json:"management"`
	CareerGrowth    float64 `gorm:"default:0" json:"career_growth"`
	ReviewCount     uint    `gorm:"default:0" json:"review_count"`
}

// EditableCompanyProfile is the part of a company record the owner can change
type EditableCompanyProfile struct {
	Description    string `gorm:"type:text" json:"description"`
	Website        string `gorm:"type:text" json:"website"`
	Industry       string `gorm:"type:text" json:"industry"`
	Location       string `gorm:"type:text" json:"location"`
	Size           string `gorm:"type:text" json:"size"`
	LogoFileName   string `gorm:"type:text" json:"logo_file_name"`
	BannerFileName string `gorm:"type:text" json:"banner_file_name"`
}

// Company is gorm model for an employer organization
type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name string `gorm:"uniqueIndex;not null" json:"name"`

	// OwnerID references the employer user managing this company
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   User      `gorm:"foreignKey:OwnerID;references:ID" json:"-"`

	EditableCompanyProfile

	Rating CompanyRating `gorm:"embedded;embeddedPrefix:rating_" json:"rating"`

	Verified bool `gorm:"default:false" json:"verified"`
	Featured bool `gorm:"default:false" json:"featured"`
	Active   bool `gorm:"default:true" json:"active"`

	Followers []User `gorm:"many2many:company_followers" json:"followers,omitempty"`
	Jobs      []Job  `gorm:"foreignKey:CompanyID" json:"jobs,omitempty"`
}

// CompanySummary is the projection of a company attached to job listings
type CompanySummary struct {
	Name     string        `json:"name"`
	Logo     string        `json:"logo"`
	Location string        `json:"location"`
	Size     string        `json:"size"`
	Rating   CompanyRating `json:"rating"`
}

// ToSummary builds the listing projection for a company
func (c *Company) ToSummary() CompanySummary {
	return CompanySummary{
		Name:     c.Name,
		Logo:     c.LogoFileName,
		Location: c.Location,
		Size:     c.Size,
		Rating:   c.Rating,
	}
}
