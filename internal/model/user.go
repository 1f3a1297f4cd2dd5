package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// RoleUser is a regular job seeker account
	RoleUser = "user"
	// RoleEmployer can manage a company and its job posts
	RoleEmployer = "employer"
	// RoleAdmin can access the admin dashboard and moderate entities
	RoleAdmin = "admin"
	// RoleSuperAdmin can additionally change roles and verify or delete companies
	RoleSuperAdmin = "super_admin"
)

// AllowedRoles is the set of roles that can be assigned to a user
var AllowedRoles = map[string]bool{
	RoleUser:       true,
	RoleEmployer:   true,
	RoleAdmin:      true,
	RoleSuperAdmin: true,
}

// User is gorm model for every account on the platform
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex" json:"email"`
	Password string `json:"-"`
	GoogleID string `json:"-"`
	Role     string `gorm:"type:text;default:'user'" json:"role"`
	Active   bool   `gorm:"default:true" json:"active"`

	EditableUserProfile

	SavedJobs []Job `gorm:"many2many:user_saved_jobs" json:"saved_jobs,omitempty"`
}

// EditableUserProfile is the part of a user record the owner can change
type EditableUserProfile struct {
	FirstName      string         `gorm:"type:text" json:"first_name"`
	LastName       string         `gorm:"type:text" json:"last_name"`
	Phone          string         `gorm:"type:text" json:"phone"`
	Location       string         `gorm:"type:text" json:"location"`
	Bio            string         `gorm:"type:text" json:"bio"`
	Skills         pq.StringArray `gorm:"type:text[]" json:"skills"`
	Languages      pq.StringArray `gorm:"type:text[]" json:"languages"`
	ResumeFileName string         `gorm:"type:text" json:"resume_file_name"`
	AvatarFileName string         `gorm:"type:text" json:"avatar_file_name"`
}

// PosterSummary is the projection of a posting user attached to job listings
type PosterSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ToPosterSummary builds the listing projection for the posting user
func (u *User) ToPosterSummary() PosterSummary {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		name = u.Username
	}
	return PosterSummary{Name: name, Email: u.Email}
}
