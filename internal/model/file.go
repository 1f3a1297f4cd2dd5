package model

import (
	"time"

	"github.com/google/uuid"
)

// File records an uploaded object. Only the storage object name is persisted,
// the binary itself lives in the storage bucket.
type File struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ObjectName  string `gorm:"type:text;not null" json:"object_name"`
	FileName    string `gorm:"type:text" json:"file_name"`
	Extension   string `gorm:"type:text" json:"extension"`
	ContentType string `gorm:"type:text" json:"content_type"`
	Size        int64  `json:"size"`

	UploadedByID uuid.UUID `gorm:"type:uuid;index" json:"uploaded_by_id"`
	UploadedBy   User      `gorm:"foreignKey:UploadedByID;references:ID" json:"-"`
}
