package models

import (
	"time"
)

// Attachment is a file reference tied to a booking. Attachments are
// read-only through the API; rows come from seed data or external sync.
type Attachment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BookingID  uint      `json:"booking_id" gorm:"not null;index"`
	FileName   string    `json:"file_name" gorm:"size:255;not null"`
	FileURL    string    `json:"file_url" gorm:"size:500;not null"`
	FileType   string    `json:"file_type" gorm:"size:100"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at" gorm:"autoCreateTime"`

	// Relationships
	Booking Booking `json:"-" gorm:"foreignKey:BookingID"`
}

// TableName specifies the table name for the Attachment model
func (Attachment) TableName() string {
	return "attachments"
}
