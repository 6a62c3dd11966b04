package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusScheduled  BookingStatus = "Scheduled"
	BookingStatusInProgress BookingStatus = "In Progress"
	BookingStatusCompleted  BookingStatus = "Completed"
	BookingStatusCancelled  BookingStatus = "Cancelled"
)

type Booking struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	UserID        uint          `json:"user_id" gorm:"not null;index"`
	ServiceM8UUID *string       `json:"servicem8_uuid" gorm:"size:64"` // External job reference, optional
	JobNumber     string        `json:"job_number" gorm:"size:50"`
	Status        BookingStatus `json:"status" gorm:"type:varchar(20);not null;check:status IN ('Scheduled','In Progress','Completed','Cancelled')"`
	ServiceType   string        `json:"service_type" gorm:"size:100"`
	ScheduledDate *time.Time    `json:"scheduled_date"`
	CompletedDate *time.Time    `json:"completed_date"`
	Description   string        `json:"description" gorm:"size:1000"`
	TotalAmount   *float64      `json:"total_amount" gorm:"type:decimal(10,2)"`
	Address       string        `json:"address" gorm:"size:500"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	User        User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Messages    []Message    `json:"messages,omitempty" gorm:"foreignKey:BookingID"`
	Attachments []Attachment `json:"attachments,omitempty" gorm:"foreignKey:BookingID"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// IsValidStatus checks if the booking status is one of the known values
func (b *Booking) IsValidStatus() bool {
	switch b.Status {
	case BookingStatusScheduled, BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled:
		return true
	default:
		return false
	}
}
