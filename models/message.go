package models

import (
	"time"
)

type SenderType string

const (
	SenderCustomer SenderType = "customer"
	SenderSupport  SenderType = "support"
)

// Message is a single chat entry on a booking. Messages are append-only:
// they are created and read, never edited or individually deleted.
type Message struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	BookingID  uint       `json:"booking_id" gorm:"not null;index"`
	UserID     uint       `json:"user_id" gorm:"not null;index"`
	Body       string     `json:"message" gorm:"type:text;not null"`
	SenderType SenderType `json:"sender_type" gorm:"type:varchar(20);not null;check:sender_type IN ('customer','support')"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	User    User    `json:"-" gorm:"foreignKey:UserID"`
	Booking Booking `json:"-" gorm:"foreignKey:BookingID"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
