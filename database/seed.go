package database

import (
	"log"
	"time"

	"gorm.io/gorm"

	"customer-portal-server/models"
	"customer-portal-server/utils"
)

// Seed inserts the demo dataset on first run. It is a no-op when any
// users already exist.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	demoHash, err := utils.HashPassword("demo123")
	if err != nil {
		return err
	}
	adminHash, err := utils.HashPassword("admin123")
	if err != nil {
		return err
	}

	customer := models.User{
		Email:        "demo@customer.com",
		Phone:        "+1234567890",
		PasswordHash: demoHash,
		FirstName:    "John",
		LastName:     "Doe",
		Role:         models.RoleCustomer,
	}
	if err := db.Create(&customer).Error; err != nil {
		return err
	}

	admin := models.User{
		Email:        "admin@portal.com",
		Phone:        "+1987654321",
		PasswordHash: adminHash,
		FirstName:    "Sarah",
		LastName:     "Mitchell",
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	completed := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	scheduled := time.Date(2024, 2, 20, 14, 0, 0, 0, time.UTC)
	inProgress := time.Date(2024, 1, 25, 9, 0, 0, 0, time.UTC)

	bookings := []models.Booking{
		{
			UserID:        customer.ID,
			JobNumber:     "JOB-2024-001",
			Status:        models.BookingStatusCompleted,
			ServiceType:   "Plumbing Repair",
			ScheduledDate: &completed,
			Description:   "Fixed kitchen sink leak and replaced faucet",
			TotalAmount:   amount(250.00),
			Address:       "123 Main St, Springfield",
		},
		{
			UserID:        customer.ID,
			JobNumber:     "JOB-2024-002",
			Status:        models.BookingStatusScheduled,
			ServiceType:   "HVAC Maintenance",
			ScheduledDate: &scheduled,
			Description:   "Annual air conditioning system inspection",
			TotalAmount:   amount(150.00),
			Address:       "123 Main St, Springfield",
		},
		{
			UserID:        customer.ID,
			JobNumber:     "JOB-2024-003",
			Status:        models.BookingStatusInProgress,
			ScheduledDate: &inProgress,
			ServiceType:   "Electrical Work",
			Description:   "Install new lighting fixtures in living room",
			TotalAmount:   amount(350.00),
			Address:       "123 Main St, Springfield",
		},
	}
	if err := db.Create(&bookings).Error; err != nil {
		return err
	}

	messages := []models.Message{
		{BookingID: bookings[0].ID, UserID: customer.ID, Body: "Hi, when will the technician arrive?", SenderType: models.SenderCustomer},
		{BookingID: bookings[0].ID, UserID: admin.ID, Body: "Our technician will arrive between 10-11 AM", SenderType: models.SenderSupport},
		{BookingID: bookings[0].ID, UserID: customer.ID, Body: "Thank you! Looking forward to it.", SenderType: models.SenderCustomer},
	}
	if err := db.Create(&messages).Error; err != nil {
		return err
	}

	attachments := []models.Attachment{
		{BookingID: bookings[0].ID, FileName: "invoice_job001.pdf", FileURL: "/uploads/invoice_job001.pdf", FileType: "application/pdf", FileSize: 45678},
		{BookingID: bookings[0].ID, FileName: "before_photo.jpg", FileURL: "https://images.unsplash.com/photo-1585704032915-c3400ca199e7?w=400", FileType: "image/jpeg", FileSize: 123456},
		{BookingID: bookings[0].ID, FileName: "after_photo.jpg", FileURL: "https://images.unsplash.com/photo-1584622650111-993a426fbf0a?w=400", FileType: "image/jpeg", FileSize: 134567},
	}
	if err := db.Create(&attachments).Error; err != nil {
		return err
	}

	log.Println("Demo data seeded")
	return nil
}

func amount(v float64) *float64 {
	return &v
}
