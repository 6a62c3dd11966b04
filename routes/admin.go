package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"customer-portal-server/middleware"
	"customer-portal-server/models"
)

// CreateBookingRequest represents the admin booking creation request
type CreateBookingRequest struct {
	UserID        uint     `json:"userId"`
	JobNumber     string   `json:"jobNumber"`
	Status        string   `json:"status"`
	ServiceType   string   `json:"serviceType"`
	ScheduledDate string   `json:"scheduledDate"`
	Description   string   `json:"description"`
	TotalAmount   *float64 `json:"totalAmount"`
	Address       string   `json:"address"`
}

// UpdateBookingRequest represents the admin partial update request.
// Omitted fields keep their stored values.
type UpdateBookingRequest struct {
	Status        *string  `json:"status"`
	ServiceType   *string  `json:"serviceType"`
	ScheduledDate *string  `json:"scheduledDate"`
	CompletedDate *string  `json:"completedDate"`
	Description   *string  `json:"description"`
	TotalAmount   *float64 `json:"totalAmount"`
	Address       *string  `json:"address"`
}

// AdminBooking is a booking joined with its owner's contact fields.
type AdminBooking struct {
	models.Booking
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AdminMessage is a message joined with author and booking fields.
type AdminMessage struct {
	MessageResponse
	JobNumber   string `json:"job_number"`
	ServiceType string `json:"service_type"`
}

// AdminHandler serves the admin aggregate views and booking mutations.
type AdminHandler struct {
	DB *gorm.DB
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{DB: db}
}

// Register registers admin routes on a role-gated group.
func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("/customers", h.listCustomers)
	router.GET("/bookings", h.listBookings)
	router.GET("/messages", h.listMessages)
	router.GET("/stats", h.stats)
	router.POST("/bookings", h.createBooking)
	router.PUT("/bookings/:id", h.updateBooking)
	router.DELETE("/bookings/:id", h.deleteBooking)
	router.POST("/messages/:bookingId", h.replyToBooking)
}

// listCustomers returns every customer account, newest first.
func (h *AdminHandler) listCustomers(c *gin.Context) {
	var customers []models.User
	if err := h.DB.
		Where("role = ?", models.RoleCustomer).
		Order("created_at DESC").
		Find(&customers).Error; err != nil {
		log.Printf("Customer list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, customers)
}

// listBookings returns every booking joined with owner contact fields,
// newest first.
func (h *AdminHandler) listBookings(c *gin.Context) {
	var bookings []models.Booking
	if err := h.DB.
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Find(&bookings).Error; err != nil {
		log.Printf("Admin booking list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]AdminBooking, 0, len(bookings))
	for _, b := range bookings {
		owner := b.User
		b.User = models.User{}
		response = append(response, AdminBooking{
			Booking:   b,
			Email:     owner.Email,
			Phone:     owner.Phone,
			FirstName: owner.FirstName,
			LastName:  owner.LastName,
		})
	}

	c.JSON(http.StatusOK, response)
}

// listMessages returns every message across all bookings joined with
// author and booking fields, newest first.
func (h *AdminHandler) listMessages(c *gin.Context) {
	var messages []models.Message
	if err := h.DB.
		Preload("User").
		Preload("Booking").
		Order("created_at DESC").
		Order("id DESC").
		Find(&messages).Error; err != nil {
		log.Printf("Admin message list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]AdminMessage, 0, len(messages))
	for _, m := range messages {
		response = append(response, AdminMessage{
			MessageResponse: toMessageResponse(m),
			JobNumber:       m.Booking.JobNumber,
			ServiceType:     m.Booking.ServiceType,
		})
	}

	c.JSON(http.StatusOK, response)
}

// stats returns live dashboard counts; nothing here is cached.
func (h *AdminHandler) stats(c *gin.Context) {
	var stats struct {
		TotalCustomers  int64 `json:"totalCustomers"`
		TotalBookings   int64 `json:"totalBookings"`
		TotalMessages   int64 `json:"totalMessages"`
		PendingBookings int64 `json:"pendingBookings"`
	}

	h.DB.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&stats.TotalCustomers)
	h.DB.Model(&models.Booking{}).Count(&stats.TotalBookings)
	h.DB.Model(&models.Message{}).Count(&stats.TotalMessages)
	h.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusScheduled).Count(&stats.PendingBookings)

	c.JSON(http.StatusOK, stats)
}

// createBooking creates a booking for a customer.
func (h *AdminHandler) createBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	if req.UserID == 0 || req.Status == "" || req.ServiceType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId, status, and serviceType are required"})
		return
	}

	booking := models.Booking{
		UserID:      req.UserID,
		JobNumber:   req.JobNumber,
		Status:      models.BookingStatus(req.Status),
		ServiceType: req.ServiceType,
		Description: req.Description,
		TotalAmount: req.TotalAmount,
		Address:     req.Address,
	}

	if !booking.IsValidStatus() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking status"})
		return
	}

	if req.ScheduledDate != "" {
		scheduled, err := parseDate(req.ScheduledDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scheduledDate"})
			return
		}
		booking.ScheduledDate = &scheduled
	}

	if err := h.DB.Create(&booking).Error; err != nil {
		log.Printf("Booking creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// updateBooking applies a partial merge: any field omitted from the
// request keeps its prior stored value.
func (h *AdminHandler) updateBooking(c *gin.Context) {
	var booking models.Booking
	if err := h.DB.First(&booking, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		log.Printf("Booking lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	if req.Status != nil {
		booking.Status = models.BookingStatus(*req.Status)
		if !booking.IsValidStatus() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking status"})
			return
		}
	}
	if req.ServiceType != nil {
		booking.ServiceType = *req.ServiceType
	}
	if req.ScheduledDate != nil {
		scheduled, err := parseDate(*req.ScheduledDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scheduledDate"})
			return
		}
		booking.ScheduledDate = &scheduled
	}
	if req.CompletedDate != nil {
		completed, err := parseDate(*req.CompletedDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid completedDate"})
			return
		}
		booking.CompletedDate = &completed
	}
	if req.Description != nil {
		booking.Description = *req.Description
	}
	if req.TotalAmount != nil {
		booking.TotalAmount = req.TotalAmount
	}
	if req.Address != nil {
		booking.Address = *req.Address
	}

	if err := h.DB.Save(&booking).Error; err != nil {
		log.Printf("Booking update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// deleteBooking removes a booking with its messages and attachments.
// Children go first to satisfy referential integrity.
func (h *AdminHandler) deleteBooking(c *gin.Context) {
	var booking models.Booking
	if err := h.DB.First(&booking, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		log.Printf("Booking lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&booking).Error
	})
	if err != nil {
		log.Printf("Booking delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully"})
}

// replyToBooking appends a support message authored by the calling admin.
func (h *AdminHandler) replyToBooking(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
		return
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	var booking models.Booking
	if err := h.DB.First(&booking, "id = ?", c.Param("bookingId")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}

	message := models.Message{
		BookingID:  booking.ID,
		UserID:     user.ID,
		Body:       strings.TrimSpace(req.Message),
		SenderType: models.SenderSupport,
	}

	if err := h.DB.Create(&message).Error; err != nil {
		log.Printf("Admin reply failed for booking %d: %v", booking.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := h.DB.Preload("User").First(&message, message.ID).Error; err != nil {
		log.Printf("Message reload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(message))
}

// parseDate accepts the date formats the portal frontend sends.
func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format")
}
