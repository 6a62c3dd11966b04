package routes

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"customer-portal-server/middleware"
	"customer-portal-server/models"
	"customer-portal-server/servicem8"
)

// MessageResponse is a message joined with its author's display fields.
type MessageResponse struct {
	ID         uint              `json:"id"`
	BookingID  uint              `json:"booking_id"`
	UserID     uint              `json:"user_id"`
	Message    string            `json:"message"`
	SenderType models.SenderType `json:"sender_type"`
	CreatedAt  time.Time         `json:"created_at"`
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	Email      string            `json:"email"`
}

// PostMessageRequest represents the customer message request
type PostMessageRequest struct {
	Message string `json:"message"`
}

// SupportMessageRequest represents the demo support-reply request
type SupportMessageRequest struct {
	Message string `json:"message"`
	UserID  uint   `json:"userId"`
}

// BookingHandler serves customer-facing booking, attachment, and message
// endpoints.
type BookingHandler struct {
	DB   *gorm.DB
	Jobs *servicem8.Client
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(db *gorm.DB, jobs *servicem8.Client) *BookingHandler {
	return &BookingHandler{DB: db, Jobs: jobs}
}

// Register registers booking routes on an authenticated group.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.listBookings)
	router.GET("/:id", h.getBooking)
	router.GET("/:id/attachments", h.listAttachments)
	router.GET("/:id/messages", h.listMessages)
	router.POST("/:id/messages", h.postMessage)
}

// RegisterSupportReply registers the demo support-reply endpoint. It
// is exposed without authentication and trusts the client-supplied
// author id; demo use only.
func (h *BookingHandler) RegisterSupportReply(router *gin.RouterGroup) {
	router.POST("/:id/messages/support", h.postSupportMessage)
}

// canAccessBooking permits a booking's owner and admins. Every
// per-resource check goes through this predicate.
func canAccessBooking(user models.User, booking models.Booking) bool {
	return user.IsAdmin() || booking.UserID == user.ID
}

// findAccessibleBooking loads a booking and applies the ownership rule.
// An inaccessible booking is reported exactly like a missing one so
// callers cannot probe for other users' booking ids.
func (h *BookingHandler) findAccessibleBooking(c *gin.Context) (models.Booking, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
		return models.Booking{}, false
	}

	var booking models.Booking
	if err := h.DB.First(&booking, "id = ?", c.Param("id")).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Booking lookup failed: %v", err)
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return models.Booking{}, false
	}

	if !canAccessBooking(user, booking) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return models.Booking{}, false
	}

	return booking, true
}

// listBookings returns all bookings owned by the caller, newest scheduled
// first.
func (h *BookingHandler) listBookings(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
		return
	}

	var bookings []models.Booking
	if err := h.DB.
		Where("user_id = ?", user.ID).
		Order("scheduled_date DESC NULLS LAST").
		Order("id DESC").
		Find(&bookings).Error; err != nil {
		log.Printf("Booking list failed for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Best-effort external sync: when ServiceM8 is configured, fetch the
	// remote job list in the background. A failure here never reaches
	// the caller.
	if h.Jobs.Configured() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			jobs, err := h.Jobs.Jobs(ctx)
			if err != nil {
				log.Printf("ServiceM8 job fetch failed: %v", err)
				return
			}
			log.Printf("ServiceM8 jobs fetched: %d", len(jobs))
		}()
	}

	c.JSON(http.StatusOK, bookings)
}

// getBooking returns a single booking, ownership-checked.
func (h *BookingHandler) getBooking(c *gin.Context) {
	booking, ok := h.findAccessibleBooking(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, booking)
}

// listAttachments returns a booking's attachments, newest first.
func (h *BookingHandler) listAttachments(c *gin.Context) {
	booking, ok := h.findAccessibleBooking(c)
	if !ok {
		return
	}

	var attachments []models.Attachment
	if err := h.DB.
		Where("booking_id = ?", booking.ID).
		Order("uploaded_at DESC").
		Find(&attachments).Error; err != nil {
		log.Printf("Attachment list failed for booking %d: %v", booking.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, attachments)
}

// listMessages returns a booking's messages in chronological order, each
// joined with its author's display fields.
func (h *BookingHandler) listMessages(c *gin.Context) {
	booking, ok := h.findAccessibleBooking(c)
	if !ok {
		return
	}

	var messages []models.Message
	if err := h.DB.
		Where("booking_id = ?", booking.ID).
		Preload("User").
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error; err != nil {
		log.Printf("Message list failed for booking %d: %v", booking.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	responses := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, toMessageResponse(m))
	}

	c.JSON(http.StatusOK, responses)
}

// postMessage appends a customer message to a booking the caller can
// access. The sender kind is fixed server-side regardless of any
// client-supplied value.
func (h *BookingHandler) postMessage(c *gin.Context) {
	booking, ok := h.findAccessibleBooking(c)
	if !ok {
		return
	}

	user, _ := middleware.CurrentUser(c)

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	message := models.Message{
		BookingID:  booking.ID,
		UserID:     user.ID,
		Body:       strings.TrimSpace(req.Message),
		SenderType: models.SenderCustomer,
	}

	if err := h.DB.Create(&message).Error; err != nil {
		log.Printf("Message creation failed for booking %d: %v", booking.ID, err)
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

// postSupportMessage appends a support-authored message with a
// client-supplied author id.
func (h *BookingHandler) postSupportMessage(c *gin.Context) {
	var req SupportMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}
	if req.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	var booking models.Booking
	if err := h.DB.First(&booking, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}

	message := models.Message{
		BookingID:  booking.ID,
		UserID:     req.UserID,
		Body:       strings.TrimSpace(req.Message),
		SenderType: models.SenderSupport,
	}

	if err := h.DB.Create(&message).Error; err != nil {
		log.Printf("Support message creation failed for booking %d: %v", booking.ID, err)
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

func toMessageResponse(m models.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		BookingID:  m.BookingID,
		UserID:     m.UserID,
		Message:    m.Body,
		SenderType: m.SenderType,
		CreatedAt:  m.CreatedAt,
		FirstName:  m.User.FirstName,
		LastName:   m.User.LastName,
		Email:      m.User.Email,
	}
}
