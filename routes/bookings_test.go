package routes

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-portal-server/models"
)

func TestListBookings(t *testing.T) {
	router, db := setupTestServer(t)
	owner := createTestUser(t, db, "owner@test.com", "+1111111111", "secret1", models.RoleCustomer)
	other := createTestUser(t, db, "other@test.com", "+1222222222", "secret1", models.RoleCustomer)

	early := createTestBooking(t, db, owner.ID, models.BookingStatusCompleted,
		timePtr(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)))
	late := createTestBooking(t, db, owner.ID, models.BookingStatusScheduled,
		timePtr(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)))
	undated := createTestBooking(t, db, owner.ID, models.BookingStatusInProgress, nil)
	createTestBooking(t, db, other.ID, models.BookingStatusScheduled,
		timePtr(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)))

	t.Run("requires token", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/bookings", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns only owned bookings, scheduled date descending with nulls last", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/bookings", tokenFor(t, owner), nil)
		require.Equal(t, http.StatusOK, w.Code)

		bookings := decodeList(t, w)
		require.Len(t, bookings, 3)
		assert.Equal(t, float64(late.ID), bookings[0]["id"])
		assert.Equal(t, float64(early.ID), bookings[1]["id"])
		assert.Equal(t, float64(undated.ID), bookings[2]["id"])
	})
}

func TestGetBookingOwnership(t *testing.T) {
	router, db := setupTestServer(t)
	owner := createTestUser(t, db, "owner@test.com", "+1111111111", "secret1", models.RoleCustomer)
	other := createTestUser(t, db, "other@test.com", "+1222222222", "secret1", models.RoleCustomer)
	admin := createTestUser(t, db, "admin@test.com", "+1333333333", "secret1", models.RoleAdmin)

	booking := createTestBooking(t, db, owner.ID, models.BookingStatusScheduled, nil)
	path := fmt.Sprintf("/api/bookings/%d", booking.ID)

	t.Run("owner can read", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, path, tokenFor(t, owner), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(booking.ID), decodeBody(t, w)["id"])
	})

	t.Run("admin can read", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, path, tokenFor(t, admin), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("other user gets 404, not 403", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, path, tokenFor(t, other), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown id gets 404", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/bookings/99999", tokenFor(t, owner), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListAttachments(t *testing.T) {
	router, db := setupTestServer(t)
	owner := createTestUser(t, db, "owner@test.com", "+1111111111", "secret1", models.RoleCustomer)
	other := createTestUser(t, db, "other@test.com", "+1222222222", "secret1", models.RoleCustomer)

	booking := createTestBooking(t, db, owner.ID, models.BookingStatusCompleted, nil)
	require.NoError(t, db.Create(&models.Attachment{
		BookingID: booking.ID,
		FileName:  "invoice.pdf",
		FileURL:   "/uploads/invoice.pdf",
		FileType:  "application/pdf",
		FileSize:  45678,
	}).Error)

	path := fmt.Sprintf("/api/bookings/%d/attachments", booking.ID)

	t.Run("owner sees attachments", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, path, tokenFor(t, owner), nil)
		require.Equal(t, http.StatusOK, w.Code)

		attachments := decodeList(t, w)
		require.Len(t, attachments, 1)
		assert.Equal(t, "invoice.pdf", attachments[0]["file_name"])
	})

	t.Run("non-owner gets 404", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, path, tokenFor(t, other), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPostMessage(t *testing.T) {
	router, db := setupTestServer(t)
	owner := createTestUser(t, db, "owner@test.com", "+1111111111", "secret1", models.RoleCustomer)
	other := createTestUser(t, db, "other@test.com", "+1222222222", "secret1", models.RoleCustomer)

	booking := createTestBooking(t, db, owner.ID, models.BookingStatusScheduled, nil)
	path := fmt.Sprintf("/api/bookings/%d/messages", booking.ID)

	t.Run("creates customer message with author fields", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, path, tokenFor(t, owner),
			map[string]interface{}{"message": "  When will you arrive?  "})
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "When will you arrive?", body["message"])
		assert.Equal(t, string(models.SenderCustomer), body["sender_type"])
		assert.Equal(t, float64(owner.ID), body["user_id"])
		assert.Equal(t, owner.Email, body["email"])
		assert.Equal(t, owner.FirstName, body["first_name"])
	})

	t.Run("sender type is forced regardless of client value", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, path, tokenFor(t, owner),
			map[string]interface{}{"message": "hello", "sender_type": "support"})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, string(models.SenderCustomer), decodeBody(t, w)["sender_type"])
	})

	t.Run("rejects blank message", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, path, tokenFor(t, owner),
			map[string]interface{}{"message": "   "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non-owner gets 404", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, path, tokenFor(t, other),
			map[string]interface{}{"message": "should not land"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListMessagesChronological(t *testing.T) {
	router, db := setupTestServer(t)
	owner := createTestUser(t, db, "owner@test.com", "+1111111111", "secret1", models.RoleCustomer)
	admin := createTestUser(t, db, "admin@test.com", "+1333333333", "secret1", models.RoleAdmin)

	booking := createTestBooking(t, db, owner.ID, models.BookingStatusScheduled, nil)
	for i, m := range []models.Message{
		{BookingID: booking.ID, UserID: owner.ID, Body: "first", SenderType: models.SenderCustomer},
		{BookingID: booking.ID, UserID: admin.ID, Body: "second", SenderType: models.SenderSupport},
		{BookingID: booking.ID, UserID: owner.ID, Body: "third", SenderType: models.SenderCustomer},
	} {
		m.CreatedAt = time.Date(2024, 1, 1, 10, i, 0, 0, time.UTC)
		require.NoError(t, db.Create(&m).Error)
	}

	w := performRequest(router, http.MethodGet, fmt.Sprintf("/api/bookings/%d/messages", booking.ID), tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)

	messages := decodeList(t, w)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0]["message"])
	assert.Equal(t, "second", messages[1]["message"])
	assert.Equal(t, "third", messages[2]["message"])
	assert.Equal(t, string(models.SenderSupport), messages[1]["sender_type"])
	assert.Equal(t, admin.Email, messages[1]["email"])
}

func TestSupportReplyEndpoint(t *testing.T) {
	router, db := setupTestServer(t)
	owner := createTestUser(t, db, "owner@test.com", "+1111111111", "secret1", models.RoleCustomer)
	booking := createTestBooking(t, db, owner.ID, models.BookingStatusScheduled, nil)

	path := fmt.Sprintf("/api/bookings/%d/messages/support", booking.ID)

	t.Run("creates support message without a token", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, path, "",
			map[string]interface{}{"message": "We are on our way", "userId": owner.ID})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, string(models.SenderSupport), decodeBody(t, w)["sender_type"])
	})

	t.Run("requires userId", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, path, "",
			map[string]interface{}{"message": "missing author"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown booking gets 404", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/bookings/99999/messages/support", "",
			map[string]interface{}{"message": "hello", "userId": owner.ID})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
