package routes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-portal-server/models"
	"customer-portal-server/utils"
)

func TestLogin(t *testing.T) {
	router, db := setupTestServer(t)
	user := createTestUser(t, db, "demo@customer.com", "+1234567890", "demo123", models.RoleCustomer)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
	}{
		{
			name:           "valid credentials",
			body:           map[string]interface{}{"email": "demo@customer.com", "phone": "+1234567890", "password": "demo123"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong password",
			body:           map[string]interface{}{"email": "demo@customer.com", "phone": "+1234567890", "password": "wrong"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong email",
			body:           map[string]interface{}{"email": "other@customer.com", "phone": "+1234567890", "password": "demo123"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong phone",
			body:           map[string]interface{}{"email": "demo@customer.com", "phone": "+1111111111", "password": "demo123"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing password",
			body:           map[string]interface{}{"email": "demo@customer.com", "phone": "+1234567890"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing email",
			body:           map[string]interface{}{"phone": "+1234567890", "password": "demo123"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus != http.StatusOK {
				assert.Contains(t, decodeBody(t, w), "error")
				return
			}

			body := decodeBody(t, w)
			require.Contains(t, body, "token")

			// Decoded identity must match the stored user.
			claims, err := utils.VerifyToken(body["token"].(string), testJWTSecret)
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
			assert.Equal(t, user.Email, claims.Email)
			assert.Equal(t, string(models.RoleCustomer), claims.Role)

			userData := body["user"].(map[string]interface{})
			assert.Equal(t, float64(user.ID), userData["id"])
			assert.NotContains(t, userData, "password_hash")
		})
	}
}

func TestRegister(t *testing.T) {
	router, db := setupTestServer(t)
	createTestUser(t, db, "taken@customer.com", "+1000000000", "secret1", models.RoleCustomer)

	t.Run("creates customer account and returns token", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
			"email":     "new@customer.com",
			"phone":     "+1555000111",
			"password":  "secret1",
			"firstName": "Jane",
			"lastName":  "Smith",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		require.Contains(t, body, "token")

		userData := body["user"].(map[string]interface{})
		assert.Equal(t, "new@customer.com", userData["email"])
		assert.Equal(t, "Jane", userData["first_name"])
		assert.Equal(t, string(models.RoleCustomer), userData["role"])

		var stored models.User
		require.NoError(t, db.Where("email = ?", "new@customer.com").First(&stored).Error)
		assert.True(t, utils.CheckPasswordHash("secret1", stored.PasswordHash))
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
			"email":    "taken@customer.com",
			"phone":    "+1555000222",
			"password": "secret1",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User already exists", decodeBody(t, w)["error"])
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
			"email": "incomplete@customer.com",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
