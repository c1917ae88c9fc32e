package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndGetProfile(t *testing.T) {
	ts := setupTestServer(t)

	token, userID := ts.signup(t, "alice@example.com", "Alice")

	resp := ts.api.Get("/api/v1/users/me", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[UserResponse](t, resp)
	assert.True(t, envelope.Success)
	assert.Equal(t, userID, envelope.Data.ID)
	assert.Equal(t, "alice@example.com", envelope.Data.Email)
	assert.Equal(t, "Alice", envelope.Data.DisplayName)
	assert.True(t, envelope.Data.AvailableForFriends)
}

func TestSignupDuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)

	ts.signup(t, "alice@example.com", "Alice")

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":        "alice@example.com",
		"password":     "another-password-1",
		"display_name": "Alice Again",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	envelope := decodeEnvelope[struct{}](t, resp)
	assert.False(t, envelope.Success)
	assert.Equal(t, "ALREADY_EXISTS", envelope.Code)
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)

	ts.signup(t, "alice@example.com", "Alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[AuthResponse](t, resp)
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Equal(t, "alice@example.com", envelope.Data.User.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	ts := setupTestServer(t)

	ts.signup(t, "alice@example.com", "Alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong-password-entirely",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	envelope := decodeEnvelope[struct{}](t, resp)
	assert.False(t, envelope.Success)
}

func TestLoginUnknownEmail(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever-password-1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRefreshRotatesTokens(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":        "alice@example.com",
		"password":     "correct-horse-battery",
		"display_name": "Alice",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	first := decodeEnvelope[AuthResponse](t, resp)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": first.Data.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	second := decodeEnvelope[AuthResponse](t, resp)
	assert.True(t, second.Success)
	assert.NotEmpty(t, second.Data.AccessToken)
	assert.NotEqual(t, first.Data.RefreshToken, second.Data.RefreshToken)

	// The old refresh token is single use.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": first.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":        "alice@example.com",
		"password":     "correct-horse-battery",
		"display_name": "Alice",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	auth := decodeEnvelope[AuthResponse](t, resp)

	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{
		"refresh_token": auth.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	// The session is gone, so the refresh token no longer works.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": auth.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUpdateProfile(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.signup(t, "alice@example.com", "Alice")

	resp := ts.api.Patch("/api/v1/users/me",
		"Authorization: Bearer "+token,
		map[string]any{
			"display_name":          "Alice Reader",
			"avatar_url":            "https://example.com/alice.png",
			"available_for_friends": false,
		},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[UserResponse](t, resp)
	assert.Equal(t, "Alice Reader", envelope.Data.DisplayName)
	assert.Equal(t, "https://example.com/alice.png", envelope.Data.AvatarURL)
	assert.False(t, envelope.Data.AvailableForFriends)
}
