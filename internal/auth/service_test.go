package auth

import (
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newAuthBackend(t *testing.T, status int, body string, got *map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if got != nil {
			json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestService_LoginAccessToken(t *testing.T) {
	var got map[string]string
	backend := newAuthBackend(t, http.StatusOK, `{"status":"success","data":{"access_token":"jwt-1"}}`, &got)
	service := NewAuthService(backend.URL, "", time.Second)

	result, err := service.Login(context.Background(), "ada", "hunter2")

	require.NoError(t, err)
	assert.Equal(t, "jwt-1", result.AccessToken)
	assert.False(t, result.TwoFactorRequired())
	assert.Equal(t, map[string]string{"email_or_login": "ada", "password": "hunter2"}, got)
}

func TestService_LoginTwoFactor(t *testing.T) {
	backend := newAuthBackend(t, http.StatusOK,
		`{"status":"success","data":{"message":"Two-factor authentication required","2fa_auth_method":"email","session_token":"sess-1"}}`, nil)
	service := NewAuthService(backend.URL, "", time.Second)

	result, err := service.Login(context.Background(), "ada", "hunter2")

	require.NoError(t, err)
	assert.True(t, result.TwoFactorRequired())
	assert.Equal(t, "email", result.TwoFactorMethod)
	assert.Equal(t, "sess-1", result.SessionToken)
}

func TestService_LoginErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"bad credentials", http.StatusUnauthorized, ErrInvalidCredentials},
		{"not verified", http.StatusForbidden, ErrUserNotVerified},
		{"rate limited", http.StatusTooManyRequests, ErrTooManyRequests},
		{"backend down", http.StatusInternalServerError, ErrAuthUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newAuthBackend(t, tt.status, `{"status":"error","message":"nope","code":0}`, nil)
			service := NewAuthService(backend.URL, "", time.Second)

			_, err := service.Login(context.Background(), "ada", "hunter2")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewAuthService("", "", time.Second).Login(context.Background(), "ada", "hunter2")
	assert.ErrorIs(t, err, ErrLoginNotConfigured)
}

func TestService_VerifyTwoFactor(t *testing.T) {
	var got map[string]string
	backend := newAuthBackend(t, http.StatusOK,
		`{"status":"success","data":{"user_id":"u1","access_token":"jwt-2","refresh_token":"r"}}`, &got)
	service := NewAuthService("", backend.URL, time.Second)

	result, err := service.VerifyTwoFactor(context.Background(), "sess-1", "123456")

	require.NoError(t, err)
	assert.Equal(t, "jwt-2", result.AccessToken)
	assert.Equal(t, "sess-1", got["session_token"])
	assert.Equal(t, "123456", got["code"])
}

func TestService_VerifyTwoFactorErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"status":"error","message":"session token is invalid","code":401}`)
	}))
	defer server.Close()
	service := NewAuthService("", server.URL, time.Second)

	_, err := service.VerifyTwoFactor(context.Background(), "sess-1", "12ab56")
	assert.ErrorIs(t, err, ErrInvalid2FACode)
	_, err = service.VerifyTwoFactor(context.Background(), "sess-1", "12345")
	assert.ErrorIs(t, err, ErrInvalid2FACode)
	_, err = service.VerifyTwoFactor(context.Background(), "", "123456")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
	assert.Equal(t, 0, calls)

	_, err = service.VerifyTwoFactor(context.Background(), "sess-1", "123456")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
	assert.Equal(t, 1, calls)
}
