package infrastructure

import (
	"context"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	signupErrors "github.com/sebuszqo/UnionSignup/internal/signup/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestBackendClient_SubmitSignupSuccess(t *testing.T) {
	var gotBody, gotKey, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		gotKey = r.Header.Get("Idempotency-Key")
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	body := domain.NewFormPayload()
	body.Set("first-name", "Ada")
	body.Set(domain.FieldStripePaymentToken, "tok_1")

	client := NewBackendClient(server.URL, "", time.Second)
	err := client.SubmitSignup(context.Background(), body, "key-1")

	require.NoError(t, err)
	assert.Equal(t, "first-name=Ada&stripe-payment-token=tok_1", gotBody)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "application/x-www-form-urlencoded", gotType)
}

func TestBackendClient_SubmitSignupStructuredError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":{"param":"email","message":"Already a member"}}`)
	}))
	defer server.Close()

	err := NewBackendClient(server.URL, "", time.Second).SubmitSignup(context.Background(), domain.NewFormPayload(), "k")

	be, ok := signupErrors.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, be.StatusCode)
	assert.Equal(t, "email", be.Param)
	assert.Equal(t, "Already a member", be.Msg)
}

func TestBackendClient_SubmitSignupUnstructuredError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewBackendClient(server.URL, "", time.Second).SubmitSignup(context.Background(), domain.NewFormPayload(), "k")

	be, ok := signupErrors.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, be.StatusCode)
	assert.Empty(t, be.Param)
	assert.Empty(t, be.Msg)
}

func TestBackendClient_CreateLinkToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		io.WriteString(w, `{"link_token":"link-sandbox-abc"}`)
	}))
	defer server.Close()

	token, err := NewBackendClient("", server.URL, time.Second).CreateLinkToken(context.Background(), "draft")

	require.NoError(t, err)
	assert.Equal(t, "link-sandbox-abc", token)
}

func TestBackendClient_CreateLinkTokenFailures(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer empty.Close()
	_, err := NewBackendClient("", empty.URL, time.Second).CreateLinkToken(context.Background(), "draft")
	assert.ErrorIs(t, err, ErrLinkTokenMissing)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()
	_, err = NewBackendClient("", failing.URL, time.Second).CreateLinkToken(context.Background(), "draft")
	assert.Error(t, err)

	_, err = NewBackendClient("", "", time.Second).CreateLinkToken(context.Background(), "draft")
	assert.ErrorIs(t, err, ErrLinkTokenNotConfigured)
}
