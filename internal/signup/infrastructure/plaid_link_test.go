package infrastructure

import (
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPlaidLinkSource_CreateLinkToken(t *testing.T) {
	var got map[string]interface{}
	var clientID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/link/token/create", r.URL.Path)
		clientID = r.Header.Get("PLAID-CLIENT-ID")
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"link_token":"link-sandbox-42","expiration":"2026-10-19T12:00:00Z","request_id":"req-1"}`)
	}))
	defer server.Close()

	source := NewPlaidLinkSource("client-id", "secret", server.URL, "Local 42 Membership", server.Client())
	token, err := source.CreateLinkToken(context.Background(), "draft-1")

	require.NoError(t, err)
	assert.Equal(t, "link-sandbox-42", token)
	assert.Equal(t, "client-id", clientID)
	assert.Equal(t, "Local 42 Membership", got["client_name"])
	user, _ := got["user"].(map[string]interface{})
	assert.Equal(t, "draft-1", user["client_user_id"])
}

func TestPlaidLinkSource_NotConfigured(t *testing.T) {
	source := NewPlaidLinkSource("", "", "sandbox", "Local 42", http.DefaultClient)

	_, err := source.CreateLinkToken(context.Background(), "draft")
	assert.ErrorIs(t, err, ErrPlaidNotConfigured)
}
