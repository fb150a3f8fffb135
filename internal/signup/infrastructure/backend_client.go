package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	signupErrors "github.com/sebuszqo/UnionSignup/internal/signup/errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 64 << 10

var (
	ErrLinkTokenMissing       = errors.New("link token endpoint returned no link_token")
	ErrLinkTokenNotConfigured = errors.New("no link token endpoint configured")
)

// BackendClient talks to the union backend: the signup endpoint and the
// link-token endpoint.
type BackendClient struct {
	signupURL    string
	linkTokenURL string
	httpClient   *http.Client
}

func NewBackendClient(signupURL, linkTokenURL string, timeout time.Duration) *BackendClient {
	return &BackendClient{
		signupURL:    signupURL,
		linkTokenURL: linkTokenURL,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type backendErrorBody struct {
	Error struct {
		Param   string `json:"param"`
		Message string `json:"message"`
	} `json:"error"`
}

// SubmitSignup posts the body form-encoded. Any 2xx is success; anything else
// becomes a *BackendError carrying the structured param/message when the
// backend sent one.
func (c *BackendClient) SubmitSignup(ctx context.Context, body *domain.FormPayload, idempotencyKey string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.signupURL, strings.NewReader(body.Encode()))
	if err != nil {
		return fmt.Errorf("could not build signup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("signup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	backendErr := &signupErrors.BackendError{StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		var payload backendErrorBody
		if json.Unmarshal(raw, &payload) == nil {
			backendErr.Param = payload.Error.Param
			backendErr.Msg = payload.Error.Message
		}
	}
	return backendErr
}

// CreateLinkToken asks the backend for a fresh bank-linking token. The
// endpoint takes no body.
func (c *BackendClient) CreateLinkToken(ctx context.Context, _ string) (string, error) {
	if c.linkTokenURL == "" {
		return "", ErrLinkTokenNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.linkTokenURL, nil)
	if err != nil {
		return "", fmt.Errorf("could not build link token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("link token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("error querying link token endpoint: %s", resp.Status)
	}

	var result struct {
		LinkToken string `json:"link_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("could not decode link token response: %w", err)
	}
	if result.LinkToken == "" {
		return "", ErrLinkTokenMissing
	}
	return result.LinkToken, nil
}
