package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

const (
	google2FAAuthMethod = "google_authenticator"
	email2FAAuthMethod  = "email"
	twoFactorCodeLength = 6
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotVerified     = errors.New("user has not been verified")
	ErrTooManyRequests     = errors.New("too many login attempts")
	ErrInvalid2FACode      = errors.New("2fa code is invalid")
	ErrInvalidSessionToken = errors.New("session token is invalid")
	ErrLoginNotConfigured  = errors.New("login endpoint is not configured")
	ErrAuthUnavailable     = errors.New("authentication service unavailable")
)

// LoginResult is either an access token or a pending two-factor challenge.
type LoginResult struct {
	AccessToken     string
	TwoFactorMethod string
	SessionToken    string
}

func (r *LoginResult) TwoFactorRequired() bool {
	return r.AccessToken == "" && r.SessionToken != ""
}

type Service interface {
	Login(ctx context.Context, emailOrLogin, password string) (*LoginResult, error)
	VerifyTwoFactor(ctx context.Context, sessionToken, code string) (*LoginResult, error)
}

// service relays credentials to the backend auth API. Nothing is verified or
// stored locally.
type service struct {
	loginURL     string
	twoFactorURL string
	httpClient   *http.Client
}

func NewAuthService(loginURL, twoFactorURL string, timeout time.Duration) Service {
	return &service{
		loginURL:     loginURL,
		twoFactorURL: twoFactorURL,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type backendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AccessToken     string `json:"access_token"`
		TwoFactorMethod string `json:"2fa_auth_method"`
		SessionToken    string `json:"session_token"`
	} `json:"data"`
}

func (s *service) Login(ctx context.Context, emailOrLogin, password string) (*LoginResult, error) {
	if s.loginURL == "" {
		return nil, ErrLoginNotConfigured
	}
	resp, status, err := s.post(ctx, s.loginURL, map[string]string{
		"email_or_login": emailOrLogin,
		"password":       password,
	})
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	case http.StatusForbidden:
		return nil, ErrUserNotVerified
	case http.StatusTooManyRequests:
		return nil, ErrTooManyRequests
	default:
		log.Printf("Login rejected by backend (status %d): %s", status, resp.Message)
		return nil, ErrAuthUnavailable
	}

	result := &LoginResult{
		AccessToken:     resp.Data.AccessToken,
		TwoFactorMethod: resp.Data.TwoFactorMethod,
		SessionToken:    resp.Data.SessionToken,
	}
	if result.AccessToken == "" && result.SessionToken == "" {
		log.Println("Login response carried neither an access token nor a 2fa session")
		return nil, ErrAuthUnavailable
	}
	return result, nil
}

func (s *service) VerifyTwoFactor(ctx context.Context, sessionToken, code string) (*LoginResult, error) {
	if s.twoFactorURL == "" {
		return nil, ErrLoginNotConfigured
	}
	if sessionToken == "" {
		return nil, ErrInvalidSessionToken
	}
	if !validCodeFormat(code) {
		return nil, ErrInvalid2FACode
	}

	resp, status, err := s.post(ctx, s.twoFactorURL, map[string]string{
		"session_token": sessionToken,
		"code":          code,
	})
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		if resp.Message == ErrInvalidSessionToken.Error() {
			return nil, ErrInvalidSessionToken
		}
		return nil, ErrInvalid2FACode
	case http.StatusTooManyRequests:
		return nil, ErrTooManyRequests
	default:
		log.Printf("2fa verification rejected by backend (status %d): %s", status, resp.Message)
		return nil, ErrAuthUnavailable
	}

	if resp.Data.AccessToken == "" {
		return nil, ErrAuthUnavailable
	}
	return &LoginResult{AccessToken: resp.Data.AccessToken}, nil
}

// validCodeFormat checks the shape both 2fa methods share: six digits.
func validCodeFormat(code string) bool {
	if len(code) != twoFactorCodeLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (s *service) post(ctx context.Context, url string, payload interface{}) (*backendResponse, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("could not build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("Error calling auth backend: %v", err)
		return nil, 0, ErrAuthUnavailable
	}
	defer res.Body.Close()

	var resp backendResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil && res.StatusCode == http.StatusOK {
		return nil, 0, fmt.Errorf("%w: malformed response: %v", ErrAuthUnavailable, err)
	}
	return &resp, res.StatusCode, nil
}
