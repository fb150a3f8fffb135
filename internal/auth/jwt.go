package auth

import (
	"errors"
	"github.com/golang-jwt/jwt"
	"time"
)

var ErrInvalidJWTToken = errors.New("JWT token is invalid")

// tokenExpiry reads exp from an access token without verifying the signature.
// The token is only forwarded to the backend, which does the verification.
func tokenExpiry(tokenString string) (time.Time, error) {
	claims := &jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, ErrInvalidJWTToken
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}, ErrInvalidJWTToken
	}
	return time.Unix(claims.ExpiresAt, 0), nil
}
