package core

import (
	"crypto/subtle"
	"strings"
)

// weakTokenFragments are rejected anywhere in an HTTP auth token
var weakTokenFragments = []string{
	"password", "secret", "token", "admin", "test", "default", "greenroute",
	"12345", "123456",
}

// ValidateAuthToken checks that a configured HTTP bearer token is long and non-trivial
func ValidateAuthToken(token string) error {
	if token == "" {
		return NewError(ErrInvalidParameter, "authentication token cannot be empty").
			WithGuidance("Provide a randomly generated token.")
	}
	if len(token) < 16 {
		return NewError(ErrInvalidParameter, "authentication token is too short").
			WithGuidance("Use a token with at least 16 characters.")
	}

	lower := strings.ToLower(token)
	for _, weak := range weakTokenFragments {
		if strings.Contains(lower, weak) {
			return NewError(ErrInvalidParameter, "authentication token appears to be weak").
				WithGuidance("Use a randomly generated token.")
		}
	}
	return nil
}

// AuthenticateBearer checks an Authorization header against the expected token
// in constant time. It returns an empty string on success, or the reason.
func AuthenticateBearer(authHeader, expected string) string {
	if authHeader == "" {
		return "missing Authorization header"
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" {
		return "invalid Authorization header format"
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		return "invalid bearer token"
	}
	return ""
}
