package security

import (
	"regexp"
	"strings"
)

// tokenPattern accepts v3 API keys (hex) and v4 read access tokens (JWT).
var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_\-.]+$`)

// TokenValidator provides validation and safe logging of bearer tokens
type TokenValidator struct {
	minLength int
	maxLength int
}

// NewTokenValidator creates a new token validator with reasonable defaults
func NewTokenValidator() *TokenValidator {
	return &TokenValidator{
		minLength: 16,
		maxLength: 1024,
	}
}

// Validate checks token format and length
func (v *TokenValidator) Validate(token string) bool {
	if token == "" {
		return false
	}
	if len(token) < v.minLength || len(token) > v.maxLength {
		return false
	}
	return tokenPattern.MatchString(token)
}

// Sanitize trims whitespace and an accidental "Bearer " prefix
func (v *TokenValidator) Sanitize(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// Mask creates a masked version for logging (shows only first/last few chars)
func (v *TokenValidator) Mask(token string) string {
	if len(token) == 0 {
		return "[empty]"
	}

	if len(token) <= 8 {
		return "[***]"
	}

	return token[:3] + "..." + token[len(token)-3:]
}
