// Package stats holds the profile statistics model: username rules, the
// upstream response shape and the per-tier figures derived from it.
package stats

import (
	"errors"
	"regexp"
	"strings"
)

// MaxUsernameLength is the longest accepted username.
const MaxUsernameLength = 15

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,15}$`)

// username validation errors
var (
	ErrUsernameRequired = errors.New("Username should not be empty")
	ErrInvalidUsername  = errors.New("Invalid username format")
)

// ValidateUsername checks username against the allowed pattern.
// It does not trim; callers decide whether surrounding space is tolerated.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// NormalizeUsername trims user input and validates the result.
func NormalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if err := ValidateUsername(username); err != nil {
		return "", err
	}
	return username, nil
}
