package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers unknown users, inactive accounts and wrong
	// passwords alike so callers cannot enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrEmptyResponse      = errors.New("empty response from model")
)

// errorKind names the innermost error type, for log records.
func errorKind(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}
