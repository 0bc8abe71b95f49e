package services

import (
	"errors"
	"fmt"
)

var (
	ErrCommissionNotFound = errors.New("commission not found")
	ErrRootNotFound       = errors.New("root user not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrReferralAlreadySet = errors.New("user already has a referrer")
)

// ValidationError rejects input before any write
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
