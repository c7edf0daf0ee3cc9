package app

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrBadRequest        = errors.New("bad request")
	ErrLLMConfig         = errors.New("llm api key is not configured")
	ErrInternal          = errors.New("internal error")
	ErrContactNotFound   = errors.New("contact message not found")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrAdminDisabled     = errors.New("admin login is not configured")
)

// ValidationError lists every violated field constraint of a submission.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
