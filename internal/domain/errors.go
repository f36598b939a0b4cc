package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"

	// Auth specific errors
	CodeNotWhitelisted ErrorCode = "NOT_WHITELISTED"
	CodeInvalidToken   ErrorCode = "INVALID_TOKEN"
	CodeExpiredToken   ErrorCode = "EXPIRED_TOKEN"

	// Admin specific errors
	CodeDuplicateEmail ErrorCode = "DUPLICATE_EMAIL"
	CodeSelfDelete     ErrorCode = "SELF_DELETE"

	// External service errors
	CodeLLMServiceError ErrorCode = "LLM_SERVICE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewNotWhitelistedError() *DomainError {
	return NewError(CodeNotWhitelisted,
		"Your account has not been activated yet. Please complete the registration form and wait for the administrator to process it.", nil)
}

func NewInvalidTokenError(cause error) *DomainError {
	return NewError(CodeInvalidToken, "Invalid authentication token", cause)
}

func NewExpiredTokenError() *DomainError {
	return NewError(CodeExpiredToken, "Authentication token has expired", nil)
}

func NewQuestionNotFoundError(questionID int64) *DomainError {
	return NewError(CodeNotFound, "Question not found", nil).withContext("question_id", questionID)
}

func NewUserNotFoundError(userID int64) *DomainError {
	return NewError(CodeNotFound, fmt.Sprintf("User with ID %d not found", userID), nil)
}

func NewDuplicateEmailError(email string) *DomainError {
	return NewError(CodeDuplicateEmail, fmt.Sprintf("User with email %s already exists", email), nil)
}

func NewSelfDeleteError() *DomainError {
	return NewError(CodeSelfDelete, "Cannot delete your own admin account", nil)
}

func NewLLMServiceError(cause error) *DomainError {
	return NewError(CodeLLMServiceError, "Failed to process with LLM service", cause)
}

func (e *DomainError) withContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of field-level validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Error()
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}
