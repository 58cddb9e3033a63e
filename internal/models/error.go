package models

import (
	"errors"
	"fmt"
)

// APIError represents a standardized error response for the API
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"

	// Cart, checkout and payment errors
	ErrEmptyCart       = "EMPTY_CART"
	ErrCartNotFound    = "CART_NOT_FOUND"
	ErrOrderNotPayable = "ORDER_NOT_PAYABLE"
	ErrAmountZero      = "AMOUNT_ZERO"

	// OAuth/Auth errors (maintain RFC 6749 compatibility)
	ErrInvalidRequest       = "invalid_request"
	ErrInvalidClient        = "invalid_client"
	ErrInvalidGrant         = "invalid_grant"
	ErrUnauthorizedClient   = "unauthorized_client"
	ErrUnsupportedGrantType = "unsupported_grant_type"
	ErrInvalidScope         = "invalid_scope"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// AppError is the error type returned by services. Code is one of the
// error code constants above; Err keeps the underlying cause for logging.
type AppError struct {
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports user-correctable input. field is optional.
func NewValidationError(message string, field ...string) *AppError {
	err := &AppError{Code: ErrValidationFailed, Message: message}
	if len(field) > 0 && field[0] != "" {
		err.Details = map[string]interface{}{"field": field[0]}
	}
	return err
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: ErrNotFound, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: ErrConflict, Message: message}
}

func NewEmptyCartError() *AppError {
	return &AppError{Code: ErrEmptyCart, Message: "Your cart is empty!"}
}

func NewCartNotFoundError() *AppError {
	return &AppError{Code: ErrCartNotFound, Message: "Cart not found!"}
}

func NewNotPayableError() *AppError {
	return &AppError{Code: ErrOrderNotPayable, Message: "Order not payable! (expired or already paid)"}
}

func NewAmountZeroError() *AppError {
	return &AppError{Code: ErrAmountZero, Message: "Order total is zero!"}
}

// NewInternalError wraps an unexpected collaborator failure. The cause is kept
// for logs and never shown to clients.
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Code: ErrInternalServer, Message: message, Err: cause}
}

// ErrorCode returns the AppError code carried by err, or ErrInternalServer
// for any other non-nil error.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternalServer
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// OAuth2Error represents an OAuth2 error response (RFC 6749)
type OAuth2Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

// NewOAuth2Error creates a new OAuth2 error response
func NewOAuth2Error(error, description string) OAuth2Error {
	return OAuth2Error{
		Error:            error,
		ErrorDescription: description,
	}
}
