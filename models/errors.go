package models

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
)

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNetwork       ErrorKind = "network"
	KindAuthorization ErrorKind = "authorization"
	KindDomain        ErrorKind = "domain"
	KindUnknown       ErrorKind = "unknown"
)

// FailureCategory classifies a business rejection for display.
type FailureCategory string

const (
	CategoryInsufficientPoints FailureCategory = "insufficient_points"
	CategoryEmptyCart          FailureCategory = "empty_cart"
	CategoryInsufficientStock  FailureCategory = "insufficient_stock"
	CategoryGeneric            FailureCategory = "generic"
)

const (
	MsgNetwork       = "Network error. Please check your connection."
	MsgUnauthorized  = "Authentication required. Please log in."
	MsgForbidden     = "Access denied. You don't have permission to perform this action."
	MsgBadRequest    = "Invalid request. Please check your input."
	MsgNotFound      = "Resource not found."
	MsgConflict      = "Conflict. Resource already exists."
	MsgUnprocessable = "Validation failed. Please check your input."
	MsgRateLimited   = "Too many requests. Please try again later."
	MsgServerError   = "Server error. Please try again later."
	MsgUnexpected    = "An unexpected error occurred."
	MsgInvalidInput  = "Please correct the highlighted fields."
)

// AppError is the single error type handed to callers of the cart engine.
// Status is the backend HTTP status, 0 when no response was received.
// ServerMessage keeps the backend's own wording even when Message was
// replaced by a generic text for that status.
type AppError struct {
	Kind          ErrorKind         `json:"kind"`
	Status        int               `json:"status,omitempty"`
	Message       string            `json:"message"`
	ServerMessage string            `json:"-"`
	Category      FailureCategory   `json:"category,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	Err           error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: MsgInvalidInput, Fields: fields}
}

func NewNetworkError(err error) *AppError {
	return &AppError{Kind: KindNetwork, Message: MsgNetwork, Err: err}
}

func NewAuthorizationError(message string) *AppError {
	if message == "" {
		message = MsgUnauthorized
	}
	return &AppError{Kind: KindAuthorization, Status: http.StatusUnauthorized, Message: message}
}

func NewDomainError(category FailureCategory, message string) *AppError {
	return &AppError{Kind: KindDomain, Message: message, Category: category}
}

// ErrorFromStatus maps a backend HTTP status and its message onto the taxonomy.
func ErrorFromStatus(status int, serverMessage string) *AppError {
	if status == 0 {
		return &AppError{Kind: KindNetwork, Message: MsgNetwork}
	}

	pick := func(fallback string) string {
		if serverMessage != "" {
			return serverMessage
		}
		return fallback
	}

	appErr := &AppError{Status: status, ServerMessage: serverMessage}
	switch status {
	case http.StatusBadRequest:
		appErr.Kind, appErr.Message = KindDomain, pick(MsgBadRequest)
	case http.StatusUnauthorized:
		appErr.Kind, appErr.Message = KindAuthorization, MsgUnauthorized
	case http.StatusForbidden:
		appErr.Kind, appErr.Message = KindAuthorization, MsgForbidden
	case http.StatusNotFound:
		appErr.Kind, appErr.Message = KindDomain, MsgNotFound
	case http.StatusConflict:
		appErr.Kind, appErr.Message = KindDomain, pick(MsgConflict)
	case http.StatusUnprocessableEntity:
		appErr.Kind, appErr.Message = KindDomain, pick(MsgUnprocessable)
	case http.StatusTooManyRequests:
		appErr.Kind, appErr.Message = KindUnknown, MsgRateLimited
	case http.StatusInternalServerError:
		appErr.Kind, appErr.Message = KindUnknown, MsgServerError
	default:
		appErr.Kind, appErr.Message = KindUnknown, pick(MsgUnexpected)
	}
	return appErr
}

// Reason is the backend's wording when it sent any, else Message.
func (e *AppError) Reason() string {
	if e.ServerMessage != "" {
		return e.ServerMessage
	}
	return e.Message
}

// AsAppError unwraps err into an *AppError, wrapping unknown errors.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Kind: KindUnknown, Message: MsgUnexpected, Err: err}
}

func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return AsAppError(err).Kind
}
