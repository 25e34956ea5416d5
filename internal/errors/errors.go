package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrPasswordMismatch is returned when password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrPasswordTooShort is returned when a password has fewer than 6 characters.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrMalformedInput is returned when a date, time or slot cannot be interpreted.
	ErrMalformedInput = errors.New("malformed input")
	// ErrEmailTaken is returned when registering an email that is already stored.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned for a missing, malformed, expired or revoked token.
	ErrUnauthorized = errors.New("could not validate credentials")
	// ErrLessonNotFound is returned when a lesson is missing or owned by someone else.
	ErrLessonNotFound = errors.New("lesson not found")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Wrapped errors keep their own message so callers see the detail that was added.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PASSWORD_MISMATCH")
	case errors.Is(err, ErrPasswordTooShort):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PASSWORD_TOO_SHORT")
	case errors.Is(err, ErrMalformedInput):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "MALFORMED_INPUT")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrLessonNotFound):
		return NewHTTPError(http.StatusNotFound, ErrLessonNotFound.Error(), "LESSON_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
