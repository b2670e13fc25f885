package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("invalid input")
	// ErrEmailInUse is returned when registering or updating to an email that already exists.
	ErrEmailInUse = errors.New("email already in use")
	// ErrInvalidCredentials is returned for any failed login, whatever the cause.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when a request carries no usable credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when presented credentials fail verification.
	ErrForbidden = errors.New("forbidden")
	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidOrExpiredToken is returned when a reset token cannot be used.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrPasswordUpdateFailed is returned when the password could not be persisted.
	ErrPasswordUpdateFailed = errors.New("failed to update password")
	// ErrNotification is returned when an email could not be delivered.
	ErrNotification = errors.New("failed to send notification")
	// ErrInternal is returned for unexpected repository, hasher or signer failures.
	ErrInternal = errors.New("internal server error")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"httpStatus"`
	Code       string `json:"code"`
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
		Status:     "error",
		Message:    e.Message,
		HTTPStatus: e.StatusCode,
		Code:       e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Validation errors keep
// their detail; everything unrecognised collapses into a fixed internal
// error so collaborator messages never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrEmailInUse):
		return NewHTTPError(http.StatusConflict, ErrEmailInUse.Error(), "EMAIL_IN_USE")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrInvalidOrExpiredToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidOrExpiredToken.Error(), "INVALID_OR_EXPIRED_TOKEN")
	case errors.Is(err, ErrPasswordUpdateFailed):
		return NewHTTPError(http.StatusInternalServerError, ErrPasswordUpdateFailed.Error(), "PASSWORD_UPDATE_FAILED")
	case errors.Is(err, ErrNotification):
		return NewHTTPError(http.StatusInternalServerError, ErrNotification.Error(), "NOTIFICATION_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, ErrInternal.Error(), "INTERNAL_ERROR")
	}
}
