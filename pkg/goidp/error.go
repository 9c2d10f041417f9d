package goidp

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeAccessDenied            ErrorCode = "access_denied"
	ErrorCodeInvalidClient           ErrorCode = "invalid_client"
	ErrorCodeInvalidGrant            ErrorCode = "invalid_grant"
	ErrorCodeInvalidRequest          ErrorCode = "invalid_request"
	ErrorCodeUnauthorizedClient      ErrorCode = "unauthorized_client"
	ErrorCodeInvalidScope            ErrorCode = "invalid_scope"
	ErrorCodeUnsupportedGrantType    ErrorCode = "unsupported_grant_type"
	ErrorCodeUnsupportedResponseType ErrorCode = "unsupported_response_type"
	ErrorCodeInvalidRedirectURI      ErrorCode = "invalid_redirect_uri"
	ErrorCodeInvalidToken            ErrorCode = "invalid_token"
	ErrorCodeDeviceNotFound          ErrorCode = "device_not_found"
	ErrorCodeSessionExpired          ErrorCode = "session_expired"
	ErrorCodeInternalError           ErrorCode = "server_error"
)

func (c ErrorCode) StatusCode() int {
	switch c {
	case ErrorCodeAccessDenied:
		return http.StatusForbidden
	case ErrorCodeInvalidClient, ErrorCodeInvalidToken, ErrorCodeUnauthorizedClient:
		return http.StatusUnauthorized
	case ErrorCodeDeviceNotFound:
		return http.StatusNotFound
	case ErrorCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Error is the structured error returned to clients. The code maps to the
// OAuth error vocabulary and determines the response status.
type Error struct {
	Code        ErrorCode `json:"error,omitempty"`
	Description string    `json:"error_description,omitempty"`
	statusCode  int       `json:"-"`
	wrapped     error     `json:"-"`
}

func NewError(code ErrorCode, desc string) Error {
	return Error{
		Code:        code,
		Description: desc,
	}
}

func NewErrorWithStatus(code ErrorCode, desc string, status int) Error {
	return Error{
		Code:        code,
		Description: desc,
		statusCode:  status,
	}
}

func WrapError(code ErrorCode, desc string, err error) Error {
	return Error{
		Code:        code,
		Description: desc,
		wrapped:     err,
	}
}

func (err Error) Error() string {
	if err.wrapped == nil {
		return fmt.Sprintf("%s %s", err.Code, err.Description)
	}

	return fmt.Sprintf("%s %s: %v", err.Code, err.Description, err.wrapped)
}

func (err Error) StatusCode() int {
	if err.statusCode != 0 {
		return err.statusCode
	}

	return err.Code.StatusCode()
}

func (err Error) Unwrap() error {
	return err.wrapped
}
