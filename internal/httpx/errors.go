package httpx

import (
	"fmt"
	"net/http"
)

// Business error codes
const (
	// Success
	CodeSuccess = 0

	// Authentication/Authorization errors (1000-1099)
	CodeUnauthorized = 1001 // Not logged in / Token missing
	CodeInvalidToken = 1002 // Token invalid
	CodeTokenExpired = 1003 // Token expired
	CodeForbidden    = 1004 // No permission

	// Parameter errors (2000-2099)
	CodeParamMissing = 2001 // Parameter missing
	CodeParamInvalid = 2002 // Parameter format error
	CodeParamIllegal = 2003 // Parameter value illegal

	// Resource/Business errors (3000-3999)
	CodeNotFound      = 3001 // Resource not found
	CodeAlreadyExists = 3002 // Resource already exists
	CodeStateConflict = 3003 // Current state does not allow operation
	CodeProtected     = 3004 // Resource is protected from this operation

	// System errors (5000-5999)
	CodeInternalError = 5001 // Internal service error
	CodeDatabaseError = 5002 // Database error
)

// AppError is a failed request: the HTTP status, the business code and the
// message shown to the user. Err is logged, never sent.
type AppError struct {
	HTTPStatus int
	Code       int
	Message    string
	Err        error
	Data       any
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%d, message=%s, err=%v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

type codeInfo struct {
	status   int
	fallback string
}

var codes = map[int]codeInfo{
	CodeUnauthorized:  {http.StatusUnauthorized, "unauthorized"},
	CodeInvalidToken:  {http.StatusUnauthorized, "invalid token"},
	CodeTokenExpired:  {http.StatusUnauthorized, "token expired"},
	CodeForbidden:     {http.StatusForbidden, "forbidden"},
	CodeParamMissing:  {http.StatusBadRequest, "parameter missing"},
	CodeParamInvalid:  {http.StatusBadRequest, "parameter format error"},
	CodeParamIllegal:  {http.StatusBadRequest, "parameter value illegal"},
	CodeNotFound:      {http.StatusNotFound, "resource not found"},
	CodeAlreadyExists: {http.StatusConflict, "resource already exists"},
	CodeStateConflict: {http.StatusConflict, "current state does not allow operation"},
	CodeProtected:     {http.StatusForbidden, "resource is protected"},
	CodeInternalError: {http.StatusInternalServerError, "internal error"},
	CodeDatabaseError: {http.StatusInternalServerError, "database error"},
}

// New builds an AppError for a business code. An empty message falls back
// to the code's default; unknown codes are served as 500.
func New(code int, message string, err error) *AppError {
	info, ok := codes[code]
	if !ok {
		info = codeInfo{http.StatusInternalServerError, "internal error"}
	}
	if message == "" {
		message = info.fallback
	}
	return &AppError{HTTPStatus: info.status, Code: code, Message: message, Err: err}
}

func ErrUnauthorized(message string) *AppError { return New(CodeUnauthorized, message, nil) }
func ErrInvalidToken(message string) *AppError { return New(CodeInvalidToken, message, nil) }
func ErrTokenExpired(message string) *AppError { return New(CodeTokenExpired, message, nil) }
func ErrForbidden(message string) *AppError { return New(CodeForbidden, message, nil) }
func ErrParamMissing(message string) *AppError { return New(CodeParamMissing, message, nil) }
func ErrParamInvalid(message string) *AppError { return New(CodeParamInvalid, message, nil) }
func ErrParamIllegal(message string) *AppError { return New(CodeParamIllegal, message, nil) }
func ErrNotFound(message string) *AppError { return New(CodeNotFound, message, nil) }
func ErrAlreadyExists(message string) *AppError { return New(CodeAlreadyExists, message, nil) }
func ErrStateConflict(message string) *AppError { return New(CodeStateConflict, message, nil) }

// ErrProtected refuses an operation on the highest-privilege account
func ErrProtected(message string) *AppError { return New(CodeProtected, message, nil) }

func ErrInternalError(message string, err error) *AppError {
	return New(CodeInternalError, message, err)
}

func ErrDatabaseError(message string, err error) *AppError {
	return New(CodeDatabaseError, message, err)
}
