package apierr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/mcoot/rpgroster-go/internal/model"
	"github.com/mcoot/rpgroster-go/internal/services/auth"
)

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Stack   string `json:"stack,omitempty"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeCharacterNotFound  = "CHARACTER_NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeConflict           = "CONFLICT"
	CodeMaxLevel           = "MAX_LEVEL"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an error code and message
type httpError struct {
	status  int
	code    string
	message string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.message
}

// Writer renders errors as the JSON envelope. In debug mode the envelope carries
// a stack trace.
type Writer struct {
	logger *slog.Logger
	debug  bool
}

// NewWriter creates an error writer
func NewWriter(logger *slog.Logger, debug bool) *Writer {
	return &Writer{logger: logger, debug: debug}
}

// Write writes an error response to the response writer
func (wr *Writer) Write(w http.ResponseWriter, r *http.Request, err error) {
	he := toHTTPError(err)
	if he.status >= http.StatusInternalServerError {
		wr.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	resp := ErrorResponse{Success: false, Message: he.message, Code: he.code}
	if wr.debug {
		resp.Stack = string(debug.Stack())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(resp)
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var invalid *model.InvalidInputError
	if errors.As(err, &invalid) {
		return &httpError{http.StatusBadRequest, CodeInvalidRequest, invalid.Error()}
	}

	switch {
	// Map model errors
	case errors.Is(err, model.ErrInvalidInput):
		return &httpError{http.StatusBadRequest, CodeInvalidRequest, "Invalid request"}
	case errors.Is(err, model.ErrCharacterNotFound):
		return &httpError{http.StatusNotFound, CodeCharacterNotFound, "Character not found"}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, CodeUserNotFound, "User not found"}
	case errors.Is(err, model.ErrMaxLevel):
		return &httpError{http.StatusBadRequest, CodeMaxLevel, "Character is already at max level"}
	case errors.Is(err, model.ErrVersionConflict):
		return &httpError{http.StatusBadRequest, CodeConflict, "Character was modified concurrently, please retry"}
	case errors.Is(err, model.ErrUserExists):
		return &httpError{http.StatusBadRequest, CodeConflict, "User already exists"}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, CodeInvalidCredentials, "Email or password is incorrect"}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token"}
	case errors.Is(err, auth.ErrEmailExists):
		return &httpError{http.StatusBadRequest, CodeEmailExists, "Email is already registered"}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusBadRequest, CodeUsernameExists, "Username is already taken"}

	default:
		return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, CodeUnauthorized, "Authentication required"}
}

// NewNotFoundError creates an error for an unknown route
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, CodeNotFound, "Route not found"}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
}
