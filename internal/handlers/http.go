package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/apexline/gridlock/internal/errors"
	"github.com/apexline/gridlock/internal/services"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrCodeAlreadyLocked    = "ALREADY_LOCKED"
	ErrCodeAlreadySubmitted = "ALREADY_SUBMITTED"
	ErrCodeAlreadySettled   = "ALREADY_SETTLED"
	ErrCodeInvalidOrdering  = "INVALID_ORDERING"
	ErrCodeInvalidResult    = "INVALID_RESULT"
	ErrCodeUnknownDriver    = "UNKNOWN_DRIVER"
	ErrCodeUsernameTaken    = "USERNAME_TAKEN"
	ErrCodeNoResult         = "NO_RESULT"
	ErrCodeEventNotFound    = "EVENT_NOT_FOUND"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodePredNotFound     = "PREDICTION_NOT_FOUND"
	ErrCodeNotOwner         = "NOT_OWNER"
	ErrCodeEventNotLocked   = "EVENT_NOT_LOCKED"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrBadRequest     = &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: "Bad request"}
	ErrUnauthorized   = &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: "Unauthorized"}
	ErrNotFound       = &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Not found"}
	ErrInternalServer = &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
)

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// NotFoundErr creates a 404 error with custom message
func NotFoundErr(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a 409 error with custom message
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: message}
}

// InternalError creates a 500 error, logs the original error
func InternalError(err error) *APIError {
	log.Printf("Internal error: %v", err)
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created JSON response
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*APIError); ok {
		respondJSON(w, apiErr.Status, apiErr)
		return
	}
	apiErr := ToAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// parseIntParam extracts and parses an integer URL parameter
func parseIntParam(r *http.Request, name string) (int, error) {
	param := chi.URLParam(r, name)
	if param == "" {
		return 0, BadRequest("Missing " + name + " parameter")
	}
	id, err := strconv.Atoi(param)
	if err != nil {
		return 0, BadRequest("Invalid " + name + " parameter")
	}
	return id, nil
}

// parseIntQuery parses an optional integer query parameter, returning
// the fallback when the parameter is absent
func parseIntQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, BadRequest("Invalid " + name + " parameter")
	}
	return v, nil
}

// ToAPIError converts service errors to appropriate API errors
func ToAPIError(err error) *APIError {
	// Check for application errors first
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrNotFound:
			return NotFoundErr(appErr.Message)
		case errors.ErrValidation:
			return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: appErr.Message}
		case errors.ErrConflict:
			return Conflict(appErr.Message)
		case errors.ErrLocked:
			return &APIError{Status: http.StatusConflict, Code: ErrCodeAlreadyLocked, Message: appErr.Message}
		case errors.ErrForbidden:
			return &APIError{Status: http.StatusForbidden, Code: ErrCodeForbidden, Message: appErr.Message}
		default:
			return InternalError(err)
		}
	}

	var svcErr *services.ServiceError
	if stderrors.As(err, &svcErr) {
		switch svcErr {
		case services.ErrEventNotFound:
			return &APIError{Status: http.StatusNotFound, Code: ErrCodeEventNotFound, Message: svcErr.Message}
		case services.ErrUserNotFound:
			return &APIError{Status: http.StatusNotFound, Code: ErrCodeUserNotFound, Message: svcErr.Message}
		case services.ErrPredictionNotFound:
			return &APIError{Status: http.StatusNotFound, Code: ErrCodePredNotFound, Message: svcErr.Message}
		case services.ErrNoResultAvailable:
			return &APIError{Status: http.StatusNotFound, Code: ErrCodeNoResult, Message: svcErr.Message}
		case services.ErrEventLocked:
			return &APIError{Status: http.StatusConflict, Code: ErrCodeAlreadyLocked, Message: svcErr.Message}
		case services.ErrAlreadySubmitted:
			return &APIError{Status: http.StatusConflict, Code: ErrCodeAlreadySubmitted, Message: svcErr.Message}
		case services.ErrAlreadySettled:
			return &APIError{Status: http.StatusConflict, Code: ErrCodeAlreadySettled, Message: svcErr.Message}
		case services.ErrUsernameTaken:
			return &APIError{Status: http.StatusConflict, Code: ErrCodeUsernameTaken, Message: svcErr.Message}
		case services.ErrNotOwner:
			return &APIError{Status: http.StatusForbidden, Code: ErrCodeNotOwner, Message: svcErr.Message}
		case services.ErrEventNotLocked:
			return &APIError{Status: http.StatusConflict, Code: ErrCodeEventNotLocked, Message: svcErr.Message}
		case services.ErrInvalidOrdering:
			return &APIError{Status: http.StatusBadRequest, Code: ErrCodeInvalidOrdering, Message: svcErr.Message}
		case services.ErrInvalidResult:
			return &APIError{Status: http.StatusBadRequest, Code: ErrCodeInvalidResult, Message: svcErr.Message}
		case services.ErrDriverNotFound:
			return &APIError{Status: http.StatusBadRequest, Code: ErrCodeUnknownDriver, Message: svcErr.Message}
		case services.ErrInvalidUsername:
			return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: svcErr.Message}
		default:
			return BadRequest(svcErr.Message)
		}
	}

	return InternalError(err)
}
