package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
)

// ApiResponse is the envelope for every successful JSON response.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ErrorStatus maps an error onto an HTTP status and a stable error code.
func ErrorStatus(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, apperrors.ErrParse):
		return http.StatusUnprocessableEntity, "parse_error"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, validationCode(err)
	case errors.Is(err, apperrors.ErrStore):
		return http.StatusInternalServerError, "store_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func validationCode(err error) string {
	var (
		unknown     *apperrors.UnknownFieldError
		invalid     *apperrors.InvalidValueError
		negative    *apperrors.NegativeQuantityError
		mismatch    *apperrors.TaskMismatchError
		unsupported *apperrors.UnsupportedFormatError
		missing     *apperrors.MissingChannelError
		reference   *apperrors.ReferenceError
	)
	switch {
	case errors.As(err, &unknown):
		return "unknown_field"
	case errors.As(err, &invalid):
		return "invalid_value"
	case errors.As(err, &negative):
		return "negative_quantity"
	case errors.As(err, &mismatch):
		return "task_mismatch"
	case errors.As(err, &unsupported):
		return "unsupported_format"
	case errors.As(err, &missing):
		return "missing_channel"
	case errors.As(err, &reference):
		return "invalid_reference"
	default:
		return "validation_error"
	}
}

// writeError maps err to a status and writes the error body. Server-side
// failures are logged at ERROR, rejected input at DEBUG.
func writeError(w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	status, code := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
	} else {
		logger.Debug(msg, zap.String("code", code), zap.Error(err))
	}
	if err := ErrorResponse(w, status, code, err.Error()); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// writeData wraps data in an ApiResponse.
func writeData(w http.ResponseWriter, logger *zap.Logger, statusCode int, data any) {
	if err := WriteJSON(w, statusCode, ApiResponse{Success: true, Data: data}); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}
