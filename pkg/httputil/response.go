package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/osamo/dreamshops/pkg/errors"
	"github.com/osamo/dreamshops/pkg/logger"
	"github.com/osamo/dreamshops/pkg/validator"
)

// Response is the standard JSON envelope used by every endpoint. Each handler
// instantiates it with the concrete payload type it returns.
type Response[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ErrorData is the payload carried by error envelopes.
type ErrorData struct {
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// ErrorEnvelope is the envelope written for failed requests.
type ErrorEnvelope = Response[*ErrorData]

// WriteJSON writes a JSON response with the given status code.
// If encoding fails, the error is logged but headers are already sent so nothing can be done.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOK writes a 200 envelope carrying the given message and payload.
func WriteOK[T any](w http.ResponseWriter, message string, data T) {
	WriteJSON(w, http.StatusOK, Response[T]{Message: message, Data: data})
}

// WriteMessage writes an envelope with a message and a null payload.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response[any]{Message: message})
}

// WriteBadRequest writes a 400 envelope with the given code and message.
func WriteBadRequest(w http.ResponseWriter, code, message string) {
	WriteJSON(w, http.StatusBadRequest, ErrorEnvelope{
		Message: message,
		Data:    &ErrorData{Code: code},
	})
}

// WriteError writes a standardized error response based on the error type.
// It handles AppError, standard errors (ErrNotFound, ErrAlreadyExists, ErrInvalidInput,
// ErrConflict), and logs internal server errors. Unclassified failures are
// reported as 500 with the error text as the envelope message. It prefers
// the request-scoped logger from context over the fallback logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	requestID := logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		WriteJSON(w, appErr.Status, ErrorEnvelope{
			Message: appErr.Message,
			Data:    &ErrorData{Code: appErr.Code, RequestID: requestID},
		})
		return
	}

	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := err.Error()

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code = "NOT_FOUND"
		message = "resource not found"
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyExists):
		code = "ALREADY_EXISTS"
		message = "resource already exists"
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrConflict):
		code = "CONFLICT"
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidInput):
		code = "INVALID_INPUT"
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, ErrorEnvelope{
		Message: message,
		Data:    &ErrorData{Code: code, RequestID: requestID},
	})
}

// WriteValidationError writes a standardized validation error response.
// It handles ValidationError from the validator package and returns field-level errors.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorEnvelope{
			Message: "request validation failed",
			Data: &ErrorData{
				Code:   "VALIDATION_ERROR",
				Fields: valErr.Fields(),
			},
		})
		return
	}

	WriteBadRequest(w, "INVALID_INPUT", err.Error())
}

// ParseID parses a positive numeric identifier from a path parameter.
// If invalid, it writes a 400 Bad Request response with code INVALID_PARAMETER
// and returns false, signaling the caller to return early.
func ParseID(w http.ResponseWriter, param string) (int64, bool) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id < 1 {
		WriteBadRequest(w, "INVALID_PARAMETER", "invalid id: "+param)
		return 0, false
	}
	return id, true
}
