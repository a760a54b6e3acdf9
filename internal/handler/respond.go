package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"campusmarket/trading/internal/auth"
	"campusmarket/trading/internal/model"
	"campusmarket/trading/internal/service"
	"campusmarket/trading/internal/timetable"
	"campusmarket/trading/internal/vision"
)

const (
	maxJSONBody  = 1 << 20
	maxImageBody = 10 << 20
)

var errBadRequest = errors.New("invalid request body")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return body, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
	}
	return n, nil
}

func statusFor(err error) int {
	var visionErr *vision.APIError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrInvalidTitle),
		errors.Is(err, model.ErrInvalidPrice),
		errors.Is(err, model.ErrInvalidCategory),
		errors.Is(err, model.ErrInvalidRange),
		errors.Is(err, model.ErrEmptyMessage),
		errors.Is(err, model.ErrNoReceiver),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, service.ErrEmailDomain),
		errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrCodeExpired),
		errors.Is(err, service.ErrInvalidDisplayName),
		errors.Is(err, service.ErrInvalidMonth),
		errors.Is(err, service.ErrEmptyImage),
		errors.Is(err, timetable.ErrInvalidStudentID):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden),
		errors.Is(err, service.ErrEmailNotVerified):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrItemNotFound),
		errors.Is(err, model.ErrWishNotFound),
		errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, service.ErrNoPendingRegistration):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrWishExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.As(err, &visionErr):
		return http.StatusBadGateway
	case errors.Is(err, vision.ErrNotConfigured),
		errors.Is(err, service.ErrImagesUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps domain errors to statuses. Unexpected errors are logged
// and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
