// Package response writes envelope responses for handlers that live outside huma:
// chi's NotFound and MethodNotAllowed hooks, the rate limiter and panic recovery.
package response

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/reelfeed/reelfeed-server/internal/envelope"
	domainerrors "github.com/reelfeed/reelfeed-server/internal/errors"
)

// JSON writes env with the given status code using json/v2.
func JSON(w http.ResponseWriter, status int, env envelope.Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := json.MarshalWrite(w, env); err != nil && logger != nil {
		logger.Error("Failed to encode envelope", "error", err)
	}
}

// Error writes a plain error envelope.
func Error(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	JSON(w, status, envelope.Fail(message), logger)
}

// NotFound writes a 404 envelope.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	JSON(w, http.StatusNotFound, envelope.FailDetailed(string(domainerrors.CodeNotFound), message, nil), logger)
}

// MethodNotAllowed writes a 405 envelope.
func MethodNotAllowed(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, "method not allowed", logger)
}

// TooManyRequests writes a 429 envelope with a Retry-After hint.
func TooManyRequests(w http.ResponseWriter, retryAfter time.Duration, logger *slog.Logger) {
	secs := max(int(retryAfter.Round(time.Second)/time.Second), 1)
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	JSON(w, http.StatusTooManyRequests,
		envelope.FailDetailed(string(domainerrors.CodeRateLimited), "too many requests", nil), logger)
}
