package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/fardannozami/leetcode-tracker/internal/domain"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error        string     `json:"error"`
	Code         int        `json:"code"`
	Message      string     `json:"message,omitempty"`
	BanExpiresAt *time.Time `json:"banExpiresAt,omitempty"`
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, log zerolog.Logger, status int, message string) {
	writeJSON(w, log, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    status,
		Message: message,
	})
}

// writeDomainError maps usecase errors onto HTTP statuses. Anything that is
// not a known domain error is logged and reported as a 500 without details.
func writeDomainError(w http.ResponseWriter, log zerolog.Logger, err error, now time.Time) {
	var rl *domain.RateLimitError
	switch {
	case errors.As(err, &rl):
		until := rl.Until
		minutes := int(rl.RetryAfter(now) / time.Minute)
		w.Header().Set("Retry-After", strconv.Itoa(int(rl.RetryAfter(now)/time.Second)))
		writeJSON(w, log, http.StatusTooManyRequests, ErrorResponse{
			Error:        http.StatusText(http.StatusTooManyRequests),
			Code:         http.StatusTooManyRequests,
			Message:      "Refresh banned. Try again in " + strconv.Itoa(minutes) + " minutes.",
			BanExpiresAt: &until,
		})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, log, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, log, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, log, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrEditWindowExpired):
		writeError(w, log, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		log.Warn().Err(err).Msg("upstream provider unavailable")
		writeError(w, log, http.StatusBadGateway, "Failed to fetch LeetCode stats")
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, log, http.StatusInternalServerError, "")
	}
}
