package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/logging"
)

// denialBody is the JSON envelope returned with 429 responses.
type denialBody struct {
	Success bool        `json:"success"`
	Error   denialError `json:"error"`
}

type denialError struct {
	Message string        `json:"message"`
	Code    string        `json:"code"`
	Details denialDetails `json:"details"`
}

type denialDetails struct {
	Type       DenialType `json:"type"`
	Limit      int        `json:"limit"`
	Current    int        `json:"current"`
	RetryAfter int        `json:"retryAfter"`
	ResetTime  string     `json:"resetTime"`
}

// Middleware enforces the limiter on every request passing through it.
//
// Admitted requests are annotated with X-RateLimit-Limit, -Remaining,
// -Reset (RFC 3339) and -Window (milliseconds) headers. Denied requests
// get a 429 with Retry-After and a structured JSON body. Store errors
// fail open: the request proceeds and the error is logged.
func Middleware(limiter *Limiter, keyFn KeyFunc, logger *logging.Logger) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = DefaultKey
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Allow(r.Context(), keyFn(r))
			if err != nil {
				logger.Error("rate limit store error, failing open",
					"path", r.URL.Path,
					"error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				writeDenial(w, decision)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", decision.Reset.UTC().Format(time.RFC3339))
			w.Header().Set("X-RateLimit-Window", strconv.FormatInt(limiter.Window().Milliseconds(), 10))
			next.ServeHTTP(w, r)
		})
	}
}

// writeDenial renders the 429 response for a denied decision.
func writeDenial(w http.ResponseWriter, d Decision) {
	retryAfter := int(d.RetryAfter.Seconds() + 0.999)
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(denialBody{
		Success: false,
		Error: denialError{
			Message: "too many requests, please slow down",
			Code:    "RATE_LIMIT_EXCEEDED",
			Details: denialDetails{
				Type:       d.Type,
				Limit:      d.Limit,
				Current:    d.Current,
				RetryAfter: retryAfter,
				ResetTime:  d.Reset.UTC().Format(time.RFC3339),
			},
		},
	})
}
