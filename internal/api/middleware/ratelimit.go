// internal/api/middleware/ratelimit.go
package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/mfaber/hindsight/internal/api/response"
	"github.com/mfaber/hindsight/internal/core"
)

// RateLimit returns middleware with one shared token bucket across all
// clients. A non-positive rps disables limiting.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				response.Error(w, http.StatusTooManyRequests, core.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
