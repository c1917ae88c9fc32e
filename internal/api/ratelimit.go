package api

import (
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Garbson/LitShelf/internal/ratelimit"
)

// RateLimiter limits requests per client key.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a new rate limiter allowing ratePerInterval
// requests per interval with the given burst size.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// checkAuthRateLimit enforces the login/signup rate limit for a client key.
// The key is the client IP when available, falling back to a shared bucket.
func (s *Server) checkAuthRateLimit(key string) error {
	if key == "" {
		key = "unknown"
	}
	if !s.authRateLimiter.Allow(key) {
		if s.logger != nil {
			s.logger.Warn("auth rate limit exceeded", "client", key)
		}
		return huma.Error429TooManyRequests("Too many requests. Please try again later.")
	}
	return nil
}

// clientKey picks the rate limit key from forwarding headers.
func clientKey(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		for i := 0; i < len(forwardedFor); i++ {
			if forwardedFor[i] == ',' {
				return forwardedFor[:i]
			}
		}
		return forwardedFor
	}
	return realIP
}
