package processor

import (
	"golang.org/x/time/rate"

	"github.com/phishguard/phishguard/internal/logger"
)

const defaultScanRPS = 100

// RateLimiter bounds the scan rate for the HTTP surface.
type RateLimiter struct {
	limiter *rate.Limiter
	log     logger.Logger
}

// NewRateLimiter creates a rate limiter allowing rps scans per second
// with the given burst. Burst defaults to rps when unset.
func NewRateLimiter(rps, burst int, log logger.Logger) *RateLimiter {
	if rps <= 0 {
		rps = defaultScanRPS
	}
	if burst <= 0 {
		burst = rps
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     log,
	}
}

// Allow reports whether a scan may proceed without waiting.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}
