// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = time.Minute
	limiterIdleTTL         = 10 * time.Minute
)

type endpointLimit struct {
	limit rate.Limit
	burst int
	block time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	ips            map[string]*visitor
	blockedIPs     map[string]time.Time
	mu             *sync.RWMutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	limiter := newRateLimiter()

	// attribution is a one-shot call per user; anything faster is code guessing
	limiter.SetEndpointLimit("/api/referrals/attribute", rate.Every(2*time.Second), 5, 0)

	// tree expansion fans out into many queries per request, but admins refresh it often
	limiter.SetEndpointLimit("/api/admin/mlm/referral-tree", rate.Every(250*time.Millisecond), 40, 30*time.Second)

	go limiter.cleanupLoop()

	return limiter
}

func newRateLimiter() *RateLimiter {
	return &RateLimiter{
		ips:            make(map[string]*visitor),
		blockedIPs:     make(map[string]time.Time),
		mu:             &sync.RWMutex{},
		defaultLimit:   rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:   20,
		blockDuration:  5 * time.Minute,
		endpointLimits: make(map[string]endpointLimit),
		now:            time.Now,
	}
}

// SetEndpointLimit overrides the default limit for a route path. A zero block
// keeps the default block duration.
func (r *RateLimiter) SetEndpointLimit(path string, limit rate.Limit, burst int, block time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: limit, burst: burst, block: block}
}

func (r *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		r.cleanup()
	}
}

// cleanup drops expired blocks and limiters that have not been used for limiterIdleTTL
func (r *RateLimiter) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for key, blockUntil := range r.blockedIPs {
		if now.After(blockUntil) {
			delete(r.blockedIPs, key)
			delete(r.ips, key)
		}
	}
	for key, v := range r.ips {
		if _, blocked := r.blockedIPs[key]; blocked {
			continue
		}
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(r.ips, key)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			path := c.Path()
			key := ip + "|" + path

			r.mu.Lock()
			now := r.now()
			if blockUntil, blocked := r.blockedIPs[key]; blocked {
				if now.Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, blockUntil)
				}
				// Block has expired - remove it and reset the limiter
				delete(r.blockedIPs, key)
				delete(r.ips, key)
			}
			limit, burst, block := r.defaultLimit, r.defaultBurst, r.blockDuration
			if el, ok := r.endpointLimits[path]; ok {
				limit, burst = el.limit, el.burst
				if el.block > 0 {
					block = el.block
				}
			}

			v, exists := r.ips[key]
			if !exists {
				v = &visitor{limiter: rate.NewLimiter(limit, burst)}
				r.ips[key] = v
			}
			v.lastSeen = now

			if !v.limiter.AllowN(now, 1) {
				blockUntil := now.Add(block)
				r.blockedIPs[key] = blockUntil
				r.mu.Unlock()

				return tooManyRequests(c, blockUntil)
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, retryAfter time.Time) error {
	c.Response().Header().Set("Retry-After", retryAfter.UTC().Format(http.TimeFormat))
	return c.JSON(http.StatusTooManyRequests, models.Response{
		Status:  http.StatusTooManyRequests,
		Message: "Too many requests",
	})
}
