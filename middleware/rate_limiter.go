// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/HSouheill/simstore_backend/models"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP, with stricter buckets for
// the credential and OTP endpoints.
type RateLimiter struct {
	visitors       map[string]*visitor
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   endpointLimit
	blockDuration  time.Duration
	idleTimeout    time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		visitors:      make(map[string]*visitor),
		blockedIPs:    make(map[string]time.Time),
		defaultLimit:  endpointLimit{limit: rate.Every(100 * time.Millisecond), burst: 20}, // 10 requests per second
		blockDuration: 5 * time.Minute,
		idleTimeout:   10 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			// Login and OTP verification are the brute-force targets
			"/auth/login":            {limit: rate.Every(2 * time.Second), burst: 5},
			"/auth/verify-reset-otp": {limit: rate.Every(2 * time.Second), burst: 5},
			"/auth/forgot-password":  {limit: rate.Every(20 * time.Second), burst: 3},
			"/auth/reset-password":   {limit: rate.Every(2 * time.Second), burst: 5},
			"/auth/signup":           {limit: rate.Every(500 * time.Millisecond), burst: 5},
		},
		now: time.Now,
	}
	return limiter
}

// SetEndpointLimit overrides the bucket for one route path
func (r *RateLimiter) SetEndpointLimit(path string, limit rate.Limit, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: limit, burst: burst}
}

// Cleanup drops expired blocks and any bucket idle for longer than idleTimeout
func (r *RateLimiter) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for ip, blockUntil := range r.blockedIPs {
		if now.After(blockUntil) {
			delete(r.blockedIPs, ip)
			r.resetLocked(ip)
		}
	}
	for key, v := range r.visitors {
		if now.Sub(v.lastSeen) > r.idleTimeout {
			delete(r.visitors, key)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			now := r.now()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if now.Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, blockUntil)
				}
				// Block has expired - remove it and reset the limiter
				delete(r.blockedIPs, ip)
				r.resetLocked(ip)
			}

			path := c.Path()
			cfg, scoped := r.endpointLimits[path]
			key := ip
			if scoped {
				key = ip + "|" + path
			} else {
				cfg = r.defaultLimit
			}
			v, exists := r.visitors[key]
			if !exists {
				v = &visitor{limiter: rate.NewLimiter(cfg.limit, cfg.burst)}
				r.visitors[key] = v
			}
			v.lastSeen = now

			if !v.limiter.AllowN(now, 1) {
				blockUntil := now.Add(r.blockDuration)
				r.blockedIPs[ip] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(c, blockUntil)
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}

func (r *RateLimiter) resetLocked(ip string) {
	delete(r.visitors, ip)
	for path := range r.endpointLimits {
		delete(r.visitors, ip+"|"+path)
	}
}

func tooManyRequests(c echo.Context, retryAfter time.Time) error {
	return c.JSON(http.StatusTooManyRequests, models.Response{
		Status:  http.StatusTooManyRequests,
		Message: "Too many requests",
		Data: map[string]string{
			"retryAfter": retryAfter.Format(time.RFC3339),
		},
	})
}
