package middleware

import (
	"sync"
	"time"

	"ouvidoria/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures a per-client token bucket
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Message  string
	// KeyFunc identifies the client; defaults to the remote IP
	KeyFunc func(*fiber.Ctx) string
	// IdleTTL drops clients that have not been seen for this long
	IdleTTL time.Duration
}

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows cfg.Requests per cfg.Window for each client, with a
// burst of cfg.Requests
func RateLimiter(cfg RateLimitConfig) fiber.Handler {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *fiber.Ctx) string { return c.IP() }
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	if cfg.Message == "" {
		cfg.Message = "Rate limit exceeded. Please try again later."
	}

	var (
		clients   = make(map[string]*rateClient)
		mu        sync.Mutex
		lastSweep = time.Now()
	)

	return func(c *fiber.Ctx) error {
		key := cfg.KeyFunc(c)
		now := time.Now()

		mu.Lock()
		// Sweep idle clients at most once per IdleTTL
		if now.Sub(lastSweep) > cfg.IdleTTL {
			for k, cl := range clients {
				if now.Sub(cl.lastSeen) > cfg.IdleTTL {
					delete(clients, k)
				}
			}
			lastSweep = now
		}

		cl, exists := clients[key]
		if !exists {
			limiter := rate.NewLimiter(rate.Every(cfg.Window/time.Duration(cfg.Requests)), cfg.Requests)
			cl = &rateClient{limiter: limiter}
			clients[key] = cl
		}
		cl.lastSeen = now
		allowed := cl.limiter.Allow()
		mu.Unlock()

		if !allowed {
			utils.Log.WithField("client", key).Warn("Rate limit exceeded on %s", c.Path())
			return utils.TooManyRequestsError(cfg.Message)
		}

		return c.Next()
	}
}
