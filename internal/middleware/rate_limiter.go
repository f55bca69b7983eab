package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"inventario/internal/apierror"
)

// Fixed-window rate limiting per client IP. One shared implementation backs
// the login limiter (brute-force protection) and the agent ingest limiter
// (a misconfigured agent fleet can hammer the report endpoint).

// ventana is one IP's counter within the current window.
type ventana struct {
	mu    sync.Mutex
	count int
	hasta time.Time
}

// contadores is a concurrent map of IP -> ventana.
type contadores struct {
	mu sync.Mutex
	m  map[string]*ventana
}

func (cs *contadores) get(ip string) *ventana {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	v, ok := cs.m[ip]
	if !ok {
		v = &ventana{}
		cs.m[ip] = v
	}
	return v
}

// purge drops expired windows so IPs that never return do not accumulate.
func (cs *contadores) purge(now time.Time) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	n := 0
	for ip, v := range cs.m {
		v.mu.Lock()
		if now.After(v.hasta) {
			delete(cs.m, ip)
			n++
		}
		v.mu.Unlock()
	}
	return n
}

var (
	loginCounters = &contadores{m: make(map[string]*ventana)}
	apiCounters   = &contadores{m: make(map[string]*ventana)}
)

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return limitar(loginCounters, 20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter returns a general-purpose per-IP limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return limitar(apiCounters, limit, window, "Demasiadas solicitudes. Intente nuevamente en un momento.")
}

func limitar(cs *contadores, limit int, window time.Duration, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := cs.get(c.ClientIP())

		v.mu.Lock()
		now := time.Now()
		if now.After(v.hasta) {
			v.count = 0
			v.hasta = now.Add(window)
		}
		v.count++
		over := v.count > limit
		retry := v.hasta
		v.mu.Unlock()

		if over {
			c.Header("Retry-After", retry.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

const purgeInterval = 5 * time.Minute

func init() {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			purged := loginCounters.purge(now) + apiCounters.purge(now)
			if purged > 0 {
				log.Debug().Int("purged", purged).Msg("rate limiter windows purged")
			}
		}
	}()
}
