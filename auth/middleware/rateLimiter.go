package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	requestRate   = rate.Limit(1) // req/sec per client
	requestBurst  = 5
	clientIdleTTL = 3 * time.Minute
	janitorPeriod = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiters struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(requestRate, requestBurst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

func (l *ipLimiters) janitor() {
	for {
		time.Sleep(janitorPeriod)
		l.mu.Lock()
		for ip, cl := range l.clients {
			if time.Since(cl.lastSeen) > clientIdleTTL {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit throttles requests per client IP.
func RateLimit() gin.HandlerFunc {
	limiters := &ipLimiters{clients: make(map[string]*clientLimiter)}
	go limiters.janitor()

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
