// Package gin provides a Gin middleware adapter for
// github.com/corvusdev/admitgate.
//
// Example usage:
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	st := store.NewRedis(redisClient)
//	resolver := admitgate.NewResolver(st)
//	accountant := admitgate.NewAccountant(st)
//
//	router := gin.Default()
//	router.Use(ginmw.Admission(resolver, accountant))
//	router.GET("/api/:applicationId/ping", func(c *gin.Context) {
//	    c.String(200, "pong")
//	})
package gin

import (
	"errors"
	"net/http"
	"strconv"

	admitgate "github.com/corvusdev/admitgate"
	"github.com/corvusdev/admitgate/internal/clock"
	"github.com/corvusdev/admitgate/metrics"
	"github.com/gin-gonic/gin"
)

// Option configures the Admission middleware.
type Option func(*options)

type options struct {
	clock   clock.Clock
	metrics *metrics.Collector
}

// WithClock overrides the time source; tests use this to drive the
// fake-clock scenarios deterministically.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithMetrics attaches a Prometheus collector; omit to skip metrics.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) { o.metrics = m }
}

// Admission returns a Gin middleware enforcing admitgate's sliding-window
// admission contract for every request carrying an ":applicationId" path
// parameter. It sets the four X-RateLimit-*/Retry-After headers on every
// response it reaches.
func Admission(resolver *admitgate.Resolver, accountant *admitgate.Accountant, opts ...Option) gin.HandlerFunc {
	o := &options{clock: clock.New()}
	for _, opt := range opts {
		opt(o)
	}

	return func(c *gin.Context) {
		now := o.clock.NowMillis()
		identifier := c.Param("applicationId")
		clientKey := admitgate.ClientKey(c.ClientIP(), identifier)

		rules, err := resolver.Resolve(c.Request.Context(), identifier)
		if err != nil {
			writeResolveError(c, err)
			c.Abort()
			return
		}

		decision, err := admitgate.EvaluateRuleSet(c.Request.Context(), accountant, clientKey, rules, now)
		if err != nil {
			c.Header("Retry-After", "10")
			c.String(http.StatusServiceUnavailable, "Service Unavailable: Rate limiter backend error.")
			c.Abort()
			return
		}

		writeHeaders(c, decision, rules, now)

		outcome := "admitted"
		if decision.Blocked {
			outcome = "blocked"
		}
		if o.metrics != nil {
			o.metrics.ObserveDecision(identifier, strconv.Itoa(decision.StrictestRuleIndex), outcome)
		}

		if decision.Blocked {
			c.String(http.StatusTooManyRequests, "Too Many Requests")
			c.Abort()
			return
		}

		c.Next()
	}
}

func writeResolveError(c *gin.Context, err error) {
	if errors.Is(err, admitgate.ErrConfigMissing) {
		c.String(http.StatusInternalServerError, "Rate limit config not found.")
		return
	}
	c.Header("Retry-After", "10")
	c.String(http.StatusServiceUnavailable, "Service Unavailable: Rate limiter config error.")
}

func writeHeaders(c *gin.Context, d admitgate.Decision, rules admitgate.RuleSet, nowMs int64) {
	remaining := d.StrictestRemaining
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.FormatInt(d.Limit(rules), 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(nowMs+d.StrictestResetSec*1000, 10))
	c.Header("Retry-After", strconv.FormatInt(d.StrictestResetSec, 10))
}
