// Package nethttp provides standard-library middleware enforcing
// admitgate's sliding-window admission contract, for callers who don't
// use Gin.
//
// Example usage:
//
//	admit := nethttp.Admission(resolver, accountant)
//	mux := http.NewServeMux()
//	mux.Handle("GET /api/{applicationId}/ping", admit(http.HandlerFunc(pingHandler)))
//
//	http.ListenAndServe(":8080", mux)
package nethttp

import (
	"errors"
	"net/http"
	"strconv"

	admitgate "github.com/corvusdev/admitgate"
	"github.com/corvusdev/admitgate/internal/clock"
)

// Option configures the Admission middleware.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock overrides the time source; tests use this to drive the
// fake-clock scenarios deterministically.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// Admission wraps next, enforcing admission on every request whose
// pattern registers an "applicationId" path value (Go 1.22+ ServeMux
// wildcards, e.g. "/api/{applicationId}/ping").
func Admission(resolver *admitgate.Resolver, accountant *admitgate.Accountant, opts ...Option) func(http.Handler) http.Handler {
	o := &options{clock: clock.New()}
	for _, opt := range opts {
		opt(o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := o.clock.NowMillis()
			identifier := r.PathValue("applicationId")
			clientKey := admitgate.ClientKey(r.RemoteAddr, identifier)

			rules, err := resolver.Resolve(r.Context(), identifier)
			if err != nil {
				writeResolveError(w, err)
				return
			}

			decision, err := admitgate.EvaluateRuleSet(r.Context(), accountant, clientKey, rules, now)
			if err != nil {
				w.Header().Set("Retry-After", "10")
				http.Error(w, "Service Unavailable: Rate limiter backend error.", http.StatusServiceUnavailable)
				return
			}

			writeHeaders(w, decision, rules, now)

			if decision.Blocked {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeResolveError(w http.ResponseWriter, err error) {
	if errors.Is(err, admitgate.ErrConfigMissing) {
		http.Error(w, "Rate limit config not found.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Retry-After", "10")
	http.Error(w, "Service Unavailable: Rate limiter config error.", http.StatusServiceUnavailable)
}

func writeHeaders(w http.ResponseWriter, d admitgate.Decision, rules admitgate.RuleSet, nowMs int64) {
	remaining := d.StrictestRemaining
	if remaining < 0 {
		remaining = 0
	}
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit(rules), 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(nowMs+d.StrictestResetSec*1000, 10))
	h.Set("Retry-After", strconv.FormatInt(d.StrictestResetSec, 10))
}
