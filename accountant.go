package admitgate

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Accountant evaluates a single (rule, client) pair against the shared
// store. One Evaluate call corresponds to one atomic round-trip.
type Accountant struct {
	store   Store
	logger  Logger
	metrics MetricsRecorder
}

// NewAccountant builds an Accountant over store.
func NewAccountant(store Store, opts ...Option) *Accountant {
	cfg := newConfig(opts...)
	return &Accountant{store: store, logger: cfg.Logger, metrics: cfg.Metrics}
}

// Evaluate implements the sliding-window accounting contract: prune the
// WindowLog for (ruleIndex, clientKey) to entries newer than
// now-rule.Duration, admit the candidate if the pre-admission count is
// below rule.Points, and report that count plus the oldest surviving
// timestamp. The caller (middleware) derives the admit/reject decision
// from count and rule.Points; Evaluate itself never decides.
//
// now is in milliseconds since epoch and is supplied by the caller so
// every rule in one request's evaluation shares a single observation of
// "now", per the design notes.
func (a *Accountant) Evaluate(ctx context.Context, ruleIndex int, clientKey string, rule RateLimitRule, nowMs int64) (count int64, oldestMs int64, err error) {
	key := windowKey(ruleIndex, clientKey)
	windowStart := nowMs - rule.Duration*1000
	ttl := time.Duration(rule.Duration+1) * time.Second
	member := uuid.NewString()

	start := time.Now()
	count, oldestMs, err = a.store.EvaluateWindow(ctx, key, windowStart, nowMs, rule.Points, member, ttl)
	a.metrics.ObserveRoundTrip("evaluateWindow", time.Since(start))
	if err != nil {
		a.logger.Errorf("[admitgate] evaluate window %q failed: %v", key, err)
		return 0, 0, &StoreError{Op: "evaluateWindow", Key: key, Err: err}
	}

	a.logger.Debugf("[admitgate] rule %d key %q count=%d points=%d oldest=%d", ruleIndex, clientKey, count, rule.Points, oldestMs)
	return count, oldestMs, nil
}
