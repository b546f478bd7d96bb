package admitgate

import (
	"context"
	"encoding/json"
	"time"
)

// Resolver produces the ordered RuleSet to enforce for an
// ApplicationIdentifier, consulting a per-identifier store key and
// falling back to a default key. It performs at most two store reads
// per call and never caches across calls: rule configuration is
// re-read on every request so a hot-swapped ConfigRecord takes effect
// immediately (see the Config caching design note).
//
// WindowLogs are keyed by rule index, not by rule content: a hot-swapped
// config that keeps its rule order carries each rule's existing log
// forward, while one that reorders its rules leaves the old logs under
// their previous indices, where they are counted against whichever rule
// now sits at that index.
type Resolver struct {
	store   Store
	logger  Logger
	metrics MetricsRecorder
}

// NewResolver builds a Resolver over store. opts configures optional
// behavior such as logging and metrics.
func NewResolver(store Store, opts ...Option) *Resolver {
	cfg := newConfig(opts...)
	return &Resolver{store: store, logger: cfg.Logger, metrics: cfg.Metrics}
}

// Resolve implements the algorithm: normalize, read per-id config,
// fall back to the default key, parse, validate, and return the
// ordered RuleSet. Errors never carry a partial rule set.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (RuleSet, error) {
	normalized := NormalizeIdentifier(identifier)

	raw, found, err := r.timedGet(ctx, configKey(normalized))
	if err != nil {
		return nil, &StoreError{Op: "get", Key: configKey(normalized), Err: err}
	}
	if !found {
		raw, found, err = r.timedGet(ctx, configKey(defaultConfigIdentifier))
		if err != nil {
			return nil, &StoreError{Op: "get", Key: configKey(defaultConfigIdentifier), Err: err}
		}
		if !found {
			r.logger.Errorf("[admitgate] no config for %q and no default config", normalized)
			return nil, ErrConfigMissing
		}
	}

	var rec configRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		r.logger.Errorf("[admitgate] config for %q malformed: %v", normalized, err)
		return nil, ErrConfigMalformed
	}

	if err := rec.Rules.Validate(); err != nil {
		r.logger.Errorf("[admitgate] config for %q invalid: %v", normalized, err)
		return nil, err
	}

	r.logger.Debugf("[admitgate] resolved %d rule(s) for %q", len(rec.Rules), normalized)
	return rec.Rules, nil
}

// timedGet wraps store.Get with a round-trip observation so the
// resolver's two possible reads (per-identifier, then default) both
// report under the same "get" operation label.
func (r *Resolver) timedGet(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, found, err := r.store.Get(ctx, key)
	r.metrics.ObserveRoundTrip("get", time.Since(start))
	return value, found, err
}
