package admitgate

import "time"

// MetricsRecorder receives store round-trip timings from Resolver and
// Accountant. metrics.Collector satisfies this without admitgate
// importing the metrics package, the same interface-over-collaborator
// pattern Logger already follows.
type MetricsRecorder interface {
	ObserveRoundTrip(operation string, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRoundTrip(string, time.Duration) {}

// Config holds the optional, cross-cutting settings shared by Resolver
// and Accountant. Users configure it via functional options, following
// the pattern used throughout this codebase's predecessor.
type Config struct {
	Logger  Logger
	Metrics MetricsRecorder
}

// Option applies a setting to a Config.
type Option func(*Config)

func newConfig(opts ...Option) *Config {
	cfg := &Config{Logger: noopLogger{}, Metrics: noopMetrics{}}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLogger injects a Logger implementation (see adapters/ for ready-made
// logrus/zap/zerolog/stdlib wrappers). A nil logger is ignored.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithMetrics injects a MetricsRecorder (see metrics.Collector) that
// Resolver and Accountant time their store round-trips against. A nil
// recorder is ignored.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Config) {
		if m != nil {
			c.Metrics = m
		}
	}
}
