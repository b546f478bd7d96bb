// Package config loads cmd/server's process-level configuration with
// github.com/spf13/viper. This is purely how the server process itself
// is configured (listen address, Redis DSN, log level) — separate from
// the per-identifier RuleSets admitgate.Resolver reads from the store.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything cmd/server needs to start.
type Config struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisDB         int           `mapstructure:"redis_db"`
	LogLevel        string        `mapstructure:"log_level"`
	LogBackend      string        `mapstructure:"log_backend"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Load reads configuration from ADMITGATE_-prefixed environment
// variables, falling back to the defaults below. There is no config
// file requirement; an operator can run the binary with zero setup.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("admitgate")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_backend", "zerolog")
	v.SetDefault("shutdown_timeout", 10*time.Second)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
