// Command server runs admitgate as a standalone HTTP admission
// service in front of a Redis-backed sliding-window store.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	admitgate "github.com/corvusdev/admitgate"
	stdlogadapter "github.com/corvusdev/admitgate/adapters/log"
	logrusadapter "github.com/corvusdev/admitgate/adapters/logrus"
	zapadapter "github.com/corvusdev/admitgate/adapters/zap"
	zerologadapter "github.com/corvusdev/admitgate/adapters/zerolog"
	"github.com/corvusdev/admitgate/internal/config"
	"github.com/corvusdev/admitgate/internal/health"
	ginmw "github.com/corvusdev/admitgate/middleware/gin"
	"github.com/corvusdev/admitgate/metrics"
	"github.com/corvusdev/admitgate/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := buildLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	st := store.NewRedis(redisClient)

	collector := metrics.New(prometheus.DefaultRegisterer)

	resolver := admitgate.NewResolver(st, admitgate.WithLogger(logger), admitgate.WithMetrics(collector))
	accountant := admitgate.NewAccountant(st, admitgate.WithLogger(logger), admitgate.WithMetrics(collector))

	router := gin.Default()
	router.GET("/healthz", gin.WrapF(health.Liveness))
	router.GET("/ready", gin.WrapF(health.Readiness(st)))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	protected := router.Group("/api")
	protected.Use(ginmw.Admission(resolver, accountant, ginmw.WithMetrics(collector)))
	protected.GET("/:applicationId/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		logger.Debugf("listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	if err := st.Close(); err != nil {
		logger.Errorf("closing store: %v", err)
	}
}

// buildLogger selects one of the four bundled adapters per
// cfg.LogBackend ("zerolog", "logrus", "zap", "stdlog"), falling back
// to zerolog for an unrecognized value so a typo'd setting never stops
// the process from starting.
func buildLogger(cfg config.Config) admitgate.Logger {
	switch cfg.LogBackend {
	case "logrus":
		l := logrus.New()
		if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			l.SetLevel(lvl)
		}
		return logrusadapter.New(l)
	case "zap":
		zcfg := zap.NewProductionConfig()
		if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
			zcfg.Level = lvl
		}
		zl, err := zcfg.Build()
		if err != nil {
			zl = zap.NewNop()
		}
		return zapadapter.New(zl)
	case "stdlog":
		return stdlogadapter.New(nil)
	case "zerolog":
		fallthrough
	default:
		zlevel, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			zlevel = zerolog.InfoLevel
		}
		zl := zerolog.New(zerolog.NewConsoleWriter()).Level(zlevel).With().Timestamp().Logger()
		return zerologadapter.New(&zl)
	}
}
