// Command irail-proxy exposes the iRail client as a small HTTP service:
// GET /api/{endpoint}?... passes query parameters through the dispatcher,
// so co-located consumers share one admission bucket and one response
// cache. /metrics serves Prometheus metrics, /health a liveness probe and
// /cache/stats the cache snapshot.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/beltransit/irail-go/pkg/cache"
	"github.com/beltransit/irail-go/pkg/client"
	"github.com/beltransit/irail-go/pkg/logging"
	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type config struct {
	Port        string        `env:"PORT" envDefault:"8080"`
	Language    string        `env:"IRAIL_LANG" envDefault:"en"`
	UserAgent   string        `env:"USER_AGENT" envDefault:"irail-proxy/1.0 (https://github.com/beltransit/irail-go)"`
	CacheMaxAge time.Duration `env:"CACHE_MAX_AGE" envDefault:"1h"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty   bool          `env:"LOG_PRETTY" envDefault:"false"`

	// RedisAddr switches the response cache to a shared Redis store when
	// set; empty keeps the per-process in-memory store.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	}).With().Str("component", "irail-proxy").Logger()

	clientCfg := client.DefaultConfig()
	clientCfg.Language = cfg.Language
	clientCfg.UserAgent = cfg.UserAgent
	clientCfg.CacheMaxAge = cfg.CacheMaxAge

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		clientCfg.Store = cache.NewRedisStore(redisClient, cfg.CacheMaxAge)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Using shared Redis response cache")
	}

	irail, err := client.New(clientCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create iRail client")
	}
	defer irail.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/cache/stats", cacheStatsHandler(irail))
	mux.HandleFunc("/api/", apiHandler(irail, logger))

	addr := ":" + cfg.Port
	logger.Info().
		Str("addr", addr).
		Str("lang", irail.Language()).
		Msg("Starting iRail proxy")

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func cacheStatsHandler(irail *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := irail.CacheStats(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}
}

// apiHandler maps /api/{endpoint}?params onto a dispatcher call and writes
// the raw payload back, translating failure kinds to HTTP statuses.
func apiHandler(irail *client.Client, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpoint := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/"), "/")
		if endpoint == "" || strings.Contains(endpoint, "/") {
			http.Error(w, "expected /api/{endpoint}", http.StatusNotFound)
			return
		}

		params := map[string]string{}
		for key := range r.URL.Query() {
			if key == "format" || key == "lang" {
				continue
			}
			params[key] = r.URL.Query().Get(key)
		}

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		body, err := irail.Execute(ctx, endpoint, params)
		if err != nil {
			status := proxyStatus(err)
			logger.Warn().Err(err).Str("endpoint", endpoint).Int("status", status).Msg("Proxied call failed")
			http.Error(w, err.Error(), status)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(body)
	}
}

// proxyStatus maps terminal failure kinds onto response statuses.
func proxyStatus(err error) int {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	switch apiErr.Kind {
	case client.FailureClient:
		return http.StatusBadRequest
	case client.FailureRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
