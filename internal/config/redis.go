package config

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig locates the Redis server behind the plate relay, terminal
// sessions, rate limiter buckets and response cache.
type RedisConfig struct {
	Disabled bool
	URL      string // redis:// or rediss:// URL; wins over the fields below
	Addr     string
	Password string
	DB       int
	TLS      bool
	Insecure bool // skip certificate verification (self-signed dev servers)
	Timeout  time.Duration
}

// LoadRedisConfig reads REDIS_URL, or REDIS_HOST+REDIS_PORT / REDIS_ADDR
// with REDIS_PASSWORD, REDIS_DB, REDIS_TLS and REDIS_TLS_INSECURE.
// REDIS_DISABLED skips Redis entirely.
func LoadRedisConfig() RedisConfig {
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = net.JoinHostPort(host, port)
	}
	return RedisConfig{
		Disabled: envBool("REDIS_DISABLED", false),
		URL:      os.Getenv("REDIS_URL"),
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envInt("REDIS_DB", 0),
		TLS:      envBool("REDIS_TLS", false),
		Insecure: envBool("REDIS_TLS_INSECURE", false),
		Timeout:  envDur("REDIS_DIAL_TIMEOUT", 2*time.Second),
	}
}

// Options converts the config into client options.
func (c RedisConfig) Options() (*redis.Options, error) {
	if c.URL != "" {
		opt, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, err
		}
		if opt.TLSConfig != nil && c.Insecure {
			opt.TLSConfig.InsecureSkipVerify = true
		}
		return opt, nil
	}
	opt := &redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB, DialTimeout: c.Timeout}
	if c.TLS {
		host, _, _ := net.SplitHostPort(c.Addr)
		opt.TLSConfig = &tls.Config{ServerName: host, InsecureSkipVerify: c.Insecure, MinVersion: tls.VersionTLS12}
	}
	return opt, nil
}

// NewRedisClient connects and pings.  It returns nil when Redis is disabled
// or unreachable; callers then keep relay and terminal state in memory and
// run without rate limiting or caching.
func NewRedisClient(c RedisConfig) *redis.Client {
	if c.Disabled {
		return nil
	}
	opt, err := c.Options()
	if err != nil {
		slog.Warn("invalid redis config, using in-memory stores", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, using in-memory stores", "addr", opt.Addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}
