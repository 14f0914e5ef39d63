package config

import (
	"strings"
	"time"
)

// RateLimitConfig configures one Redis token bucket.  The server runs two:
// "auth" in front of login/signup/refresh and "relay" in front of the plate
// relay, so a detector posting several frames per second for the same car
// cannot starve the login form.
type RateLimitConfig struct {
	Scope          string
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string // ip, user, route, ip_user, ip_route, user_route, all
	Prefix         string
}

// LoadRateLimitConfig reads RATE_LIMIT_<SCOPE>_* variables, falling back to
// the unscoped RATE_LIMIT_* ones and then to per-scope defaults.
func LoadRateLimitConfig(scope string) RateLimitConfig {
	scope = strings.ToLower(scope)
	capacity, strategy := 20, "ip_route"
	if scope == "relay" {
		capacity, strategy = 120, "ip"
	}
	up := "RATE_LIMIT_" + strings.ToUpper(scope) + "_"
	get := func(name string) string { return envStr(up+name, envStr("RATE_LIMIT_"+name, "")) }

	cfg := RateLimitConfig{
		Scope:          scope,
		Enabled:        envBool(up+"ENABLED", envBool("RATE_LIMIT_ENABLED", true)),
		Capacity:       atoiOr(get("CAPACITY"), capacity),
		RefillTokens:   atoiOr(get("REFILL_TOKENS"), 1),
		RefillInterval: durOr(get("REFILL_INTERVAL"), time.Second),
		TTL:            durOr(get("TTL"), 10*time.Minute),
		KeyStrategy:    strings.ToLower(envStr(up+"KEY_STRATEGY", strategy)),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "spbu:rl") + ":" + scope,
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	// a bucket must outlive the time it takes to refill completely
	if full := time.Duration(cfg.Capacity/cfg.RefillTokens+1) * cfg.RefillInterval; cfg.TTL < full {
		cfg.TTL = full
	}
	return cfg
}
