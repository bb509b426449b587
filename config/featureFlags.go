package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y" || v == "on"
}

func envPositiveInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// ReportCacheEnabled turns on redis caching of whole report responses.
//
// Set via env:
// - ENABLE_REPORT_CACHE=true
func ReportCacheEnabled() bool {
	return envBool("ENABLE_REPORT_CACHE")
}

// ReportCacheTTL env: REPORT_CACHE_TTL_SECONDS (default 120s)
func ReportCacheTTL() time.Duration {
	return time.Duration(envPositiveInt("REPORT_CACHE_TTL_SECONDS", 120)) * time.Second
}

// ReportSlowThreshold env: REPORT_SLOW_MS (default 500ms)
func ReportSlowThreshold() time.Duration {
	return time.Duration(envPositiveInt("REPORT_SLOW_MS", 500)) * time.Millisecond
}

// MasterCacheLifespan is how long company/settings/account lookups stay in redis.
// Env: CACHE_LIFESPAN in hours (default 1)
func MasterCacheLifespan() time.Duration {
	return time.Duration(envPositiveInt("CACHE_LIFESPAN", 1)) * time.Hour
}

// DeprecationWarningsAlways repeats a deprecation warning on every call instead of once per process.
// Env: DEPRECATION_WARN_ALWAYS=true
func DeprecationWarningsAlways() bool {
	return envBool("DEPRECATION_WARN_ALWAYS")
}

// ExportLinkTTL is how long a signed workbook download link stays valid.
// Env: EXPORT_LINK_TTL_MINUTES (default 15)
func ExportLinkTTL() time.Duration {
	return time.Duration(envPositiveInt("EXPORT_LINK_TTL_MINUTES", 15)) * time.Minute
}

// Rate limit env:
// - RATE_LIMIT_ENABLED=true
// - RATE_LIMIT_WINDOW_SECONDS=60
// - RATE_LIMIT_MAX_REQUESTS=600
func RateLimitEnabled() bool {
	return envBool("RATE_LIMIT_ENABLED")
}

func RateLimitMaxRequests() int64 {
	return int64(envPositiveInt("RATE_LIMIT_MAX_REQUESTS", 600))
}

func RateLimitWindow() time.Duration {
	return time.Duration(envPositiveInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second
}
