package utils

import (
	"github.com/mmdatafocus/ledger_backend/config"
)

// CacheThrough returns the cached value under key, or calls load and caches its result.
// Cache errors never fail the lookup: a broken redis only costs the extra query.
func CacheThrough[T any](key string, load func() (T, error)) (T, error) {
	var cached T
	logger := config.GetLogger()
	exists, err := config.GetRedisObject(key, &cached)
	if err != nil {
		config.LogError(logger, "utils", "CacheThrough", "GetRedisObject", key, err)
	} else if exists {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := config.SetRedisObject(key, value, config.MasterCacheLifespan()); err != nil {
		config.LogError(logger, "utils", "CacheThrough", "SetRedisObject", key, err)
	}
	return value, nil
}

// InvalidateCache removes master-data keys after a write.
func InvalidateCache(keys ...string) error {
	return config.RemoveRedisKey(keys...)
}
