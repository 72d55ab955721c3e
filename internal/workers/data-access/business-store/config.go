// internal/workers/data-access/business-store/config.go
package businessstore

import (
	"time"

	"wenwen-recommender/internal/common/resilience"
)

type Config struct {
	Index       string
	CacheTTL    time.Duration
	CachePrefix string
	Policy      resilience.Policy
}

func LoadConfig() *Config {
	return &Config{
		Index:       "businesses",
		CacheTTL:    5 * time.Minute,
		CachePrefix: "biz",
		Policy:      resilience.DefaultPolicy,
	}
}
