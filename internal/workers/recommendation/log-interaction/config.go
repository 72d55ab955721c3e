// internal/workers/recommendation/log-interaction/config.go
package loginteraction

import "time"

type Config struct {
	HistorySize     int
	RetentionAge    time.Duration
	CleanupInterval time.Duration
	MaxResults      int
}

func LoadConfig() *Config {
	return &Config{
		HistorySize:     100,
		RetentionAge:    24 * time.Hour,
		CleanupInterval: 10 * time.Minute,
		MaxResults:      5,
	}
}
