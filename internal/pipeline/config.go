// internal/pipeline/config.go
package pipeline

import (
	"time"

	buildresponse "wenwen-recommender/internal/workers/infrastructure/build-response"
)

type Config struct {
	MaxMessageRunes int
	RequestTimeout  time.Duration
	ApologyReply    string
}

func LoadConfig() *Config {
	return &Config{
		MaxMessageRunes: 2000,
		RequestTimeout:  45 * time.Second,
		ApologyReply:    buildresponse.ApologyReply,
	}
}
