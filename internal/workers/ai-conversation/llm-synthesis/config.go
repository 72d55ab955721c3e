// internal/workers/ai-conversation/llm-synthesis/config.go
package llmsynthesis

import "time"

type Config struct {
	GenAIBaseURL string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	Backoff      time.Duration
	MaxTokens    int
	Temperature  float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		MaxRetries:  1,
		Backoff:     200 * time.Millisecond,
		MaxTokens:   500,
		Temperature: 0.7,
	}
}
