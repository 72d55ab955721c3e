// internal/workers/recommendation/validate-recommendations/config.go
package validaterecommendations

import (
	"wenwen-recommender/internal/models"
	"wenwen-recommender/pkg/registry"
)

type Config struct {
	Signals             models.CategorySignals
	FakeAddressPatterns []string
}

func LoadConfig() *Config {
	v := registry.Default()
	return &Config{
		Signals:             v.Signals(),
		FakeAddressPatterns: v.FakeAddressPatterns,
	}
}
