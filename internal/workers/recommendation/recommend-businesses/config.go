// internal/workers/recommendation/recommend-businesses/config.go
package recommendbusinesses

import (
	"wenwen-recommender/internal/models"
	"wenwen-recommender/pkg/registry"
)

type Config struct {
	MaxResults              int
	FetchLimit              int
	PrioritizePartnerStores bool
	EnableFallback          bool
	FlagshipBusinessName    string
	Signals                 models.CategorySignals
}

func LoadConfig() *Config {
	return &Config{
		MaxResults:              5,
		FetchLimit:              20,
		PrioritizePartnerStores: true,
		EnableFallback:          true,
		FlagshipBusinessName:    "肯塔基美語",
		Signals:                 registry.Default().Signals(),
	}
}
