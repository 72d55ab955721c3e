// internal/workers/recommendation/classify-intent/config.go
package classifyintent

import (
	"strings"

	"wenwen-recommender/internal/models"
	"wenwen-recommender/pkg/registry"
)

type Config struct {
	Keywords         map[models.Intent][]string
	EducationSignals []string
	FoodSignals      []string
	FollowUpPhrases  []string
	LengthBonus      float64
	EducationFloor   float64
	FoodFloor        float64
}

func LoadConfig() *Config {
	return ConfigFromVocabulary(registry.Default())
}

// ConfigFromVocabulary lower-cases every word list so matching can run
// against case-folded input.
func ConfigFromVocabulary(v *registry.Vocabulary) *Config {
	cfg := &Config{
		Keywords:         make(map[models.Intent][]string, len(models.ScoredIntents)),
		EducationSignals: lowerAll(v.EducationSignals),
		FoodSignals:      lowerAll(v.FoodSignals),
		FollowUpPhrases:  lowerAll(v.FollowUpPhrases),
		LengthBonus:      0.05,
		EducationFloor:   0.8,
		FoodFloor:        0.7,
	}
	for _, in := range models.ScoredIntents {
		cfg.Keywords[in] = lowerAll(v.Intents[string(in)])
	}
	return cfg
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
