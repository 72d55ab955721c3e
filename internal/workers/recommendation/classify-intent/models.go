// internal/workers/recommendation/classify-intent/models.go
package classifyintent

import "wenwen-recommender/internal/models"

// Score is one intent's keyword score before overrides.
type Score struct {
	Intent  models.Intent
	Value   float64
	Matched []string
}
