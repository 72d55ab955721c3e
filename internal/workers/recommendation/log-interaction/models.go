// internal/workers/recommendation/log-interaction/models.go
package loginteraction

import (
	"time"

	"wenwen-recommender/internal/models"
)

// Turn is one user message and the reply sent for it.
type Turn struct {
	SessionID         string
	UserID            string
	UserMessage       string
	Reply             string
	Intent            models.Intent
	Confidence        float64
	Tone              models.Tone
	RecommendedIDs    []string
	Latency           time.Duration
	ReplyScanFlagged  bool
	PriorMessageCount int
	Timestamp         time.Time
}

// Record is the immutable history entry kept per turn.
type Record struct {
	SessionID      string        `json:"sessionId"`
	UserID         string        `json:"userId"`
	UserMessage    string        `json:"userMessage"`
	Reply          string        `json:"reply"`
	Intent         models.Intent `json:"intent"`
	Confidence     float64       `json:"confidence"`
	Tone           models.Tone   `json:"tone"`
	RecommendedIDs []string      `json:"recommendedIds"`
	Latency        time.Duration `json:"latency"`
	Timestamp      time.Time     `json:"timestamp"`
}

// Metrics are heuristic dashboard signals derived from a session's history.
// They are not ground-truth quality measures.
type Metrics struct {
	SessionID               string  `json:"sessionId"`
	Turns                   int     `json:"turns"`
	MessageCount            int     `json:"messageCount"`
	IntentAccuracy          float64 `json:"intentAccuracy"`
	RecommendationRelevance float64 `json:"recommendationRelevance"`
	Satisfaction            float64 `json:"satisfaction"`
	ToneAppropriateness     float64 `json:"toneAppropriateness"`
}
