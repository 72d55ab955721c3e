// internal/workers/infrastructure/notify-fabrication/models.go
package notifyfabrication

import "time"

// Alert describes a reply that the post-generation scan flagged.
type Alert struct {
	SessionID   string    `json:"sessionId"`
	Intent      string    `json:"intent"`
	UserMessage string    `json:"userMessage"`
	Reply       string    `json:"reply"`
	Matches     []string  `json:"matches"`
	Issues      []string  `json:"issues,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
