// internal/workers/infrastructure/build-response/models.go
package buildresponse

import (
	"wenwen-recommender/internal/models"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Replies used when the model output cannot be shown.
const (
	ApologyReply       = "抱歉，我現在暫時無法回覆，請稍後再問我一次。"
	InternalErrorReply = "抱歉，系統發生了一點問題，請稍後再試。"
)

// Input carries everything the pipeline knows at the end of a turn.
type Input struct {
	SessionID string
	ReplyText string
	Intent    models.IntentResult
	Records   []models.BusinessRecord
	Debug     DebugMetadata
	ErrorCode string
}

// Response is the produced DTO.
type Response struct {
	ReplyText             string        `json:"replyText"`
	SessionID             string        `json:"sessionId"`
	Intent                models.Intent `json:"intent"`
	Confidence            float64       `json:"confidence"`
	RecommendedBusinesses []Business    `json:"recommendedBusinesses"`
	DebugMetadata         DebugMetadata `json:"debugMetadata"`
	Status                string        `json:"status"`
	ErrorCode             string        `json:"errorCode,omitempty"`
}

// Business is the display-safe projection of a BusinessRecord.
type Business struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	IsPartner bool   `json:"isPartner"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type DebugMetadata struct {
	Version          string   `json:"version,omitempty"`
	Language         string   `json:"language,omitempty"`
	MatchedKeywords  []string `json:"matchedKeywords"`
	IsFollowUp       bool     `json:"isFollowUp"`
	Tone             string   `json:"tone,omitempty"`
	Strategy         string   `json:"strategy,omitempty"`
	FallbackUsed     bool     `json:"fallbackUsed"`
	Degraded         bool     `json:"degraded"`
	FirewallIssues   int      `json:"firewallIssues"`
	FirewallWarnings int      `json:"firewallWarnings"`
	ReplyScanFlagged bool     `json:"replyScanFlagged"`
	SessionResolved  bool     `json:"sessionResolved"`
	ResponseTimeMs   int64    `json:"responseTimeMs"`
}
