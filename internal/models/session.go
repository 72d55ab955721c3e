package models

import "time"

// User is an end user known by an external identifier.
type User struct {
	ID          string                 `json:"id"`
	ExternalID  string                 `json:"externalId"`
	DisplayName string                 `json:"displayName,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// Session is one conversation thread.
type Session struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"userId"`
	MessageCount int                    `json:"messageCount"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	LastActiveAt time.Time              `json:"lastActiveAt"`
}

// MessageRole distinguishes the two sides of a turn.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one persisted side of a turn.
type Message struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId"`
	UserID    string          `json:"userId"`
	Role      MessageRole     `json:"role"`
	Content   string          `json:"content"`
	Metadata  MessageMetadata `json:"metadata"`
	CreatedAt time.Time       `json:"createdAt"`
}

// MessageMetadata annotates a persisted chat message.
type MessageMetadata struct {
	MessageID        string   `json:"messageId"`
	ReplyTo          string   `json:"replyTo,omitempty"`
	Intent           Intent   `json:"intent"`
	Confidence       float64  `json:"confidence"`
	Tone             Tone     `json:"tone"`
	RecommendedIDs   []string `json:"recommendedIds"`
	ResponseTimeMs   int64    `json:"responseTimeMs,omitempty"`
	ReplyScanFlagged bool     `json:"replyScanFlagged,omitempty"`
}
