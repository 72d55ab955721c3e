// internal/pipeline/models.go
package pipeline

import (
	"context"

	"wenwen-recommender/internal/models"
	buildresponse "wenwen-recommender/internal/workers/infrastructure/build-response"
	notifyfabrication "wenwen-recommender/internal/workers/infrastructure/notify-fabrication"
	loginteraction "wenwen-recommender/internal/workers/recommendation/log-interaction"
	recommendbusinesses "wenwen-recommender/internal/workers/recommendation/recommend-businesses"
	rendertoneprompt "wenwen-recommender/internal/workers/recommendation/render-tone-prompt"
	validaterecommendations "wenwen-recommender/internal/workers/recommendation/validate-recommendations"
)

// Request is one chat turn as received from the front end.
type Request struct {
	SessionID   string                 `json:"sessionId"`
	UserMessage string                 `json:"userMessage"`
	UserMeta    map[string]interface{} `json:"userMeta,omitempty"`
}

// metaString reads a string field from UserMeta.
func (r Request) metaString(key string) string {
	if r.UserMeta == nil {
		return ""
	}
	s, _ := r.UserMeta[key].(string)
	return s
}

type Classifier interface {
	Classify(text string) models.IntentResult
}

type Recommender interface {
	Execute(ctx context.Context, intent models.Intent, isFollowUp bool) recommendbusinesses.Result
}

type Firewall interface {
	Validate(records []models.BusinessRecord, intent models.Intent) validaterecommendations.Result
	ScanReplyTextAgainst(text string, records []models.BusinessRecord) validaterecommendations.ScanResult
}

type Renderer interface {
	Render(result models.IntentResult, records []models.BusinessRecord, userText, preference string) rendertoneprompt.Payload
	SafeReply(intent models.Intent, records []models.BusinessRecord, preference string) string
}

type Generator interface {
	Generate(ctx context.Context, system, userText string) (string, error)
}

type InteractionLogger interface {
	Log(ctx context.Context, turn loginteraction.Turn)
	Metrics(sessionID string) loginteraction.Metrics
}

// SessionStore is the user and session slice of the data access port.
type SessionStore interface {
	FindUserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	CreateUser(ctx context.Context, externalID, displayName string, metadata map[string]interface{}) (*models.User, error)
	FindSession(ctx context.Context, id string) (*models.Session, error)
	CreateSession(ctx context.Context, id, userID string, metadata map[string]interface{}) (*models.Session, error)
}

type Alerter interface {
	Notify(ctx context.Context, alert notifyfabrication.Alert) error
}

type ResponseBuilder interface {
	Build(in buildresponse.Input) (*buildresponse.Response, error)
}

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type sessionInfo struct {
	UserID       string
	MessageCount int
	Resolved     bool
}
