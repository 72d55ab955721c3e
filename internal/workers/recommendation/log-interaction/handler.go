package loginteraction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wenwen-recommender/internal/common/errors"
	"wenwen-recommender/internal/common/metrics"
	"wenwen-recommender/internal/models"
)

const (
	TaskType = "log-interaction"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// MessageStore is the write side of the data access port.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg models.Message) error
	UpdateSessionStats(ctx context.Context, sessionID string, messageCount int) error
}

type InteractionLogger struct {
	config  *Config
	store   MessageStore
	history *SessionHistoryStore
	logger  Logger
	now     func() time.Time
}

func NewInteractionLogger(config *Config, store MessageStore, history *SessionHistoryStore, log Logger) *InteractionLogger {
	if history == nil {
		history = NewSessionHistoryStore(config.HistorySize)
	}
	return &InteractionLogger{
		config:  config,
		store:   store,
		history: history,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
		now: time.Now,
	}
}

func (l *InteractionLogger) History() *SessionHistoryStore {
	return l.history
}

// Log persists the turn and records it for analysis. Every failure is
// logged, counted and swallowed.
func (l *InteractionLogger) Log(ctx context.Context, turn Turn) {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = l.now()
	}
	ids := append([]string{}, turn.RecommendedIDs...)

	userMsgID := uuid.NewString()
	base := models.MessageMetadata{
		Intent:         turn.Intent,
		Confidence:     turn.Confidence,
		Tone:           turn.Tone,
		RecommendedIDs: ids,
	}

	userMeta := base
	userMeta.MessageID = userMsgID
	l.persist(ctx, "append_user_message", models.Message{
		ID:        userMsgID,
		SessionID: turn.SessionID,
		UserID:    turn.UserID,
		Role:      models.RoleUser,
		Content:   turn.UserMessage,
		Metadata:  userMeta,
		CreatedAt: turn.Timestamp,
	})

	replyMeta := base
	replyMeta.MessageID = uuid.NewString()
	replyMeta.ReplyTo = userMsgID
	replyMeta.ResponseTimeMs = turn.Latency.Milliseconds()
	replyMeta.ReplyScanFlagged = turn.ReplyScanFlagged
	l.persist(ctx, "append_assistant_message", models.Message{
		ID:        replyMeta.MessageID,
		SessionID: turn.SessionID,
		UserID:    turn.UserID,
		Role:      models.RoleAssistant,
		Content:   turn.Reply,
		Metadata:  replyMeta,
		CreatedAt: turn.Timestamp,
	})

	count := l.history.BumpMessageCount(turn.SessionID, turn.PriorMessageCount, 2)
	if err := l.store.UpdateSessionStats(ctx, turn.SessionID, count); err != nil {
		l.fail("update_session_stats", turn.SessionID, err)
	}

	l.history.Append(Record{
		SessionID:      turn.SessionID,
		UserID:         turn.UserID,
		UserMessage:    turn.UserMessage,
		Reply:          turn.Reply,
		Intent:         turn.Intent,
		Confidence:     turn.Confidence,
		Tone:           turn.Tone,
		RecommendedIDs: ids,
		Latency:        turn.Latency,
		Timestamp:      turn.Timestamp,
	})

	l.logger.Info("interaction logged", map[string]interface{}{
		"sessionId":    turn.SessionID,
		"intent":       string(turn.Intent),
		"tone":         string(turn.Tone),
		"messageCount": count,
		"latencyMs":    turn.Latency.Milliseconds(),
	})
}

func (l *InteractionLogger) persist(ctx context.Context, step string, msg models.Message) {
	if err := l.store.AppendMessage(ctx, msg); err != nil {
		l.fail(step, msg.SessionID, err)
	}
}

func (l *InteractionLogger) fail(step, sessionID string, err error) {
	stdErr := errors.NewInteractionLogFailedError(step, err)
	metrics.InteractionLogFailures.WithLabelValues(step).Inc()
	l.logger.Error("interaction logging step failed", map[string]interface{}{
		"step":      step,
		"sessionId": sessionID,
		"errorCode": string(stdErr.Code),
		"error":     stdErr.Details,
	})
}

// Metrics analyzes the in-memory history of one session.
func (l *InteractionLogger) Metrics(sessionID string) Metrics {
	return Analyze(sessionID, l.history.History(sessionID), l.history.MessageCount(sessionID), l.config.MaxResults)
}

// Cleanup evicts sessions idle for longer than maxAge.
func (l *InteractionLogger) Cleanup(maxAge time.Duration) int {
	removed := l.history.Cleanup(l.now(), maxAge)
	if removed > 0 {
		l.logger.Info("evicted idle session histories", map[string]interface{}{
			"removed":   removed,
			"remaining": l.history.Sessions(),
		})
	}
	return removed
}

// StartSweeper runs Cleanup with the configured retention every interval
// until ctx is done. The returned channel closes when the goroutine exits.
func (l *InteractionLogger) StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup(l.config.RetentionAge)
			}
		}
	}()
	return done
}
