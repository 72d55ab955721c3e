// internal/workers/infrastructure/notify-fabrication/handler.go
package notifyfabrication

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	commonaws "wenwen-recommender/internal/common/aws"
	"wenwen-recommender/internal/common/errors"
	"wenwen-recommender/internal/common/metrics"
	"wenwen-recommender/internal/common/resilience"
)

const (
	TaskType = "notify-fabrication"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Publisher delivers one alert and returns the provider message id.
type Publisher interface {
	Publish(ctx context.Context, subject, body string) (string, error)
}

type snsPublisher struct {
	client *commonaws.SNSClient
}

func (p snsPublisher) Publish(ctx context.Context, subject, body string) (string, error) {
	return p.client.PublishText(ctx, subject, body)
}

type sesPublisher struct {
	client     *commonaws.SESClient
	recipients []string
}

func (p sesPublisher) Publish(ctx context.Context, subject, body string) (string, error) {
	return p.client.SendText(ctx, p.recipients, subject, body)
}

// NewSNSPublisher and NewSESPublisher adapt the AWS clients.
func NewSNSPublisher(client *commonaws.SNSClient) Publisher {
	return snsPublisher{client: client}
}

func NewSESPublisher(client *commonaws.SESClient, recipients []string) Publisher {
	return sesPublisher{client: client, recipients: recipients}
}

// NewPublisher builds the publisher for config.Channel. The none channel
// returns a nil publisher.
func NewPublisher(ctx context.Context, config *Config) (Publisher, error) {
	switch strings.ToLower(config.Channel) {
	case "", ChannelNone:
		return nil, nil
	case ChannelSNS:
		if config.TopicARN == "" {
			return nil, fmt.Errorf("alerts channel sns requires a topic arn")
		}
		client, err := commonaws.NewSNSClient(ctx, config.Region, config.TopicARN)
		if err != nil {
			return nil, fmt.Errorf("create sns client: %w", err)
		}
		return NewSNSPublisher(client), nil
	case ChannelSES:
		if config.FromEmail == "" || len(config.Recipients) == 0 {
			return nil, fmt.Errorf("alerts channel ses requires a sender and recipients")
		}
		client, err := commonaws.NewSESClient(ctx, config.Region, config.FromEmail)
		if err != nil {
			return nil, fmt.Errorf("create ses client: %w", err)
		}
		return NewSESPublisher(client, config.Recipients), nil
	default:
		return nil, fmt.Errorf("unknown alerts channel %q", config.Channel)
	}
}

// Notifier publishes fabrication alerts. Delivery is best-effort and never
// retried.
type Notifier struct {
	channel   string
	publisher Publisher
	policy    resilience.Policy
	logger    Logger
}

func NewNotifier(config *Config, publisher Publisher, log Logger) *Notifier {
	channel := strings.ToLower(config.Channel)
	if publisher == nil {
		channel = ChannelNone
	}
	return &Notifier{
		channel:   channel,
		publisher: publisher,
		policy:    resilience.Policy{Timeout: config.Timeout}.WriteOnce(),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
			"channel":  channel,
		}),
	}
}

// Notify returns an ALERT_PUBLISH_FAILED error on failure. Callers may ignore it.
func (n *Notifier) Notify(ctx context.Context, alert Alert) error {
	if n.publisher == nil {
		metrics.AlertsPublished.WithLabelValues(ChannelNone, "skipped").Inc()
		n.logger.Info("fabrication alert not published", map[string]interface{}{
			"sessionId": alert.SessionID,
			"matches":   alert.Matches,
		})
		return nil
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now().UTC()
	}

	body, err := json.MarshalIndent(alert, "", "  ")
	if err != nil {
		return n.fail(alert, err)
	}
	subject := Subject(alert)

	id, err := resilience.Do(ctx, n.policy, "publish_alert", func(ctx context.Context) (string, error) {
		return n.publisher.Publish(ctx, subject, string(body))
	}, resilience.Never)
	if err != nil {
		return n.fail(alert, err)
	}

	metrics.AlertsPublished.WithLabelValues(n.channel, "published").Inc()
	n.logger.Info("fabrication alert published", map[string]interface{}{
		"sessionId": alert.SessionID,
		"messageId": id,
	})
	return nil
}

func (n *Notifier) fail(alert Alert, err error) error {
	stdErr := errors.NewAlertPublishFailedError(n.channel, err)
	metrics.AlertsPublished.WithLabelValues(n.channel, "failed").Inc()
	n.logger.Warn("fabrication alert failed", map[string]interface{}{
		"sessionId": alert.SessionID,
		"errorCode": string(stdErr.Code),
		"error":     err.Error(),
	})
	return stdErr
}

// Subject is kept under the SNS 100 character limit.
func Subject(alert Alert) string {
	s := fmt.Sprintf("[wenwen] fabricated content in session %s", alert.SessionID)
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	return s
}
