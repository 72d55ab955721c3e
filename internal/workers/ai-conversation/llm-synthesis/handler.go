// internal/workers/ai-conversation/llm-synthesis/handler.go
package llmsynthesis

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"wenwen-recommender/internal/common/errors"
	commonhttp "wenwen-recommender/internal/common/http"
	"wenwen-recommender/internal/common/resilience"
)

const (
	TaskType = "llm-synthesis"
)

var (
	ErrLLMTimeout          = stderrors.New("LLM_TIMEOUT")
	ErrLLMGenerationFailed = stderrors.New("LLM_GENERATION_FAILED")
	ErrEmptyReply          = stderrors.New("EMPTY_REPLY")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Client generates replies from a rendered prompt.
type Client struct {
	config *Config
	http   *commonhttp.Client
	policy resilience.Policy
	logger Logger
}

func NewClient(config *Config, log Logger) *Client {
	return &Client{
		config: config,
		// no client timeout; each attempt carries its own deadline
		http: commonhttp.NewClient(0, commonhttp.WithHeader("Authorization", bearer(config.APIKey))),
		policy: resilience.Policy{
			Timeout:    config.Timeout,
			MaxRetries: config.MaxRetries,
			Backoff:    config.Backoff,
		},
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func bearer(key string) string {
	if key == "" {
		return ""
	}
	return "Bearer " + key
}

// Generate posts the system and user text and returns the trimmed reply.
// Errors are StandardErrors coded LLM_TIMEOUT or LLM_GENERATION_FAILED.
func (c *Client) Generate(ctx context.Context, system, userText string) (string, error) {
	start := time.Now()
	url := strings.TrimRight(c.config.GenAIBaseURL, "/") + "/api/ai/generate"
	req := GenerateRequest{
		System:      system,
		Prompt:      userText,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	resp, err := resilience.Do(ctx, c.policy, "generate", func(ctx context.Context) (GenerateResponse, error) {
		var out GenerateResponse
		err := c.http.PostJSON(ctx, url, req, &out)
		return out, err
	}, transportOnly)
	if err != nil {
		mapped := c.mapError(err)
		c.logger.Error("generation failed", map[string]interface{}{
			"errorCode":  string(mapped.Code),
			"error":      err.Error(),
			"durationMs": time.Since(start).Milliseconds(),
		})
		return "", mapped
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.NewLLMGenerationFailedError(fmt.Errorf("%w: %w", ErrLLMGenerationFailed, ErrEmptyReply))
	}

	c.logger.Info("reply generated", map[string]interface{}{
		"replyLength": len([]rune(text)),
		"durationMs":  time.Since(start).Milliseconds(),
	})
	return text, nil
}

// transportOnly retries failures where the request may not have reached the
// model. A timeout, a status error or an undecodable body is final.
func transportOnly(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *commonhttp.StatusError
	if stderrors.As(err, &statusErr) {
		return false
	}
	if strings.Contains(err.Error(), "decode response") {
		return false
	}
	return resilience.TransientOnly(err)
}

func (c *Client) mapError(err error) *errors.StandardError {
	if stderrors.Is(err, context.DeadlineExceeded) || errors.CodeOf(err) == errors.ErrCodeTimeout {
		return errors.NewLLMTimeoutError(fmt.Errorf("%w: %w", ErrLLMTimeout, err))
	}
	return errors.NewLLMGenerationFailedError(fmt.Errorf("%w: %w", ErrLLMGenerationFailed, err))
}
