// internal/workers/infrastructure/build-response/handler.go
package buildresponse

import (
	"errors"
	"fmt"
	"strings"

	"wenwen-recommender/internal/common/logger"
	"wenwen-recommender/internal/models"
)

const TaskType = "build-response"

var ErrResponseInvalid = errors.New("RESPONSE_INVALID")

type Builder struct {
	config *Config
	logger logger.Logger
}

func NewBuilder(config *Config, log logger.Logger) *Builder {
	return &Builder{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Build assembles the DTO. Status is error whenever ErrorCode is set.
func (b *Builder) Build(in Input) (*Response, error) {
	resp := &Response{
		ReplyText:             in.ReplyText,
		SessionID:             in.SessionID,
		Intent:                in.Intent.Intent,
		Confidence:            in.Intent.Confidence,
		RecommendedBusinesses: Project(in.Records),
		DebugMetadata:         in.Debug,
		Status:                StatusSuccess,
		ErrorCode:             in.ErrorCode,
	}
	if resp.Intent == "" {
		resp.Intent = models.IntentGeneral
	}
	if in.ErrorCode != "" {
		resp.Status = StatusError
	}
	resp.DebugMetadata.Version = b.config.AppVersion
	if resp.DebugMetadata.Language == "" {
		resp.DebugMetadata.Language = string(in.Intent.Language)
	}
	if resp.DebugMetadata.MatchedKeywords == nil {
		resp.DebugMetadata.MatchedKeywords = append([]string{}, in.Intent.MatchedKeywords...)
	}
	resp.DebugMetadata.IsFollowUp = in.Intent.IsFollowUp

	if !b.config.ValidateOutput {
		return resp, nil
	}
	if result := schema.Validate(resp); !result.Valid {
		b.logger.Error("response failed schema validation", map[string]interface{}{
			"sessionId": in.SessionID,
			"errors":    result.Summary(),
		})
		return nil, fmt.Errorf("%w: %s", ErrResponseInvalid, result.Summary())
	}
	return resp, nil
}

// Project keeps only display-safe fields, dropping the feature blob.
func Project(records []models.BusinessRecord) []Business {
	out := make([]Business, 0, len(records))
	for _, r := range records {
		out = append(out, Business{
			ID:        r.ID,
			Name:      strings.TrimSpace(r.Name),
			Category:  strings.TrimSpace(r.Category),
			IsPartner: r.IsPartner,
			Address:   r.Address,
			Phone:     r.Phone,
		})
	}
	return out
}
