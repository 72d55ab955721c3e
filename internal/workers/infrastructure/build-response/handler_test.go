// internal/workers/infrastructure/build-response/handler_test.go
package buildresponse

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wenwen-recommender/internal/common/logger"
	"wenwen-recommender/internal/models"
)

func createTestBuilder(t *testing.T) *Builder {
	return NewBuilder(&Config{AppVersion: "1.2.3", ValidateOutput: true}, logger.NewTestLogger(t))
}

func englishIntent() models.IntentResult {
	return models.IntentResult{
		Intent:          models.IntentEnglishLearning,
		Confidence:      0.8,
		MatchedKeywords: []string{"英文", "補習"},
		Language:        models.LanguageZhTW,
	}
}

func TestBuilder_Build_Success(t *testing.T) {
	b := createTestBuilder(t)
	records := []models.BusinessRecord{{
		ID:        "b1",
		Name:      "肯塔基美語",
		Category:  "教育學習",
		Address:   "台北市文山區木柵路一段100號",
		Phone:     "02-2234-5678",
		IsPartner: true,
		Features:  `{"rating":4.8,"internalNotes":"secret"}`,
	}}

	resp, err := b.Build(Input{
		SessionID: "s1",
		ReplyText: "推薦你肯塔基美語！",
		Intent:    englishIntent(),
		Records:   records,
		Debug:     DebugMetadata{Tone: "guide", Strategy: "by_category"},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Empty(t, resp.ErrorCode)
	assert.Equal(t, models.IntentEnglishLearning, resp.Intent)
	require.Len(t, resp.RecommendedBusinesses, 1)
	assert.Equal(t, "1.2.3", resp.DebugMetadata.Version)
	assert.Equal(t, "zh-TW", resp.DebugMetadata.Language)
	assert.Equal(t, []string{"英文", "補習"}, resp.DebugMetadata.MatchedKeywords)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "internalNotes")
	assert.NotContains(t, string(raw), "features")
}

func TestBuilder_Build_EmptyRecommendationsIsSuccess(t *testing.T) {
	b := createTestBuilder(t)
	resp, err := b.Build(Input{
		SessionID: "s1",
		ReplyText: "目前沒有找到符合的店家。",
		Intent:    models.IntentResult{Intent: models.IntentParking, Confidence: 0.2},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.NotNil(t, resp.RecommendedBusinesses)
	assert.Empty(t, resp.RecommendedBusinesses)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"recommendedBusinesses":[]`)
}

func TestBuilder_Build_ErrorStatus(t *testing.T) {
	b := createTestBuilder(t)
	resp, err := b.Build(Input{
		SessionID: "s1",
		ReplyText: ApologyReply,
		Intent:    englishIntent(),
		ErrorCode: "LLM_TIMEOUT",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "LLM_TIMEOUT", resp.ErrorCode)
}

func TestBuilder_Build_MissingIntentDefaultsToGeneral(t *testing.T) {
	b := createTestBuilder(t)
	resp, err := b.Build(Input{SessionID: "s1", ReplyText: InternalErrorReply, ErrorCode: "INTERNAL_ERROR"})

	require.NoError(t, err)
	assert.Equal(t, models.IntentGeneral, resp.Intent)
}

func TestBuilder_Build_SchemaViolations(t *testing.T) {
	tests := []struct {
		name  string
		input Input
	}{
		{"empty reply", Input{SessionID: "s1", Intent: englishIntent()}},
		{"empty session", Input{ReplyText: "hi", Intent: englishIntent()}},
		{"confidence out of range", Input{SessionID: "s1", ReplyText: "hi", Intent: models.IntentResult{Intent: models.IntentFood, Confidence: 1.5}}},
		{"record without name", Input{SessionID: "s1", ReplyText: "hi", Intent: englishIntent(), Records: []models.BusinessRecord{{ID: "b1", Category: "教育學習"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := createTestBuilder(t).Build(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrResponseInvalid))
		})
	}
}

func TestBuilder_Build_ValidationDisabled(t *testing.T) {
	b := NewBuilder(&Config{ValidateOutput: false}, logger.NewNoOpLogger())
	resp, err := b.Build(Input{SessionID: "s1"})
	require.NoError(t, err)
	assert.Empty(t, resp.ReplyText)
}

func TestProject_TrimsAndKeepsOrder(t *testing.T) {
	got := Project([]models.BusinessRecord{
		{ID: "a", Name: " 甲 ", Category: "美食餐廳 "},
		{ID: "b", Name: "乙", Category: "美食餐廳", IsPartner: true},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "甲", got[0].Name)
	assert.Equal(t, "美食餐廳", got[0].Category)
	assert.True(t, got[1].IsPartner)
}
