package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	msgs []string
}

func (c *captureLogger) Error(msg string, fields map[string]interface{}) {
	c.msgs = append(c.msgs, fmt.Sprintf("%s %v", msg, fields["errorCode"]))
}

func TestStandardError_WrapsCause(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := NewDataStoreUnavailableError("find_top_businesses", cause)

	assert.True(t, err.Retryable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "DATA_STORE_UNAVAILABLE")
	assert.Contains(t, err.Details, "find_top_businesses")

	err.WithMetadata("attempt", 2)
	assert.Equal(t, 2, err.Metadata["attempt"])
}

func TestLLMErrors_AreNotRetryable(t *testing.T) {
	assert.False(t, NewLLMTimeoutError(nil).Retryable)
	assert.False(t, NewLLMGenerationFailedError(stderrors.New("500")).Retryable)
	assert.False(t, IsRetryableErrorCode(ErrCodeLLMTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeLLMGenerationFailed))
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeDataStoreUnavailable, 3},
		{ErrCodeExternalService, 3},
		{ErrCodeDataStoreTimeout, 2},
		{ErrCodeTimeout, 2},
		{ErrCodeInvalidRequest, 0},
		{ErrCodeInternal, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetRetryCount(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDataStoreTimeout))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeLLMGenerationFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidRequest))
	assert.Equal(t, "SIDE_EFFECT", GetErrorCategory(ErrCodeAlertPublishFailed))
	assert.Equal(t, "TRANSPORT", GetErrorCategory(ErrCodeExternalService))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	std := NewInvalidRequestError("sessionId is required")
	assert.Same(t, std, Normalize(fmt.Errorf("wrapped: %w", std)))

	assert.Equal(t, ErrCodeTimeout, Normalize(context.DeadlineExceeded).Code)
	assert.Equal(t, ErrCodeInternal, Normalize(stderrors.New("nil map")).Code)
	assert.Equal(t, ErrCodeInvalidRequest, CodeOf(std))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeInvalidRequest))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrCodeLLMTimeout))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrCodeDataStoreUnavailable))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(ErrCodeTimeout))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeInternal))
}

func TestErrorHandler_HandleHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantDetails bool
	}{
		{"invalid request exposes details", NewInvalidRequestError("userMessage is required"), http.StatusBadRequest, true},
		{"internal hides details", stderrors.New("secret stack"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &captureLogger{}
			h := NewErrorHandler(log)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)

			h.HandleHTTPError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.wantDetails, body.Details != "")
			assert.Len(t, log.msgs, 1)
		})
	}
}
