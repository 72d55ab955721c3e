// internal/workers/ai-conversation/llm-synthesis/models.go
package llmsynthesis

// GenerateRequest is the body posted to /api/ai/generate.
type GenerateRequest struct {
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type GenerateResponse struct {
	Text string `json:"text"`
}
