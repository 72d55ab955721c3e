// internal/pipeline/schema.go
package pipeline

import "wenwen-recommender/internal/common/validation"

// Message length is checked by the service because the limit is configurable.
const requestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["sessionId", "userMessage"],
	"properties": {
		"sessionId": {"type": "string", "minLength": 1, "maxLength": 128},
		"userMessage": {"type": "string", "minLength": 1},
		"userMeta": {
			"type": "object",
			"properties": {
				"externalId": {"type": "string"},
				"displayName": {"type": "string"},
				"channel": {"type": "string"},
				"tone": {"type": "string"}
			}
		}
	}
}`

var chatRequest = validation.MustCompile(requestSchema)
