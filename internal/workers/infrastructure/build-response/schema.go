// internal/workers/infrastructure/build-response/schema.go
package buildresponse

import "wenwen-recommender/internal/common/validation"

const responseSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["replyText", "sessionId", "intent", "confidence", "recommendedBusinesses", "debugMetadata", "status"],
	"properties": {
		"replyText": {"type": "string", "minLength": 1},
		"sessionId": {"type": "string", "minLength": 1},
		"intent": {"enum": ["FOOD", "ENGLISH_LEARNING", "PARKING", "SHOPPING", "BEAUTY", "MEDICAL", "GENERAL"]},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"status": {"enum": ["success", "error"]},
		"errorCode": {"type": "string"},
		"debugMetadata": {"type": "object"},
		"recommendedBusinesses": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "name", "category", "isPartner"],
				"additionalProperties": false,
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"name": {"type": "string", "minLength": 1},
					"category": {"type": "string", "minLength": 1},
					"isPartner": {"type": "boolean"},
					"address": {"type": "string"},
					"phone": {"type": "string"}
				}
			}
		}
	}
}`

var schema = validation.MustCompile(responseSchema)
