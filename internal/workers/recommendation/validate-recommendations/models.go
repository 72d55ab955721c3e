// internal/workers/recommendation/validate-recommendations/models.go
package validaterecommendations

import "wenwen-recommender/internal/models"

type Stage string

const (
	StageFabrication       Stage = "fabrication"
	StageCompleteness      Stage = "completeness"
	StageIntentConsistency Stage = "intent_consistency"
	StageCategory          Stage = "category"
)

// Finding is one issue or warning raised against a record.
type Finding struct {
	RecordID string `json:"recordId"`
	Name     string `json:"name"`
	Stage    Stage  `json:"stage"`
	Message  string `json:"message"`
}

// Result holds the surviving records in input order. Issues explain the
// dropped records; warnings never drop anything.
type Result struct {
	Records  []models.BusinessRecord `json:"records"`
	Issues   []Finding               `json:"issues"`
	Warnings []Finding               `json:"warnings"`
}

type ScanResult struct {
	Flagged bool     `json:"flagged"`
	Matches []string `json:"matches"`
	Issues  []string `json:"issues"`
}
