// internal/models/business.go
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// BusinessRecord is a candidate recommendation. The pipeline never mutates it.
type BusinessRecord struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Address       string    `json:"address,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	BusinessHours string    `json:"businessHours,omitempty"`
	IsPartner     bool      `json:"isPartner"`
	Features      string    `json:"features,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type featureBlob struct {
	Rating      json.RawMessage `json:"rating"`
	Description string          `json:"description"`
}

func (b BusinessRecord) features() (featureBlob, bool) {
	var f featureBlob
	if strings.TrimSpace(b.Features) == "" {
		return f, false
	}
	if err := json.Unmarshal([]byte(b.Features), &f); err != nil {
		return f, false
	}
	return f, true
}

// Rating parses the rating from the feature blob. Numbers and numeric
// strings are accepted; anything else is reported as absent.
func (b BusinessRecord) Rating() (float64, bool) {
	f, ok := b.features()
	if !ok || len(f.Rating) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(f.Rating, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(f.Rating, &s); err == nil {
		// NaN and Inf parse cleanly but break the rating order
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n, true
		}
	}
	return 0, false
}

// RatingOrZero is the sort key: a missing or malformed rating counts as 0.
func (b BusinessRecord) RatingOrZero() float64 {
	r, _ := b.Rating()
	return r
}

func (b BusinessRecord) Description() string {
	f, _ := b.features()
	return strings.TrimSpace(f.Description)
}

// HasRequiredFields reports whether name and category are both present.
func (b BusinessRecord) HasRequiredFields() bool {
	return strings.TrimSpace(b.Name) != "" && strings.TrimSpace(b.Category) != ""
}

// IDs extracts record ids in order.
func IDs(records []BusinessRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
