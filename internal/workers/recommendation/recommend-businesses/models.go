// internal/workers/recommendation/recommend-businesses/models.go
package recommendbusinesses

import "wenwen-recommender/internal/models"

// Retrieval is the data store call a strategy issues.
type Retrieval int

const (
	RetrieveByCategory Retrieval = iota
	RetrieveFlagship
	RetrieveTop
	RetrievePartners
	RetrieveTopFiltered
)

func (r Retrieval) String() string {
	switch r {
	case RetrieveByCategory:
		return "category"
	case RetrieveFlagship:
		return "flagship"
	case RetrieveTop:
		return "top"
	case RetrievePartners:
		return "partners"
	case RetrieveTopFiltered:
		return "top_filtered"
	default:
		return "unknown"
	}
}

// Strategy is one row of the per-intent retrieval table.
type Strategy struct {
	Retrieval Retrieval
	Category  models.Category
	Order     Ordering
}

// Ordering names a comparator so it can be logged and asserted.
type Ordering string

const (
	OrderPartnerFirst Ordering = "partner_first"
	OrderRatingOnly   Ordering = "rating_only"
	OrderNone         Ordering = "none"
)

// Result is a recommendation set plus how it was produced.
type Result struct {
	Records      []models.BusinessRecord `json:"records"`
	Strategy     string                  `json:"strategy"`
	FallbackUsed bool                    `json:"fallbackUsed"`
	Degraded     bool                    `json:"degraded"`
}

// Inspection is the read-only compatibility report for a record set.
type Inspection struct {
	CategoriesCompatible bool     `json:"categoriesCompatible"`
	MissingRequired      bool     `json:"missingRequired"`
	Mismatched           []string `json:"mismatched"`
	Incomplete           []string `json:"incomplete"`
}
