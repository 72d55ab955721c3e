package recommendbusinesses

import (
	"sort"

	"wenwen-recommender/internal/models"
)

// Comparator reports whether a sorts before b.
type Comparator func(a, b models.BusinessRecord) bool

// PartnerFirst puts partner-tier records first, then rating descending.
func PartnerFirst(a, b models.BusinessRecord) bool {
	if a.IsPartner != b.IsPartner {
		return a.IsPartner
	}
	return a.RatingOrZero() > b.RatingOrZero()
}

// RatingOnly orders by rating descending and ignores the partner flag.
func RatingOnly(a, b models.BusinessRecord) bool {
	return a.RatingOrZero() > b.RatingOrZero()
}

func comparatorFor(o Ordering) Comparator {
	switch o {
	case OrderPartnerFirst:
		return PartnerFirst
	case OrderRatingOnly:
		return RatingOnly
	case OrderNone:
		return nil
	default:
		return nil
	}
}

// Sorted returns a stably sorted copy. The input is left untouched.
func Sorted(records []models.BusinessRecord, less Comparator) []models.BusinessRecord {
	out := make([]models.BusinessRecord, len(records))
	copy(out, records)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}
