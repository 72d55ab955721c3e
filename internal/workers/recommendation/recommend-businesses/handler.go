package recommendbusinesses

import (
	"context"
	"strings"

	"wenwen-recommender/internal/common/metrics"
	"wenwen-recommender/internal/models"
)

const (
	TaskType = "recommend-businesses"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// BusinessFinder is the read side of the data access port.
type BusinessFinder interface {
	FindBusinessesByCategory(ctx context.Context, category string, limit int) ([]models.BusinessRecord, error)
	FindBusinessByName(ctx context.Context, name string) ([]models.BusinessRecord, error)
	FindPartnerBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error)
	FindTopBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error)
}

type Engine struct {
	config *Config
	finder BusinessFinder
	logger Logger
}

func NewEngine(config *Config, finder BusinessFinder, log Logger) *Engine {
	return &Engine{
		config: config,
		finder: finder,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Recommend returns at most MaxResults records. It never fails; retrieval
// errors yield an empty set.
func (e *Engine) Recommend(ctx context.Context, intent models.Intent, isFollowUp bool) []models.BusinessRecord {
	return e.Execute(ctx, intent, isFollowUp).Records
}

// Execute is Recommend with the strategy trace kept.
func (e *Engine) Execute(ctx context.Context, intent models.Intent, isFollowUp bool) Result {
	strategy := StrategyFor(intent, isFollowUp, e.config.PrioritizePartnerStores)
	result := Result{Strategy: strategy.Retrieval.String()}

	records, err := e.retrieve(ctx, strategy)
	if err != nil {
		result.Degraded = true
		e.logger.Warn("primary retrieval failed", map[string]interface{}{
			"intent":    string(intent),
			"retrieval": strategy.Retrieval.String(),
			"error":     err.Error(),
		})
		records = nil
	}

	if len(records) == 0 && e.config.EnableFallback {
		fallback := FallbackFor(intent)
		metrics.FallbackInvoked.WithLabelValues(string(intent)).Inc()
		result.FallbackUsed = true
		result.Strategy = result.Strategy + "+" + fallback.Retrieval.String()

		records, err = e.retrieveFallback(ctx, intent, fallback)
		if err != nil {
			result.Degraded = true
			e.logger.Warn("fallback retrieval failed", map[string]interface{}{
				"intent":    string(intent),
				"retrieval": fallback.Retrieval.String(),
				"error":     err.Error(),
			})
			records = nil
		}
		strategy = fallback
	}

	records = Sorted(records, comparatorFor(strategy.Order))
	if limit := e.limitFor(strategy); len(records) > limit {
		records = records[:limit]
	}
	if records == nil {
		records = []models.BusinessRecord{}
	}
	result.Records = records

	metrics.RecommendationsReturned.Observe(float64(len(records)))
	e.logger.Info("recommendations selected", map[string]interface{}{
		"intent":       string(intent),
		"isFollowUp":   isFollowUp,
		"strategy":     result.Strategy,
		"fallbackUsed": result.FallbackUsed,
		"count":        len(records),
		"ids":          models.IDs(records),
	})
	return result
}

// StrategyFor is the primary retrieval table.
func StrategyFor(intent models.Intent, isFollowUp, partnerFirst bool) Strategy {
	switch intent {
	case models.IntentFood:
		order := OrderRatingOnly
		if partnerFirst {
			order = OrderPartnerFirst
		}
		return Strategy{Retrieval: RetrieveByCategory, Category: models.CategoryFoodDining, Order: order}
	case models.IntentEnglishLearning:
		if !isFollowUp {
			return Strategy{Retrieval: RetrieveFlagship, Order: OrderNone}
		}
		return Strategy{Retrieval: RetrieveByCategory, Category: models.CategoryEducationTraining, Order: OrderPartnerFirst}
	case models.IntentParking:
		return Strategy{Retrieval: RetrieveByCategory, Category: models.CategoryParking, Order: OrderRatingOnly}
	case models.IntentShopping:
		return Strategy{Retrieval: RetrieveByCategory, Category: models.CategoryShoppingRetail, Order: OrderPartnerFirst}
	case models.IntentBeauty:
		return Strategy{Retrieval: RetrieveByCategory, Category: models.CategoryBeautyWellness, Order: OrderPartnerFirst}
	case models.IntentMedical:
		return Strategy{Retrieval: RetrieveByCategory, Category: models.CategoryMedicalHealth, Order: OrderRatingOnly}
	case models.IntentGeneral:
		return Strategy{Retrieval: RetrieveTop, Order: OrderPartnerFirst}
	default:
		return Strategy{Retrieval: RetrieveTop, Order: OrderPartnerFirst}
	}
}

// FallbackFor is the single secondary retrieval used when the primary
// strategy returned nothing.
func FallbackFor(intent models.Intent) Strategy {
	switch intent {
	case models.IntentEnglishLearning:
		return Strategy{Retrieval: RetrieveFlagship, Order: OrderNone}
	case models.IntentFood:
		return Strategy{Retrieval: RetrieveTopFiltered, Order: OrderPartnerFirst}
	case models.IntentParking:
		return Strategy{Retrieval: RetrieveTopFiltered, Order: OrderRatingOnly}
	case models.IntentShopping, models.IntentBeauty, models.IntentMedical, models.IntentGeneral:
		return Strategy{Retrieval: RetrievePartners, Order: OrderPartnerFirst}
	default:
		return Strategy{Retrieval: RetrievePartners, Order: OrderPartnerFirst}
	}
}

func (e *Engine) retrieve(ctx context.Context, s Strategy) ([]models.BusinessRecord, error) {
	switch s.Retrieval {
	case RetrieveByCategory:
		return e.finder.FindBusinessesByCategory(ctx, string(s.Category), e.config.FetchLimit)
	case RetrieveFlagship:
		return e.flagship(ctx)
	case RetrieveTop, RetrieveTopFiltered:
		return e.finder.FindTopBusinesses(ctx, e.config.FetchLimit)
	case RetrievePartners:
		return e.finder.FindPartnerBusinesses(ctx, e.config.FetchLimit)
	default:
		return nil, nil
	}
}

func (e *Engine) retrieveFallback(ctx context.Context, intent models.Intent, s Strategy) ([]models.BusinessRecord, error) {
	records, err := e.retrieve(ctx, s)
	if err != nil || s.Retrieval != RetrieveTopFiltered {
		return records, err
	}
	filtered := make([]models.BusinessRecord, 0, len(records))
	for _, r := range records {
		if e.config.Signals.Suggests(intent, r) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// flagship keeps only an exact name match so a fuzzy backend cannot widen
// first-contact education answers.
func (e *Engine) flagship(ctx context.Context) ([]models.BusinessRecord, error) {
	name := strings.TrimSpace(e.config.FlagshipBusinessName)
	if name == "" {
		return nil, nil
	}
	records, err := e.finder.FindBusinessByName(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if strings.TrimSpace(r.Name) == name {
			return []models.BusinessRecord{r}, nil
		}
	}
	return nil, nil
}

func (e *Engine) limitFor(s Strategy) int {
	limit := e.config.MaxResults
	if limit <= 0 {
		limit = 5
	}
	if s.Retrieval == RetrieveFlagship {
		return 1
	}
	return limit
}

// Inspect flags, without mutating records, whether every category fits the
// intent and whether any record lacks name or category.
func Inspect(records []models.BusinessRecord, intent models.Intent, signals models.CategorySignals) Inspection {
	ins := Inspection{
		CategoriesCompatible: true,
		Mismatched:           []string{},
		Incomplete:           []string{},
	}
	for _, r := range records {
		if !r.HasRequiredFields() {
			ins.MissingRequired = true
			ins.Incomplete = append(ins.Incomplete, r.ID)
			continue
		}
		if !signals.CategoryMatches(intent, r.Category) {
			ins.CategoriesCompatible = false
			ins.Mismatched = append(ins.Mismatched, r.ID)
		}
	}
	return ins
}
