// internal/workers/recommendation/recommend-businesses/handler_test.go
package recommendbusinesses

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wenwen-recommender/internal/models"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t, fields: make(map[string]interface{})}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return &TestLogger{t: l.t, fields: l.mergeFields(fields)}
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	allFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		allFields[k] = v
	}
	for k, v := range fields {
		allFields[k] = v
	}
	return allFields
}

type BenchmarkLogger struct{}

func (b *BenchmarkLogger) Info(msg string, fields map[string]interface{})  {}
func (b *BenchmarkLogger) Warn(msg string, fields map[string]interface{})  {}
func (b *BenchmarkLogger) Error(msg string, fields map[string]interface{}) {}
func (b *BenchmarkLogger) With(fields map[string]interface{}) Logger       { return b }

// ==========================
// Fake Finder
// ==========================

type fakeFinder struct {
	mu         sync.Mutex
	byCategory map[string][]models.BusinessRecord
	byName     map[string][]models.BusinessRecord
	partners   []models.BusinessRecord
	top        []models.BusinessRecord
	err        error
	calls      map[string]int
	lastLimit  int
}

func newFakeFinder() *fakeFinder {
	return &fakeFinder{
		byCategory: map[string][]models.BusinessRecord{},
		byName:     map[string][]models.BusinessRecord{},
		calls:      map[string]int{},
	}
}

func (f *fakeFinder) record(op string, limit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	f.lastLimit = limit
}

func (f *fakeFinder) FindBusinessesByCategory(_ context.Context, category string, limit int) ([]models.BusinessRecord, error) {
	f.record("category:"+category, limit)
	return f.byCategory[category], f.err
}

func (f *fakeFinder) FindBusinessByName(_ context.Context, name string) ([]models.BusinessRecord, error) {
	f.record("name:"+name, 0)
	return f.byName[name], f.err
}

func (f *fakeFinder) FindPartnerBusinesses(_ context.Context, limit int) ([]models.BusinessRecord, error) {
	f.record("partners", limit)
	return f.partners, f.err
}

func (f *fakeFinder) FindTopBusinesses(_ context.Context, limit int) ([]models.BusinessRecord, error) {
	f.record("top", limit)
	return f.top, f.err
}

func (f *fakeFinder) total() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// ==========================
// Test Helper Functions
// ==========================

func biz(id, name, category string, partner bool, rating string) models.BusinessRecord {
	features := ""
	if rating != "" {
		features = fmt.Sprintf(`{"rating":%s}`, rating)
	}
	return models.BusinessRecord{ID: id, Name: name, Category: category, IsPartner: partner, Features: features}
}

func createTestEngine(t *testing.T, finder BusinessFinder) *Engine {
	return NewEngine(LoadConfig(), finder, NewTestLogger(t))
}

// ==========================
// Strategy Tests
// ==========================

func TestEngine_EnglishLearningFirstTurnReturnsFlagshipOnly(t *testing.T) {
	finder := newFakeFinder()
	flagship := biz("k1", "肯塔基美語", "education & training", true, "4.9")
	finder.byName["肯塔基美語"] = []models.BusinessRecord{
		biz("k0", "肯塔基美語 分校", "education & training", true, "5"),
		flagship,
		biz("k2", "肯塔基美語", "education & training", true, "4"),
	}
	finder.byCategory["education & training"] = []models.BusinessRecord{biz("e1", "other school", "education & training", true, "5")}

	result := createTestEngine(t, finder).Execute(context.Background(), models.IntentEnglishLearning, false)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "k1", result.Records[0].ID)
	assert.Equal(t, "肯塔基美語", result.Records[0].Name)
	assert.False(t, result.FallbackUsed)
	assert.Equal(t, 0, finder.calls["category:education & training"])
}

func TestEngine_EnglishLearningFollowUpUsesCategoryPartnerFirst(t *testing.T) {
	finder := newFakeFinder()
	finder.byCategory["education & training"] = []models.BusinessRecord{
		biz("a", "A English", "education & training", false, "4.9"),
		biz("b", "B English", "education & training", true, "3.0"),
		biz("c", "C English", "education & training", true, "4.5"),
	}

	records := createTestEngine(t, finder).Recommend(context.Background(), models.IntentEnglishLearning, true)

	assert.Equal(t, []string{"c", "b", "a"}, models.IDs(records))
	assert.Equal(t, 20, finder.lastLimit)
	assert.Equal(t, 0, finder.calls["name:肯塔基美語"])
}

func TestEngine_ParkingIgnoresPartnerFlag(t *testing.T) {
	finder := newFakeFinder()
	finder.byCategory["parking"] = []models.BusinessRecord{
		biz("p1", "Lot 1", "parking", true, "3.1"),
		biz("p2", "Lot 2", "parking", false, "4.8"),
		biz("p3", "Lot 3", "parking", true, ""),
		biz("p4", "Lot 4", "parking", false, `"4.0"`),
	}

	records := createTestEngine(t, finder).Recommend(context.Background(), models.IntentParking, false)

	assert.Equal(t, []string{"p2", "p4", "p1", "p3"}, models.IDs(records))
}

func TestEngine_StrategyTable(t *testing.T) {
	tests := []struct {
		intent    models.Intent
		followUp  bool
		retrieval Retrieval
		category  models.Category
		order     Ordering
	}{
		{models.IntentFood, false, RetrieveByCategory, models.CategoryFoodDining, OrderPartnerFirst},
		{models.IntentEnglishLearning, false, RetrieveFlagship, "", OrderNone},
		{models.IntentEnglishLearning, true, RetrieveByCategory, models.CategoryEducationTraining, OrderPartnerFirst},
		{models.IntentParking, false, RetrieveByCategory, models.CategoryParking, OrderRatingOnly},
		{models.IntentShopping, true, RetrieveByCategory, models.CategoryShoppingRetail, OrderPartnerFirst},
		{models.IntentBeauty, false, RetrieveByCategory, models.CategoryBeautyWellness, OrderPartnerFirst},
		{models.IntentMedical, false, RetrieveByCategory, models.CategoryMedicalHealth, OrderRatingOnly},
		{models.IntentGeneral, false, RetrieveTop, "", OrderPartnerFirst},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/followUp=%v", tt.intent, tt.followUp), func(t *testing.T) {
			s := StrategyFor(tt.intent, tt.followUp, true)
			assert.Equal(t, tt.retrieval, s.Retrieval)
			assert.Equal(t, tt.category, s.Category)
			assert.Equal(t, tt.order, s.Order)
		})
	}

	assert.Equal(t, OrderRatingOnly, StrategyFor(models.IntentFood, false, false).Order)
}

func TestEngine_FoodWithoutPartnerPriority(t *testing.T) {
	finder := newFakeFinder()
	finder.byCategory["food & dining"] = []models.BusinessRecord{
		biz("f1", "Noodles", "food & dining", true, "3"),
		biz("f2", "Dumplings", "food & dining", false, "5"),
	}
	cfg := LoadConfig()
	cfg.PrioritizePartnerStores = false

	records := NewEngine(cfg, finder, NewTestLogger(t)).Recommend(context.Background(), models.IntentFood, false)

	assert.Equal(t, []string{"f2", "f1"}, models.IDs(records))
}

func TestEngine_NeverExceedsMaxResults(t *testing.T) {
	many := make([]models.BusinessRecord, 30)
	for i := range many {
		many[i] = biz(fmt.Sprintf("id%d", i), fmt.Sprintf("shop %d", i), "shopping & retail", i%2 == 0, fmt.Sprintf("%d", i%5))
	}

	for _, intent := range models.AllIntents() {
		for _, followUp := range []bool{false, true} {
			finder := newFakeFinder()
			for _, c := range []string{"food & dining", "education & training", "parking", "shopping & retail", "beauty & wellness", "medical & health"} {
				finder.byCategory[c] = many
			}
			finder.byName["肯塔基美語"] = []models.BusinessRecord{biz("k", "肯塔基美語", "education & training", true, "5")}
			finder.top = many
			finder.partners = many

			records := NewEngine(LoadConfig(), finder, &BenchmarkLogger{}).Recommend(context.Background(), intent, followUp)
			assert.LessOrEqual(t, len(records), 5, "intent %s followUp %v", intent, followUp)
			assert.NotEmpty(t, records)
		}
	}
}

func TestEngine_GeneralUsesTopBusinesses(t *testing.T) {
	finder := newFakeFinder()
	finder.top = []models.BusinessRecord{
		biz("g1", "Bookstore", "shopping & retail", false, "5"),
		biz("g2", "Cafe", "food & dining", true, "2"),
	}

	records := createTestEngine(t, finder).Recommend(context.Background(), models.IntentGeneral, false)

	assert.Equal(t, []string{"g2", "g1"}, models.IDs(records))
	assert.Equal(t, 1, finder.calls["top"])
}

// ==========================
// Fallback Tests
// ==========================

func TestEngine_FallbackInvokedExactlyOnce(t *testing.T) {
	tests := []struct {
		intent       models.Intent
		followUp     bool
		fallbackCall string
	}{
		{models.IntentEnglishLearning, false, "name:肯塔基美語"},
		{models.IntentEnglishLearning, true, "name:肯塔基美語"},
		{models.IntentFood, false, "top"},
		{models.IntentParking, false, "top"},
		{models.IntentShopping, false, "partners"},
		{models.IntentBeauty, false, "partners"},
		{models.IntentMedical, false, "partners"},
		{models.IntentGeneral, false, "partners"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.intent, tt.followUp), func(t *testing.T) {
			finder := newFakeFinder()

			result := createTestEngine(t, finder).Execute(context.Background(), tt.intent, tt.followUp)

			assert.Empty(t, result.Records)
			assert.NotNil(t, result.Records)
			assert.True(t, result.FallbackUsed)
			assert.Equal(t, 2, finder.total(), "one primary call and one fallback call")
			assert.GreaterOrEqual(t, finder.calls[tt.fallbackCall], 1)
		})
	}
}

func TestEngine_FallbackForEnglishReturnsFlagship(t *testing.T) {
	finder := newFakeFinder()
	finder.byName["肯塔基美語"] = []models.BusinessRecord{biz("k1", "肯塔基美語", "education & training", true, "4.9")}

	result := createTestEngine(t, finder).Execute(context.Background(), models.IntentEnglishLearning, true)

	assert.True(t, result.FallbackUsed)
	assert.Equal(t, []string{"k1"}, models.IDs(result.Records))
	assert.Equal(t, "category+flagship", result.Strategy)
}

func TestEngine_FallbackFiltersBroadList(t *testing.T) {
	finder := newFakeFinder()
	finder.top = []models.BusinessRecord{
		biz("t1", "City Mall", "shopping & retail", true, "5"),
		biz("t2", "阿婆小吃", "local", false, "4"),
		biz("t3", "Garden Restaurant", "food & dining", true, "3"),
		biz("t4", "Central Parking", "services", false, "4"),
		biz("t5", "停車塔", "parking", true, "2"),
	}

	food := createTestEngine(t, finder).Recommend(context.Background(), models.IntentFood, false)
	assert.Equal(t, []string{"t3", "t2"}, models.IDs(food))

	parking := createTestEngine(t, finder).Recommend(context.Background(), models.IntentParking, false)
	assert.Equal(t, []string{"t4", "t5"}, models.IDs(parking))
}

func TestEngine_FallbackDisabled(t *testing.T) {
	finder := newFakeFinder()
	finder.partners = []models.BusinessRecord{biz("p", "Partner", "shopping & retail", true, "5")}
	cfg := LoadConfig()
	cfg.EnableFallback = false

	result := NewEngine(cfg, finder, NewTestLogger(t)).Execute(context.Background(), models.IntentShopping, false)

	assert.Empty(t, result.Records)
	assert.False(t, result.FallbackUsed)
	assert.Equal(t, 1, finder.total())
}

func TestEngine_RetrievalErrorsDegradeToEmpty(t *testing.T) {
	finder := newFakeFinder()
	finder.err = errors.New("connection refused")
	finder.byCategory["parking"] = []models.BusinessRecord{biz("p", "Lot", "parking", false, "5")}

	result := createTestEngine(t, finder).Execute(context.Background(), models.IntentParking, false)

	assert.Empty(t, result.Records)
	assert.True(t, result.Degraded)
	assert.True(t, result.FallbackUsed)
	assert.Equal(t, 2, finder.total())
}

func TestEngine_FlagshipMissingYieldsEmpty(t *testing.T) {
	finder := newFakeFinder()
	finder.byName["肯塔基美語"] = []models.BusinessRecord{biz("x", "肯塔基美語中心", "education & training", true, "5")}

	result := createTestEngine(t, finder).Execute(context.Background(), models.IntentEnglishLearning, false)

	assert.Empty(t, result.Records)
	assert.True(t, result.FallbackUsed)
	assert.Equal(t, 2, finder.calls["name:肯塔基美語"])
}

// ==========================
// Comparator Tests
// ==========================

func TestPartnerFirst(t *testing.T) {
	in := []models.BusinessRecord{
		biz("a", "a", "c", false, "5"),
		biz("b", "b", "c", true, ""),
		biz("c", "c", "c", true, "4"),
		biz("d", "d", "c", false, ""),
		biz("e", "e", "c", true, "4"),
	}

	out := Sorted(in, PartnerFirst)

	// stable: c before e on equal rating, null rating sorts as 0
	assert.Equal(t, []string{"c", "e", "b", "a", "d"}, models.IDs(out))
	assert.Equal(t, "a", in[0].ID, "input must not be reordered")
}

func TestRatingOnly(t *testing.T) {
	in := []models.BusinessRecord{
		biz("a", "a", "c", true, "1"),
		biz("b", "b", "c", false, `"4.5"`),
		{ID: "c", Name: "c", Category: "c", Features: "{broken"},
		biz("d", "d", "c", true, "4.5"),
	}

	out := Sorted(in, RatingOnly)

	assert.Equal(t, []string{"b", "d", "a", "c"}, models.IDs(out))
}

func TestRatingOnly_NaNSortsAsMissing(t *testing.T) {
	in := []models.BusinessRecord{
		biz("a", "a", "c", false, "4"),
		biz("b", "b", "c", false, `"NaN"`),
		biz("c", "c", "c", false, "5"),
	}

	assert.Equal(t, []string{"c", "a", "b"}, models.IDs(Sorted(in, RatingOnly)))

	in[1].IsPartner = true
	assert.Equal(t, []string{"b", "c", "a"}, models.IDs(Sorted(in, PartnerFirst)))
}

func TestSorted_NilComparatorCopies(t *testing.T) {
	in := []models.BusinessRecord{biz("z", "z", "c", false, "1"), biz("a", "a", "c", true, "5")}
	out := Sorted(in, nil)
	assert.Equal(t, []string{"z", "a"}, models.IDs(out))
	out[0].ID = "changed"
	assert.Equal(t, "z", in[0].ID)
}

// ==========================
// Inspect Tests
// ==========================

func TestInspect(t *testing.T) {
	signals := LoadConfig().Signals
	records := []models.BusinessRecord{
		biz("ok", "肯塔基美語", "education & training", true, ""),
		biz("off", "Noodle Bar", "food & dining", false, ""),
		{ID: "bad", Name: "", Category: "education & training"},
	}
	snapshot := append([]models.BusinessRecord(nil), records...)

	ins := Inspect(records, models.IntentEnglishLearning, signals)

	assert.False(t, ins.CategoriesCompatible)
	assert.True(t, ins.MissingRequired)
	assert.Equal(t, []string{"off"}, ins.Mismatched)
	assert.Equal(t, []string{"bad"}, ins.Incomplete)
	assert.Equal(t, snapshot, records)

	general := Inspect(records[:2], models.IntentGeneral, signals)
	assert.True(t, general.CategoriesCompatible)
	assert.False(t, general.MissingRequired)
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkPartnerFirst(b *testing.B) {
	records := make([]models.BusinessRecord, 20)
	for i := range records {
		records[i] = biz(fmt.Sprintf("%d", i), "n", "c", i%3 == 0, fmt.Sprintf("%d.%d", i%5, i%10))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Sorted(records, PartnerFirst)
	}
}
