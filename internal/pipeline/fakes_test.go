// internal/pipeline/fakes_test.go
package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"wenwen-recommender/internal/common/logger"
	"wenwen-recommender/internal/models"
	notifyfabrication "wenwen-recommender/internal/workers/infrastructure/notify-fabrication"
	recommendbusinesses "wenwen-recommender/internal/workers/recommendation/recommend-businesses"
)

// memPort is an in-memory data access port.
type memPort struct {
	mu         sync.Mutex
	businesses []models.BusinessRecord
	users      map[string]*models.User
	sessions   map[string]*models.Session
	messages   []models.Message
	stats      map[string]int
	userErr    error
	readErr    error
	nilCreates bool
}

func newMemPort(businesses ...models.BusinessRecord) *memPort {
	return &memPort{
		businesses: businesses,
		users:      map[string]*models.User{},
		sessions:   map[string]*models.Session{},
		stats:      map[string]int{},
	}
}

func (p *memPort) filter(keep func(models.BusinessRecord) bool, limit int) ([]models.BusinessRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return nil, p.readErr
	}
	out := []models.BusinessRecord{}
	for _, b := range p.businesses {
		if keep(b) && len(out) < limit {
			out = append(out, b)
		}
	}
	return out, nil
}

func (p *memPort) FindBusinessesByCategory(_ context.Context, category string, limit int) ([]models.BusinessRecord, error) {
	return p.filter(func(b models.BusinessRecord) bool {
		return strings.EqualFold(b.Category, category)
	}, limit)
}

func (p *memPort) FindBusinessByName(_ context.Context, name string) ([]models.BusinessRecord, error) {
	return p.filter(func(b models.BusinessRecord) bool { return b.Name == name }, 1)
}

func (p *memPort) FindPartnerBusinesses(_ context.Context, limit int) ([]models.BusinessRecord, error) {
	return p.filter(func(b models.BusinessRecord) bool { return b.IsPartner }, limit)
}

func (p *memPort) FindTopBusinesses(_ context.Context, limit int) ([]models.BusinessRecord, error) {
	return p.filter(func(models.BusinessRecord) bool { return true }, limit)
}

func (p *memPort) FindUserByExternalID(_ context.Context, externalID string) (*models.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.userErr != nil {
		return nil, p.userErr
	}
	return p.users[externalID], nil
}

func (p *memPort) CreateUser(_ context.Context, externalID, displayName string, metadata map[string]interface{}) (*models.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.nilCreates {
		return nil, nil
	}
	u := &models.User{ID: "user-" + externalID, ExternalID: externalID, DisplayName: displayName, Metadata: metadata}
	p.users[externalID] = u
	return u, nil
}

func (p *memPort) FindSession(_ context.Context, id string) (*models.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessions[id], nil
}

func (p *memPort) CreateSession(_ context.Context, id, userID string, metadata map[string]interface{}) (*models.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := &models.Session{ID: id, UserID: userID, Metadata: metadata}
	p.sessions[id] = s
	return s, nil
}

func (p *memPort) UpdateSessionStats(_ context.Context, id string, messageCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats[id] = messageCount
	if s, ok := p.sessions[id]; ok {
		s.MessageCount = messageCount
	}
	return nil
}

func (p *memPort) AppendMessage(_ context.Context, msg models.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *memPort) messageCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

// fakeGenerator returns reply or err and records the last prompt.
type fakeGenerator struct {
	mu         sync.Mutex
	reply      string
	err        error
	panics     bool
	lastSystem string
	lastUser   string
}

func (g *fakeGenerator) Generate(_ context.Context, system, userText string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSystem = system
	g.lastUser = userText
	if g.panics {
		panic("model client exploded")
	}
	return g.reply, g.err
}

type fakeAlerter struct {
	mu     sync.Mutex
	alerts []notifyfabrication.Alert
	panics bool
}

func (a *fakeAlerter) Notify(_ context.Context, alert notifyfabrication.Alert) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, alert)
	if a.panics {
		panic("alert channel exploded")
	}
	return nil
}

func (a *fakeAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alerts)
}

func flagship() models.BusinessRecord {
	return models.BusinessRecord{
		ID:        "b-flagship",
		Name:      "肯塔基美語",
		Category:  string(models.CategoryEducationTraining),
		Address:   "台北市文山區木柵路一段100號",
		Phone:     "02-2234-5678",
		IsPartner: true,
		Features:  `{"rating":4.8}`,
	}
}

func noodleShop() models.BusinessRecord {
	return models.BusinessRecord{
		ID:       "b-noodle",
		Name:     "阿嬤麵線",
		Category: string(models.CategoryFoodDining),
		Address:  "台北市文山區指南路二段50號",
		Features: `{"rating":4.5}`,
	}
}

// nilMapRecommender fails the way a buggy retrieval stage would.
type nilMapRecommender struct{}

func (nilMapRecommender) Execute(context.Context, models.Intent, bool) recommendbusinesses.Result {
	var seen map[string]bool
	seen["boom"] = true
	return recommendbusinesses.Result{}
}

type fixture struct {
	svc       *Service
	asm       *Assembly
	port      *memPort
	generator *fakeGenerator
	alerter   *fakeAlerter
}

func newFixture(t *testing.T, reply string) *fixture {
	t.Helper()
	f := &fixture{
		port:      newMemPort(flagship(), noodleShop()),
		generator: &fakeGenerator{reply: reply},
		alerter:   &fakeAlerter{},
	}
	config := LoadConfig()
	config.MaxMessageRunes = 200

	asm, err := Assemble(config, Options{
		Port:      f.port,
		Generator: f.generator,
		Alerter:   f.alerter,
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	f.asm = asm
	f.svc = asm.Service
	return f
}
