// internal/workers/data-access/business-store/models.go
package businessstore

import (
	"context"
	"errors"

	"wenwen-recommender/internal/models"
)

var (
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrSearchFailed         = errors.New("SEARCH_FAILED")
	// ErrNotFound marks a write that matched no row. Reads report absence as nil.
	ErrNotFound = errors.New("NOT_FOUND")
)

// BusinessFinder is the read side of the port that a search backend or a
// cache can serve.
type BusinessFinder interface {
	FindBusinessesByCategory(ctx context.Context, category string, limit int) ([]models.BusinessRecord, error)
	FindBusinessByName(ctx context.Context, name string) ([]models.BusinessRecord, error)
	FindPartnerBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error)
	FindTopBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error)
}

// Port is the full data access boundary consumed by the pipeline.
// FindUserByExternalID and FindSession return nil, nil for a missing row.
type Port interface {
	BusinessFinder
	FindUserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	CreateUser(ctx context.Context, externalID, displayName string, metadata map[string]interface{}) (*models.User, error)
	FindSession(ctx context.Context, id string) (*models.Session, error)
	CreateSession(ctx context.Context, id, userID string, metadata map[string]interface{}) (*models.Session, error)
	UpdateSessionStats(ctx context.Context, id string, messageCount int) error
	AppendMessage(ctx context.Context, msg models.Message) error
}

// WithBusinessSource serves business reads from finder and everything else
// from base.
func WithBusinessSource(base Port, finder BusinessFinder) Port {
	return &composite{Port: base, finder: finder}
}

type composite struct {
	Port
	finder BusinessFinder
}

func (c *composite) FindBusinessesByCategory(ctx context.Context, category string, limit int) ([]models.BusinessRecord, error) {
	return c.finder.FindBusinessesByCategory(ctx, category, limit)
}

func (c *composite) FindBusinessByName(ctx context.Context, name string) ([]models.BusinessRecord, error) {
	return c.finder.FindBusinessByName(ctx, name)
}

func (c *composite) FindPartnerBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error) {
	return c.finder.FindPartnerBusinesses(ctx, limit)
}

func (c *composite) FindTopBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error) {
	return c.finder.FindTopBusinesses(ctx, limit)
}
