// internal/workers/data-access/business-store/resilient_test.go
package businessstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wenwen-recommender/internal/common/errors"
	"wenwen-recommender/internal/common/resilience"
	"wenwen-recommender/internal/models"
)

// flakyPort fails the first `failures` calls of every method with err.
type flakyPort struct {
	*fakeFinder
	failures int32
	calls    int32
	err      error
	block    bool
}

func (p *flakyPort) attempt(ctx context.Context) error {
	n := atomic.AddInt32(&p.calls, 1)
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if n <= p.failures {
		return p.err
	}
	return nil
}

func (p *flakyPort) FindTopBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error) {
	if err := p.attempt(ctx); err != nil {
		return nil, err
	}
	return p.fakeFinder.FindTopBusinesses(ctx, limit)
}

func (p *flakyPort) FindUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	if err := p.attempt(ctx); err != nil {
		return nil, err
	}
	return &models.User{ID: "u1", ExternalID: externalID}, nil
}

func (p *flakyPort) CreateUser(ctx context.Context, externalID, _ string, _ map[string]interface{}) (*models.User, error) {
	if err := p.attempt(ctx); err != nil {
		return nil, err
	}
	return &models.User{ID: "u1", ExternalID: externalID}, nil
}

func (p *flakyPort) FindSession(ctx context.Context, id string) (*models.Session, error) {
	if err := p.attempt(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func (p *flakyPort) CreateSession(ctx context.Context, id, userID string, _ map[string]interface{}) (*models.Session, error) {
	if err := p.attempt(ctx); err != nil {
		return nil, err
	}
	return &models.Session{ID: id, UserID: userID}, nil
}

func (p *flakyPort) UpdateSessionStats(ctx context.Context, _ string, _ int) error {
	return p.attempt(ctx)
}

func (p *flakyPort) AppendMessage(ctx context.Context, _ models.Message) error {
	return p.attempt(ctx)
}

func fastPolicy() resilience.Policy {
	return resilience.Policy{Timeout: 50 * time.Millisecond, MaxRetries: 2, Backoff: time.Millisecond}
}

func TestResilient_ReadRetriesTransientFailures(t *testing.T) {
	port := &flakyPort{
		fakeFinder: newFakeFinder(models.BusinessRecord{ID: "b1", Name: "x", Category: "y"}),
		failures:   2,
		err:        stderrors.New("dial tcp: connection refused"),
	}
	r := NewResilient(port, fastPolicy())

	got, err := r.FindTopBusinesses(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&port.calls))
}

func TestResilient_ReadExhaustionIsDataStoreUnavailable(t *testing.T) {
	port := &flakyPort{fakeFinder: newFakeFinder(), failures: 10, err: stderrors.New("connection reset by peer")}
	r := NewResilient(port, fastPolicy())

	_, err := r.FindUserByExternalID(context.Background(), "line:U1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDataStoreUnavailable, errors.CodeOf(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&port.calls))
}

func TestResilient_TimeoutIsDataStoreTimeout(t *testing.T) {
	port := &flakyPort{fakeFinder: newFakeFinder(), block: true}
	policy := fastPolicy()
	policy.MaxRetries = 0
	r := NewResilient(port, policy)

	_, err := r.FindSession(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDataStoreTimeout, errors.CodeOf(err))
}

func TestResilient_NonTransientReadNotRetried(t *testing.T) {
	port := &flakyPort{fakeFinder: newFakeFinder(), failures: 10, err: stderrors.New("syntax error at or near")}
	r := NewResilient(port, fastPolicy())

	_, err := r.FindTopBusinesses(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&port.calls))
}

func TestResilient_WritesRunOnce(t *testing.T) {
	writes := []struct {
		name string
		call func(*Resilient) error
	}{
		{"create user", func(r *Resilient) error {
			_, err := r.CreateUser(context.Background(), "anonymous:s1", "", nil)
			return err
		}},
		{"create session", func(r *Resilient) error {
			_, err := r.CreateSession(context.Background(), "s1", "u1", nil)
			return err
		}},
		{"update stats", func(r *Resilient) error {
			return r.UpdateSessionStats(context.Background(), "s1", 2)
		}},
		{"append message", func(r *Resilient) error {
			return r.AppendMessage(context.Background(), models.Message{SessionID: "s1"})
		}},
	}

	for _, tt := range writes {
		t.Run(tt.name, func(t *testing.T) {
			port := &flakyPort{fakeFinder: newFakeFinder(), failures: 1, err: stderrors.New("connection refused")}
			r := NewResilient(port, fastPolicy())

			err := tt.call(r)
			require.Error(t, err)
			assert.Equal(t, int32(1), atomic.LoadInt32(&port.calls))
			assert.Equal(t, errors.ErrCodeDataStoreUnavailable, errors.CodeOf(err))
		})
	}
}

func TestResilient_MissingRowPassesThrough(t *testing.T) {
	port := &flakyPort{fakeFinder: newFakeFinder()}
	r := NewResilient(port, fastPolicy())

	sess, err := r.FindSession(context.Background(), "unknown")
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestResilient_NotFoundStaysMatchable(t *testing.T) {
	port := &flakyPort{fakeFinder: newFakeFinder(), failures: 1, err: fmt.Errorf("%w: update_session_stats", ErrNotFound)}
	r := NewResilient(port, fastPolicy())

	err := r.UpdateSessionStats(context.Background(), "gone", 2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&port.calls))
}

func TestWithBusinessSource_RoutesReads(t *testing.T) {
	base := &flakyPort{fakeFinder: newFakeFinder(models.BusinessRecord{ID: "from-base"})}
	search := newFakeFinder(models.BusinessRecord{ID: "from-search"})
	port := WithBusinessSource(base, search)

	got, err := port.FindTopBusinesses(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "from-search", got[0].ID)

	_, err = port.FindBusinessesByCategory(context.Background(), "教育學習", 5)
	require.NoError(t, err)
	_, err = port.FindBusinessByName(context.Background(), "肯塔基美語")
	require.NoError(t, err)
	_, err = port.FindPartnerBusinesses(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, search.count("category"))
	assert.Equal(t, 1, search.count("name"))
	assert.Equal(t, 1, search.count("partners"))

	u, err := port.FindUserByExternalID(context.Background(), "line:U1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, 0, base.count("top"))
}
