package businessstore

import (
	"context"
	stderrors "errors"

	"wenwen-recommender/internal/common/errors"
	"wenwen-recommender/internal/common/resilience"
	"wenwen-recommender/internal/models"
)

// Resilient routes every Port call through resilience.Do. Reads retry on
// transient failures; writes run exactly once.
type Resilient struct {
	next   Port
	policy resilience.Policy
}

func NewResilient(next Port, policy resilience.Policy) *Resilient {
	return &Resilient{next: next, policy: policy}
}

func read[T any](ctx context.Context, r *Resilient, op models.Operation, fn func(context.Context) (T, error)) (T, error) {
	v, err := resilience.Do(ctx, r.policy.ReadOnly(), string(op), fn, resilience.TransientOnly)
	return v, dataStoreError(op, err)
}

func write[T any](ctx context.Context, r *Resilient, op models.Operation, fn func(context.Context) (T, error)) (T, error) {
	v, err := resilience.Do(ctx, r.policy.WriteOnce(), string(op), fn, resilience.Never)
	return v, dataStoreError(op, err)
}

// dataStoreError narrows the wrapper's generic codes to data store codes.
func dataStoreError(op models.Operation, err error) error {
	if err == nil {
		return nil
	}
	var stdErr *errors.StandardError
	if !stderrors.As(err, &stdErr) {
		return errors.NewDataStoreUnavailableError(string(op), err)
	}
	switch stdErr.Code {
	case errors.ErrCodeTimeout:
		return errors.NewDataStoreTimeoutError(string(op)).WithMetadata("attempts", stdErr.Metadata["attempts"])
	case errors.ErrCodeExternalService:
		return errors.NewDataStoreUnavailableError(string(op), err).WithMetadata("attempts", stdErr.Metadata["attempts"])
	default:
		return err
	}
}

func (r *Resilient) FindBusinessesByCategory(ctx context.Context, category string, limit int) ([]models.BusinessRecord, error) {
	return read(ctx, r, models.OpFindBusinessesByCategory, func(ctx context.Context) ([]models.BusinessRecord, error) {
		return r.next.FindBusinessesByCategory(ctx, category, limit)
	})
}

func (r *Resilient) FindBusinessByName(ctx context.Context, name string) ([]models.BusinessRecord, error) {
	return read(ctx, r, models.OpFindBusinessByName, func(ctx context.Context) ([]models.BusinessRecord, error) {
		return r.next.FindBusinessByName(ctx, name)
	})
}

func (r *Resilient) FindPartnerBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error) {
	return read(ctx, r, models.OpFindPartnerBusinesses, func(ctx context.Context) ([]models.BusinessRecord, error) {
		return r.next.FindPartnerBusinesses(ctx, limit)
	})
}

func (r *Resilient) FindTopBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error) {
	return read(ctx, r, models.OpFindTopBusinesses, func(ctx context.Context) ([]models.BusinessRecord, error) {
		return r.next.FindTopBusinesses(ctx, limit)
	})
}

func (r *Resilient) FindUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return read(ctx, r, models.OpFindUserByExternalID, func(ctx context.Context) (*models.User, error) {
		return r.next.FindUserByExternalID(ctx, externalID)
	})
}

func (r *Resilient) CreateUser(ctx context.Context, externalID, displayName string, metadata map[string]interface{}) (*models.User, error) {
	return write(ctx, r, models.OpCreateUser, func(ctx context.Context) (*models.User, error) {
		return r.next.CreateUser(ctx, externalID, displayName, metadata)
	})
}

func (r *Resilient) FindSession(ctx context.Context, id string) (*models.Session, error) {
	return read(ctx, r, models.OpFindSession, func(ctx context.Context) (*models.Session, error) {
		return r.next.FindSession(ctx, id)
	})
}

func (r *Resilient) CreateSession(ctx context.Context, id, userID string, metadata map[string]interface{}) (*models.Session, error) {
	return write(ctx, r, models.OpCreateSession, func(ctx context.Context) (*models.Session, error) {
		return r.next.CreateSession(ctx, id, userID, metadata)
	})
}

func (r *Resilient) UpdateSessionStats(ctx context.Context, id string, messageCount int) error {
	_, err := write(ctx, r, models.OpUpdateSessionStats, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.UpdateSessionStats(ctx, id, messageCount)
	})
	return err
}

func (r *Resilient) AppendMessage(ctx context.Context, msg models.Message) error {
	_, err := write(ctx, r, models.OpAppendMessage, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.AppendMessage(ctx, msg)
	})
	return err
}
