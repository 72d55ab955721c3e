package businessstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wenwen-recommender/internal/models"
)

const (
	TaskType = "business-store"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// PostgresStore implements Port on database/sql with the lib/pq driver.
type PostgresStore struct {
	db     *sql.DB
	logger Logger
}

func NewPostgresStore(db *sql.DB, log Logger) *PostgresStore {
	return &PostgresStore{
		db: db,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
			"backend":  "postgres",
		}),
	}
}

func (s *PostgresStore) FindBusinessesByCategory(ctx context.Context, category string, limit int) ([]models.BusinessRecord, error) {
	return s.queryBusinesses(ctx, models.OpFindBusinessesByCategory, category, limit)
}

func (s *PostgresStore) FindBusinessByName(ctx context.Context, name string) ([]models.BusinessRecord, error) {
	return s.queryBusinesses(ctx, models.OpFindBusinessByName, name)
}

func (s *PostgresStore) FindPartnerBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error) {
	return s.queryBusinesses(ctx, models.OpFindPartnerBusinesses, limit)
}

func (s *PostgresStore) FindTopBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error) {
	return s.queryBusinesses(ctx, models.OpFindTopBusinesses, limit)
}

func (s *PostgresStore) queryBusinesses(ctx context.Context, op models.Operation, args ...interface{}) ([]models.BusinessRecord, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, Statements[op], args...)
	if err != nil {
		return nil, queryError(op, err)
	}
	defer rows.Close()

	records := []models.BusinessRecord{}
	for rows.Next() {
		var (
			r                           models.BusinessRecord
			address, phone, hours, blob sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Category, &address, &phone, &hours, &r.IsPartner, &blob, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, queryError(op, err)
		}
		r.Address = address.String
		r.Phone = phone.String
		r.BusinessHours = hours.String
		r.Features = blob.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(op, err)
	}

	s.logger.Info("businesses queried", map[string]interface{}{
		"operation":  string(op),
		"rowCount":   len(records),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return records, nil
}

func (s *PostgresStore) FindUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	op := models.OpFindUserByExternalID
	var (
		u           models.User
		displayName sql.NullString
		meta        []byte
	)
	err := s.db.QueryRowContext(ctx, Statements[op], externalID).Scan(&u.ID, &u.ExternalID, &displayName, &meta, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError(op, err)
	}
	u.DisplayName = displayName.String
	u.Metadata = decodeMetadata(meta)
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, externalID, displayName string, metadata map[string]interface{}) (*models.User, error) {
	op := models.OpCreateUser
	meta, err := encodeMetadata(metadata)
	if err != nil {
		return nil, queryError(op, err)
	}
	u := models.User{
		ID:          uuid.NewString(),
		ExternalID:  externalID,
		DisplayName: displayName,
		Metadata:    metadata,
	}
	if err := s.db.QueryRowContext(ctx, Statements[op], u.ID, externalID, displayName, meta).Scan(&u.ID, &u.CreatedAt); err != nil {
		return nil, queryError(op, err)
	}
	return &u, nil
}

func (s *PostgresStore) FindSession(ctx context.Context, id string) (*models.Session, error) {
	op := models.OpFindSession
	var (
		sess models.Session
		meta []byte
	)
	err := s.db.QueryRowContext(ctx, Statements[op], id).Scan(&sess.ID, &sess.UserID, &sess.MessageCount, &meta, &sess.CreatedAt, &sess.LastActiveAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError(op, err)
	}
	sess.Metadata = decodeMetadata(meta)
	return &sess, nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, id, userID string, metadata map[string]interface{}) (*models.Session, error) {
	op := models.OpCreateSession
	meta, err := encodeMetadata(metadata)
	if err != nil {
		return nil, queryError(op, err)
	}
	sess := models.Session{Metadata: metadata}
	err = s.db.QueryRowContext(ctx, Statements[op], id, userID, meta).
		Scan(&sess.ID, &sess.UserID, &sess.MessageCount, &sess.CreatedAt, &sess.LastActiveAt)
	if err != nil {
		return nil, queryError(op, err)
	}
	return &sess, nil
}

func (s *PostgresStore) UpdateSessionStats(ctx context.Context, id string, messageCount int) error {
	op := models.OpUpdateSessionStats
	res, err := s.db.ExecContext(ctx, Statements[op], id, messageCount)
	if err != nil {
		return queryError(op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s: session %s", ErrNotFound, op, id)
	}
	return nil
}

func (s *PostgresStore) AppendMessage(ctx context.Context, msg models.Message) error {
	op := models.OpAppendMessage
	meta, err := json.Marshal(msg.Metadata)
	if err != nil {
		return queryError(op, err)
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, Statements[op],
		msg.ID, msg.SessionID, msg.UserID, string(msg.Role), msg.Content, string(meta), msg.CreatedAt)
	if err != nil {
		return queryError(op, err)
	}
	return nil
}

func queryError(op models.Operation, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrQueryExecutionFailed, op, err)
}

func encodeMetadata(m map[string]interface{}) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeMetadata tolerates NULL and malformed JSON by returning an empty map.
func decodeMetadata(raw []byte) map[string]interface{} {
	out := map[string]interface{}{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}
