package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"wenwen-recommender/internal/common/config"

	_ "github.com/lib/pq"
)

// ReadinessTimeout bounds a single /ready probe against any backing store.
const ReadinessTimeout = 2 * time.Second

// RequiredTables are the relations the business store reads and writes.
var RequiredTables = []string{"businesses", "users", "sessions", "messages"}

// PostgresClient owns the pooled connection used by the business store.
type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	// chat turns are short; idle connections are recycled quickly
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)

	return &PostgresClient{DB: db}, nil
}

// NewPostgresWithDB wraps an already opened handle.
func NewPostgresWithDB(db *sql.DB) *PostgresClient {
	return &PostgresClient{DB: db}
}

// Ping is the /ready probe for the business store.
func (c *PostgresClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ReadinessTimeout)
	defer cancel()

	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

// CheckSchema reports every required table missing from the search path.
func (c *PostgresClient) CheckSchema(ctx context.Context) error {
	var missing []string
	for _, table := range RequiredTables {
		var found sql.NullString
		if err := c.DB.QueryRowContext(ctx, `SELECT to_regclass($1)::text`, table).Scan(&found); err != nil {
			return fmt.Errorf("postgres schema check failed: %w", err)
		}
		if !found.Valid {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("postgres schema incomplete: missing tables %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
