package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
)

// Schema creates the products and stock tables used by the postgres store driver.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price       DOUBLE PRECISION NOT NULL,
	created_at  BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS stock (
	product_id TEXT PRIMARY KEY,
	count      INTEGER NOT NULL DEFAULT 0
);`

// DBClient holds the PostgreSQL database connection
type DBClient struct {
	db *sql.DB
}

// NewPostgresClient opens and pings a PostgreSQL connection for dsn
func NewPostgresClient(ctx context.Context, dsn string) (*DBClient, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// One Lambda instance handles one event at a time; keep the pool small.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("connected to PostgreSQL")
	return &DBClient{db: db}, nil
}

// NewFromDB wraps an existing handle, e.g. one from sqlmock.
func NewFromDB(db *sql.DB) *DBClient {
	return &DBClient{db: db}
}

// EnsureSchema creates the catalog tables when they are missing
func (c *DBClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *DBClient) Close() {
	if c.db != nil {
		c.db.Close()
		logger.Info("PostgreSQL connection closed")
	}
}

// GetDB returns the underlying *sql.DB instance
func (c *DBClient) GetDB() *sql.DB {
	return c.db
}
