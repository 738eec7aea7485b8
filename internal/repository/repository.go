// Package repository stores join applications in PostgreSQL.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool settings for the intake path. A submission holds a connection for two
// short statements, so a small pool serves the rate-limited traffic.
const (
	applicationName   = "intake"
	maxConns          = 10
	minConns          = 2
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = 30 * time.Second
	// statementTimeout bounds the duplicate lookup and the insert.
	statementTimeout  = "5s"
)

// Repository provides access to the join_applications table.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a Repository with a connection pool and verifies connectivity.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := poolConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// poolConfig parses databaseURL and applies the intake pool settings.
// Runtime parameters already present in the URL are kept.
func poolConfig(databaseURL string) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = maxConns
	config.MinConns = minConns
	config.MaxConnIdleTime = maxConnIdleTime
	config.HealthCheckPeriod = healthCheckPeriod

	params := config.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = applicationName
	}
	if _, ok := params["statement_timeout"]; !ok {
		params["statement_timeout"] = statementTimeout
	}

	return config, nil
}

// Ping checks database connectivity. Used by the readiness check.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying pool for test helpers that reset the schema.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
