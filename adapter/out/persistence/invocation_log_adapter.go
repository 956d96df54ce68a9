// Package persistence implements relational adapters.
package persistence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"inboxcore/core/port/out"
)

const createInvocationsTable = `
CREATE TABLE IF NOT EXISTS engine_invocations (
	id          BIGSERIAL PRIMARY KEY,
	operation   TEXT NOT NULL,
	arguments   TEXT NOT NULL DEFAULT '',
	result_count INTEGER NOT NULL DEFAULT 0,
	duration_ms DOUBLE PRECISION NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	invoked_at  TIMESTAMPTZ NOT NULL
)`

const insertInvocation = `
INSERT INTO engine_invocations (operation, arguments, result_count, duration_ms, error, invoked_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// InvocationLogAdapter implements out.InvocationLog on Postgres.
type InvocationLogAdapter struct {
	db *sqlx.DB
}

// NewInvocationLogAdapter opens a Postgres connection via the pgx stdlib
// driver and verifies it.
func NewInvocationLogAdapter(databaseURL string) (*InvocationLogAdapter, error) {
	db, err := sqlx.Connect("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &InvocationLogAdapter{db: db}, nil
}

// EnsureSchema creates the invocations table if it does not exist.
func (a *InvocationLogAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, createInvocationsTable); err != nil {
		return fmt.Errorf("failed to create invocations table: %w", err)
	}
	return nil
}

// Record inserts one invocation row.
func (a *InvocationLogAdapter) Record(ctx context.Context, rec out.InvocationRecord) error {
	_, err := a.db.ExecContext(ctx, insertInvocation,
		rec.Operation, rec.Arguments, rec.ResultCount, rec.DurationMS, rec.Error, rec.At)
	if err != nil {
		return fmt.Errorf("failed to record invocation: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (a *InvocationLogAdapter) Close() error {
	return a.db.Close()
}

// NoopInvocationLog is used when no database is configured. It logs at
// debug level so local runs still show operation traffic.
type NoopInvocationLog struct {
	log zerolog.Logger
}

// NewNoopInvocationLog creates a no-op invocation log.
func NewNoopInvocationLog(log zerolog.Logger) *NoopInvocationLog {
	return &NoopInvocationLog{log: log.With().Str("component", "invocation_log").Logger()}
}

// Record logs the invocation instead of persisting it.
func (n *NoopInvocationLog) Record(_ context.Context, rec out.InvocationRecord) error {
	n.log.Debug().
		Str("operation", rec.Operation).
		Int("result_count", rec.ResultCount).
		Float64("duration_ms", rec.DurationMS).
		Msg("engine invocation")
	return nil
}

// Interface compliance
var (
	_ out.InvocationLog = (*InvocationLogAdapter)(nil)
	_ out.InvocationLog = (*NoopInvocationLog)(nil)
)
