// internal/membership/postgres.go
package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"acspmembers/internal/observability/logging"
)

// PostgresStore is a Store backed by a pgx connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *logging.Logger
}

// OpenPostgres connects to the database described by dsn and verifies the
// connection before returning.
func OpenPostgres(ctx context.Context, dsn string, logger *logging.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database DSN: %w", err)
	}
	cfg.MaxConns = 25
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	return &PostgresStore{
		pool:   pool,
		logger: logger.WithModule("membership.postgres"),
	}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

const recordColumns = `id, user_id, acsp_number, user_role, status, added_at, coalesce(removed_at, 'epoch'::timestamptz)`

// FindActiveMembership returns the active record for (userID, acspNumber).
func (s *PostgresStore) FindActiveMembership(ctx context.Context, userID, acspNumber string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		select `+recordColumns+`
		from acsp_memberships
		where user_id = $1 and acsp_number = $2 and status = 'active'`,
		userID, acspNumber)
	return scanRecord(row)
}

// FindMembership returns the record with the given ID.
func (s *PostgresStore) FindMembership(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		select `+recordColumns+`
		from acsp_memberships
		where id = $1`,
		id)
	return scanRecord(row)
}

// ListMemberships returns the records for an ACSP, active first.
func (s *PostgresStore) ListMemberships(ctx context.Context, acspNumber string, includeRemoved bool) ([]Record, error) {
	query := `
		select ` + recordColumns + `
		from acsp_memberships
		where acsp_number = $1`
	if !includeRemoved {
		query += ` and status = 'active'`
	}
	query += ` order by status, added_at`

	rows, err := s.pool.Query(ctx, query, acspNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships for %s: %w", acspNumber, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.AcspNumber, &rec.Role, &rec.Status, &rec.AddedAt, &rec.RemovedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read membership rows: %w", err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.UserID, &rec.AcspNumber, &rec.Role, &rec.Status, &rec.AddedAt, &rec.RemovedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan membership record: %w", err)
	}
	return &rec, nil
}
