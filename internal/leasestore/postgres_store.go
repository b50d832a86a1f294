package leasestore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore persists the lease in a single-row table. It is a heavier
// option than BoltStore or RedisStore but fits deployments that already run
// Postgres for other metadata and want one fewer moving part.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore creates a new Postgres-backed lease store and ensures the
// backing table exists.
func NewPostgresStore(host string, port int, database, user, password string, logger *zap.Logger) (*PostgresStore, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s pool_max_conns=%d",
		host, port, database, user, password, 4,
	)

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("leasestore: failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("leasestore: failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("leasestore: failed to ping database: %w", err)
	}

	if _, err := pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS sequencer_lease (
			id       SMALLINT PRIMARY KEY,
			position BIGINT NOT NULL
		)
	`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("leasestore: failed to create lease table: %w", err)
	}

	return &PostgresStore{pool: pool, logger: logger}, nil
}

// ReadLease implements Store.
func (s *PostgresStore) ReadLease(ctx context.Context) (int64, error) {
	var pos int64
	err := s.pool.QueryRow(ctx, `SELECT position FROM sequencer_lease WHERE id = 1`).Scan(&pos)
	if err != nil {
		if err.Error() == "no rows in result set" {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("leasestore: postgres read failed: %w", err)
	}
	return pos, nil
}

// WriteLease implements Store.
func (s *PostgresStore) WriteLease(ctx context.Context, pos int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sequencer_lease (id, position) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET position = EXCLUDED.position
	`, pos)
	if err != nil {
		return fmt.Errorf("leasestore: postgres write failed: %w", err)
	}
	return nil
}

// Ping implements Store.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
