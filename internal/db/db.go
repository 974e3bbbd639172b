package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// Pool exposes the connection pool to services that own their queries.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// RunMigrations runs database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS study_settlements (
			id BIGSERIAL PRIMARY KEY,
			guild_id BIGINT NOT NULL,
			channel_id TEXT NOT NULL,
			title TEXT NOT NULL,
			total_sessions INT NOT NULL,
			deposit_amount BIGINT NOT NULL,
			penalty_per_miss BIGINT NOT NULL,
			settled_by TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_study_settlements_channel ON study_settlements(channel_id);

		CREATE TABLE IF NOT EXISTS study_settlement_rows (
			settlement_id BIGINT NOT NULL REFERENCES study_settlements(id) ON DELETE CASCADE,
			position INT NOT NULL,
			user_id TEXT NOT NULL,
			attended_sessions INT NOT NULL,
			missed_sessions INT NOT NULL,
			penalty BIGINT NOT NULL,
			refund BIGINT NOT NULL,
			PRIMARY KEY (settlement_id, position)
		);

		CREATE TABLE IF NOT EXISTS study_reminders (
			channel_id TEXT PRIMARY KEY,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			interval_minutes INT NOT NULL,
			next_due_at TIMESTAMP,
			last_sent_at TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS mogakco_rooms (
			id BIGSERIAL PRIMARY KEY,
			channel_id TEXT NOT NULL,
			guild_id BIGINT NOT NULL,
			host_id TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			closed_at TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_mogakco_rooms_active
			ON mogakco_rooms(channel_id) WHERE status = 'active';

		CREATE TABLE IF NOT EXISTS mogakco_participants (
			room_id BIGINT NOT NULL REFERENCES mogakco_rooms(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			base_score INT NOT NULL DEFAULT 0,
			joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (room_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS mogakco_missions (
			id TEXT PRIMARY KEY,
			room_id BIGINT NOT NULL REFERENCES mogakco_rooms(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS mogakco_progress (
			mission_id TEXT NOT NULL REFERENCES mogakco_missions(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			progress INT NOT NULL CHECK (progress BETWEEN 0 AND 100),
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (mission_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS mogakco_results (
			room_id BIGINT NOT NULL REFERENCES mogakco_rooms(id) ON DELETE CASCADE,
			rank INT NOT NULL,
			user_id TEXT NOT NULL,
			base_score INT NOT NULL,
			mission_score INT NOT NULL,
			total_score INT NOT NULL,
			reward BIGINT NOT NULL,
			PRIMARY KEY (room_id, rank)
		);
	`)
	return err
}
