package repository

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// PostgresRoundRepo archives rounds for audit and provably-fair review.
// Best-effort: the live loop never depends on it.
type PostgresRoundRepo struct {
	db *sqlx.DB
}

func NewPostgresRoundRepo(db *sqlx.DB) *PostgresRoundRepo {
	repo := &PostgresRoundRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

func (r *PostgresRoundRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS rounds (
			id               TEXT PRIMARY KEY,
			public_hash      TEXT NOT NULL,
			crash_multiplier NUMERIC(10,2),
			seed             TEXT,
			created_at       TIMESTAMPTZ NOT NULL,
			finished_at      TIMESTAMPTZ
		)
	`)
	return err
}

func (r *PostgresRoundRepo) CreateRound(ctx context.Context, roundID, publicHash string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rounds (id, public_hash, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, roundID, publicHash, time.Now())
	return err
}

// FinishRound reveals the seed alongside the crash multiplier so anyone
// can recompute the outcome against the published hash.
func (r *PostgresRoundRepo) FinishRound(ctx context.Context, roundID string, crashMultiplier decimal.Decimal, seed []byte) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE rounds
		SET crash_multiplier = $2, seed = $3, finished_at = $4
		WHERE id = $1
	`, roundID, crashMultiplier, hex.EncodeToString(seed), time.Now())
	return err
}
