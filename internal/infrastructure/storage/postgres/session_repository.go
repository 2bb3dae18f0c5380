package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/errs"
)

type SessionRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewSessionRepository(storage *Storage, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		pool: storage.Pool(),
		log:  log.With("component", "session_repository"),
	}
}

func (r *SessionRepository) Create(ctx context.Context, clientID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (client_id, token_hash, expires_at)
         VALUES ($1, decode($2, 'hex'), $3)`,
		clientID, tokenHash, expiresAt)
	if err != nil {
		r.log.Error("failed to create session", "client_id", clientID, "error", err)
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Validate(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	var clientID uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT client_id FROM sessions
         WHERE token_hash = decode($1, 'hex') AND expires_at > NOW()`,
		tokenHash).Scan(&clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("invalid session: %w", errs.ErrUnauthorized)
		}
		return uuid.Nil, fmt.Errorf("validate session: %w", err)
	}
	return clientID, nil
}
