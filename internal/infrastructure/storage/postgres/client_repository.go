package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/domain/client"
	"cipherkeeper/internal/errs"
)

const uniqueViolation = "23505"

type ClientRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewClientRepository(storage *Storage, log *slog.Logger) *ClientRepository {
	return &ClientRepository{
		pool: storage.Pool(),
		log:  log.With("component", "client_repository"),
	}
}

func (r *ClientRepository) Create(ctx context.Context, c client.Client) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO clients (id, email, public_key, api_key_id, secret_hash)
         VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Email, c.PublicKey, c.APIKeyID, c.SecretHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("client %s: %w", c.Email, errs.ErrConflict)
		}
		r.log.Error("failed to create client", "email", c.Email, "error", err)
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id uuid.UUID) (client.Client, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (client.Client, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

func (r *ClientRepository) FindByAPIKey(ctx context.Context, apiKeyID string) (client.Client, error) {
	return r.findOne(ctx, `WHERE api_key_id = $1`, apiKeyID)
}

func (r *ClientRepository) findOne(ctx context.Context, where string, arg any) (client.Client, error) {
	var c client.Client
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, public_key, api_key_id, secret_hash, created_at FROM clients `+where, arg).
		Scan(&c.ID, &c.Email, &c.PublicKey, &c.APIKeyID, &c.SecretHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return client.Client{}, errs.ErrNotFound
		}
		return client.Client{}, fmt.Errorf("find client: %w", err)
	}
	return c, nil
}
