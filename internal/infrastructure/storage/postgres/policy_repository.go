package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/domain/policy"
	"cipherkeeper/internal/errs"
)

type PolicyRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewPolicyRepository(storage *Storage, log *slog.Logger) *PolicyRepository {
	return &PolicyRepository{
		pool: storage.Pool(),
		log:  log.With("component", "policy_repository"),
	}
}

func (r *PolicyRepository) Put(ctx context.Context, p policy.Policy) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO policies (writer_id, user_id, reader_id, type, action)
         VALUES ($1, $2, $3, $4, $5)
         ON CONFLICT (writer_id, user_id, reader_id, type) DO UPDATE
         SET action = EXCLUDED.action, updated_at = NOW()`,
		p.WriterID, p.UserID, p.ReaderID, p.Type, string(p.Action))
	if err != nil {
		r.log.Error("failed to put policy", "reader_id", p.ReaderID, "type", p.Type, "error", err)
		return fmt.Errorf("put policy: %w", err)
	}
	return nil
}

func (r *PolicyRepository) Get(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (policy.Policy, error) {
	p := policy.Policy{WriterID: writerID, UserID: userID, ReaderID: readerID, Type: typ}
	var action string
	err := r.pool.QueryRow(ctx,
		`SELECT action, updated_at FROM policies
         WHERE writer_id = $1 AND user_id = $2 AND reader_id = $3 AND type = $4`,
		writerID, userID, readerID, typ).Scan(&action, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return policy.Policy{}, fmt.Errorf("policy: %w", errs.ErrNotFound)
		}
		return policy.Policy{}, fmt.Errorf("get policy: %w", err)
	}
	p.Action = policy.Action(action)
	return p, nil
}

func (r *PolicyRepository) Writers(ctx context.Context, readerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT writer_id FROM policies WHERE reader_id = $1 AND action = 'allow'`,
		readerID)
	if err != nil {
		return nil, fmt.Errorf("list writers: %w", err)
	}
	defer rows.Close()

	writers, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect writers: %w", err)
	}
	return writers, nil
}
