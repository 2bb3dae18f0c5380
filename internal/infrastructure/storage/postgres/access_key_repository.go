package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/domain/accesskey"
	"cipherkeeper/internal/errs"
)

type AccessKeyRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewAccessKeyRepository(storage *Storage, log *slog.Logger) *AccessKeyRepository {
	return &AccessKeyRepository{
		pool: storage.Pool(),
		log:  log.With("component", "access_key_repository"),
	}
}

func (r *AccessKeyRepository) Get(ctx context.Context, scope accesskey.Scope) (accesskey.AccessKey, error) {
	key := accesskey.AccessKey{Scope: scope}
	err := r.pool.QueryRow(ctx,
		`SELECT eak, authorizer_id, authorizer_public_key FROM access_keys
         WHERE writer_id = $1 AND user_id = $2 AND reader_id = $3 AND type = $4`,
		scope.WriterID, scope.UserID, scope.ReaderID, scope.Type).
		Scan(&key.EAK, &key.AuthorizerID, &key.AuthorizerPublicKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accesskey.AccessKey{}, fmt.Errorf("access key: %w", errs.ErrNotFound)
		}
		return accesskey.AccessKey{}, fmt.Errorf("get access key: %w", err)
	}
	return key, nil
}

// Put заменяет ключ области, если он уже был
func (r *AccessKeyRepository) Put(ctx context.Context, key accesskey.AccessKey) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO access_keys (writer_id, user_id, reader_id, type, eak, authorizer_id, authorizer_public_key)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         ON CONFLICT (writer_id, user_id, reader_id, type) DO UPDATE
         SET eak = EXCLUDED.eak,
             authorizer_id = EXCLUDED.authorizer_id,
             authorizer_public_key = EXCLUDED.authorizer_public_key,
             updated_at = NOW()`,
		key.WriterID, key.UserID, key.ReaderID, key.Type, key.EAK, key.AuthorizerID, key.AuthorizerPublicKey)
	if err != nil {
		r.log.Error("failed to put access key", "reader_id", key.ReaderID, "type", key.Type, "error", err)
		return fmt.Errorf("put access key: %w", err)
	}
	return nil
}

func (r *AccessKeyRepository) Delete(ctx context.Context, scope accesskey.Scope) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM access_keys
         WHERE writer_id = $1 AND user_id = $2 AND reader_id = $3 AND type = $4`,
		scope.WriterID, scope.UserID, scope.ReaderID, scope.Type)
	if err != nil {
		return fmt.Errorf("delete access key: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("access key: %w", errs.ErrNotFound)
	}
	return nil
}
