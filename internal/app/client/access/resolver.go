// Package access получает ключи доступа областей (writer, user, type).
package access

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/app/client/storage"
	"cipherkeeper/internal/crypto"
	"cipherkeeper/internal/errs"
)

// Identity - клиент, от имени которого разворачиваются ключи
type Identity struct {
	ClientID uuid.UUID
	Keys     crypto.KeyPair
}

type Resolver struct {
	store storage.Service
	self  Identity
	log   *slog.Logger
}

func NewResolver(store storage.Service, self Identity, log *slog.Logger) *Resolver {
	return &Resolver{
		store: store,
		self:  self,
		log:   log.With("component", "access_resolver"),
	}
}

// Resolve возвращает ключ доступа области для readerID.
//
// Если ключ для области еще не опубликован и запрашивает сам автор,
// создается новый ключ и публикуется обернутым для автора. Остальным
// читателям в этом случае возвращается ErrNotFound. Прочие ошибки хранилища
// возвращаются как есть, без повторов.
func (r *Resolver) Resolve(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (*[crypto.KeySize]byte, error) {
	if readerID != r.self.ClientID {
		return nil, fmt.Errorf("%w: keys can only be resolved for %s", errs.ErrInvalidInput, r.self.ClientID)
	}

	env, err := r.store.GetAccessKey(ctx, writerID, userID, readerID, typ)
	switch {
	case err == nil:
		return r.unwrap(writerID, env)
	case errors.Is(err, errs.ErrNotFound) && writerID == readerID:
		return r.establish(ctx, writerID, userID, typ)
	default:
		return nil, err
	}
}

// unwrap разворачивает ключ, выданный автором области. Ключ собственной
// области должен быть обернут своей же парой: подложенный сервером ключ
// отвергается.
func (r *Resolver) unwrap(writerID uuid.UUID, env storage.AccessKeyEnvelope) (*[crypto.KeySize]byte, error) {
	if env.AuthorizerID != writerID {
		return nil, fmt.Errorf("%w: access key authorized by %s, not by writer %s", errs.ErrDecryption, env.AuthorizerID, writerID)
	}

	authorizer, err := crypto.ParseKey(env.AuthorizerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("authorizer public key: %w", err)
	}
	if writerID == r.self.ClientID {
		if subtle.ConstantTimeCompare(authorizer[:], r.self.Keys.Public[:]) != 1 {
			return nil, fmt.Errorf("%w: own access key is wrapped by a foreign key", errs.ErrDecryption)
		}
		authorizer = r.self.Keys.Public
	}
	return crypto.UnwrapKey(env.EAK, authorizer, r.self.Keys.Private)
}

// establish создает ключ новой области и публикует его для автора
func (r *Resolver) establish(ctx context.Context, writerID, userID uuid.UUID, typ string) (*[crypto.KeySize]byte, error) {
	key, err := crypto.RandomKey()
	if err != nil {
		return nil, err
	}

	eak, err := crypto.WrapKey(key, r.self.Keys.Public, r.self.Keys.Private)
	if err != nil {
		return nil, err
	}
	if err := r.store.PutAccessKey(ctx, writerID, userID, writerID, typ, eak); err != nil {
		return nil, fmt.Errorf("publish access key: %w", err)
	}

	r.log.Debug("access key established", "user_id", userID, "type", typ)
	return key, nil
}
