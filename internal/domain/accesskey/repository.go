package accesskey

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Get(ctx context.Context, scope Scope) (AccessKey, error)
	Put(ctx context.Context, key AccessKey) error
	Delete(ctx context.Context, scope Scope) error
}

// Authorizer проверяет политику чтения для области
type Authorizer interface {
	Allowed(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (bool, error)
}

// PublicKeys возвращает открытые ключи зарегистрированных клиентов
type PublicKeys interface {
	PublicKey(ctx context.Context, clientID uuid.UUID) (string, error)
}
