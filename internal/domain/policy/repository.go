package policy

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Put(ctx context.Context, p Policy) error
	Get(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (Policy, error)
	// Writers возвращает авторов, у которых есть разрешающая политика для читателя
	Writers(ctx context.Context, readerID uuid.UUID) ([]uuid.UUID, error)
}
