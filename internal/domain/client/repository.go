package client

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c Client) error
	FindByID(ctx context.Context, id uuid.UUID) (Client, error)
	FindByEmail(ctx context.Context, email string) (Client, error)
	FindByAPIKey(ctx context.Context, apiKeyID string) (Client, error)
}
