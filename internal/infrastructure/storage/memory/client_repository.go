package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cipherkeeper/internal/domain/client"
	"cipherkeeper/internal/errs"
)

type ClientRepository struct {
	s *Storage
}

func NewClientRepository(s *Storage) *ClientRepository {
	return &ClientRepository{s: s}
}

func (r *ClientRepository) Create(_ context.Context, c client.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.clients {
		if existing.ID == c.ID || existing.Email == c.Email || existing.APIKeyID == c.APIKeyID {
			return fmt.Errorf("client %s: %w", c.Email, errs.ErrConflict)
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	r.s.clients[c.ID] = c
	return nil
}

func (r *ClientRepository) FindByID(_ context.Context, id uuid.UUID) (client.Client, error) {
	return r.findOne(func(c client.Client) bool { return c.ID == id })
}

func (r *ClientRepository) FindByEmail(_ context.Context, email string) (client.Client, error) {
	return r.findOne(func(c client.Client) bool { return c.Email == email })
}

func (r *ClientRepository) FindByAPIKey(_ context.Context, apiKeyID string) (client.Client, error) {
	return r.findOne(func(c client.Client) bool { return c.APIKeyID == apiKeyID })
}

func (r *ClientRepository) findOne(match func(client.Client) bool) (client.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.clients {
		if match(c) {
			return c, nil
		}
	}
	return client.Client{}, fmt.Errorf("client: %w", errs.ErrNotFound)
}
