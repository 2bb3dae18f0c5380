package memory

import (
	"context"
	"fmt"

	"cipherkeeper/internal/domain/accesskey"
	"cipherkeeper/internal/errs"
)

type AccessKeyRepository struct {
	s *Storage
}

func NewAccessKeyRepository(s *Storage) *AccessKeyRepository {
	return &AccessKeyRepository{s: s}
}

func (r *AccessKeyRepository) Get(_ context.Context, scope accesskey.Scope) (accesskey.AccessKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	key, ok := r.s.accessKeys[scope]
	if !ok {
		return accesskey.AccessKey{}, fmt.Errorf("access key: %w", errs.ErrNotFound)
	}
	return key, nil
}

func (r *AccessKeyRepository) Put(_ context.Context, key accesskey.AccessKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.accessKeys[key.Scope] = key
	return nil
}

func (r *AccessKeyRepository) Delete(_ context.Context, scope accesskey.Scope) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accessKeys[scope]; !ok {
		return fmt.Errorf("access key: %w", errs.ErrNotFound)
	}
	delete(r.s.accessKeys, scope)
	return nil
}
