package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"cipherkeeper/internal/domain/policy"
	"cipherkeeper/internal/errs"
)

type PolicyRepository struct {
	s *Storage
}

func NewPolicyRepository(s *Storage) *PolicyRepository {
	return &PolicyRepository{s: s}
}

func (r *PolicyRepository) Put(_ context.Context, p policy.Policy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = r.s.now().UTC()
	}
	r.s.policies[scopeOf(p.WriterID, p.UserID, p.ReaderID, p.Type)] = p
	return nil
}

func (r *PolicyRepository) Get(_ context.Context, writerID, userID, readerID uuid.UUID, typ string) (policy.Policy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.policies[scopeOf(writerID, userID, readerID, typ)]
	if !ok {
		return policy.Policy{}, fmt.Errorf("policy: %w", errs.ErrNotFound)
	}
	return p, nil
}

func (r *PolicyRepository) Writers(_ context.Context, readerID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var writers []uuid.UUID
	for scope, p := range r.s.policies {
		if scope.ReaderID == readerID && p.Action == policy.ActionAllow && !slices.Contains(writers, scope.WriterID) {
			writers = append(writers, scope.WriterID)
		}
	}
	return writers, nil
}
