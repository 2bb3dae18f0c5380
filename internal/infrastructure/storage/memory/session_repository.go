package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cipherkeeper/internal/errs"
)

type SessionRepository struct {
	s *Storage
}

func NewSessionRepository(s *Storage) *SessionRepository {
	return &SessionRepository{s: s}
}

func (r *SessionRepository) Create(_ context.Context, clientID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.sessions[tokenHash] = session{clientID: clientID, expiresAt: expiresAt}
	return nil
}

// Validate заодно удаляет истекшую сессию
func (r *SessionRepository) Validate(_ context.Context, tokenHash string) (uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sess, ok := r.s.sessions[tokenHash]
	if !ok {
		return uuid.Nil, errs.ErrUnauthorized
	}
	if !r.s.now().Before(sess.expiresAt) {
		delete(r.s.sessions, tokenHash)
		return uuid.Nil, errs.ErrUnauthorized
	}
	return sess.clientID, nil
}
