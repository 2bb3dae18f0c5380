package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/crypto"
)

const (
	DefaultTTL = 24 * time.Hour
	tokenLen   = 32
)

type Servicer interface {
	Create(ctx context.Context, clientID uuid.UUID) (string, time.Time, error)
	Validate(ctx context.Context, token string) (uuid.UUID, error)
}

type Service struct {
	repo Repository
	ttl  time.Duration
	log  *slog.Logger
}

func NewService(repo Repository, ttl time.Duration, log *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		repo: repo,
		ttl:  ttl,
		log:  log.With("component", "session_service"),
	}
}

// Create выдает токен доступа. В хранилище попадает только его хэш.
func (s *Service) Create(ctx context.Context, clientID uuid.UUID) (string, time.Time, error) {
	tokenBytes, err := crypto.GenerateRandomBytes(tokenLen)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token: %w", err)
	}

	token := crypto.EncodeBase64URL(tokenBytes)
	expiresAt := time.Now().Add(s.ttl)
	if err := s.repo.Create(ctx, clientID, hashToken(token), expiresAt); err != nil {
		return "", time.Time{}, fmt.Errorf("save session: %w", err)
	}

	s.log.Debug("session created", "client_id", clientID, "expires_at", expiresAt)
	return token, expiresAt, nil
}

func (s *Service) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	return s.repo.Validate(ctx, hashToken(token))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
