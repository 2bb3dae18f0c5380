package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/errs"
)

type Servicer interface {
	Put(ctx context.Context, requesterID uuid.UUID, p Policy) error
	Allowed(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (bool, error)
	SharedWith(ctx context.Context, readerID uuid.UUID) ([]uuid.UUID, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "policy_service"),
	}
}

// Put записывает политику. Выдавать и отзывать доступ может только автор.
func (s *Service) Put(ctx context.Context, requesterID uuid.UUID, p Policy) error {
	if err := p.Action.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	if p.Type == "" || p.ReaderID == uuid.Nil {
		return fmt.Errorf("%w: reader and type are required", errs.ErrInvalidInput)
	}
	if p.WriterID != requesterID {
		return fmt.Errorf("%w: only the writer can change a policy", errs.ErrForbidden)
	}
	if p.ReaderID == p.WriterID {
		// автор всегда читает свои записи
		return nil
	}

	if err := s.repo.Put(ctx, p); err != nil {
		s.log.Error("failed to save policy", "writer_id", p.WriterID, "reader_id", p.ReaderID, "type", p.Type, "error", err)
		return fmt.Errorf("save policy: %w", err)
	}

	s.log.Info("policy changed",
		"writer_id", p.WriterID, "user_id", p.UserID, "reader_id", p.ReaderID,
		"type", p.Type, "action", p.Action)
	return nil
}

// Allowed сообщает, может ли читатель получать записи и ключ доступа области.
func (s *Service) Allowed(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (bool, error) {
	if readerID == writerID {
		return true, nil
	}

	p, err := s.repo.Get(ctx, writerID, userID, readerID, typ)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get policy: %w", err)
	}
	return p.Action == ActionAllow, nil
}

// SharedWith возвращает авторов, открывших читателю хотя бы один тип.
func (s *Service) SharedWith(ctx context.Context, readerID uuid.UUID) ([]uuid.UUID, error) {
	writers, err := s.repo.Writers(ctx, readerID)
	if err != nil {
		return nil, fmt.Errorf("list writers: %w", err)
	}
	return writers, nil
}
