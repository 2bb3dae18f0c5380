package accesskey

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/crypto"
	"cipherkeeper/internal/errs"
)

type Servicer interface {
	Get(ctx context.Context, requesterID uuid.UUID, scope Scope) (AccessKey, error)
	Put(ctx context.Context, requesterID uuid.UUID, scope Scope, eak string) error
	Delete(ctx context.Context, requesterID uuid.UUID, scope Scope) error
}

// Service хранит обернутые ключи доступа и выдает их только тем
// читателям, которым это разрешает политика.
type Service struct {
	repo  Repository
	authz Authorizer
	keys  PublicKeys
	log   *slog.Logger
}

func NewService(repo Repository, authz Authorizer, keys PublicKeys, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		authz: authz,
		keys:  keys,
		log:   log.With("component", "access_key_service"),
	}
}

// Get возвращает ключ, обернутый для самого запросившего.
func (s *Service) Get(ctx context.Context, requesterID uuid.UUID, scope Scope) (AccessKey, error) {
	if err := validateScope(scope); err != nil {
		return AccessKey{}, err
	}
	if scope.ReaderID != requesterID {
		return AccessKey{}, fmt.Errorf("%w: access keys are issued to their reader only", errs.ErrForbidden)
	}

	ok, err := s.authz.Allowed(ctx, scope.WriterID, scope.UserID, scope.ReaderID, scope.Type)
	if err != nil {
		return AccessKey{}, fmt.Errorf("check policy: %w", err)
	}
	if !ok {
		return AccessKey{}, fmt.Errorf("%w: no read policy for %s", errs.ErrForbidden, scope.Type)
	}

	key, err := s.repo.Get(ctx, scope)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return AccessKey{}, err
		}
		s.log.Error("failed to get access key", "writer_id", scope.WriterID, "reader_id", scope.ReaderID, "type", scope.Type, "error", err)
		return AccessKey{}, fmt.Errorf("get access key: %w", err)
	}
	return key, nil
}

// Put публикует ключ для читателя. Публиковать может только автор области;
// он же записывается как выдавший ключ.
func (s *Service) Put(ctx context.Context, requesterID uuid.UUID, scope Scope, eak string) error {
	if err := validateScope(scope); err != nil {
		return err
	}
	if scope.WriterID != requesterID {
		return fmt.Errorf("%w: only the writer can publish access keys", errs.ErrForbidden)
	}
	if err := crypto.ValidateWrappedKey(eak); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}

	publicKey, err := s.keys.PublicKey(ctx, requesterID)
	if err != nil {
		return fmt.Errorf("authorizer public key: %w", err)
	}

	key := AccessKey{
		Scope:               scope,
		EAK:                 eak,
		AuthorizerID:        requesterID,
		AuthorizerPublicKey: publicKey,
	}
	if err := s.repo.Put(ctx, key); err != nil {
		s.log.Error("failed to put access key", "writer_id", scope.WriterID, "reader_id", scope.ReaderID, "type", scope.Type, "error", err)
		return fmt.Errorf("put access key: %w", err)
	}

	s.log.Info("access key published", "writer_id", scope.WriterID, "reader_id", scope.ReaderID, "type", scope.Type)
	return nil
}

// Delete удаляет ключ читателя. Отсутствующий ключ не считается ошибкой.
func (s *Service) Delete(ctx context.Context, requesterID uuid.UUID, scope Scope) error {
	if err := validateScope(scope); err != nil {
		return err
	}
	if scope.WriterID != requesterID {
		return fmt.Errorf("%w: only the writer can remove access keys", errs.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, scope); err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.log.Error("failed to delete access key", "writer_id", scope.WriterID, "reader_id", scope.ReaderID, "type", scope.Type, "error", err)
		return fmt.Errorf("delete access key: %w", err)
	}

	s.log.Info("access key removed", "writer_id", scope.WriterID, "reader_id", scope.ReaderID, "type", scope.Type)
	return nil
}

func validateScope(scope Scope) error {
	if scope.WriterID == uuid.Nil || scope.UserID == uuid.Nil || scope.ReaderID == uuid.Nil || scope.Type == "" {
		return fmt.Errorf("%w: incomplete access key scope", errs.ErrInvalidInput)
	}
	return nil
}
