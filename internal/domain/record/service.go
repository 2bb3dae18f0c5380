package record

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/errs"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 1000

	// число точек в значении поля формата конверта
	envelopeSeparators = 3
)

// Servicer - операции хранилища записей, доступные API
type Servicer interface {
	Create(ctx context.Context, requesterID uuid.UUID, rec Record) (Record, error)
	Get(ctx context.Context, requesterID, recordID uuid.UUID) (Record, error)
	Update(ctx context.Context, requesterID, recordID uuid.UUID, version string, rec Record) (Record, error)
	Delete(ctx context.Context, requesterID, recordID uuid.UUID) error
	List(ctx context.Context, requesterID uuid.UUID, filter Filter, allWriters bool) (Page, error)
}

// Service хранит зашифрованные записи и проверяет права доступа.
// Содержимое полей для сервиса непрозрачно.
type Service struct {
	repo  Repository
	authz Authorizer
	log   *slog.Logger
}

// NewService creates a new record service
func NewService(repo Repository, authz Authorizer, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		authz: authz,
		log:   log.With("component", "record_service"),
	}
}

// Create сохраняет новую запись и назначает ей идентификатор и версию
func (s *Service) Create(ctx context.Context, requesterID uuid.UUID, rec Record) (Record, error) {
	meta := rec.Meta()
	if meta.WriterID() != requesterID {
		return Record{}, fmt.Errorf("%w: writer must be the requester", errs.ErrForbidden)
	}
	if meta.Stored() {
		return Record{}, fmt.Errorf("%w: record_id is assigned by the server", errs.ErrInvalidInput)
	}
	if err := validateCiphertext(rec.Data()); err != nil {
		return Record{}, err
	}

	state := meta.State()
	state.RecordID = uuid.New()
	state.Version = uuid.NewString()

	created, err := s.repo.Create(ctx, rec.WithMeta(state.Meta()))
	if err != nil {
		s.log.Error("failed to create record", "writer_id", requesterID, "type", state.Type, "error", err)
		return Record{}, fmt.Errorf("create record: %w", err)
	}

	s.log.Info("record created", "record_id", state.RecordID, "writer_id", requesterID, "type", state.Type)
	return created, nil
}

// Get возвращает запись автору или читателю, которому она открыта
func (s *Service) Get(ctx context.Context, requesterID, recordID uuid.UUID) (Record, error) {
	rec, err := s.repo.Get(ctx, recordID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Record{}, err
		}
		s.log.Error("failed to get record", "record_id", recordID, "error", err)
		return Record{}, fmt.Errorf("get record: %w", err)
	}

	ok, err := s.readable(ctx, requesterID, rec.Meta())
	if err != nil {
		return Record{}, err
	}
	if !ok {
		// чужие записи неотличимы от отсутствующих
		return Record{}, fmt.Errorf("%w: record %s", errs.ErrNotFound, recordID)
	}

	return rec, nil
}

// Update заменяет данные записи, если версия совпадает с текущей
func (s *Service) Update(ctx context.Context, requesterID, recordID uuid.UUID, version string, rec Record) (Record, error) {
	if version == "" {
		return Record{}, fmt.Errorf("%w: version is required", errs.ErrInvalidInput)
	}
	if err := validateCiphertext(rec.Data()); err != nil {
		return Record{}, err
	}

	current, err := s.Get(ctx, requesterID, recordID)
	if err != nil {
		return Record{}, err
	}
	if current.Meta().WriterID() != requesterID {
		return Record{}, fmt.Errorf("%w: only the writer can update a record", errs.ErrForbidden)
	}

	updated, err := s.repo.Update(ctx, recordID, version, uuid.NewString(), rec.Data(), rec.Meta().Plain())
	if err != nil {
		if errors.Is(err, errs.ErrConflict) || errors.Is(err, errs.ErrNotFound) {
			s.log.Debug("stale update rejected", "record_id", recordID, "version", version)
			return Record{}, err
		}
		s.log.Error("failed to update record", "record_id", recordID, "error", err)
		return Record{}, fmt.Errorf("update record: %w", err)
	}

	s.log.Info("record updated", "record_id", recordID, "version", updated.Meta().Version())
	return updated, nil
}

// Delete удаляет запись. Удалять может только автор.
func (s *Service) Delete(ctx context.Context, requesterID, recordID uuid.UUID) error {
	current, err := s.Get(ctx, requesterID, recordID)
	if err != nil {
		return err
	}
	if current.Meta().WriterID() != requesterID {
		return fmt.Errorf("%w: only the writer can delete a record", errs.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, recordID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return err
		}
		s.log.Error("failed to delete record", "record_id", recordID, "error", err)
		return fmt.Errorf("delete record: %w", err)
	}

	s.log.Info("record deleted", "record_id", recordID, "writer_id", requesterID)
	return nil
}

// List выбирает страницу записей. Без явного списка авторов выбираются
// собственные записи; allWriters добавляет авторов, открывших записи запросившему.
func (s *Service) List(ctx context.Context, requesterID uuid.UUID, filter Filter, allWriters bool) (Page, error) {
	switch {
	case filter.Count <= 0:
		filter.Count = DefaultPageSize
	case filter.Count > MaxPageSize:
		filter.Count = MaxPageSize
	}

	if allWriters {
		writers, err := s.authz.SharedWith(ctx, requesterID)
		if err != nil {
			return Page{}, fmt.Errorf("list shared writers: %w", err)
		}
		filter.WriterIDs = append(writers, requesterID)
	} else if len(filter.WriterIDs) == 0 {
		filter.WriterIDs = []uuid.UUID{requesterID}
	}

	page, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log.Error("failed to list records", "requester_id", requesterID, "error", err)
		return Page{}, fmt.Errorf("list records: %w", err)
	}

	// Права проверяются один раз на область (автор, субъект, тип).
	type scope struct {
		writer, user uuid.UUID
		typ          string
	}
	verdicts := make(map[scope]bool)
	visible := page.Records[:0:0]
	for _, rec := range page.Records {
		m := rec.Meta()
		key := scope{m.WriterID(), m.UserID(), m.Type()}
		ok, seen := verdicts[key]
		if !seen {
			ok, err = s.readable(ctx, requesterID, m)
			if err != nil {
				return Page{}, err
			}
			verdicts[key] = ok
		}
		if ok {
			visible = append(visible, rec)
		}
	}

	return Page{Records: visible, LastIndex: page.LastIndex}, nil
}

func (s *Service) readable(ctx context.Context, requesterID uuid.UUID, m Meta) (bool, error) {
	if m.WriterID() == requesterID {
		return true, nil
	}
	ok, err := s.authz.Allowed(ctx, m.WriterID(), m.UserID(), requesterID, m.Type())
	if err != nil {
		s.log.Error("failed to check policy", "record_id", m.RecordID(), "reader_id", requesterID, "error", err)
		return false, fmt.Errorf("check policy: %w", err)
	}
	return ok, nil
}

// validateCiphertext отсекает случайно отправленный открытый текст.
func validateCiphertext(data Fields) error {
	if data.Len() == 0 {
		return fmt.Errorf("%w: record has no fields", errs.ErrInvalidInput)
	}
	for name, value := range data.All() {
		if strings.Count(value, ".") != envelopeSeparators {
			return fmt.Errorf("%w: field %q is not an envelope", errs.ErrInvalidInput, name)
		}
	}
	return nil
}

