package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"cipherkeeper/internal/domain/record"
	"cipherkeeper/internal/errs"
)

type RecordRepository struct {
	s *Storage
}

func NewRecordRepository(s *Storage) *RecordRepository {
	return &RecordRepository{s: s}
}

func (r *RecordRepository) Create(_ context.Context, rec record.Record) (record.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.records[rec.ID()]; ok {
		return record.Record{}, fmt.Errorf("record %s: %w", rec.ID(), errs.ErrConflict)
	}

	now := r.s.now().UTC()
	state := rec.Meta().State()
	state.Created, state.LastModified = &now, &now
	created := rec.WithMeta(state.Meta())

	r.s.nextIdx++
	r.s.records[rec.ID()] = storedRecord{idx: r.s.nextIdx, rec: created}
	return created, nil
}

func (r *RecordRepository) Get(_ context.Context, recordID uuid.UUID) (record.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stored, ok := r.s.records[recordID]
	if !ok {
		return record.Record{}, fmt.Errorf("record %s: %w", recordID, errs.ErrNotFound)
	}
	return stored.rec, nil
}

func (r *RecordRepository) Update(_ context.Context, recordID uuid.UUID, expectedVersion, newVersion string, data, plain record.Fields) (record.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.records[recordID]
	if !ok {
		return record.Record{}, fmt.Errorf("record %s: %w", recordID, errs.ErrNotFound)
	}
	if stored.rec.Meta().Version() != expectedVersion {
		return record.Record{}, fmt.Errorf("record %s: %w", recordID, errs.ErrConflict)
	}

	now := r.s.now().UTC()
	state := stored.rec.Meta().State()
	state.Plain = plain.Clone()
	state.Version = newVersion
	state.LastModified = &now

	stored.rec = record.New(state.Meta(), data.Clone())
	r.s.records[recordID] = stored
	return stored.rec, nil
}

func (r *RecordRepository) Delete(_ context.Context, recordID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.records[recordID]; !ok {
		return fmt.Errorf("record %s: %w", recordID, errs.ErrNotFound)
	}
	delete(r.s.records, recordID)
	return nil
}

// List возвращает записи в порядке добавления
func (r *RecordRepository) List(_ context.Context, filter record.Filter) (record.Page, error) {
	r.s.mu.RLock()
	matched := make([]storedRecord, 0)
	for _, stored := range r.s.records {
		if stored.idx > filter.AfterIndex && matches(filter, stored.rec.Meta()) {
			matched = append(matched, stored)
		}
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b storedRecord) int { return cmp.Compare(a.idx, b.idx) })
	if filter.Count > 0 && len(matched) > filter.Count {
		matched = matched[:filter.Count]
	}

	page := record.Page{LastIndex: filter.AfterIndex}
	for _, stored := range matched {
		rec := stored.rec
		if !filter.IncludeData {
			rec = rec.WithData(record.Fields{})
		}
		page.Records = append(page.Records, rec)
		page.LastIndex = stored.idx
	}
	return page, nil
}

func matches(f record.Filter, m record.Meta) bool {
	if len(f.WriterIDs) > 0 && !slices.Contains(f.WriterIDs, m.WriterID()) {
		return false
	}
	if len(f.UserIDs) > 0 && !slices.Contains(f.UserIDs, m.UserID()) {
		return false
	}
	if len(f.RecordIDs) > 0 && !slices.Contains(f.RecordIDs, m.RecordID()) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, m.Type()) {
		return false
	}

	plain := m.Plain()
	for name, want := range f.Plain.All() {
		if got, ok := plain.Get(name); !ok || got != want {
			return false
		}
	}
	return true
}
