// Package mocks содержит testify-мок удаленного хранилища.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"cipherkeeper/internal/app/client/storage"
	"cipherkeeper/internal/domain/record"
)

type Service struct {
	mock.Mock
}

var _ storage.Service = (*Service)(nil)

func (m *Service) GetRecord(ctx context.Context, recordID uuid.UUID) (record.Record, error) {
	args := m.Called(ctx, recordID)
	return args.Get(0).(record.Record), args.Error(1)
}

func (m *Service) CreateRecord(ctx context.Context, rec record.Record) (record.Record, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(record.Record), args.Error(1)
}

func (m *Service) UpdateRecord(ctx context.Context, rec record.Record) (record.Record, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(record.Record), args.Error(1)
}

func (m *Service) DeleteRecord(ctx context.Context, recordID uuid.UUID) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

func (m *Service) ListRecords(ctx context.Context, filter storage.Filter) (storage.Page, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(storage.Page), args.Error(1)
}

func (m *Service) GetClientInfo(ctx context.Context, idOrEmail string) (storage.ClientInfo, error) {
	args := m.Called(ctx, idOrEmail)
	return args.Get(0).(storage.ClientInfo), args.Error(1)
}

func (m *Service) GetAccessKey(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (storage.AccessKeyEnvelope, error) {
	args := m.Called(ctx, writerID, userID, readerID, typ)
	return args.Get(0).(storage.AccessKeyEnvelope), args.Error(1)
}

func (m *Service) PutAccessKey(ctx context.Context, writerID, userID, readerID uuid.UUID, typ, eak string) error {
	args := m.Called(ctx, writerID, userID, readerID, typ, eak)
	return args.Error(0)
}

func (m *Service) DeleteAccessKey(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) error {
	args := m.Called(ctx, writerID, userID, readerID, typ)
	return args.Error(0)
}

func (m *Service) PutPolicy(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string, action storage.Action) error {
	args := m.Called(ctx, writerID, userID, readerID, typ, action)
	return args.Error(0)
}
