// Package storage описывает операции удаленного хранилища, которыми
// пользуется клиент. Хранилище видит только шифротекст.
package storage

import (
	"context"

	"github.com/google/uuid"

	"cipherkeeper/internal/domain/record"
)

type Action string

const (
	Allow Action = "allow"
	Deny  Action = "deny"
)

// Filter - параметры выборки записей
type Filter struct {
	// WriterIDs пуст - только записи самого клиента
	WriterIDs []uuid.UUID
	// AllWriters - все авторы, открывшие доступ клиенту, и сам клиент
	AllWriters  bool
	UserIDs     []uuid.UUID
	RecordIDs   []uuid.UUID
	Types       []string
	Plain       record.Fields
	IncludeData bool
	Count       int
	AfterIndex  int64
}

// Page - страница выборки. LastIndex передается в AfterIndex следующего запроса.
type Page struct {
	Records   []record.Record
	LastIndex int64
}

// AccessKeyEnvelope - ключ доступа, обернутый для читателя, и открытый ключ
// того, кто его обернул
type AccessKeyEnvelope struct {
	EAK                 string    `json:"eak"`
	AuthorizerID        uuid.UUID `json:"authorizer_id"`
	AuthorizerPublicKey string    `json:"authorizer_public_key"`
}

type ClientInfo struct {
	ClientID  uuid.UUID `json:"client_id"`
	Email     string    `json:"email"`
	PublicKey string    `json:"public_key"`
}

// Service - удаленное хранилище. Ошибки приводятся к errs:
// ErrNotFound, ErrConflict, ErrForbidden, ErrUnauthorized, иначе ErrTransport.
type Service interface {
	GetRecord(ctx context.Context, recordID uuid.UUID) (record.Record, error)
	CreateRecord(ctx context.Context, rec record.Record) (record.Record, error)
	UpdateRecord(ctx context.Context, rec record.Record) (record.Record, error)
	DeleteRecord(ctx context.Context, recordID uuid.UUID) error
	ListRecords(ctx context.Context, filter Filter) (Page, error)

	GetClientInfo(ctx context.Context, idOrEmail string) (ClientInfo, error)

	GetAccessKey(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (AccessKeyEnvelope, error)
	PutAccessKey(ctx context.Context, writerID, userID, readerID uuid.UUID, typ, eak string) error
	DeleteAccessKey(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) error

	PutPolicy(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string, action Action) error
}
