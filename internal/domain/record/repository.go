package record

import (
	"context"

	"github.com/google/uuid"
)

// Filter - критерии выборки зашифрованных записей
type Filter struct {
	WriterIDs   []uuid.UUID
	UserIDs     []uuid.UUID
	RecordIDs   []uuid.UUID
	Types       []string
	Plain       Fields
	IncludeData bool
	AfterIndex  int64
	Count       int
}

// Page - страница выборки. LastIndex передается в следующий запрос как AfterIndex.
type Page struct {
	Records   []Record
	LastIndex int64
}

// Repository хранит записи в зашифрованном виде
type Repository interface {
	Create(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, recordID uuid.UUID) (Record, error)
	Update(ctx context.Context, recordID uuid.UUID, expectedVersion, newVersion string, data, plain Fields) (Record, error)
	Delete(ctx context.Context, recordID uuid.UUID) error
	List(ctx context.Context, filter Filter) (Page, error)
}

// Authorizer отвечает на вопрос, может ли читатель видеть записи автора
type Authorizer interface {
	Allowed(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (bool, error)
	SharedWith(ctx context.Context, readerID uuid.UUID) ([]uuid.UUID, error)
}
