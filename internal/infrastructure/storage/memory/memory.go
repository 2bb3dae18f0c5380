// Package memory - хранилище сервера в памяти процесса. Используется
// в тестах и при запуске сервера без DATABASE_URI.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"cipherkeeper/internal/domain/accesskey"
	"cipherkeeper/internal/domain/client"
	"cipherkeeper/internal/domain/policy"
	"cipherkeeper/internal/domain/record"
)

// Storage безопасен для конкурентного использования
type Storage struct {
	mu sync.RWMutex

	clients  map[uuid.UUID]client.Client
	sessions map[string]session

	records map[uuid.UUID]storedRecord
	nextIdx int64

	accessKeys map[accesskey.Scope]accesskey.AccessKey
	policies   map[accesskey.Scope]policy.Policy

	now func() time.Time
}

type session struct {
	clientID  uuid.UUID
	expiresAt time.Time
}

type storedRecord struct {
	idx int64
	rec record.Record
}

func New() *Storage {
	return &Storage{
		clients:    make(map[uuid.UUID]client.Client),
		sessions:   make(map[string]session),
		records:    make(map[uuid.UUID]storedRecord),
		accessKeys: make(map[accesskey.Scope]accesskey.AccessKey),
		policies:   make(map[accesskey.Scope]policy.Policy),
		now:        time.Now,
	}
}

func scopeOf(writerID, userID, readerID uuid.UUID, typ string) accesskey.Scope {
	return accesskey.Scope{WriterID: writerID, UserID: userID, ReaderID: readerID, Type: typ}
}

// Ping всегда успешен
func (s *Storage) Ping(context.Context) error {
	return nil
}
