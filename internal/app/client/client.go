// Package client - клиентское ядро хранилища: шифрует записи перед отправкой
// и расшифровывает после получения. Сервер видит только шифротекст.
package client

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/app/client/access"
	"cipherkeeper/internal/app/client/sharing"
	"cipherkeeper/internal/app/client/storage"
	"cipherkeeper/internal/crypto"
	"cipherkeeper/internal/domain/record"
	"cipherkeeper/internal/errs"
)

// Client не меняется после создания и безопасен для конкурентного
// использования, если таков storage.Service.
type Client struct {
	store    storage.Service
	resolver *access.Resolver
	sharing  *sharing.Controller
	self     access.Identity
	log      *slog.Logger
}

func New(store storage.Service, self access.Identity, log *slog.Logger) *Client {
	resolver := access.NewResolver(store, self, log)
	return &Client{
		store:    store,
		resolver: resolver,
		sharing:  sharing.NewController(store, resolver, self, log),
		self:     self,
		log:      log.With("component", "client", "client_id", self.ClientID),
	}
}

func (c *Client) ID() uuid.UUID {
	return c.self.ClientID
}

// Write шифрует и сохраняет новую запись клиента о себе. Возвращает
// расшифрованный ответ сервера с назначенными идентификатором и версией.
func (c *Client) Write(ctx context.Context, typ string, data, plain record.Fields) (record.Record, error) {
	meta, err := record.NewMeta(c.self.ClientID, c.self.ClientID, typ, plain)
	if err != nil {
		return record.Record{}, err
	}

	key, err := c.resolver.Resolve(ctx, c.self.ClientID, c.self.ClientID, c.self.ClientID, typ)
	if err != nil {
		return record.Record{}, fmt.Errorf("access key: %w", err)
	}
	defer crypto.Wipe(key)

	sealed, err := crypto.EncryptRecord(record.New(meta, data), key)
	if err != nil {
		return record.Record{}, err
	}
	created, err := c.store.CreateRecord(ctx, sealed)
	if err != nil {
		return record.Record{}, fmt.Errorf("create record: %w", err)
	}

	c.log.Debug("record written", "record_id", created.ID(), "type", typ)
	return crypto.DecryptRecord(created, key)
}

// Read получает и расшифровывает запись
func (c *Client) Read(ctx context.Context, recordID uuid.UUID) (record.Record, error) {
	rec, err := c.store.GetRecord(ctx, recordID)
	if err != nil {
		return record.Record{}, fmt.Errorf("get record: %w", err)
	}
	return c.decrypt(ctx, rec, nil)
}

// Update сохраняет запись, если ее версия на сервере не изменилась.
// Устаревшая версия дает ErrConflict.
func (c *Client) Update(ctx context.Context, rec record.Record) (record.Record, error) {
	meta := rec.Meta()
	if !meta.Stored() || meta.Version() == "" {
		return record.Record{}, fmt.Errorf("%w: record has not been written yet", errs.ErrInvalidInput)
	}

	key, err := c.resolver.Resolve(ctx, meta.WriterID(), meta.UserID(), c.self.ClientID, meta.Type())
	if err != nil {
		return record.Record{}, fmt.Errorf("access key: %w", err)
	}
	defer crypto.Wipe(key)

	sealed, err := crypto.EncryptRecord(rec, key)
	if err != nil {
		return record.Record{}, err
	}
	updated, err := c.store.UpdateRecord(ctx, sealed)
	if err != nil {
		return record.Record{}, fmt.Errorf("update record %s: %w", rec.ID(), err)
	}
	return crypto.DecryptRecord(updated, key)
}

// Delete удаляет запись. Уже удаленная запись ошибкой не считается.
func (c *Client) Delete(ctx context.Context, recordID uuid.UUID) error {
	if err := c.store.DeleteRecord(ctx, recordID); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("delete record %s: %w", recordID, err)
	}
	return nil
}

// Query - параметры выборки
type Query struct {
	WriterIDs  []uuid.UUID
	AllWriters bool
	UserIDs    []uuid.UUID
	RecordIDs  []uuid.UUID
	Types      []string
	Plain      record.Fields
	// IncludeData - вернуть поля записей, а не только метаданные
	IncludeData bool
	// Raw - не расшифровывать поля
	Raw        bool
	PageSize   int
	AfterIndex int64
}

func (q Query) filter() storage.Filter {
	return storage.Filter{
		WriterIDs:   q.WriterIDs,
		AllWriters:  q.AllWriters,
		UserIDs:     q.UserIDs,
		RecordIDs:   q.RecordIDs,
		Types:       q.Types,
		Plain:       q.Plain,
		IncludeData: q.IncludeData,
		Count:       q.PageSize,
		AfterIndex:  q.AfterIndex,
	}
}

// Query возвращает одну страницу. Каждая запись расшифровывается отдельно,
// если не задан Raw.
func (c *Client) Query(ctx context.Context, q Query) (storage.Page, error) {
	page, err := c.store.ListRecords(ctx, q.filter())
	if err != nil {
		return storage.Page{}, fmt.Errorf("list records: %w", err)
	}
	if q.Raw {
		return page, nil
	}

	keys := make(scopeKeys)
	defer keys.wipe()

	for i, rec := range page.Records {
		if page.Records[i], err = c.decrypt(ctx, rec, keys); err != nil {
			return storage.Page{}, fmt.Errorf("record %s: %w", rec.ID(), err)
		}
	}
	return page, nil
}

// QueryAll обходит все страницы выборки. Обход прекращается на первой ошибке
// или когда сервер перестает сдвигать last_index. Пустая страница концом
// выборки не считается: сервер отбрасывает недоступные записи после лимита.
func (c *Client) QueryAll(ctx context.Context, q Query) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		for {
			page, err := c.Query(ctx, q)
			if err != nil {
				yield(record.Record{}, err)
				return
			}
			for _, rec := range page.Records {
				if !yield(rec, nil) {
					return
				}
			}
			if page.LastIndex <= q.AfterIndex {
				return
			}
			q.AfterIndex = page.LastIndex
		}
	}
}

// Share открывает читателю (id или email) записи типа typ
func (c *Client) Share(ctx context.Context, typ, reader string) error {
	return c.sharing.Share(ctx, typ, reader)
}

// Revoke запрещает читателю записи типа typ
func (c *Client) Revoke(ctx context.Context, typ, reader string, opts ...sharing.RevokeOption) error {
	return c.sharing.Revoke(ctx, typ, reader, opts...)
}

func (c *Client) ClientInfo(ctx context.Context, idOrEmail string) (storage.ClientInfo, error) {
	return c.store.GetClientInfo(ctx, idOrEmail)
}

type scope struct {
	writer, user uuid.UUID
	typ          string
}

// scopeKeys - ключи областей в пределах одного вызова
type scopeKeys map[scope]*[crypto.KeySize]byte

func (k scopeKeys) wipe() {
	for _, key := range k {
		crypto.Wipe(key)
	}
}

func (c *Client) decrypt(ctx context.Context, rec record.Record, keys scopeKeys) (record.Record, error) {
	if rec.Data().Len() == 0 {
		return rec, nil
	}

	meta := rec.Meta()
	s := scope{writer: meta.WriterID(), user: meta.UserID(), typ: meta.Type()}

	key, cached := keys[s]
	if !cached {
		var err error
		key, err = c.resolver.Resolve(ctx, s.writer, s.user, c.self.ClientID, s.typ)
		if err != nil {
			return record.Record{}, fmt.Errorf("access key: %w", err)
		}
		if keys != nil {
			keys[s] = key
		} else {
			defer crypto.Wipe(key)
		}
	}
	return crypto.DecryptRecord(rec, key)
}
