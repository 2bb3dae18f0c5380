package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cipherkeeper/internal/app/client/access"
	"cipherkeeper/internal/app/client/sharing"
	"cipherkeeper/internal/app/client/storage"
	"cipherkeeper/internal/app/client/storage/mocks"
	"cipherkeeper/internal/app/client/transport"
	"cipherkeeper/internal/app/server/api"
	"cipherkeeper/internal/crypto"
	"cipherkeeper/internal/domain/record"
	"cipherkeeper/internal/errs"
	"cipherkeeper/internal/infrastructure/storage/memory"
	"cipherkeeper/internal/utils/logger"
)

// newServer поднимает настоящий API поверх хранилища в памяти
func newServer(t *testing.T) string {
	t.Helper()
	mux := api.New(api.MemoryRepositories(memory.New()), time.Hour, logger.Discard())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func register(t *testing.T, url, email string) *Client {
	t.Helper()
	ctx := context.Background()
	log := logger.Discard()

	keys, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	creds, err := transport.New(url, transport.Credentials{}, log).Register(ctx, email, crypto.EncodeKey(keys.Public))
	require.NoError(t, err)

	return New(transport.New(url, creds, log), access.Identity{ClientID: creds.ClientID, Keys: keys}, log)
}

func TestClient_WriteRead(t *testing.T) {
	ctx := context.Background()
	alice := register(t, newServer(t), "alice@example.com")

	data := record.FieldsOf("login", "alice", "password", "hunter2")
	written, err := alice.Write(ctx, "login", data, record.FieldsOf("site", "example.com"))
	require.NoError(t, err)

	meta := written.Meta()
	assert.NotEqual(t, uuid.Nil, written.ID())
	assert.NotEmpty(t, meta.Version())
	assert.Equal(t, alice.ID(), meta.WriterID())
	assert.Equal(t, alice.ID(), meta.UserID())
	assert.Equal(t, []string{"login", "password"}, written.Data().Keys())
	assert.True(t, data.Equal(written.Data()))

	read, err := alice.Read(ctx, written.ID())
	require.NoError(t, err)
	assert.True(t, data.Equal(read.Data()))
	site, _ := read.Meta().Plain().Get("site")
	assert.Equal(t, "example.com", site)

	_, err = alice.Read(ctx, uuid.New())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestClient_ServerSeesCiphertext(t *testing.T) {
	ctx := context.Background()
	alice := register(t, newServer(t), "alice@example.com")

	_, err := alice.Write(ctx, "note", record.FieldsOf("body", "top secret"), record.Fields{})
	require.NoError(t, err)

	page, err := alice.Query(ctx, Query{IncludeData: true, Raw: true})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)

	body, ok := page.Records[0].Field("body")
	require.True(t, ok)
	assert.NotContains(t, body, "top secret")
	assert.Equal(t, 3, strings.Count(body, "."))
}

func TestClient_Update(t *testing.T) {
	ctx := context.Background()
	alice := register(t, newServer(t), "alice@example.com")

	written, err := alice.Write(ctx, "note", record.FieldsOf("body", "v1"), record.Fields{})
	require.NoError(t, err)

	updated, err := alice.Update(ctx, written.WithData(record.FieldsOf("body", "v2")))
	require.NoError(t, err)
	assert.NotEqual(t, written.Meta().Version(), updated.Meta().Version())
	body, _ := updated.Field("body")
	assert.Equal(t, "v2", body)

	_, err = alice.Update(ctx, written.WithData(record.FieldsOf("body", "stale")))
	assert.ErrorIs(t, err, errs.ErrConflict)

	read, err := alice.Read(ctx, written.ID())
	require.NoError(t, err)
	body, _ = read.Field("body")
	assert.Equal(t, "v2", body)
}

func TestClient_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	alice := register(t, newServer(t), "alice@example.com")

	written, err := alice.Write(ctx, "note", record.FieldsOf("body", "x"), record.Fields{})
	require.NoError(t, err)

	require.NoError(t, alice.Delete(ctx, written.ID()))
	require.NoError(t, alice.Delete(ctx, written.ID()))

	_, err = alice.Read(ctx, written.ID())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestClient_ShareRevoke(t *testing.T) {
	ctx := context.Background()
	url := newServer(t)
	alice := register(t, url, "alice@example.com")
	bob := register(t, url, "bob@example.com")

	written, err := alice.Write(ctx, "note", record.FieldsOf("body", "for bob"), record.Fields{})
	require.NoError(t, err)

	_, err = bob.Read(ctx, written.ID())
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, alice.Share(ctx, "note", "bob@example.com"))

	read, err := bob.Read(ctx, written.ID())
	require.NoError(t, err)
	body, _ := read.Field("body")
	assert.Equal(t, "for bob", body)

	page, err := bob.Query(ctx, Query{AllWriters: true, IncludeData: true})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, written.ID(), page.Records[0].ID())

	// чужие записи других типов остаются закрытыми
	_, err = alice.Write(ctx, "card", record.FieldsOf("number", "4111"), record.Fields{})
	require.NoError(t, err)
	page, err = bob.Query(ctx, Query{AllWriters: true})
	require.NoError(t, err)
	assert.Len(t, page.Records, 1)

	require.NoError(t, alice.Revoke(ctx, "note", bob.ID().String()))

	_, err = bob.Read(ctx, written.ID())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestClient_RevokeWithKeyRemoval(t *testing.T) {
	ctx := context.Background()
	url := newServer(t)
	alice := register(t, url, "alice@example.com")
	bob := register(t, url, "bob@example.com")

	_, err := alice.Write(ctx, "note", record.FieldsOf("body", "x"), record.Fields{})
	require.NoError(t, err)
	require.NoError(t, alice.Share(ctx, "note", bob.ID().String()))
	require.NoError(t, alice.Revoke(ctx, "note", "bob@example.com", sharing.WithKeyRemoval()))

	page, err := bob.Query(ctx, Query{AllWriters: true, IncludeData: true})
	require.NoError(t, err)
	assert.Empty(t, page.Records)

	// повторный отзыв не ошибка
	require.NoError(t, alice.Revoke(ctx, "note", "bob@example.com", sharing.WithKeyRemoval()))

	// новый доступ выдается заново
	require.NoError(t, alice.Share(ctx, "note", "bob@example.com"))
	page, err = bob.Query(ctx, Query{AllWriters: true, IncludeData: true})
	require.NoError(t, err)
	assert.Len(t, page.Records, 1)
}

func TestClient_ShareWithSelfAndUnknown(t *testing.T) {
	ctx := context.Background()
	alice := register(t, newServer(t), "alice@example.com")

	assert.NoError(t, alice.Share(ctx, "note", "alice@example.com"))
	assert.NoError(t, alice.Revoke(ctx, "note", alice.ID().String()))

	err := alice.Share(ctx, "note", "nobody@example.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestClient_QueryAll(t *testing.T) {
	ctx := context.Background()
	alice := register(t, newServer(t), "alice@example.com")

	for i := range 5 {
		tag := "odd"
		if i%2 == 0 {
			tag = "even"
		}
		_, err := alice.Write(ctx, "note", record.FieldsOf("n", string(rune('0'+i))), record.FieldsOf("tag", tag))
		require.NoError(t, err)
	}

	var got []string
	for rec, err := range alice.QueryAll(ctx, Query{IncludeData: true, PageSize: 2}) {
		require.NoError(t, err)
		n, _ := rec.Field("n")
		got = append(got, n)
	}
	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, got)

	page, err := alice.Query(ctx, Query{Plain: record.FieldsOf("tag", "even")})
	require.NoError(t, err)
	assert.Len(t, page.Records, 3)
	for _, rec := range page.Records {
		assert.Zero(t, rec.Data().Len())
	}
}

func TestClient_QueryAllSkipsHiddenPages(t *testing.T) {
	ctx := context.Background()
	url := newServer(t)
	alice := register(t, url, "alice@example.com")
	bob := register(t, url, "bob@example.com")

	for range 3 {
		_, err := alice.Write(ctx, "private", record.FieldsOf("pin", "0000"), record.Fields{})
		require.NoError(t, err)
	}
	shared, err := alice.Write(ctx, "note", record.FieldsOf("text", "hello"), record.Fields{})
	require.NoError(t, err)
	require.NoError(t, alice.Share(ctx, "note", "bob@example.com"))

	// первая страница bob целиком из недоступных записей
	first, err := bob.Query(ctx, Query{AllWriters: true, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, first.Records)
	assert.Positive(t, first.LastIndex)

	var got []record.Record
	for rec, err := range bob.QueryAll(ctx, Query{AllWriters: true, IncludeData: true, PageSize: 2}) {
		require.NoError(t, err)
		got = append(got, rec)
	}
	require.Len(t, got, 1)
	assert.Equal(t, shared.ID(), got[0].ID())
	text, _ := got[0].Field("text")
	assert.Equal(t, "hello", text)
}

func TestClient_ClientInfo(t *testing.T) {
	ctx := context.Background()
	url := newServer(t)
	alice := register(t, url, "alice@example.com")
	bob := register(t, url, "bob@example.com")

	info, err := alice.ClientInfo(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID(), info.ClientID)
	assert.Equal(t, crypto.EncodeKey(bob.self.Keys.Public), info.PublicKey)
}

func TestClient_DeleteErrors(t *testing.T) {
	ctx := context.Background()
	keys, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	store := new(mocks.Service)
	c := New(store, access.Identity{ClientID: uuid.New(), Keys: keys}, logger.Discard())

	missing, broken := uuid.New(), uuid.New()
	store.On("DeleteRecord", mock.Anything, missing).Return(errs.ErrNotFound)
	store.On("DeleteRecord", mock.Anything, broken).Return(errs.ErrTransport)

	assert.NoError(t, c.Delete(ctx, missing))
	assert.ErrorIs(t, c.Delete(ctx, broken), errs.ErrTransport)
	store.AssertExpectations(t)
}

func TestClient_UpdateUnwritten(t *testing.T) {
	keys, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	self := access.Identity{ClientID: uuid.New(), Keys: keys}

	store := new(mocks.Service)
	c := New(store, self, logger.Discard())

	meta, err := record.NewMeta(self.ClientID, self.ClientID, "note", record.Fields{})
	require.NoError(t, err)

	_, err = c.Update(context.Background(), record.New(meta, record.FieldsOf("a", "b")))
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	store.AssertNotCalled(t, "UpdateRecord", mock.Anything, mock.Anything)
}

func TestClient_WriteRejectsPlantedKey(t *testing.T) {
	ctx := context.Background()
	keys, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	attacker, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	self := access.Identity{ClientID: uuid.New(), Keys: keys}

	planted, err := crypto.RandomKey()
	require.NoError(t, err)
	eak, err := crypto.WrapKey(planted, keys.Public, attacker.Private)
	require.NoError(t, err)

	store := new(mocks.Service)
	store.On("GetAccessKey", mock.Anything, self.ClientID, self.ClientID, self.ClientID, "note").
		Return(storage.AccessKeyEnvelope{
			EAK:                 eak,
			AuthorizerID:        self.ClientID,
			AuthorizerPublicKey: crypto.EncodeKey(attacker.Public),
		}, nil)

	c := New(store, self, logger.Discard())
	_, err = c.Write(ctx, "note", record.FieldsOf("text", "secret"), record.Fields{})
	assert.ErrorIs(t, err, errs.ErrDecryption)
	store.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything)
}

func TestClient_QueryRawSkipsKeys(t *testing.T) {
	keys, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	self := access.Identity{ClientID: uuid.New(), Keys: keys}

	meta, err := record.NewMeta(self.ClientID, self.ClientID, "note", record.Fields{})
	require.NoError(t, err)
	sealed := record.New(meta, record.FieldsOf("body", "a.b.c.d"))

	store := new(mocks.Service)
	store.On("ListRecords", mock.Anything, mock.MatchedBy(func(f storage.Filter) bool {
		return f.IncludeData && f.Count == 10
	})).Return(storage.Page{Records: []record.Record{sealed}, LastIndex: 4}, nil)

	c := New(store, self, logger.Discard())
	page, err := c.Query(context.Background(), Query{IncludeData: true, Raw: true, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.LastIndex)
	body, _ := page.Records[0].Field("body")
	assert.Equal(t, "a.b.c.d", body)
	store.AssertNotCalled(t, "GetAccessKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
