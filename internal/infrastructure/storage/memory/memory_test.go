package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherkeeper/internal/domain/accesskey"
	"cipherkeeper/internal/domain/client"
	"cipherkeeper/internal/domain/policy"
	"cipherkeeper/internal/domain/record"
	"cipherkeeper/internal/errs"
)

func newRecord(t *testing.T, writer uuid.UUID, typ string, plain record.Fields) record.Record {
	t.Helper()
	meta, err := record.NewMeta(writer, writer, typ, plain)
	require.NoError(t, err)

	state := meta.State()
	state.RecordID = uuid.New()
	state.Version = uuid.NewString()
	return record.New(state.Meta(), record.FieldsOf("secret", "ct"))
}

func TestRecordRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository(New())
	writer := uuid.New()

	rec := newRecord(t, writer, "note", record.FieldsOf("tag", "a"))
	created, err := repo.Create(ctx, rec)
	require.NoError(t, err)
	assert.NotNil(t, created.Meta().Created())

	_, err = repo.Create(ctx, rec)
	assert.ErrorIs(t, err, errs.ErrConflict)

	got, err := repo.Get(ctx, rec.ID())
	require.NoError(t, err)
	assert.True(t, rec.Data().Equal(got.Data()))

	version := rec.Meta().Version()
	updated, err := repo.Update(ctx, rec.ID(), version, "v2", record.FieldsOf("secret", "ct2"), record.FieldsOf("tag", "b"))
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Meta().Version())
	assert.Equal(t, writer, updated.Meta().WriterID())

	_, err = repo.Update(ctx, rec.ID(), version, "v3", record.Fields{}, record.Fields{})
	assert.ErrorIs(t, err, errs.ErrConflict)

	_, err = repo.Update(ctx, uuid.New(), version, "v3", record.Fields{}, record.Fields{})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, rec.ID()))
	assert.ErrorIs(t, repo.Delete(ctx, rec.ID()), errs.ErrNotFound)

	_, err = repo.Get(ctx, rec.ID())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRecordRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository(New())
	alice, bob := uuid.New(), uuid.New()

	var ids []uuid.UUID
	for _, r := range []record.Record{
		newRecord(t, alice, "note", record.FieldsOf("tag", "a")),
		newRecord(t, bob, "note", record.FieldsOf("tag", "a")),
		newRecord(t, alice, "card", record.FieldsOf("tag", "b", "bank", "x")),
		newRecord(t, alice, "note", record.FieldsOf("tag", "b")),
	} {
		_, err := repo.Create(ctx, r)
		require.NoError(t, err)
		ids = append(ids, r.ID())
	}

	tests := []struct {
		name   string
		filter record.Filter
		want   []uuid.UUID
	}{
		{"all", record.Filter{IncludeData: true}, ids},
		{"writer", record.Filter{WriterIDs: []uuid.UUID{alice}}, []uuid.UUID{ids[0], ids[2], ids[3]}},
		{"type", record.Filter{Types: []string{"card"}}, []uuid.UUID{ids[2]}},
		{"plain subset", record.Filter{Plain: record.FieldsOf("tag", "b")}, []uuid.UUID{ids[2], ids[3]}},
		{"plain mismatch", record.Filter{Plain: record.FieldsOf("bank", "y")}, nil},
		{"record ids", record.Filter{RecordIDs: []uuid.UUID{ids[1]}}, []uuid.UUID{ids[1]}},
		{"page", record.Filter{Count: 2}, ids[:2]},
		{"after", record.Filter{AfterIndex: 2, Count: 10}, ids[2:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)

			var got []uuid.UUID
			for _, rec := range page.Records {
				got = append(got, rec.ID())
				assert.Equal(t, tt.filter.IncludeData, rec.Data().Len() > 0)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordRepository_ListLastIndex(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository(New())

	page, err := repo.List(ctx, record.Filter{AfterIndex: 7})
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.Equal(t, int64(7), page.LastIndex)

	_, err = repo.Create(ctx, newRecord(t, uuid.New(), "note", record.Fields{}))
	require.NoError(t, err)
	page, err = repo.List(ctx, record.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.LastIndex)
}

func TestClientRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(New())
	c := client.Client{ID: uuid.New(), Email: "alice@example.com", APIKeyID: "key"}

	require.NoError(t, repo.Create(ctx, c))
	assert.ErrorIs(t, repo.Create(ctx, client.Client{ID: uuid.New(), Email: c.Email, APIKeyID: "other"}), errs.ErrConflict)

	byEmail, err := repo.FindByEmail(ctx, c.Email)
	require.NoError(t, err)
	assert.Equal(t, c.ID, byEmail.ID)
	assert.False(t, byEmail.CreatedAt.IsZero())

	byKey, err := repo.FindByAPIKey(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byKey.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSessionRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	storage := New()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	storage.now = func() time.Time { return now }
	repo := NewSessionRepository(storage)
	clientID := uuid.New()

	require.NoError(t, repo.Create(ctx, clientID, "hash", now.Add(time.Hour)))

	got, err := repo.Validate(ctx, "hash")
	require.NoError(t, err)
	assert.Equal(t, clientID, got)

	_, err = repo.Validate(ctx, "other")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	now = now.Add(2 * time.Hour)
	_, err = repo.Validate(ctx, "hash")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestAccessKeyRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAccessKeyRepository(New())
	scope := accesskey.Scope{WriterID: uuid.New(), UserID: uuid.New(), ReaderID: uuid.New(), Type: "note"}

	_, err := repo.Get(ctx, scope)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, repo.Put(ctx, accesskey.AccessKey{Scope: scope, EAK: "one"}))
	require.NoError(t, repo.Put(ctx, accesskey.AccessKey{Scope: scope, EAK: "two"}))

	got, err := repo.Get(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "two", got.EAK)

	require.NoError(t, repo.Delete(ctx, scope))
	assert.ErrorIs(t, repo.Delete(ctx, scope), errs.ErrNotFound)
}

func TestPolicyRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPolicyRepository(New())
	alice, bob, reader := uuid.New(), uuid.New(), uuid.New()

	put := func(writer uuid.UUID, typ string, action policy.Action) {
		require.NoError(t, repo.Put(ctx, policy.Policy{WriterID: writer, UserID: writer, ReaderID: reader, Type: typ, Action: action}))
	}
	put(alice, "note", policy.ActionAllow)
	put(alice, "card", policy.ActionAllow)
	put(bob, "note", policy.ActionAllow)
	put(bob, "note", policy.ActionDeny)

	got, err := repo.Get(ctx, bob, bob, reader, "note")
	require.NoError(t, err)
	assert.Equal(t, policy.ActionDeny, got.Action)

	writers, err := repo.Writers(ctx, reader)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alice}, writers)

	_, err = repo.Get(ctx, alice, alice, reader, "file")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
