package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/app/client/storage"
	"cipherkeeper/internal/app/client/storage/mocks"
	"cipherkeeper/internal/crypto"
	"cipherkeeper/internal/errs"
)

func newIdentity(t *testing.T) Identity {
	t.Helper()
	keys, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	return Identity{ClientID: uuid.New(), Keys: keys}
}

func TestResolver_Existing(t *testing.T) {
	ctx := context.Background()
	owner, reader := newIdentity(t), newIdentity(t)

	key, err := crypto.RandomKey()
	require.NoError(t, err)
	eak, err := crypto.WrapKey(key, reader.Keys.Public, owner.Keys.Private)
	require.NoError(t, err)

	store := new(mocks.Service)
	store.On("GetAccessKey", ctx, owner.ClientID, owner.ClientID, reader.ClientID, "contact").
		Return(storage.AccessKeyEnvelope{
			EAK:                 eak,
			AuthorizerID:        owner.ClientID,
			AuthorizerPublicKey: crypto.EncodeKey(owner.Keys.Public),
		}, nil)

	got, err := NewResolver(store, reader, slog.Default()).
		Resolve(ctx, owner.ClientID, owner.ClientID, reader.ClientID, "contact")
	require.NoError(t, err)
	assert.Equal(t, key, got)
	store.AssertNotCalled(t, "PutAccessKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolver_EstablishesForWriter(t *testing.T) {
	ctx := context.Background()
	self := newIdentity(t)
	id := self.ClientID

	var published string
	store := new(mocks.Service)
	store.On("GetAccessKey", ctx, id, id, id, "contact").Return(storage.AccessKeyEnvelope{}, errs.ErrNotFound)
	store.On("PutAccessKey", ctx, id, id, id, "contact", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { published = args.String(5) }).
		Return(nil)

	key, err := NewResolver(store, self, slog.Default()).Resolve(ctx, id, id, id, "contact")
	require.NoError(t, err)

	// опубликованный ключ разворачивается в тот же самый
	unwrapped, err := crypto.UnwrapKey(published, self.Keys.Public, self.Keys.Private)
	require.NoError(t, err)
	assert.Equal(t, key, unwrapped)
	store.AssertExpectations(t)
}

func TestResolver_NotFoundForReader(t *testing.T) {
	ctx := context.Background()
	reader := newIdentity(t)
	writer := uuid.New()

	store := new(mocks.Service)
	store.On("GetAccessKey", ctx, writer, writer, reader.ClientID, "contact").
		Return(storage.AccessKeyEnvelope{}, errs.ErrNotFound)

	_, err := NewResolver(store, reader, slog.Default()).Resolve(ctx, writer, writer, reader.ClientID, "contact")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	store.AssertNotCalled(t, "PutAccessKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolver_PropagatesErrors(t *testing.T) {
	ctx := context.Background()
	self := newIdentity(t)
	id := self.ClientID

	tests := []struct {
		name string
		err  error
	}{
		{"forbidden", errs.ErrForbidden},
		{"transport", errs.ErrTransport},
		{"unexpected", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.Service)
			store.On("GetAccessKey", ctx, id, id, id, "contact").Return(storage.AccessKeyEnvelope{}, tt.err).Once()

			_, err := NewResolver(store, self, slog.Default()).Resolve(ctx, id, id, id, "contact")
			assert.ErrorIs(t, err, tt.err)
			store.AssertNumberOfCalls(t, "GetAccessKey", 1)
		})
	}
}

func TestResolver_WrongKeyMaterial(t *testing.T) {
	ctx := context.Background()
	owner, reader, stranger := newIdentity(t), newIdentity(t), newIdentity(t)

	key, err := crypto.RandomKey()
	require.NoError(t, err)
	// обернут для другого читателя
	eak, err := crypto.WrapKey(key, stranger.Keys.Public, owner.Keys.Private)
	require.NoError(t, err)

	store := new(mocks.Service)
	store.On("GetAccessKey", ctx, owner.ClientID, owner.ClientID, reader.ClientID, "contact").
		Return(storage.AccessKeyEnvelope{EAK: eak, AuthorizerID: owner.ClientID, AuthorizerPublicKey: crypto.EncodeKey(owner.Keys.Public)}, nil)

	_, err = NewResolver(store, reader, slog.Default()).Resolve(ctx, owner.ClientID, owner.ClientID, reader.ClientID, "contact")
	assert.ErrorIs(t, err, errs.ErrDecryption)
}

func TestResolver_RejectsPlantedOwnKey(t *testing.T) {
	ctx := context.Background()
	self, attacker := newIdentity(t), newIdentity(t)
	id := self.ClientID

	key, err := crypto.RandomKey()
	require.NoError(t, err)
	// ключ обернут для self, но чужой парой, известной серверу
	eak, err := crypto.WrapKey(key, self.Keys.Public, attacker.Keys.Private)
	require.NoError(t, err)

	tests := []struct {
		name string
		env  storage.AccessKeyEnvelope
	}{
		{"attacker key", storage.AccessKeyEnvelope{EAK: eak, AuthorizerID: id, AuthorizerPublicKey: crypto.EncodeKey(attacker.Keys.Public)}},
		{"own key advertised", storage.AccessKeyEnvelope{EAK: eak, AuthorizerID: id, AuthorizerPublicKey: crypto.EncodeKey(self.Keys.Public)}},
		{"attacker authorizer", storage.AccessKeyEnvelope{EAK: eak, AuthorizerID: attacker.ClientID, AuthorizerPublicKey: crypto.EncodeKey(attacker.Keys.Public)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.Service)
			store.On("GetAccessKey", ctx, id, id, id, "contact").Return(tt.env, nil)

			got, err := NewResolver(store, self, slog.Default()).Resolve(ctx, id, id, id, "contact")
			assert.ErrorIs(t, err, errs.ErrDecryption)
			assert.Nil(t, got)
			store.AssertNotCalled(t, "PutAccessKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestResolver_RejectsForeignAuthorizer(t *testing.T) {
	ctx := context.Background()
	owner, reader, stranger := newIdentity(t), newIdentity(t), newIdentity(t)

	key, err := crypto.RandomKey()
	require.NoError(t, err)
	eak, err := crypto.WrapKey(key, reader.Keys.Public, stranger.Keys.Private)
	require.NoError(t, err)

	store := new(mocks.Service)
	store.On("GetAccessKey", ctx, owner.ClientID, owner.ClientID, reader.ClientID, "contact").
		Return(storage.AccessKeyEnvelope{
			EAK:                 eak,
			AuthorizerID:        stranger.ClientID,
			AuthorizerPublicKey: crypto.EncodeKey(stranger.Keys.Public),
		}, nil)

	_, err = NewResolver(store, reader, slog.Default()).Resolve(ctx, owner.ClientID, owner.ClientID, reader.ClientID, "contact")
	assert.ErrorIs(t, err, errs.ErrDecryption)
}

func TestResolver_ForeignReader(t *testing.T) {
	self := newIdentity(t)
	store := new(mocks.Service)

	_, err := NewResolver(store, self, slog.Default()).Resolve(context.Background(), self.ClientID, self.ClientID, uuid.New(), "contact")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}
