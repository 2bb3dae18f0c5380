package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/errs"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Put(ctx context.Context, p Policy) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (Policy, error) {
	args := m.Called(ctx, writerID, userID, readerID, typ)
	return args.Get(0).(Policy), args.Error(1)
}

func (m *MockRepository) Writers(ctx context.Context, readerID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, readerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func TestService_Put(t *testing.T) {
	ctx := context.Background()
	writer, reader := uuid.New(), uuid.New()
	allow := Policy{WriterID: writer, UserID: writer, ReaderID: reader, Type: "contact", Action: ActionAllow}

	t.Run("writer grants", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Put", ctx, allow).Return(nil)

		err := NewService(repo, slog.Default()).Put(ctx, writer, allow)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("not the writer", func(t *testing.T) {
		repo := new(MockRepository)
		err := NewService(repo, slog.Default()).Put(ctx, reader, allow)
		assert.ErrorIs(t, err, errs.ErrForbidden)
		repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})

	t.Run("unknown action", func(t *testing.T) {
		repo := new(MockRepository)
		p := allow
		p.Action = "maybe"
		err := NewService(repo, slog.Default()).Put(ctx, writer, p)
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("self is a no-op", func(t *testing.T) {
		repo := new(MockRepository)
		p := allow
		p.ReaderID = writer
		require.NoError(t, NewService(repo, slog.Default()).Put(ctx, writer, p))
		repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Put", ctx, allow).Return(errors.New("database error"))
		err := NewService(repo, slog.Default()).Put(ctx, writer, allow)
		assert.Contains(t, err.Error(), "database error")
	})
}

func TestService_Allowed(t *testing.T) {
	ctx := context.Background()
	writer, reader := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		policy  Policy
		repoErr error
		want    bool
		wantErr bool
	}{
		{name: "allow", policy: Policy{Action: ActionAllow}, want: true},
		{name: "deny after allow", policy: Policy{Action: ActionDeny}, want: false},
		{name: "no policy", repoErr: errs.ErrNotFound, want: false},
		{name: "database error", repoErr: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("Get", ctx, writer, writer, reader, "contact").Return(tt.policy, tt.repoErr)

			got, err := NewService(repo, slog.Default()).Allowed(ctx, writer, writer, reader, "contact")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("owner", func(t *testing.T) {
		repo := new(MockRepository)
		ok, err := NewService(repo, slog.Default()).Allowed(ctx, writer, writer, writer, "contact")
		require.NoError(t, err)
		assert.True(t, ok)
		repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
