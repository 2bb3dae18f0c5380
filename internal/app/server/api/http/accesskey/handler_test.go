package accesskey

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/app/server/api/http/apierr"
	"cipherkeeper/internal/app/server/api/http/middleware/auth"
	"cipherkeeper/internal/domain/accesskey"
	"cipherkeeper/internal/errs"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, requesterID uuid.UUID, scope accesskey.Scope) (accesskey.AccessKey, error) {
	args := m.Called(ctx, requesterID, scope)
	return args.Get(0).(accesskey.AccessKey), args.Error(1)
}

func (m *MockService) Put(ctx context.Context, requesterID uuid.UUID, scope accesskey.Scope, eak string) error {
	args := m.Called(ctx, requesterID, scope, eak)
	return args.Error(0)
}

func (m *MockService) Delete(ctx context.Context, requesterID uuid.UUID, scope accesskey.Scope) error {
	args := m.Called(ctx, requesterID, scope)
	return args.Error(0)
}

func pathOf(s accesskey.Scope) apierr.ScopePath {
	return apierr.ScopePath{
		Writer: s.WriterID.String(),
		User:   s.UserID.String(),
		Reader: s.ReaderID.String(),
		Type:   s.Type,
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	return se.GetStatus()
}

func TestHandler_Get(t *testing.T) {
	writer, reader := uuid.New(), uuid.New()
	scope := accesskey.Scope{WriterID: writer, UserID: writer, ReaderID: reader, Type: "contact"}
	key := accesskey.AccessKey{Scope: scope, EAK: "x.y", AuthorizerID: writer, AuthorizerPublicKey: "pk"}
	ctx := auth.WithClientID(context.Background(), reader)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"found", nil, http.StatusOK},
		{"missing", errs.ErrNotFound, http.StatusNotFound},
		{"denied", errs.ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Get", ctx, reader, scope).Return(key, tt.err)
			h := NewHandler(svc, slog.Default(), nil)

			out, err := h.get(ctx, &scopeInput{ScopePath: pathOf(scope)})
			if tt.err != nil {
				assert.Equal(t, tt.status, statusOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, key, out.Body)
		})
	}
}

func TestHandler_Put(t *testing.T) {
	writer, reader := uuid.New(), uuid.New()
	scope := accesskey.Scope{WriterID: writer, UserID: writer, ReaderID: reader, Type: "contact"}
	ctx := auth.WithClientID(context.Background(), writer)

	svc := new(MockService)
	svc.On("Put", ctx, writer, scope, "x.y").Return(nil)
	h := NewHandler(svc, slog.Default(), nil)

	input := &putAccessKeyInput{ScopePath: pathOf(scope)}
	input.Body.EAK = "x.y"

	out, err := h.put(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "Ok", out.Body.Status)
	svc.AssertExpectations(t)
}

func TestHandler_InvalidScope(t *testing.T) {
	ctx := auth.WithClientID(context.Background(), uuid.New())
	h := NewHandler(new(MockService), slog.Default(), nil)

	_, err := h.delete(ctx, &scopeInput{ScopePath: apierr.ScopePath{Writer: "x", User: "y", Reader: "z", Type: "t"}})
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
}
