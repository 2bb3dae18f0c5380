package policy

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
	"cipherkeeper/internal/domain/policy"
	"cipherkeeper/internal/errs"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Put(ctx context.Context, requesterID uuid.UUID, p policy.Policy) error {
	args := m.Called(ctx, requesterID, p)
	return args.Error(0)
}

func (m *MockService) Allowed(ctx context.Context, writerID, userID, readerID uuid.UUID, typ string) (bool, error) {
	args := m.Called(ctx, writerID, userID, readerID, typ)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) SharedWith(ctx context.Context, readerID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, readerID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func TestHandler_Put(t *testing.T) {
	writer, reader := uuid.New(), uuid.New()

	tests := []struct {
		name      string
		requester uuid.UUID
		action    string
		err       error
		status    int
	}{
		{"allow", writer, "allow", nil, http.StatusOK},
		{"deny", writer, "deny", nil, http.StatusOK},
		{"not the writer", reader, "allow", errs.ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := auth.WithClientID(context.Background(), tt.requester)
			want := policy.Policy{
				WriterID: writer, UserID: writer, ReaderID: reader,
				Type: "contact", Action: policy.Action(tt.action),
			}

			svc := new(MockService)
			svc.On("Put", ctx, tt.requester, want).Return(tt.err)
			h := NewHandler(svc, slog.Default(), nil)

			input := &putPolicyInput{ScopePath: apierr.ScopePath{
				Writer: writer.String(), User: writer.String(), Reader: reader.String(), Type: "contact",
			}}
			input.Body.Action = tt.action

			out, err := h.put(ctx, input)
			if tt.err != nil {
				var se huma.StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tt.status, se.GetStatus())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Ok", out.Body.Status)
			svc.AssertExpectations(t)
		})
	}
}
