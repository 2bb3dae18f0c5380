package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/errs"
)

type MockSession struct {
	mock.Mock
}

func (m *MockSession) Create(ctx context.Context, clientID uuid.UUID) (string, time.Time, error) {
	args := m.Called(ctx, clientID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockSession) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type whoamiOutput struct {
	Body struct {
		ClientID string `json:"client_id"`
	}
}

func newTestMux(sess *MockSession) *chi.Mux {
	mux := chi.NewMux()
	api := humachi.New(mux, huma.DefaultConfig("test", "1.0.0"))
	a := New(sess, slog.Default())

	huma.Register(api, huma.Operation{
		OperationID: "whoami",
		Method:      http.MethodGet,
		Path:        "/whoami",
		Middlewares: huma.Middlewares{a.Middleware()},
	}, func(ctx context.Context, _ *struct{}) (*whoamiOutput, error) {
		id, ok := GetClientID(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("no client")
		}
		out := &whoamiOutput{}
		out.Body.ClientID = id.String()
		return out, nil
	})
	return mux
}

func TestAuth_Middleware(t *testing.T) {
	clientID := uuid.New()

	sess := new(MockSession)
	sess.On("Validate", mock.Anything, "good").Return(clientID, nil)
	sess.On("Validate", mock.Anything, "bad").Return(uuid.Nil, errs.ErrUnauthorized)

	mux := newTestMux(sess)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer good", http.StatusOK},
		{"rejected token", "Bearer bad", http.StatusUnauthorized},
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, rec.Body.String(), clientID.String())
			}
		})
	}
}

func TestGetClientID(t *testing.T) {
	_, ok := GetClientID(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := GetClientID(WithClientID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
