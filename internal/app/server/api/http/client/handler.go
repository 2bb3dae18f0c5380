package client

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/app/server/api/http/apierr"
	"cipherkeeper/internal/domain/client"
	"cipherkeeper/internal/domain/session"
)

type Handler struct {
	clients  client.Servicer
	sessions session.Servicer
	log      *slog.Logger
	public   huma.Middlewares
	private  huma.Middlewares
}

// NewHandler создает обработчик; public применяются к регистрации и выдаче
// токена, private - к операциям, требующим авторизации.
func NewHandler(clients client.Servicer, sessions session.Servicer, log *slog.Logger, public, private huma.Middlewares) *Handler {
	return &Handler{
		clients:  clients,
		sessions: sessions,
		log:      log,
		public:   public,
		private:  private,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.infoOp(), h.info)
	huma.Register(api, h.tokenOp(), h.token)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	creds, err := h.clients.Register(ctx, input.Body.Email, input.Body.PublicKey)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &registerOutput{Body: creds}, nil
}

func (h *Handler) info(ctx context.Context, input *infoInput) (*infoOutput, error) {
	info, err := h.clients.Info(ctx, input.ID)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &infoOutput{Body: info}, nil
}

func (h *Handler) token(ctx context.Context, input *tokenInput) (*tokenOutput, error) {
	clientID, err := h.clients.Authenticate(ctx, input.Body.APIKeyID, input.Body.APISecret)
	if err != nil {
		return nil, apierr.From(err)
	}

	token, expiresAt, err := h.sessions.Create(ctx, clientID)
	if err != nil {
		h.log.Error("failed to create session", "client_id", clientID, "error", err)
		return nil, apierr.From(err)
	}

	out := &tokenOutput{}
	out.Body.Token = token
	out.Body.ExpiresAt = expiresAt
	return out, nil
}
