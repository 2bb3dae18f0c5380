package accesskey

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/app/server/api/http/apierr"
	"cipherkeeper/internal/app/server/api/http/middleware/auth"
	"cipherkeeper/internal/domain/accesskey"
)

type Handler struct {
	service    accesskey.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service accesskey.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.putOp(), h.put)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) get(ctx context.Context, input *scopeInput) (*getOutput, error) {
	clientID, ok := auth.GetClientID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	scope, err := toScope(input.ScopePath)
	if err != nil {
		return nil, err
	}

	key, err := h.service.Get(ctx, clientID, scope)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &getOutput{Body: key}, nil
}

func (h *Handler) put(ctx context.Context, input *putAccessKeyInput) (*accessKeyStatusOutput, error) {
	clientID, ok := auth.GetClientID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	scope, err := toScope(input.ScopePath)
	if err != nil {
		return nil, err
	}

	if err := h.service.Put(ctx, clientID, scope, input.Body.EAK); err != nil {
		return nil, apierr.From(err)
	}
	return ok200(), nil
}

func (h *Handler) delete(ctx context.Context, input *scopeInput) (*accessKeyStatusOutput, error) {
	clientID, ok := auth.GetClientID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	scope, err := toScope(input.ScopePath)
	if err != nil {
		return nil, err
	}

	if err := h.service.Delete(ctx, clientID, scope); err != nil {
		return nil, apierr.From(err)
	}
	return ok200(), nil
}

func toScope(p apierr.ScopePath) (accesskey.Scope, error) {
	writer, user, reader, err := p.IDs()
	if err != nil {
		return accesskey.Scope{}, err
	}
	return accesskey.Scope{WriterID: writer, UserID: user, ReaderID: reader, Type: p.Type}, nil
}

func ok200() *accessKeyStatusOutput {
	out := &accessKeyStatusOutput{}
	out.Body.Status = "Ok"
	return out
}
