package policy

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/app/server/api/http/apierr"
	"cipherkeeper/internal/app/server/api/http/middleware/auth"
	"cipherkeeper/internal/domain/policy"
)

type Handler struct {
	service    policy.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service policy.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.putOp(), h.put)
}

func (h *Handler) put(ctx context.Context, input *putPolicyInput) (*putPolicyOutput, error) {
	clientID, ok := auth.GetClientID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	writer, user, reader, err := input.IDs()
	if err != nil {
		return nil, err
	}

	p := policy.Policy{
		WriterID: writer,
		UserID:   user,
		ReaderID: reader,
		Type:     input.Type,
		Action:   policy.Action(input.Body.Action),
	}
	if err := h.service.Put(ctx, clientID, p); err != nil {
		return nil, apierr.From(err)
	}

	out := &putPolicyOutput{}
	out.Body.Status = "Ok"
	return out, nil
}
