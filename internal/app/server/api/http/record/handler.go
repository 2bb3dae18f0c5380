package record

import (
	"context"
	"encoding/json"
	"maps"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"cipherkeeper/internal/app/server/api/http/apierr"
	"cipherkeeper/internal/app/server/api/http/middleware/auth"
	"cipherkeeper/internal/domain/record"
)

type Handler struct {
	service    record.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service record.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.queryOp(), h.query)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) create(ctx context.Context, input *createInput) (*recordOutput, error) {
	clientID, ok := auth.GetClientID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	var rec record.Record
	if err := json.Unmarshal(input.RawBody, &rec); err != nil {
		return nil, apierr.From(err)
	}

	created, err := h.service.Create(ctx, clientID, rec)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &recordOutput{Body: bodyOf(created)}, nil
}

func (h *Handler) find(ctx context.Context, input *findInput) (*recordOutput, error) {
	clientID, ok := auth.GetClientID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	recordID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid record id")
	}

	rec, err := h.service.Get(ctx, clientID, recordID)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &recordOutput{Body: bodyOf(rec)}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*recordOutput, error) {
	clientID, ok := auth.GetClientID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	recordID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid record id")
	}

	var rec record.Record
	if err := json.Unmarshal(input.RawBody, &rec); err != nil {
		return nil, apierr.From(err)
	}
	if id := rec.ID(); id != uuid.Nil && id != recordID {
		return nil, huma.Error422UnprocessableEntity("record_id does not match path")
	}

	updated, err := h.service.Update(ctx, clientID, recordID, rec.Meta().Version(), rec)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &recordOutput{Body: bodyOf(updated)}, nil
}

func (h *Handler) delete(ctx context.Context, input *findInput) (*deleteOutput, error) {
	clientID, ok := auth.GetClientID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	recordID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid record id")
	}

	if err := h.service.Delete(ctx, clientID, recordID); err != nil {
		return nil, apierr.From(err)
	}

	out := &deleteOutput{}
	out.Body.Status = "Ok"
	return out, nil
}

func (h *Handler) query(ctx context.Context, input *queryInput) (*queryOutput, error) {
	clientID, ok := auth.GetClientID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	filter, err := input.Body.filter()
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	page, err := h.service.List(ctx, clientID, filter, input.Body.AllWriters)
	if err != nil {
		return nil, apierr.From(err)
	}

	results := make([]recordBody, 0, len(page.Records))
	for _, rec := range page.Records {
		results = append(results, bodyOf(rec))
	}
	return &queryOutput{Body: queryResponse{Results: results, LastIndex: page.LastIndex}}, nil
}

func (q queryRequest) filter() (record.Filter, error) {
	f := record.Filter{
		Types:       q.Types,
		IncludeData: q.IncludeData,
		AfterIndex:  q.AfterIndex,
		Count:       q.Count,
	}

	var err error
	if f.WriterIDs, err = parseIDs(q.WriterIDs); err != nil {
		return record.Filter{}, err
	}
	if f.UserIDs, err = parseIDs(q.UserIDs); err != nil {
		return record.Filter{}, err
	}
	if f.RecordIDs, err = parseIDs(q.RecordIDs); err != nil {
		return record.Filter{}, err
	}

	for _, k := range slices.Sorted(maps.Keys(q.Plain)) {
		f.Plain.Set(k, q.Plain[k])
	}
	return f, nil
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
