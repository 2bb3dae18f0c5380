package accesskey

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const path = "/api/v1/access_keys/{writer}/{user}/{reader}/{type}"

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "access-keys-get",
		Method:      http.MethodGet,
		Path:        path,
		Summary:     "Получить ключ доступа, обернутый для читателя",
		Tags:        []string{"access-keys"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) putOp() huma.Operation {
	return huma.Operation{
		OperationID: "access-keys-put",
		Method:      http.MethodPut,
		Path:        path,
		Summary:     "Опубликовать ключ доступа для читателя",
		Tags:        []string{"access-keys"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "access-keys-delete",
		Method:      http.MethodDelete,
		Path:        path,
		Summary:     "Удалить ключ доступа читателя",
		Tags:        []string{"access-keys"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
