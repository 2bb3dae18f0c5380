package client

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) registerOp() huma.Operation {
	return huma.Operation{
		OperationID:   "clients-register",
		Method:        http.MethodPost,
		Path:          "/api/v1/clients",
		Summary:       "Регистрация клиента",
		Description:   "Сохраняет открытый ключ клиента и выдает API-ключ. Секрет возвращается один раз.",
		Tags:          []string{"clients"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.public,
	}
}

func (h *Handler) infoOp() huma.Operation {
	return huma.Operation{
		OperationID: "clients-info",
		Method:      http.MethodGet,
		Path:        "/api/v1/clients/{id}",
		Summary:     "Публичные сведения о клиенте",
		Tags:        []string{"clients"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.private,
	}
}

func (h *Handler) tokenOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-token",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/token",
		Summary:     "Получить bearer-токен по API-ключу",
		Tags:        []string{"auth"},
		Middlewares: h.public,
	}
}
