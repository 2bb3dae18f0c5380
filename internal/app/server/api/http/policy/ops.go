package policy

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) putOp() huma.Operation {
	return huma.Operation{
		OperationID: "policy-put",
		Method:      http.MethodPut,
		Path:        "/api/v1/policy/{writer}/{user}/{reader}/{type}",
		Summary:     "Разрешить или запретить читателю доступ к записям",
		Tags:        []string{"policy"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
